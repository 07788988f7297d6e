package gedcom

import (
	"fmt"

	apperrors "github.com/rcliao/family-tree/internal/errors"
)

// Node is a record together with the records nested under it.
type Node struct {
	Record
	Children []*Node

	// Violation is set on top-level nodes whose sub-tree is not well-formed.
	Violation *apperrors.StructureViolation
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns every direct child with the given tag, in order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// ChildValue returns the value of the first child with the given tag, or "".
func (n *Node) ChildValue(tag string) string {
	if c := n.Child(tag); c != nil {
		return c.Value
	}
	return ""
}

// Group rebuilds the level nesting. Each level-0 record starts a top-level node.
// Records that cannot be attached before the first level-0 record are reported
// as violations; problems inside a top-level record mark that node instead.
func Group(records []Record) ([]*Node, []*apperrors.StructureViolation) {
	var (
		roots    []*Node
		orphans  []*apperrors.StructureViolation
		stack    []*Node
		orphaned bool
	)

	mark := func(root *Node, rec Record, reason string) {
		if root.Violation == nil {
			root.Violation = apperrors.NewStructureViolation(rec.Line, root.Tag, root.XRef, reason)
		}
	}

	for _, rec := range records {
		if rec.Malformed {
			if len(stack) == 0 {
				orphans = append(orphans, apperrors.NewStructureViolation(rec.Line, "", "", fmt.Sprintf("unparseable line %q", rec.Raw)))
				continue
			}
			mark(stack[0], rec, fmt.Sprintf("unparseable line %d %q", rec.Line, rec.Raw))
			continue
		}

		if rec.Level == 0 {
			n := &Node{Record: rec}
			roots = append(roots, n)
			stack = []*Node{n}
			orphaned = false
			continue
		}

		if len(stack) == 0 {
			if !orphaned {
				orphans = append(orphans, apperrors.NewStructureViolation(rec.Line, rec.Tag, rec.XRef, fmt.Sprintf("level %d record before any top-level record", rec.Level)))
				orphaned = true
			}
			continue
		}

		if rec.Level > len(stack) {
			mark(stack[0], rec, fmt.Sprintf("level %d %s under level %d", rec.Level, rec.Tag, len(stack)-1))
			continue
		}

		stack = stack[:rec.Level]
		parent := stack[len(stack)-1]

		switch rec.Tag {
		case "CONC":
			parent.Value += rec.Value
			continue
		case "CONT":
			parent.Value += "\n" + rec.Value
			continue
		}

		n := &Node{Record: rec}
		parent.Children = append(parent.Children, n)
		stack = append(stack, n)
	}

	return roots, orphans
}
