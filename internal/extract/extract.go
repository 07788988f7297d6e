// Package extract turns grouped records into individuals and families.
package extract

import (
	"strings"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/gedcom"
	"github.com/rcliao/family-tree/internal/model"
)

// Kind classifies a top-level record.
type Kind int

const (
	KindIgnored Kind = iota
	KindIndividual
	KindFamily
)

func (k Kind) String() string {
	switch k {
	case KindIndividual:
		return "individual"
	case KindFamily:
		return "family"
	default:
		return "ignored"
	}
}

// Classify decides what a top-level record is before any field is read.
func Classify(n *gedcom.Node) Kind {
	switch n.Tag {
	case "INDI":
		return KindIndividual
	case "FAM":
		return KindFamily
	default:
		return KindIgnored
	}
}

// Batch is the result of extracting one record stream.
type Batch struct {
	Individuals []model.Individual
	Families    []model.Family
	Ignored     int
	Violations  []*apperrors.StructureViolation
}

// Extract groups records and extracts every individual and family.
// A record that cannot be extracted is skipped and reported in Violations.
func Extract(records []gedcom.Record) *Batch {
	roots, orphans := gedcom.Group(records)
	b := &Batch{Violations: orphans}

	seenIndi := map[string]bool{}
	seenFam := map[string]bool{}

	for _, n := range roots {
		kind := Classify(n)
		if kind == KindIgnored {
			b.Ignored++
			continue
		}
		if n.Violation != nil {
			b.Violations = append(b.Violations, n.Violation)
			continue
		}
		id, ok := gedcom.NormalizeID(n.XRef)
		if !ok {
			b.Violations = append(b.Violations, apperrors.NewStructureViolation(n.Line, n.Tag, n.XRef, "missing identifier"))
			continue
		}

		switch kind {
		case KindIndividual:
			if seenIndi[id] {
				continue
			}
			seenIndi[id] = true
			b.Individuals = append(b.Individuals, individual(id, n))
		case KindFamily:
			if seenFam[id] {
				continue
			}
			seenFam[id] = true
			b.Families = append(b.Families, family(id, n))
		}
	}
	return b
}

func individual(id string, n *gedcom.Node) model.Individual {
	ind := model.Individual{
		ID:         id,
		Sex:        model.ParseSex(n.ChildValue("SEX")),
		Occupation: strings.TrimSpace(n.ChildValue("OCCU")),
	}
	if name := n.Child("NAME"); name != nil {
		ind.GivenName, ind.FamilyName = parseName(name)
	}
	ind.BirthDate, ind.BirthPlace = event(n.Child("BIRT"))
	ind.DeathDate, ind.DeathPlace = event(n.Child("DEAT"))
	return ind
}

func family(id string, n *gedcom.Node) model.Family {
	fam := model.Family{
		ID:       id,
		FatherID: firstRef(n.ChildrenByTag("HUSB")),
		MotherID: firstRef(n.ChildrenByTag("WIFE")),
	}
	for _, c := range n.ChildrenByTag("CHIL") {
		if child, ok := gedcom.NormalizeID(c.Value); ok {
			fam.Children = append(fam.Children, child)
		}
	}
	fam.MarriageDate, fam.MarriagePlace = event(n.Child("MARR"))
	return fam
}

// firstRef returns the first spouse reference, or nil when the list is empty.
func firstRef(nodes []*gedcom.Node) *string {
	if len(nodes) == 0 {
		return nil
	}
	return gedcom.NormalizeRef(nodes[0].Value)
}

// event reads the nested DATE and PLAC of a BIRT, DEAT or MARR record.
func event(n *gedcom.Node) (date, place string) {
	if n == nil {
		return "", ""
	}
	return strings.TrimSpace(n.ChildValue("DATE")), strings.TrimSpace(n.ChildValue("PLAC"))
}

// parseName splits "Given /Family/ suffix" and lets GIVN and SURN override the parts.
func parseName(n *gedcom.Node) (given, family string) {
	v := n.Value
	if i := strings.Index(v, "/"); i >= 0 {
		given = v[:i]
		family = v[i+1:]
		if j := strings.Index(family, "/"); j >= 0 {
			family = family[:j]
		}
	} else {
		given = v
	}
	given = strings.Join(strings.Fields(given), " ")
	family = strings.TrimSpace(family)

	if g := n.Child("GIVN"); g != nil {
		given = strings.TrimSpace(g.Value)
	}
	if s := n.Child("SURN"); s != nil {
		family = strings.TrimSpace(s.Value)
	}
	return given, family
}
