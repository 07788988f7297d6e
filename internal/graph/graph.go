// Package graph rebuilds the parent/partner graph of a collection for display.
package graph

import (
	"context"
	"fmt"

	"github.com/rcliao/family-tree/internal/collection"
	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/store"
)

// Export loads the store and returns every connected person.
// Nodes nobody is related to are pruned.
func Export(ctx context.Context, r store.Reader) ([]model.PersonNode, error) {
	individuals, err := r.GetIndividuals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load individuals: %w", err)
	}
	families, err := r.GetFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load families: %w", err)
	}

	partners := PartnerMap(families)
	nodes := make([]model.PersonNode, 0, len(individuals))
	seen := make(map[string]bool, len(individuals))
	for _, ind := range individuals {
		if seen[ind.ID] {
			continue
		}
		seen[ind.ID] = true
		nodes = append(nodes, node(ind, partners))
	}
	return Prune(nodes), nil
}

// ExportCollection opens the named collection, exports it and closes it.
// A missing collection yields *errors.CollectionNotFound.
func ExportCollection(ctx context.Context, c *collection.Collections, name string) ([]model.PersonNode, error) {
	s, err := c.Open(name)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return Export(ctx, s)
}

// PartnerMap pairs the two spouses of every family that has both.
// A person in several such families keeps the partner from the last one.
func PartnerMap(families []model.Family) map[string]string {
	m := make(map[string]string)
	for _, f := range families {
		if f.FatherID == nil || f.MotherID == nil {
			continue
		}
		m[*f.FatherID] = *f.MotherID
		m[*f.MotherID] = *f.FatherID
	}
	return m
}

// Prune drops nodes with no parent, no partner and no child.
func Prune(nodes []model.PersonNode) []model.PersonNode {
	parents := make(map[string]bool)
	for _, n := range nodes {
		if n.MotherID != nil {
			parents[*n.MotherID] = true
		}
		if n.FatherID != nil {
			parents[*n.FatherID] = true
		}
	}

	kept := make([]model.PersonNode, 0, len(nodes))
	for _, n := range nodes {
		if n.MotherID != nil || n.FatherID != nil || len(n.PartnerIDs) > 0 || parents[n.ID] {
			kept = append(kept, n)
		}
	}
	return kept
}

func node(ind model.Individual, partners map[string]string) model.PersonNode {
	pids := []string{}
	if p, ok := partners[ind.ID]; ok {
		pids = append(pids, p)
	}
	return model.PersonNode{
		ID:         ind.ID,
		Name:       ind.DisplayName(),
		Gender:     ind.Sex,
		BirthDate:  ind.BirthDate,
		BirthPlace: ind.BirthPlace,
		DeathDate:  ind.DeathDate,
		DeathPlace: ind.DeathPlace,
		Occupation: ind.Occupation,
		MotherID:   ind.MotherID,
		FatherID:   ind.FatherID,
		PartnerIDs: pids,
	}
}
