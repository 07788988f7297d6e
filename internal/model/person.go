// Package model defines the core genealogy data types.
package model

import "strings"

// Sex is the recorded sex of an individual.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// ParseSex maps a SEX record value to a Sex. Anything other than M or F is unknown.
func ParseSex(v string) Sex {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "M":
		return SexMale
	case "F":
		return SexFemale
	default:
		return SexUnknown
	}
}

// Individual represents a stored person.
// MotherID and FatherID are derived from family membership and are never written directly.
type Individual struct {
	ID         string  `json:"id"`
	GivenName  string  `json:"given_name"`
	FamilyName string  `json:"family_name"`
	Sex        Sex     `json:"sex"`
	BirthDate  string  `json:"birth_date"`
	BirthPlace string  `json:"birth_place"`
	DeathDate  string  `json:"death_date"`
	DeathPlace string  `json:"death_place"`
	Occupation string  `json:"occupation"`
	MotherID   *string `json:"mother_id"`
	FatherID   *string `json:"father_id"`
}

// DisplayName joins the given and family names with a single space.
func (i Individual) DisplayName() string {
	return i.GivenName + " " + i.FamilyName
}

// Family represents a union of at most two spouses and their children.
type Family struct {
	ID            string   `json:"id"`
	FatherID      *string  `json:"father_id"`
	MotherID      *string  `json:"mother_id"`
	MarriageDate  string   `json:"marriage_date"`
	MarriagePlace string   `json:"marriage_place"`
	Children      []string `json:"children,omitempty"`
}

// Membership is the authoritative (family, child) edge.
type Membership struct {
	FamilyID string `json:"family_id"`
	ChildID  string `json:"child_id"`
}

// PersonNode is the export-time view of an individual with its relationship pointers.
type PersonNode struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Gender     Sex      `json:"gender"`
	BirthDate  string   `json:"birth_date"`
	BirthPlace string   `json:"birth_place"`
	DeathDate  string   `json:"death_date"`
	DeathPlace string   `json:"death_place"`
	Occupation string   `json:"occupation"`
	MotherID   *string  `json:"mid"`
	FatherID   *string  `json:"fid"`
	PartnerIDs []string `json:"pids"`
}
