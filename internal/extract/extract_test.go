package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/family-tree/internal/gedcom"
	"github.com/rcliao/family-tree/internal/model"
)

func extractString(t *testing.T, input string) *Batch {
	t.Helper()
	recs, err := gedcom.Tokenize(strings.NewReader(input))
	require.NoError(t, err)
	return Extract(recs)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindIndividual, Classify(&gedcom.Node{Record: gedcom.Record{Tag: "INDI"}}))
	assert.Equal(t, KindFamily, Classify(&gedcom.Node{Record: gedcom.Record{Tag: "FAM"}}))
	for _, tag := range []string{"HEAD", "TRLR", "SOUR", "NOTE", "SUBM"} {
		assert.Equal(t, KindIgnored, Classify(&gedcom.Node{Record: gedcom.Record{Tag: tag}}), tag)
	}
	assert.Equal(t, "family", KindFamily.String())
}

func TestExtract_Individual(t *testing.T) {
	b := extractString(t, `0 HEAD
1 CHAR UTF-8
0 @I1@ INDI
1 NAME John  Paul /Smith/ Jr
1 SEX M
1 BIRT
2 DATE 1 JAN 1900
2 PLAC Leeds, England
1 DEAT
2 DATE 3 MAR 1970
1 OCCU Miner
0 TRLR
`)
	assert.Empty(t, b.Violations)
	assert.Equal(t, 2, b.Ignored)
	require.Len(t, b.Individuals, 1)
	assert.Equal(t, model.Individual{
		ID:         "1",
		GivenName:  "John Paul",
		FamilyName: "Smith",
		Sex:        model.SexMale,
		BirthDate:  "1 JAN 1900",
		BirthPlace: "Leeds, England",
		DeathDate:  "3 MAR 1970",
		DeathPlace: "",
		Occupation: "Miner",
	}, b.Individuals[0])
}

func TestExtract_IndividualDefaults(t *testing.T) {
	b := extractString(t, "0 @I3@ INDI\n1 SEX X\n")
	require.Len(t, b.Individuals, 1)
	ind := b.Individuals[0]
	assert.Equal(t, "", ind.GivenName)
	assert.Equal(t, "", ind.FamilyName)
	assert.Equal(t, model.SexUnknown, ind.Sex)
	assert.Equal(t, "", ind.BirthDate)
}

func TestExtract_NameParts(t *testing.T) {
	b := extractString(t, `0 @I1@ INDI
1 NAME Bob /Old/
2 GIVN Robert
2 SURN Newname
0 @I2@ INDI
1 NAME Cher
0 @I3@ INDI
1 NAME /Only/
`)
	require.Len(t, b.Individuals, 3)
	assert.Equal(t, "Robert", b.Individuals[0].GivenName)
	assert.Equal(t, "Newname", b.Individuals[0].FamilyName)
	assert.Equal(t, "Cher", b.Individuals[1].GivenName)
	assert.Equal(t, "", b.Individuals[1].FamilyName)
	assert.Equal(t, "", b.Individuals[2].GivenName)
	assert.Equal(t, "Only", b.Individuals[2].FamilyName)
}

func TestExtract_Family(t *testing.T) {
	b := extractString(t, `0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 CHIL @I4@
1 CHIL @@
1 MARR
2 DATE 5 JUN 1920
2 PLAC York
`)
	require.Len(t, b.Families, 1)
	f := b.Families[0]
	assert.Equal(t, "1", f.ID)
	require.NotNil(t, f.FatherID)
	require.NotNil(t, f.MotherID)
	assert.Equal(t, "1", *f.FatherID)
	assert.Equal(t, "2", *f.MotherID)
	assert.Equal(t, []string{"3", "4"}, f.Children)
	assert.Equal(t, "5 JUN 1920", f.MarriageDate)
	assert.Equal(t, "York", f.MarriagePlace)
}

func TestExtract_EmptyFamilyIsKept(t *testing.T) {
	b := extractString(t, "0 @F9@ FAM\n0 @F8@ FAM\n1 WIFE @I2@\n")
	require.Len(t, b.Families, 2)
	assert.Nil(t, b.Families[0].FatherID)
	assert.Nil(t, b.Families[0].MotherID)
	assert.Empty(t, b.Families[0].Children)

	assert.Nil(t, b.Families[1].FatherID, "missing husband stays null")
	assert.Equal(t, "2", *b.Families[1].MotherID)
}

func TestExtract_SpouseTakesFirst(t *testing.T) {
	b := extractString(t, "0 @F1@ FAM\n1 HUSB @I1@\n1 HUSB @I5@\n")
	require.Len(t, b.Families, 1)
	assert.Equal(t, "1", *b.Families[0].FatherID)
}

func TestExtract_EmptySpouseReferenceIsNull(t *testing.T) {
	b := extractString(t, "0 @F1@ FAM\n1 HUSB @@\n1 WIFE\n1 CHIL @I3@\n")
	require.Len(t, b.Families, 1)
	assert.Nil(t, b.Families[0].FatherID)
	assert.Nil(t, b.Families[0].MotherID)
	assert.Equal(t, []string{"3"}, b.Families[0].Children, "children survive empty spouse refs")
}

func TestExtract_SkipsBadRecordOnly(t *testing.T) {
	b := extractString(t, `0 @I1@ INDI
1 NAME Good /One/
0 @I2@ INDI
1 NAME Bad /Two/
3 DATE nowhere
0 @I3@ INDI
1 NAME Also /Good/
`)
	require.Len(t, b.Individuals, 2)
	assert.Equal(t, "1", b.Individuals[0].ID)
	assert.Equal(t, "3", b.Individuals[1].ID)
	require.Len(t, b.Violations, 1)
	assert.Equal(t, "@I2@", b.Violations[0].XRef)
	assert.Equal(t, 5, b.Violations[0].Line)
}

func TestExtract_MissingIdentifier(t *testing.T) {
	b := extractString(t, "0 INDI\n1 NAME No /Id/\n0 @@ FAM\n")
	assert.Empty(t, b.Individuals)
	assert.Empty(t, b.Families)
	require.Len(t, b.Violations, 2)
	assert.Equal(t, "missing identifier", b.Violations[0].Reason)
}

func TestExtract_DuplicateKeepsFirst(t *testing.T) {
	b := extractString(t, "0 @I1@ INDI\n1 NAME First //\n0 @I1@ INDI\n1 NAME Second //\n")
	require.Len(t, b.Individuals, 1)
	assert.Equal(t, "First", b.Individuals[0].GivenName)
}
