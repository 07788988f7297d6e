package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strp(s string) *string { return &s }

// seedFamily writes father 1, mother 2 and child 3 joined by family 10.
func seedFamily(t *testing.T, s *SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	for _, ind := range []model.Individual{
		{ID: "1", GivenName: "John", FamilyName: "Smith", Sex: model.SexMale},
		{ID: "2", GivenName: "Mary", FamilyName: "Jones", Sex: model.SexFemale},
		{ID: "3", Sex: model.SexUnknown},
	} {
		_, err := s.UpsertIndividual(ctx, ind)
		require.NoError(t, err)
	}
	_, err := s.UpsertFamily(ctx, model.Family{ID: "10", FatherID: strp("1"), MotherID: strp("2"), MarriageDate: "1 JAN 1900"})
	require.NoError(t, err)
	_, err = s.AddChildMembership(ctx, "10", "3")
	require.NoError(t, err)
}

func TestUpsertIndividualAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	added, err := s.UpsertIndividual(ctx, model.Individual{
		ID: "123", GivenName: "Ada", FamilyName: "Lovelace", Sex: model.SexFemale,
		BirthDate: "10 DEC 1815", BirthPlace: "London", Occupation: "Mathematician",
	})
	require.NoError(t, err)
	assert.True(t, added)

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "123", all[0].ID)
	assert.Equal(t, "Ada", all[0].GivenName)
	assert.Equal(t, model.SexFemale, all[0].Sex)
	assert.Equal(t, "London", all[0].BirthPlace)
	assert.Nil(t, all[0].MotherID)
	assert.Nil(t, all[0].FatherID)
}

func TestUpsertIndividualFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.UpsertIndividual(ctx, model.Individual{ID: "1", GivenName: "First"})
	require.NoError(t, err)
	added, err := s.UpsertIndividual(ctx, model.Individual{ID: "1", GivenName: "Second"})
	require.NoError(t, err)
	assert.False(t, added, "second insert should be ignored")

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "First", all[0].GivenName)
}

func TestUpsertFamilyIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	added, err := s.UpsertFamily(ctx, model.Family{ID: "5", FatherID: strp("1")})
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.UpsertFamily(ctx, model.Family{ID: "5", MotherID: strp("2")})
	require.NoError(t, err)
	assert.False(t, added)

	fams, err := s.GetFamilies(ctx)
	require.NoError(t, err)
	require.Len(t, fams, 1)
	require.NotNil(t, fams[0].FatherID)
	assert.Equal(t, "1", *fams[0].FatherID)
	assert.Nil(t, fams[0].MotherID)
}

func TestAddChildMembershipIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedFamily(t, s)

	added, err := s.AddChildMembership(ctx, "10", "3")
	require.NoError(t, err)
	assert.False(t, added)

	members, err := s.GetMemberships(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Membership{{FamilyID: "10", ChildID: "3"}}, members)
}

func TestMembershipRequiresFamily(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AddChildMembership(ctx, "missing", "3")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))
}

func TestDerivedParents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedFamily(t, s)

	mother, father, err := s.GetParents(ctx, "3")
	require.NoError(t, err)
	require.NotNil(t, mother)
	require.NotNil(t, father)
	assert.Equal(t, "2", *mother)
	assert.Equal(t, "1", *father)

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	byID := map[string]model.Individual{}
	for _, ind := range all {
		byID[ind.ID] = ind
	}
	require.NotNil(t, byID["3"].MotherID)
	assert.Equal(t, "2", *byID["3"].MotherID)
	assert.Equal(t, "1", *byID["3"].FatherID)
	assert.Nil(t, byID["1"].FatherID)
}

func TestGetParentsWithoutMembership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mother, father, err := s.GetParents(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, mother)
	assert.Nil(t, father)
}

func TestChildClaimedTwiceUsesLastFamily(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedFamily(t, s)

	_, err := s.UpsertFamily(ctx, model.Family{ID: "11", FatherID: strp("7"), MotherID: strp("8")})
	require.NoError(t, err)
	_, err = s.AddChildMembership(ctx, "11", "3")
	require.NoError(t, err)

	mother, father, err := s.GetParents(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "8", *mother)
	assert.Equal(t, "7", *father)

	ind, err := s.GetIndividual(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "8", *ind.MotherID)

	fams, err := s.FamiliesOfChild(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "11"}, fams)

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3, "a child claimed twice is still one individual")
}

func TestGetFamiliesChildrenInOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.UpsertFamily(ctx, model.Family{ID: "1"})
	require.NoError(t, err)
	for _, c := range []string{"30", "10", "20"} {
		_, err := s.AddChildMembership(ctx, "1", c)
		require.NoError(t, err)
	}

	fams, err := s.GetFamilies(ctx)
	require.NoError(t, err)
	require.Len(t, fams, 1)
	assert.Equal(t, []string{"30", "10", "20"}, fams[0].Children)
}

func TestRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	run := &IngestionRun{Collection: "tree", Source: "tree.ged", StartedAt: time.Now(), FinishedAt: time.Now(), Individuals: 1}
	err := s.RunInTx(ctx, func(tx Writer) error {
		if _, err := tx.UpsertIndividual(ctx, model.Individual{ID: "1"}); err != nil {
			return err
		}
		return tx.RecordRun(ctx, run)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, "tree.ged", runs[0].Source)
	assert.Equal(t, 1, runs[0].Individuals)
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(tx Writer) error {
		if _, err := tx.UpsertIndividual(ctx, model.Individual{ID: "1"}); err != nil {
			return err
		}
		if _, err := tx.UpsertFamily(ctx, model.Family{ID: "2"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	fams, err := s.GetFamilies(ctx)
	require.NoError(t, err)
	assert.Empty(t, fams)
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.Panics(t, func() {
		s.RunInTx(ctx, func(tx Writer) error {
			tx.UpsertIndividual(ctx, model.Individual{ID: "1"})
			panic("boom")
		})
	})

	all, err := s.GetIndividuals(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedFamily(t, s)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Individuals)
	assert.Equal(t, 1, st.Families)
	assert.Equal(t, 1, st.Memberships)
	assert.Equal(t, 1, st.Partnerships)
	assert.Equal(t, 0, st.MultiClaimed)
	assert.Equal(t, s.Path(), st.DBPath)
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestGetIndividualUnknown(t *testing.T) {
	s := newTestStore(t)
	seedFamily(t, s)

	_, err := s.GetIndividual(context.Background(), "99")
	require.Error(t, err)
	var nf *apperrors.IndividualNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "99", nf.ID)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	assert.False(t, apperrors.IsErrorType(err, apperrors.ErrorTypeStorage))
}
