package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	apperrors "github.com/rcliao/family-tree/internal/errors"
	"github.com/rcliao/family-tree/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	sqlWriter
	db   *sql.DB
	path string
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewStorageError("create db dir", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, apperrors.NewStorageError("open db", err)
	}

	s := &SQLiteStore{
		sqlWriter: sqlWriter{
			q:       db,
			entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		},
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("migrate", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS individuals (
		id          TEXT PRIMARY KEY,
		given_name  TEXT NOT NULL DEFAULT '',
		family_name TEXT NOT NULL DEFAULT '',
		sex         TEXT NOT NULL DEFAULT 'unknown',
		birth_date  TEXT NOT NULL DEFAULT '',
		birth_place TEXT NOT NULL DEFAULT '',
		death_date  TEXT NOT NULL DEFAULT '',
		death_place TEXT NOT NULL DEFAULT '',
		occupation  TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_individuals_name ON individuals(family_name, given_name);

	CREATE TABLE IF NOT EXISTS families (
		id             TEXT PRIMARY KEY,
		father_id      TEXT,
		mother_id      TEXT,
		marriage_date  TEXT NOT NULL DEFAULT '',
		marriage_place TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_families_father ON families(father_id);
	CREATE INDEX IF NOT EXISTS idx_families_mother ON families(mother_id);

	CREATE TABLE IF NOT EXISTS family_children (
		family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		child_id  TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		PRIMARY KEY (family_id, child_id)
	);
	CREATE INDEX IF NOT EXISTS idx_family_children_child ON family_children(child_id);

	CREATE TABLE IF NOT EXISTS ingestion_runs (
		id          TEXT PRIMARY KEY,
		collection  TEXT NOT NULL,
		source      TEXT NOT NULL DEFAULT '',
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		individuals INTEGER NOT NULL DEFAULT 0,
		families    INTEGER NOT NULL DEFAULT 0,
		memberships INTEGER NOT NULL DEFAULT 0,
		skipped     INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RunInTx runs fn inside one transaction. A panic in fn rolls back and re-panics.
func (s *SQLiteStore) RunInTx(ctx context.Context, fn func(tx Writer) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin tx", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(&sqlWriter{q: tx, entropy: s.entropy}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit tx", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqlWriter implements Writer against a database or a transaction.
type sqlWriter struct {
	q       querier
	entropy io.Reader // monotonic, so run IDs sort by creation
}

func (w *sqlWriter) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), w.entropy).String()
}

func (w *sqlWriter) UpsertIndividual(ctx context.Context, ind model.Individual) (bool, error) {
	sex := ind.Sex
	if sex == "" {
		sex = model.SexUnknown
	}
	res, err := w.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO individuals (id, given_name, family_name, sex, birth_date, birth_place, death_date, death_place, occupation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ind.ID, ind.GivenName, ind.FamilyName, string(sex),
		ind.BirthDate, ind.BirthPlace, ind.DeathDate, ind.DeathPlace, ind.Occupation)
	if err != nil {
		return false, apperrors.NewStorageError("insert individual "+ind.ID, err)
	}
	return inserted(res)
}

func (w *sqlWriter) UpsertFamily(ctx context.Context, fam model.Family) (bool, error) {
	res, err := w.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO families (id, father_id, mother_id, marriage_date, marriage_place)
		 VALUES (?, ?, ?, ?, ?)`,
		fam.ID, nullable(fam.FatherID), nullable(fam.MotherID), fam.MarriageDate, fam.MarriagePlace)
	if err != nil {
		return false, apperrors.NewStorageError("insert family "+fam.ID, err)
	}
	return inserted(res)
}

func (w *sqlWriter) AddChildMembership(ctx context.Context, familyID, childID string) (bool, error) {
	res, err := w.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO family_children (family_id, child_id, seq)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq) + 1, 0) FROM family_children WHERE family_id = ?))`,
		familyID, childID, familyID)
	if err != nil {
		return false, apperrors.NewStorageError(fmt.Sprintf("insert membership %s/%s", familyID, childID), err)
	}
	return inserted(res)
}

func (w *sqlWriter) RecordRun(ctx context.Context, run *IngestionRun) error {
	if run.ID == "" {
		run.ID = w.newID()
	}
	_, err := w.q.ExecContext(ctx,
		`INSERT INTO ingestion_runs (id, collection, source, started_at, finished_at, individuals, families, memberships, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Collection, run.Source,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Individuals, run.Families, run.Memberships, run.Skipped)
	if err != nil {
		return apperrors.NewStorageError("insert ingestion run", err)
	}
	return nil
}

// lineage selects, per individual, the membership added last.
const lineage = `
	FROM individuals i
	LEFT JOIN family_children fc
	       ON fc.rowid = (SELECT MAX(rowid) FROM family_children WHERE child_id = i.id)
	LEFT JOIN families f ON f.id = fc.family_id`

const individualColumns = `i.id, i.given_name, i.family_name, i.sex, i.birth_date, i.birth_place,
	i.death_date, i.death_place, i.occupation, f.mother_id, f.father_id`

func (s *SQLiteStore) GetIndividuals(ctx context.Context) ([]model.Individual, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+individualColumns+lineage+` ORDER BY i.rowid`)
	if err != nil {
		return nil, apperrors.NewStorageError("scan individuals", err)
	}
	defer rows.Close()

	var individuals []model.Individual
	for rows.Next() {
		ind, err := scanIndividual(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scan individuals", err)
		}
		individuals = append(individuals, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("scan individuals", err)
	}
	return individuals, nil
}

// GetIndividual returns one individual with derived parents.
func (s *SQLiteStore) GetIndividual(ctx context.Context, id string) (*model.Individual, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+individualColumns+lineage+` WHERE i.id = ?`, id)
	ind, err := scanIndividual(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewIndividualNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get individual "+id, err)
	}
	return &ind, nil
}

func (s *SQLiteStore) GetFamilies(ctx context.Context) ([]model.Family, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, father_id, mother_id, marriage_date, marriage_place FROM families ORDER BY rowid`)
	if err != nil {
		return nil, apperrors.NewStorageError("scan families", err)
	}
	defer rows.Close()

	var families []model.Family
	index := map[string]int{}
	for rows.Next() {
		var f model.Family
		var father, mother sql.NullString
		if err := rows.Scan(&f.ID, &father, &mother, &f.MarriageDate, &f.MarriagePlace); err != nil {
			return nil, apperrors.NewStorageError("scan families", err)
		}
		f.FatherID = ptr(father)
		f.MotherID = ptr(mother)
		index[f.ID] = len(families)
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("scan families", err)
	}
	rows.Close()

	members, err := s.GetMemberships(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if i, ok := index[m.FamilyID]; ok {
			families[i].Children = append(families[i].Children, m.ChildID)
		}
	}
	return families, nil
}

func (s *SQLiteStore) GetParents(ctx context.Context, childID string) (mother, father *string, err error) {
	var m, f sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT f.mother_id, f.father_id
		 FROM family_children fc JOIN families f ON f.id = fc.family_id
		 WHERE fc.child_id = ?
		 ORDER BY fc.rowid DESC LIMIT 1`, childID).Scan(&m, &f)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, apperrors.NewStorageError("get parents "+childID, err)
	}
	return ptr(m), ptr(f), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIndividual(row scanner) (model.Individual, error) {
	var ind model.Individual
	var sex string
	var mother, father sql.NullString

	err := row.Scan(
		&ind.ID, &ind.GivenName, &ind.FamilyName, &sex,
		&ind.BirthDate, &ind.BirthPlace, &ind.DeathDate, &ind.DeathPlace,
		&ind.Occupation, &mother, &father,
	)
	if err != nil {
		return ind, err
	}
	ind.Sex = model.Sex(sex)
	ind.MotherID = ptr(mother)
	ind.FatherID = ptr(father)
	return ind, nil
}

func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.NewStorageError("rows affected", err)
	}
	return n > 0, nil
}

func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
