package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled. The source tables
// (entities, documents) must already exist; Open does not create them.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the derived tables and indexes. The three
// classification tables are created only if absent; timeline_events is
// dropped and rebuilt unconditionally, so prior event rows do not
// survive a run.
func (s *sqliteStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS people (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id INTEGER UNIQUE NOT NULL,
	full_name TEXT NOT NULL,
	name_variants TEXT,
	prefix TEXT,
	first_name TEXT,
	middle_name TEXT,
	last_name TEXT,
	suffix TEXT,
	primary_title TEXT,
	primary_role TEXT DEFAULT 'Unknown',
	affiliations TEXT,
	birth_date TEXT,
	death_date TEXT,
	nationality TEXT,
	locations TEXT,
	FOREIGN KEY(entity_id) REFERENCES entities(id)
);

CREATE TABLE IF NOT EXISTS organizations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id INTEGER UNIQUE NOT NULL,
	full_name TEXT NOT NULL,
	name_variants TEXT,
	organization_type TEXT,
	industry TEXT,
	founded_date TEXT,
	dissolved_date TEXT,
	headquarters_location TEXT,
	key_people TEXT,
	parent_organization_id INTEGER,
	FOREIGN KEY(entity_id) REFERENCES entities(id)
);

CREATE TABLE IF NOT EXISTS document_enrichment (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER UNIQUE NOT NULL,
	document_type TEXT,
	document_subtype TEXT,
	title TEXT,
	summary TEXT,
	extracted_date TEXT,
	date_range_start TEXT,
	date_range_end TEXT,
	sender TEXT,
	recipients TEXT,
	subject TEXT,
	case_number TEXT,
	court TEXT,
	parties TEXT,
	locations TEXT,
	amounts TEXT,
	confidence_score REAL,
	FOREIGN KEY(document_id) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_run_stages (
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	PRIMARY KEY(run_id, stage),
	FOREIGN KEY(run_id) REFERENCES pipeline_runs(run_id)
);

DROP TABLE IF EXISTS timeline_events;

CREATE TABLE timeline_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_date TEXT NOT NULL,
	event_type TEXT,
	title TEXT,
	description TEXT,
	location TEXT,
	people_involved TEXT,
	organizations_involved TEXT,
	document_ids TEXT,
	significance_score INTEGER DEFAULT 5,
	verified INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_people_entity ON people(entity_id);
CREATE INDEX IF NOT EXISTS idx_people_name ON people(full_name);
CREATE INDEX IF NOT EXISTS idx_orgs_entity ON organizations(entity_id);
CREATE INDEX IF NOT EXISTS idx_orgs_name ON organizations(full_name);
CREATE INDEX IF NOT EXISTS idx_enrichment_doc ON document_enrichment(document_id);
CREATE INDEX IF NOT EXISTS idx_enrichment_type ON document_enrichment(document_type);
CREATE INDEX IF NOT EXISTS idx_timeline_date ON timeline_events(event_date);
CREATE INDEX IF NOT EXISTS idx_timeline_type ON timeline_events(event_type);
`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Entities returns all rows of the source entities table.
func (s *sqliteStore) Entities(ctx context.Context) ([]store.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, full_name FROM entities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ents []store.Entity
	for rows.Next() {
		var e store.Entity
		if err := rows.Scan(&e.ID, &e.FullName); err != nil {
			return nil, err
		}
		ents = append(ents, e)
	}
	return ents, rows.Err()
}

// Documents returns all rows of the source documents table.
func (s *sqliteStore) Documents(ctx context.Context) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, file_name, content FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			d        store.Document
			fileName sql.NullString
			content  sql.NullString
		)
		if err := rows.Scan(&d.ID, &fileName, &content); err != nil {
			return nil, err
		}
		d.FileName = fileName.String
		d.Content = content.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// InsertPerson writes one person row keyed on entity_id. The insert is
// OR IGNORE: an existing classification for the entity is preserved,
// not updated. Returns whether a row was actually inserted.
func (s *sqliteStore) InsertPerson(ctx context.Context, p store.Person) (bool, error) {
	variants, err := json.Marshal(emptySlice(p.NameVariants))
	if err != nil {
		return false, err
	}
	affiliations, err := json.Marshal(emptySlice(p.Affiliations))
	if err != nil {
		return false, err
	}
	locations, err := json.Marshal(emptySlice(p.Locations))
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO people (
	entity_id, full_name, name_variants, prefix, first_name, middle_name,
	last_name, suffix, primary_title, primary_role, affiliations,
	birth_date, death_date, nationality, locations
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, p.EntityID, p.FullName, string(variants), p.Prefix, p.FirstName, p.MiddleName,
		p.LastName, p.Suffix, p.PrimaryTitle, string(roleOrUnknown(p.PrimaryRole)),
		string(affiliations), p.BirthDate, p.DeathDate, p.Nationality, string(locations))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertOrganization writes one organization row keyed on entity_id,
// with the same OR IGNORE semantics as InsertPerson.
func (s *sqliteStore) InsertOrganization(ctx context.Context, o store.Organization) (bool, error) {
	variants, err := json.Marshal(emptySlice(o.NameVariants))
	if err != nil {
		return false, err
	}
	keyPeople, err := json.Marshal(emptySlice(o.KeyPeople))
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO organizations (
	entity_id, full_name, name_variants, organization_type, industry,
	founded_date, dissolved_date, headquarters_location, key_people,
	parent_organization_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, o.EntityID, o.FullName, string(variants), o.OrganizationType, o.Industry,
		o.FoundedDate, o.DissolvedDate, o.Headquarters, string(keyPeople), o.ParentOrgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdatePersonTitleRole sets title and role for people whose full name
// matches exactly (case-sensitive). Returns the number of rows changed.
func (s *sqliteStore) UpdatePersonTitleRole(ctx context.Context, fullName, title string, role store.Role) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE people SET primary_title = ?, primary_role = ? WHERE full_name = ?;
`, title, string(role), fullName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PeopleByRole returns all people currently holding the given role.
func (s *sqliteStore) PeopleByRole(ctx context.Context, role store.Role) ([]store.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, entity_id, full_name, primary_title, primary_role
FROM people
WHERE primary_role = ?
ORDER BY id;
`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []store.Person
	for rows.Next() {
		var (
			p     store.Person
			title sql.NullString
			r     string
		)
		if err := rows.Scan(&p.ID, &p.EntityID, &p.FullName, &title, &r); err != nil {
			return nil, err
		}
		p.PrimaryTitle = title.String
		p.PrimaryRole = store.Role(r)
		people = append(people, p)
	}
	return people, rows.Err()
}

// SetPersonRole updates a single person's role by row id.
func (s *sqliteStore) SetPersonRole(ctx context.Context, personID int64, role store.Role) error {
	_, err := s.db.ExecContext(ctx, `UPDATE people SET primary_role = ? WHERE id = ?`, string(role), personID)
	return err
}

// UpsertEnrichment writes one enrichment row keyed on document_id.
// INSERT OR REPLACE: re-running the classifier fully overwrites the
// prior row rather than accumulating duplicates.
func (s *sqliteStore) UpsertEnrichment(ctx context.Context, e store.Enrichment) error {
	recipients, err := json.Marshal(emptySlice(e.Recipients))
	if err != nil {
		return err
	}
	parties, err := json.Marshal(emptySlice(e.Parties))
	if err != nil {
		return err
	}
	locations, err := json.Marshal(emptySlice(e.Locations))
	if err != nil {
		return err
	}
	amounts, err := json.Marshal(emptySlice(e.Amounts))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO document_enrichment (
	document_id, document_type, document_subtype, title, summary,
	extracted_date, date_range_start, date_range_end, sender, recipients,
	subject, case_number, court, parties, locations, amounts, confidence_score
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, e.DocumentID, string(e.DocumentType), e.Subtype, e.Title, e.Summary,
		e.ExtractedDate, e.DateRangeStart, e.DateRangeEnd, e.Sender, string(recipients),
		e.Subject, e.CaseNumber, e.Court, string(parties), string(locations),
		string(amounts), e.Confidence)
	return err
}

// DatedEnrichments joins documents to their enrichment records,
// returning only rows carrying an extracted date.
func (s *sqliteStore) DatedEnrichments(ctx context.Context) ([]store.DatedEnrichment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT d.id, d.file_name, e.document_type, e.title, e.extracted_date
FROM documents d
JOIN document_enrichment e ON e.document_id = d.id
WHERE e.extracted_date IS NOT NULL AND e.extracted_date != ''
ORDER BY d.id;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.DatedEnrichment
	for rows.Next() {
		var (
			de       store.DatedEnrichment
			fileName sql.NullString
			docType  sql.NullString
			title    sql.NullString
		)
		if err := rows.Scan(&de.DocumentID, &fileName, &docType, &title, &de.ExtractedDate); err != nil {
			return nil, err
		}
		de.FileName = fileName.String
		de.DocumentType = store.DocType(docType.String)
		de.Title = title.String
		out = append(out, de)
	}
	return out, rows.Err()
}

// InsertTimelineEvent appends one event row. The table has no natural
// key; EnsureSchema rebuilding it each run is what prevents duplicates.
func (s *sqliteStore) InsertTimelineEvent(ctx context.Context, ev store.TimelineEvent) error {
	people, err := json.Marshal(emptySlice(ev.People))
	if err != nil {
		return err
	}
	orgs, err := json.Marshal(emptySlice(ev.Organizations))
	if err != nil {
		return err
	}
	docIDs := ev.DocumentIDs
	if docIDs == nil {
		docIDs = []int64{}
	}
	ids, err := json.Marshal(docIDs)
	if err != nil {
		return err
	}

	significance := ev.Significance
	if significance == 0 {
		significance = 5
	}
	verified := 0
	if ev.Verified {
		verified = 1
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO timeline_events (
	event_date, event_type, title, description, location,
	people_involved, organizations_involved, document_ids,
	significance_score, verified
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`, ev.EventDate, string(ev.EventType), ev.Title, ev.Description, ev.Location,
		string(people), string(orgs), string(ids), significance, verified)
	return err
}

// BeginRun records the start of a pipeline run.
func (s *sqliteStore) BeginRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO pipeline_runs (run_id, started_at, status) VALUES (?, ?, 'running');
`, runID, startedAt.UTC().Format(time.RFC3339))
	return err
}

// MarkStageDone checkpoints completion of one stage within a run.
func (s *sqliteStore) MarkStageDone(ctx context.Context, runID, stage string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO pipeline_run_stages (run_id, stage, completed_at) VALUES (?, ?, ?);
`, runID, stage, at.UTC().Format(time.RFC3339))
	return err
}

// FinishRun records the terminal status of a run.
func (s *sqliteStore) FinishRun(ctx context.Context, runID, status string, finishedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE pipeline_runs SET status = ?, finished_at = ? WHERE run_id = ?;
`, status, finishedAt.UTC().Format(time.RFC3339), runID)
	return err
}

// LatestRun returns the most recent pipeline run with its stage marks.
func (s *sqliteStore) LatestRun(ctx context.Context) (store.Run, bool, error) {
	var (
		run      store.Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT run_id, started_at, finished_at, status
FROM pipeline_runs
ORDER BY started_at DESC, run_id DESC
LIMIT 1;
`).Scan(&run.ID, &started, &finished, &run.Status)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}

	if t, perr := time.Parse(time.RFC3339, started); perr == nil {
		run.StartedAt = t
	}
	if finished.Valid {
		if t, perr := time.Parse(time.RFC3339, finished.String); perr == nil {
			run.FinishedAt = t
		}
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT stage, completed_at FROM pipeline_run_stages WHERE run_id = ? ORDER BY completed_at;
`, run.ID)
	if err != nil {
		return store.Run{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mark store.StageMark
			at   string
		)
		if err := rows.Scan(&mark.Stage, &at); err != nil {
			return store.Run{}, false, err
		}
		if t, perr := time.Parse(time.RFC3339, at); perr == nil {
			mark.CompletedAt = t
		}
		run.Stages = append(run.Stages, mark)
	}
	return run, true, rows.Err()
}

// Counts summarizes source and derived table sizes for reporting.
func (s *sqliteStore) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	queries := []struct {
		dst   *int64
		query string
	}{
		{&c.Entities, `SELECT COUNT(*) FROM entities`},
		{&c.People, `SELECT COUNT(*) FROM people`},
		{&c.Organizations, `SELECT COUNT(*) FROM organizations`},
		{&c.EnrichedDocuments, `SELECT COUNT(*) FROM document_enrichment`},
		{&c.TimelineEvents, `SELECT COUNT(*) FROM timeline_events`},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return store.Counts{}, err
		}
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM document_enrichment WHERE document_type != ?`,
		string(store.DocGeneric)).Scan(&c.ClassifiedDocuments)
	if err != nil {
		return store.Counts{}, err
	}
	return c, nil
}

func roleOrUnknown(r store.Role) store.Role {
	if r == "" {
		return store.RoleUnknown
	}
	return r
}

func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
