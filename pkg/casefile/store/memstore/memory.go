package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu sync.RWMutex

	entities  []store.Entity
	documents []store.Document

	nextPersonID int64
	nextOrgID    int64
	nextEventID  int64

	people        map[int64]store.Person       // keyed by entity ID
	organizations map[int64]store.Organization // keyed by entity ID
	enrichments   map[int64]store.Enrichment   // keyed by document ID
	events        []store.TimelineEvent
	runs          map[string]*store.Run
	runOrder      []string

	schemaInits int
}

// New creates a new in-memory store.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nextPersonID = 1
	s.nextOrgID = 1
	s.nextEventID = 1
	s.people = make(map[int64]store.Person)
	s.organizations = make(map[int64]store.Organization)
	s.enrichments = make(map[int64]store.Enrichment)
	s.events = nil
	s.runs = make(map[string]*store.Run)
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// AddEntity seeds a source entity row. Test helper, not part of the
// Store interface.
func (s *Store) AddEntity(id int64, fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities = append(s.entities, store.Entity{ID: id, FullName: fullName})
}

// AddDocument seeds a source document row. Test helper.
func (s *Store) AddDocument(id int64, fileName, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, store.Document{ID: id, FileName: fileName, Content: content})
}

// SchemaInits reports how many times EnsureSchema ran. Test helper.
func (s *Store) SchemaInits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemaInits
}

// EnsureSchema mirrors the sqlite behavior: classification tables are
// preserved, the timeline is always emptied.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.nextEventID = 1
	s.schemaInits++
	return nil
}

// Entities returns the seeded source entities.
func (s *Store) Entities(ctx context.Context) ([]store.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Entity, len(s.entities))
	copy(out, s.entities)
	return out, nil
}

// Documents returns the seeded source documents.
func (s *Store) Documents(ctx context.Context) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Document, len(s.documents))
	copy(out, s.documents)
	return out, nil
}

// InsertPerson inserts a person unless the entity is already classified.
func (s *Store) InsertPerson(ctx context.Context, p store.Person) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.people[p.EntityID]; ok {
		return false, nil
	}
	p.ID = s.nextPersonID
	s.nextPersonID++
	if p.PrimaryRole == "" {
		p.PrimaryRole = store.RoleUnknown
	}
	s.people[p.EntityID] = p
	return true, nil
}

// InsertOrganization inserts an organization unless already classified.
func (s *Store) InsertOrganization(ctx context.Context, o store.Organization) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.organizations[o.EntityID]; ok {
		return false, nil
	}
	o.ID = s.nextOrgID
	s.nextOrgID++
	s.organizations[o.EntityID] = o
	return true, nil
}

// UpdatePersonTitleRole applies the exact-name overlay.
func (s *Store) UpdatePersonTitleRole(ctx context.Context, fullName, title string, role store.Role) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for entityID, p := range s.people {
		if p.FullName == fullName {
			p.PrimaryTitle = title
			p.PrimaryRole = role
			s.people[entityID] = p
			n++
		}
	}
	return n, nil
}

// PeopleByRole returns people holding the given role, ordered by row id.
func (s *Store) PeopleByRole(ctx context.Context, role store.Role) ([]store.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Person
	for _, p := range s.people {
		if p.PrimaryRole == role {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetPersonRole updates a person's role by row id.
func (s *Store) SetPersonRole(ctx context.Context, personID int64, role store.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for entityID, p := range s.people {
		if p.ID == personID {
			p.PrimaryRole = role
			s.people[entityID] = p
			return nil
		}
	}
	return nil
}

// UpsertEnrichment replaces any prior enrichment for the document.
func (s *Store) UpsertEnrichment(ctx context.Context, e store.Enrichment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrichments[e.DocumentID] = e
	return nil
}

// DatedEnrichments joins seeded documents to dated enrichment rows.
func (s *Store) DatedEnrichments(ctx context.Context) ([]store.DatedEnrichment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.DatedEnrichment
	for _, d := range s.documents {
		e, ok := s.enrichments[d.ID]
		if !ok || e.ExtractedDate == "" {
			continue
		}
		out = append(out, store.DatedEnrichment{
			DocumentID:    d.ID,
			FileName:      d.FileName,
			DocumentType:  e.DocumentType,
			Title:         e.Title,
			ExtractedDate: e.ExtractedDate,
		})
	}
	return out, nil
}

// InsertTimelineEvent appends one event.
func (s *Store) InsertTimelineEvent(ctx context.Context, ev store.TimelineEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = s.nextEventID
	s.nextEventID++
	if ev.Significance == 0 {
		ev.Significance = 5
	}
	s.events = append(s.events, ev)
	return nil
}

// BeginRun records a new run.
func (s *Store) BeginRun(ctx context.Context, runID string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = &store.Run{ID: runID, StartedAt: startedAt, Status: "running"}
	s.runOrder = append(s.runOrder, runID)
	return nil
}

// MarkStageDone checkpoints one stage.
func (s *Store) MarkStageDone(ctx context.Context, runID, stage string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[runID]; ok {
		run.Stages = append(run.Stages, store.StageMark{Stage: stage, CompletedAt: at})
	}
	return nil
}

// FinishRun records the terminal run status.
func (s *Store) FinishRun(ctx context.Context, runID, status string, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[runID]; ok {
		run.Status = status
		run.FinishedAt = finishedAt
	}
	return nil
}

// LatestRun returns the most recently begun run.
func (s *Store) LatestRun(ctx context.Context) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runOrder) == 0 {
		return store.Run{}, false, nil
	}
	run := s.runs[s.runOrder[len(s.runOrder)-1]]
	cp := *run
	cp.Stages = append([]store.StageMark(nil), run.Stages...)
	return cp, true, nil
}

// Counts summarizes the in-memory tables.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := store.Counts{
		Entities:          int64(len(s.entities)),
		People:            int64(len(s.people)),
		Organizations:     int64(len(s.organizations)),
		EnrichedDocuments: int64(len(s.enrichments)),
		TimelineEvents:    int64(len(s.events)),
	}
	for _, e := range s.enrichments {
		if e.DocumentType != store.DocGeneric {
			c.ClassifiedDocuments++
		}
	}
	return c, nil
}

// Person returns the classified person for an entity. Test helper.
func (s *Store) Person(entityID int64) (store.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[entityID]
	return p, ok
}

// PersonByName returns the first person matching the exact name. Test helper.
func (s *Store) PersonByName(fullName string) (store.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found store.Person
		ok    bool
	)
	for _, p := range s.people {
		if p.FullName == fullName && (!ok || p.ID < found.ID) {
			found = p
			ok = true
		}
	}
	return found, ok
}

// Organization returns the classified organization for an entity. Test helper.
func (s *Store) Organization(entityID int64) (store.Organization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.organizations[entityID]
	return o, ok
}

// OrganizationByName returns the first organization matching the exact
// name. Test helper.
func (s *Store) OrganizationByName(fullName string) (store.Organization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.organizations {
		if o.FullName == fullName {
			return o, true
		}
	}
	return store.Organization{}, false
}

// Enrichment returns the enrichment row for a document. Test helper.
func (s *Store) Enrichment(documentID int64) (store.Enrichment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrichments[documentID]
	return e, ok
}

// Events returns all timeline events. Test helper.
func (s *Store) Events() []store.TimelineEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.TimelineEvent, len(s.events))
	copy(out, s.events)
	return out
}
