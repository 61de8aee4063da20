package memstore

import (
	"context"
	"testing"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

func TestInsertPersonIgnoresDuplicateEntity(t *testing.T) {
	ctx := context.Background()
	s := New()

	inserted, err := s.InsertPerson(ctx, store.Person{EntityID: 1, FullName: "Alice Jones"})
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = s.InsertPerson(ctx, store.Person{EntityID: 1, FullName: "Someone Else"})
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("duplicate entity_id must be ignored")
	}

	p, _ := s.Person(1)
	if p.FullName != "Alice Jones" {
		t.Errorf("full_name = %q, want original preserved", p.FullName)
	}
}

func TestEnsureSchemaResetsTimelineOnly(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.InsertOrganization(ctx, store.Organization{EntityID: 1, FullName: "Acme Corp"}); err != nil {
		t.Fatalf("InsertOrganization: %v", err)
	}
	if err := s.InsertTimelineEvent(ctx, store.TimelineEvent{EventDate: "2020-01-05"}); err != nil {
		t.Fatalf("InsertTimelineEvent: %v", err)
	}

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Organizations != 1 {
		t.Errorf("organizations = %d, want preserved", counts.Organizations)
	}
	if counts.TimelineEvents != 0 {
		t.Errorf("timeline events = %d, want 0 after reset", counts.TimelineEvents)
	}
}

func TestUpsertEnrichmentReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.UpsertEnrichment(ctx, store.Enrichment{DocumentID: 1, Title: "first"}); err != nil {
		t.Fatalf("UpsertEnrichment: %v", err)
	}
	if err := s.UpsertEnrichment(ctx, store.Enrichment{DocumentID: 1, Title: "second"}); err != nil {
		t.Fatalf("second UpsertEnrichment: %v", err)
	}

	e, ok := s.Enrichment(1)
	if !ok || e.Title != "second" {
		t.Errorf("enrichment = %+v, want replaced", e)
	}
}
