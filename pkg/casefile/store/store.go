package store

import (
	"context"
	"time"
)

// Store is the main interface for reading source rows and persisting
// enrichment output. The entities and documents tables are owned by the
// upstream ingestion process and are read-only here; the four derived
// tables (people, organizations, document_enrichment, timeline_events)
// plus the run-checkpoint tables are owned by this pipeline.
type Store interface {
	Close() error

	// Schema
	EnsureSchema(ctx context.Context) error

	// Source rows (read-only)
	Entities(ctx context.Context) ([]Entity, error)
	Documents(ctx context.Context) ([]Document, error)

	// People & organizations
	InsertPerson(ctx context.Context, p Person) (bool, error)
	InsertOrganization(ctx context.Context, o Organization) (bool, error)
	UpdatePersonTitleRole(ctx context.Context, fullName, title string, role Role) (int64, error)
	PeopleByRole(ctx context.Context, role Role) ([]Person, error)
	SetPersonRole(ctx context.Context, personID int64, role Role) error

	// Document enrichment
	UpsertEnrichment(ctx context.Context, e Enrichment) error
	DatedEnrichments(ctx context.Context) ([]DatedEnrichment, error)

	// Timeline
	InsertTimelineEvent(ctx context.Context, ev TimelineEvent) error

	// Run checkpoints
	BeginRun(ctx context.Context, runID string, startedAt time.Time) error
	MarkStageDone(ctx context.Context, runID, stage string, at time.Time) error
	FinishRun(ctx context.Context, runID, status string, finishedAt time.Time) error
	LatestRun(ctx context.Context) (Run, bool, error)

	// Reporting
	Counts(ctx context.Context) (Counts, error)
}

// Entity is a raw named record from the upstream scrape, person or
// organization undetermined.
type Entity struct {
	ID       int64
	FullName string
}

// Document is a raw source document.
type Document struct {
	ID       int64
	FileName string
	Content  string
}

// Role is the closed set of person roles assigned by the annotator.
type Role string

const (
	RolePolitical  Role = "Political"
	RoleLegal      Role = "Legal"
	RoleBusiness   Role = "Business"
	RoleAcademic   Role = "Academic"
	RoleMedia      Role = "Media"
	RoleSocial     Role = "Social"
	RoleIndividual Role = "Individual"
	RoleUnknown    Role = "Unknown"
)

// Person is an entity classified as a human being.
type Person struct {
	ID           int64
	EntityID     int64
	FullName     string
	NameVariants []string
	Prefix       string
	FirstName    string
	MiddleName   string
	LastName     string
	Suffix       string
	PrimaryTitle string
	PrimaryRole  Role
	Affiliations []string
	BirthDate    string
	DeathDate    string
	Nationality  string
	Locations    []string
}

// Organization is an entity classified as an institution.
type Organization struct {
	ID               int64
	EntityID         int64
	FullName         string
	NameVariants     []string
	OrganizationType string
	Industry         string
	FoundedDate      string
	DissolvedDate    string
	Headquarters     string
	KeyPeople        []string
	ParentOrgID      *int64
}

// DocType is the closed set of document classifications.
type DocType string

const (
	DocEmail     DocType = "Email"
	DocLegal     DocType = "Legal"
	DocFlightLog DocType = "Flight_Log"
	DocFinancial DocType = "Financial"
	DocArticle   DocType = "Article"
	DocGeneric   DocType = "Document"
)

// Enrichment is the derived classification record for one document.
// Re-running the classifier replaces the prior row (keyed on DocumentID).
type Enrichment struct {
	ID             int64
	DocumentID     int64
	DocumentType   DocType
	Subtype        string
	Title          string
	Summary        string
	ExtractedDate  string
	DateRangeStart string
	DateRangeEnd   string
	Sender         string
	Recipients     []string
	Subject        string
	CaseNumber     string
	Court          string
	Parties        []string
	Locations      []string
	Amounts        []string
	Confidence     float64
}

// DatedEnrichment joins a document to its enrichment for the timeline
// builder. Rows without an extracted date are not returned.
type DatedEnrichment struct {
	DocumentID    int64
	FileName      string
	DocumentType  DocType
	Title         string
	ExtractedDate string
}

// EventType is the coarse timeline category derived from a DocType.
type EventType string

const (
	EventTravel        EventType = "Travel"
	EventLegal         EventType = "Legal"
	EventFinancial     EventType = "Financial"
	EventCommunication EventType = "Communication"
	EventDocument      EventType = "Document"
)

// TimelineEvent is a single dated fact derived from a document.
type TimelineEvent struct {
	ID            int64
	EventDate     string
	EventType     EventType
	Title         string
	Description   string
	Location      string
	People        []string
	Organizations []string
	DocumentIDs   []int64
	Significance  int
	Verified      bool
}

// Run is a recorded pipeline execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Stages     []StageMark
}

// StageMark records completion of one pipeline stage within a run.
type StageMark struct {
	Stage       string
	CompletedAt time.Time
}

// Counts summarizes the derived tables for the final report.
type Counts struct {
	Entities            int64
	People              int64
	Organizations       int64
	EnrichedDocuments   int64
	ClassifiedDocuments int64 // enrichment rows with a non-generic type
	TimelineEvents      int64
}
