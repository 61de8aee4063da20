package enrich

import (
	"context"
	"testing"

	"github.com/casefile-io/casefile/pkg/casefile/store"
	"github.com/casefile-io/casefile/pkg/casefile/store/memstore"
)

func TestIsOrganization(t *testing.T) {
	c := NewEntityClassifier(memstore.New(), DefaultRules(), nil)

	cases := []struct {
		name string
		want bool
	}{
		{"Acme Corp", true},
		{"Acme Corp.", true}, // trailing punctuation trimmed
		{"Harvard University", true},
		{"Victoria's Secret Holdings", true},
		{"The New York Times", true},
		{"Department of Justice", true},
		{"Jane Smith", false},
		{"John Public", false},
		{"Corpus Jones", false}, // substring of indicator is not a match
		{"", false},
	}

	for _, tc := range cases {
		if got := c.IsOrganization(tc.name); got != tc.want {
			t.Errorf("IsOrganization(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		full                                string
		prefix, first, middle, last, suffix string
	}{
		{"Jane Smith", "", "Jane", "", "Smith", ""},
		{"Dr. John Q. Public", "Dr.", "John", "Q.", "Public", ""},
		{"Robert Smith Jr.", "", "Robert", "", "Smith", "Jr."},
		{"Madonna", "", "Madonna", "", "", ""},
		{"Mary Jane van der Berg", "", "Mary", "Jane van der", "Berg", ""},
		{"", "", "", "", "", ""},
	}

	for _, tc := range cases {
		prefix, first, middle, last, suffix := splitName(tc.full)
		if prefix != tc.prefix || first != tc.first || middle != tc.middle ||
			last != tc.last || suffix != tc.suffix {
			t.Errorf("splitName(%q) = (%q,%q,%q,%q,%q), want (%q,%q,%q,%q,%q)",
				tc.full, prefix, first, middle, last, suffix,
				tc.prefix, tc.first, tc.middle, tc.last, tc.suffix)
		}
	}
}

func TestEntityClassifierCompleteness(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	ms.AddEntity(1, "Acme Foundation")
	ms.AddEntity(2, "Alice Jones")
	ms.AddEntity(3, "Deutsche Bank AG")
	ms.AddEntity(4, "Bob Roberts")

	c := NewEntityClassifier(ms, DefaultRules(), nil)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	counts, err := ms.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.People+counts.Organizations != counts.Entities {
		t.Errorf("people(%d) + orgs(%d) != entities(%d)",
			counts.People, counts.Organizations, counts.Entities)
	}

	if _, ok := ms.Organization(1); !ok {
		t.Error("Acme Foundation should be an organization")
	}
	if _, ok := ms.Person(2); !ok {
		t.Error("Alice Jones should be a person")
	}
	// No entity may appear in both tables
	for id := int64(1); id <= 4; id++ {
		_, inPeople := ms.Person(id)
		_, inOrgs := ms.Organization(id)
		if inPeople && inOrgs {
			t.Errorf("entity %d classified as both person and organization", id)
		}
	}
}

func TestEntityClassifierRerunPreservesRows(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	ms.AddEntity(1, "Alice Jones")

	c := NewEntityClassifier(ms, DefaultRules(), nil)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	p, _ := ms.Person(1)
	if err := ms.SetPersonRole(ctx, p.ID, store.RoleLegal); err != nil {
		t.Fatalf("SetPersonRole: %v", err)
	}

	// Insert-or-ignore must not clobber the existing row on re-run.
	if err := c.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	p, _ = ms.Person(1)
	if p.PrimaryRole != store.RoleLegal {
		t.Errorf("re-run overwrote existing classification: role = %q", p.PrimaryRole)
	}
}

func TestEntityClassifierNameParts(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	ms.AddEntity(1, "Dr. Alice Mary Jones")

	c := NewEntityClassifier(ms, DefaultRules(), nil)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p, ok := ms.Person(1)
	if !ok {
		t.Fatal("person not classified")
	}
	if p.Prefix != "Dr." || p.FirstName != "Alice" || p.MiddleName != "Mary" || p.LastName != "Jones" {
		t.Errorf("name parts = (%q,%q,%q,%q)", p.Prefix, p.FirstName, p.MiddleName, p.LastName)
	}
	if p.PrimaryRole != store.RoleUnknown {
		t.Errorf("new person should start Unknown, got %q", p.PrimaryRole)
	}
}
