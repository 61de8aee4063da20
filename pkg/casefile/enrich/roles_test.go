package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/casefile-io/casefile/pkg/casefile/internalerr"
	"github.com/casefile-io/casefile/pkg/casefile/store"
	"github.com/casefile-io/casefile/pkg/casefile/store/memstore"
)

func seedPeople(t *testing.T, names ...string) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	ms := memstore.New()
	for i, name := range names {
		ms.AddEntity(int64(i+1), name)
	}
	c := NewEntityClassifier(ms, DefaultRules(), nil)
	if err := c.Run(ctx); err != nil {
		t.Fatalf("seed entities: %v", err)
	}
	return ms
}

func TestKnownNameOverlay(t *testing.T) {
	ctx := context.Background()
	ms := seedPeople(t, "Jeffrey Epstein", "Alice Jones")

	a, err := NewRoleAnnotator(ms, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewRoleAnnotator: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p, ok := ms.PersonByName("Jeffrey Epstein")
	if !ok {
		t.Fatal("person not found")
	}
	if p.PrimaryTitle != "Financier" {
		t.Errorf("primary_title = %q, want %q", p.PrimaryTitle, "Financier")
	}
	if p.PrimaryRole != store.RoleBusiness {
		t.Errorf("primary_role = %q, want %q", p.PrimaryRole, store.RoleBusiness)
	}
}

func TestRoleInferenceFallbackIndividual(t *testing.T) {
	ctx := context.Background()
	ms := seedPeople(t, "John Public")

	a, err := NewRoleAnnotator(ms, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewRoleAnnotator: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p, _ := ms.PersonByName("John Public")
	if p.PrimaryRole != store.RoleIndividual {
		t.Errorf("primary_role = %q, want Individual", p.PrimaryRole)
	}
}

func TestInferRoleGroupOrder(t *testing.T) {
	a, err := NewRoleAnnotator(memstore.New(), DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewRoleAnnotator: %v", err)
	}

	cases := []struct {
		name string
		want store.Role
	}{
		{"Senator Margaret Hale", store.RolePolitical},
		{"Judge Judith Sheindlin", store.RoleLegal},
		{"Professor Alan Grant", store.RoleAcademic},
		{"Reporter Lois Lane", store.RoleMedia},
		{"Banker Howard Gilman", store.RoleBusiness},
		{"Socialite Paris Whitney", store.RoleSocial},
		// "prince" (Political, group 1) beats "investor" (Business, group 5)
		{"Prince Rupert the Investor", store.RolePolitical},
		{"Plain Name", store.RoleIndividual},
	}

	for _, tc := range cases {
		if got := a.InferRole(tc.name); got != tc.want {
			t.Errorf("InferRole(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestOverlayDoesNotTouchUnlistedPeople(t *testing.T) {
	ctx := context.Background()
	ms := seedPeople(t, "Alice Jones")

	a, err := NewRoleAnnotator(ms, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("NewRoleAnnotator: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	p, _ := ms.PersonByName("Alice Jones")
	if p.PrimaryTitle != "" {
		t.Errorf("unlisted person got title %q", p.PrimaryTitle)
	}
	if p.PrimaryRole != store.RoleIndividual {
		t.Errorf("unlisted non-matching person should fall back to Individual, got %q", p.PrimaryRole)
	}
}

func TestBadRolePatternFailsConstruction(t *testing.T) {
	rules := DefaultRules()
	rules.RoleGroups = []RoleGroup{{Role: "Legal", Patterns: []string{"("}}}

	if _, err := NewRoleAnnotator(memstore.New(), rules, nil); err == nil {
		t.Fatal("expected error for invalid pattern")
	} else if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestUnknownRoleGroupFailsConstruction(t *testing.T) {
	rules := DefaultRules()
	rules.RoleGroups = []RoleGroup{{Role: "Wizard", Patterns: []string{"merlin"}}}

	if _, err := NewRoleAnnotator(memstore.New(), rules, nil); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
