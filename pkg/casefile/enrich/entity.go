package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// EntityClassifier splits the raw entities table into people and
// organizations. Classification is a whole-token membership test
// against the organization indicator set: any single matching token
// means organization, otherwise person.
type EntityClassifier struct {
	store      store.Store
	indicators map[string]struct{}
	log        *zap.Logger
}

// NewEntityClassifier builds the classifier stage from the rule set.
func NewEntityClassifier(st store.Store, rules Rules, log *zap.Logger) *EntityClassifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityClassifier{
		store:      st,
		indicators: indicatorSet(rules.OrgIndicators),
		log:        log,
	}
}

// Name implements Stage.
func (c *EntityClassifier) Name() string { return "entity-classify" }

// Run reads every entity and inserts exactly one person or organization
// row per entity. Inserts are OR IGNORE on entity_id, so re-running
// preserves existing classifications. A driver-level write failure
// aborts the stage.
func (c *EntityClassifier) Run(ctx context.Context) error {
	entities, err := c.store.Entities(ctx)
	if err != nil {
		return fmt.Errorf("read entities: %w", err)
	}

	var people, orgs int
	for i, e := range entities {
		if c.IsOrganization(e.FullName) {
			org := store.Organization{
				EntityID: e.ID,
				FullName: e.FullName,
			}
			if _, err := c.store.InsertOrganization(ctx, org); err != nil {
				return fmt.Errorf("insert organization %d: %w", e.ID, err)
			}
			orgs++
		} else {
			p := store.Person{
				EntityID:    e.ID,
				FullName:    e.FullName,
				PrimaryRole: store.RoleUnknown,
			}
			p.Prefix, p.FirstName, p.MiddleName, p.LastName, p.Suffix = splitName(e.FullName)
			if _, err := c.store.InsertPerson(ctx, p); err != nil {
				return fmt.Errorf("insert person %d: %w", e.ID, err)
			}
			people++
		}

		if (i+1)%1000 == 0 {
			c.log.Info("classifying entities",
				zap.Int("processed", i+1),
				zap.Int("total", len(entities)))
		}
	}

	c.log.Info("entity classification complete",
		zap.Int("people", people),
		zap.Int("organizations", orgs))
	return nil
}

// IsOrganization reports whether any whitespace-separated token of the
// name, lowercased and stripped of edge punctuation, appears in the
// indicator set.
func (c *EntityClassifier) IsOrganization(name string) bool {
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		tok = strings.Trim(tok, ".,;:()&'\"")
		if _, ok := c.indicators[tok]; ok {
			return true
		}
	}
	return false
}

var namePrefixes = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "miss": {}, "dr": {}, "prof": {},
	"hon": {}, "rev": {}, "sir": {}, "dame": {},
}

var nameSuffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {}, "esq": {},
	"md": {}, "phd": {},
}

// splitName breaks a full name into prefix, first, middle, last and
// suffix parts. Best effort only; single-word names become a first
// name with no last name.
func splitName(full string) (prefix, first, middle, last, suffix string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return
	}

	if len(parts) > 1 {
		if _, ok := namePrefixes[normalizeNamePart(parts[0])]; ok {
			prefix = parts[0]
			parts = parts[1:]
		}
	}
	if len(parts) > 1 {
		if _, ok := nameSuffixes[normalizeNamePart(parts[len(parts)-1])]; ok {
			suffix = parts[len(parts)-1]
			parts = parts[:len(parts)-1]
		}
	}

	switch len(parts) {
	case 0:
	case 1:
		first = parts[0]
	case 2:
		first, last = parts[0], parts[1]
	default:
		first = parts[0]
		last = parts[len(parts)-1]
		middle = strings.Join(parts[1:len(parts)-1], " ")
	}
	return
}

func normalizeNamePart(s string) string {
	return strings.Trim(strings.ToLower(s), ".,")
}
