package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// RoleAnnotator enriches classified people in two passes: an exact-name
// overlay from the known-people table, then regex role inference for
// everyone still Unknown. People no pattern matches end up Individual,
// never Unknown.
type RoleAnnotator struct {
	store  store.Store
	known  []KnownPerson
	groups []compiledRoleGroup
	log    *zap.Logger
}

// NewRoleAnnotator builds the annotator stage, compiling the role
// pattern groups up front so a bad pattern fails the run before any
// row is touched.
func NewRoleAnnotator(st store.Store, rules Rules, log *zap.Logger) (*RoleAnnotator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	groups, err := compileRoleGroups(rules.RoleGroups)
	if err != nil {
		return nil, err
	}
	return &RoleAnnotator{
		store:  st,
		known:  rules.KnownPeople,
		groups: groups,
		log:    log,
	}, nil
}

// Name implements Stage.
func (a *RoleAnnotator) Name() string { return "role-annotate" }

// Run applies the known-name overlay and then role inference.
func (a *RoleAnnotator) Run(ctx context.Context) error {
	var overlaid int64
	for _, kp := range a.known {
		role, ok := parseRole(kp.Role)
		if !ok {
			role = store.RoleIndividual
		}
		n, err := a.store.UpdatePersonTitleRole(ctx, kp.Name, kp.Title, role)
		if err != nil {
			return fmt.Errorf("overlay %q: %w", kp.Name, err)
		}
		overlaid += n
	}
	a.log.Info("known-name overlay applied", zap.Int64("people_updated", overlaid))

	unknown, err := a.store.PeopleByRole(ctx, store.RoleUnknown)
	if err != nil {
		return fmt.Errorf("read unknown people: %w", err)
	}

	var inferred int
	for _, p := range unknown {
		role := a.InferRole(p.FullName)
		if err := a.store.SetPersonRole(ctx, p.ID, role); err != nil {
			return fmt.Errorf("set role for person %d: %w", p.ID, err)
		}
		inferred++
	}

	a.log.Info("role inference complete", zap.Int("people_updated", inferred))
	return nil
}

// InferRole tests the lowercased name against each pattern group in
// declaration order; the first group with any match wins. This is a
// name-string heuristic, not a biography lookup, so names that happen
// to contain a keyword substring will match.
func (a *RoleAnnotator) InferRole(fullName string) store.Role {
	name := strings.ToLower(fullName)
	for _, g := range a.groups {
		for _, re := range g.patterns {
			if re.MatchString(name) {
				return g.role
			}
		}
	}
	return store.RoleIndividual
}
