package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/casefile-io/casefile/pkg/casefile/internalerr"
	"github.com/casefile-io/casefile/pkg/casefile/store"
)

// Rules holds the classification policy as data: the organization
// indicator words, the known-name overlay, and the ordered role pattern
// groups. Defaults are compiled in; a YAML file can override any part
// (see the config package).
type Rules struct {
	OrgIndicators []string      `yaml:"org_indicators"`
	KnownPeople   []KnownPerson `yaml:"known_people"`
	RoleGroups    []RoleGroup   `yaml:"role_groups"`
}

// KnownPerson maps an exact full name to a title and role.
type KnownPerson struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	Role  string `yaml:"role"`
}

// RoleGroup is one ordered group of role-inference patterns. The first
// group with any matching pattern wins; group order is the tiebreaker.
type RoleGroup struct {
	Role     string   `yaml:"role"`
	Patterns []string `yaml:"patterns"`
}

// DefaultRules returns the built-in classification policy.
func DefaultRules() Rules {
	return Rules{
		OrgIndicators: []string{
			// legal suffixes
			"inc", "llc", "ltd", "corp", "corporation", "company", "co",
			"lp", "llp", "plc", "gmbh", "holdings", "group", "partners",
			"associates", "ventures", "capital", "trust", "fund", "enterprises",
			// institution types
			"university", "college", "school", "institute", "academy",
			"foundation", "bank", "airlines", "hospital", "church",
			"museum", "hotel", "club", "firm", "laboratory",
			// government
			"department", "agency", "bureau", "commission", "committee",
			"ministry", "court", "police", "fbi", "doj",
			// press outlets
			"news", "times", "post", "journal", "tribune", "herald",
			"media", "press", "network", "magazine",
		},
		KnownPeople: []KnownPerson{
			{Name: "Jeffrey Epstein", Title: "Financier", Role: "Business"},
			{Name: "Ghislaine Maxwell", Title: "Socialite", Role: "Social"},
			{Name: "Bill Clinton", Title: "Former President", Role: "Political"},
			{Name: "Donald Trump", Title: "Businessman", Role: "Business"},
			{Name: "Prince Andrew", Title: "Duke of York", Role: "Political"},
			{Name: "Alan Dershowitz", Title: "Attorney", Role: "Legal"},
			{Name: "Leslie Wexner", Title: "Retail Executive", Role: "Business"},
			{Name: "Jean-Luc Brunel", Title: "Model Agent", Role: "Business"},
			{Name: "Glenn Dubin", Title: "Hedge Fund Manager", Role: "Business"},
		},
		RoleGroups: []RoleGroup{
			{Role: "Political", Patterns: []string{
				`senator`, `governor`, `president`, `minister`, `congress(man|woman)?`,
				`mayor`, `ambassador`, `prince`, `duke`, `princess`, `diplomat`,
			}},
			{Role: "Legal", Patterns: []string{
				`judge`, `attorney`, `lawyer`, `esq`, `prosecutor`, `counsel`, `justice`,
			}},
			{Role: "Academic", Patterns: []string{
				`professor`, `dr\.`, `phd`, `scientist`, `researcher`, `scholar`,
			}},
			{Role: "Media", Patterns: []string{
				`journalist`, `reporter`, `editor`, `anchor`, `producer`, `broadcaster`,
			}},
			{Role: "Business", Patterns: []string{
				`ceo`, `cfo`, `executive`, `banker`, `investor`, `financier`,
				`entrepreneur`, `chairman`, `founder`,
			}},
			{Role: "Social", Patterns: []string{
				`socialite`, `philanthropist`, `model`, `actress`, `actor`, `celebrity`,
			}},
		},
	}
}

// compiledRoleGroup pairs a role with its compiled patterns.
type compiledRoleGroup struct {
	role     store.Role
	patterns []*regexp.Regexp
}

// compileRoleGroups validates and compiles the role pattern groups,
// preserving declaration order.
func compileRoleGroups(groups []RoleGroup) ([]compiledRoleGroup, error) {
	compiled := make([]compiledRoleGroup, 0, len(groups))
	for _, g := range groups {
		role, ok := parseRole(g.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", internalerr.ErrInvalidConfig, g.Role)
		}
		cg := compiledRoleGroup{role: role}
		for _, p := range g.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("%w: role pattern %q: %v", internalerr.ErrInvalidConfig, p, err)
			}
			cg.patterns = append(cg.patterns, re)
		}
		compiled = append(compiled, cg)
	}
	return compiled, nil
}

func parseRole(s string) (store.Role, bool) {
	switch store.Role(s) {
	case store.RolePolitical, store.RoleLegal, store.RoleBusiness,
		store.RoleAcademic, store.RoleMedia, store.RoleSocial,
		store.RoleIndividual, store.RoleUnknown:
		return store.Role(s), true
	}
	return "", false
}

// indicatorSet normalizes the indicator words into a lookup set.
func indicatorSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
