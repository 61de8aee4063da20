package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/casefile-io/casefile/pkg/casefile/enrich"
)

// LoadRules loads a classification rule set from a YAML file. Sections
// left empty in the file fall back to the built-in defaults, so a
// deployment can override just the indicator words or just the
// known-people table.
func LoadRules(path string) (enrich.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return enrich.Rules{}, fmt.Errorf("load rules: %w", err)
	}

	var rules enrich.Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return enrich.Rules{}, fmt.Errorf("parse rules: %w", err)
	}

	defaults := enrich.DefaultRules()
	if len(rules.OrgIndicators) == 0 {
		rules.OrgIndicators = defaults.OrgIndicators
	}
	if len(rules.KnownPeople) == 0 {
		rules.KnownPeople = defaults.KnownPeople
	}
	if len(rules.RoleGroups) == 0 {
		rules.RoleGroups = defaults.RoleGroups
	}
	return rules, nil
}
