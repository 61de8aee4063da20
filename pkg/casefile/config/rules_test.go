package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	const doc = `
org_indicators:
  - cartel
  - syndicate
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	if len(rules.OrgIndicators) != 2 || rules.OrgIndicators[0] != "cartel" {
		t.Errorf("org_indicators = %v, want the override", rules.OrgIndicators)
	}
	// Sections absent from the file fall back to defaults.
	if len(rules.KnownPeople) == 0 {
		t.Error("known_people should fall back to defaults")
	}
	if len(rules.RoleGroups) == 0 {
		t.Error("role_groups should fall back to defaults")
	}
}

func TestLoadRulesFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	const doc = `
org_indicators: [bank]
known_people:
  - name: Jane Smith
    title: Judge
    role: Legal
role_groups:
  - role: Legal
    patterns: [judge]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rules.KnownPeople) != 1 || rules.KnownPeople[0].Title != "Judge" {
		t.Errorf("known_people = %+v", rules.KnownPeople)
	}
	if len(rules.RoleGroups) != 1 || rules.RoleGroups[0].Role != "Legal" {
		t.Errorf("role_groups = %+v", rules.RoleGroups)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing rules file")
	}
}
