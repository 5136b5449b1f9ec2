// Package catalog classifies listening endpoints against a static,
// ordered set of recognition rules for well-known developer services.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups services for presentation.
type Category string

const (
	CategoryDevServer Category = "dev-server"
	CategoryDatabase  Category = "database"
	CategoryCache     Category = "cache"
	CategoryContainer Category = "container"
	CategoryInfra     Category = "infra"
	CategoryUnknown   Category = "unknown"
)

// Service is a classification result. Label is empty when no rule matched;
// Category is always set.
type Service struct {
	Label    string
	Category Category
}

// NameRule matches on the process name, optionally narrowed by the command
// line.
type NameRule struct {
	NameContains string   `yaml:"name_contains,omitempty"`
	CmdContains  string   `yaml:"cmd_contains,omitempty"`
	Label        string   `yaml:"label"`
	Category     Category `yaml:"category"`
}

// PortRule matches any of its port numbers exactly.
type PortRule struct {
	Ports    []int    `yaml:"ports"`
	Label    string   `yaml:"label"`
	Category Category `yaml:"category"`
}

// Catalog is an ordered rule set. Within each tier the first matching rule
// wins, so declaration order is part of the contract. A Catalog is never
// mutated after Parse.
type Catalog struct {
	Names []NameRule `yaml:"names"`
	Ports []PortRule `yaml:"ports"`
}

//go:embed catalog.yaml
var rawRules []byte

var defaultCatalog = mustParse(rawRules)

// Default returns the built-in catalog. The returned value is shared and
// read-only.
func Default() *Catalog {
	return defaultCatalog
}

// Parse loads a catalog from YAML, validating and normalizing every rule.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, r := range c.Names {
		if r.NameContains == "" && r.CmdContains == "" {
			return nil, fmt.Errorf("name rule %d (%q) has no match condition", i, r.Label)
		}
		if !validCategory(r.Category) {
			return nil, fmt.Errorf("name rule %d (%q): unknown category %q", i, r.Label, r.Category)
		}
		c.Names[i].NameContains = strings.ToLower(r.NameContains)
		c.Names[i].CmdContains = strings.ToLower(r.CmdContains)
	}
	for i, r := range c.Ports {
		if len(r.Ports) == 0 {
			return nil, fmt.Errorf("port rule %d (%q) lists no ports", i, r.Label)
		}
		if !validCategory(r.Category) {
			return nil, fmt.Errorf("port rule %d (%q): unknown category %q", i, r.Label, r.Category)
		}
	}
	return &c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

func validCategory(c Category) bool {
	switch c {
	case CategoryDevServer, CategoryDatabase, CategoryCache, CategoryContainer, CategoryInfra:
		return true
	}
	return false
}

// Classify maps an endpoint to a service label and category. Name rules
// are evaluated before port rules; within a tier the first match wins.
// Matching is case-insensitive substring containment. No match yields an
// empty label and CategoryUnknown.
func (c *Catalog) Classify(port int, name, cmdline string) Service {
	lowerName := strings.ToLower(name)
	lowerCmd := strings.ToLower(cmdline)
	for _, r := range c.Names {
		if r.NameContains != "" && !strings.Contains(lowerName, r.NameContains) {
			continue
		}
		if r.CmdContains != "" && !strings.Contains(lowerCmd, r.CmdContains) {
			continue
		}
		return Service{Label: r.Label, Category: r.Category}
	}
	for _, r := range c.Ports {
		for _, p := range r.Ports {
			if p == port {
				return Service{Label: r.Label, Category: r.Category}
			}
		}
	}
	return Service{Category: CategoryUnknown}
}
