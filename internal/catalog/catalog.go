// Package catalog loads the static class table once at startup. The
// catalog is immutable after Load and passed by injection, never through a
// process-wide singleton.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed classes.yaml
var classesYAML []byte

// Class is one selectable player class.
type Class struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	BaseHP int    `yaml:"base_hp"`
}

// Catalog is the loaded, immutable class table.
type Catalog struct {
	classes map[string]Class
	ids     []string
}

// Load parses the embedded class table.
func Load() (*Catalog, error) {
	var doc struct {
		Classes []Class `yaml:"classes"`
	}
	if err := yaml.Unmarshal(classesYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse class catalog: %w", err)
	}
	if len(doc.Classes) == 0 {
		return nil, fmt.Errorf("class catalog is empty")
	}
	c := &Catalog{classes: make(map[string]Class, len(doc.Classes))}
	for _, cl := range doc.Classes {
		if cl.ID == "" {
			return nil, fmt.Errorf("class %q has no id", cl.Name)
		}
		if _, dup := c.classes[cl.ID]; dup {
			return nil, fmt.Errorf("duplicate class id %q", cl.ID)
		}
		c.classes[cl.ID] = cl
		c.ids = append(c.ids, cl.ID)
	}
	return c, nil
}

// Valid reports whether the id names a known class.
func (c *Catalog) Valid(classID string) bool {
	_, ok := c.classes[classID]
	return ok
}

// Get returns the class for the id.
func (c *Catalog) Get(classID string) (Class, bool) {
	cl, ok := c.classes[classID]
	return cl, ok
}

// IDs returns the class ids in file order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}
