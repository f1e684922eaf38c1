package models

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Template is one catalog line: everything an entity needs except identity.
type Template struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Energy      int64  `yaml:"energy"`
}

// Catalog is the fixed default content per kind.
type Catalog struct {
	Missions []Template `yaml:"missions"`
	Rewards  []Template `yaml:"rewards"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := ParseCatalog(defaultsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadCatalog reads a catalog from r.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(b)
}

// LoadCatalog returns the catalog at path, or the built-in one when path is "".
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}

func (c *Catalog) validate() error {
	for _, k := range Kinds() {
		ts := c.Templates(k)
		if len(ts) == 0 {
			return fmt.Errorf("catalog: no %s defined", k.Collection())
		}
		for i, t := range ts {
			e := Entity{Kind: k, Title: t.Title, Description: t.Description, EnergyValue: t.Energy}
			if err := e.Validate(); err != nil {
				return fmt.Errorf("catalog: %s[%d]: %w", k.Collection(), i, err)
			}
		}
	}
	return nil
}

// Templates returns the default lines for kind.
func (c *Catalog) Templates(kind Kind) []Template {
	switch kind {
	case KindMission:
		return c.Missions
	case KindReward:
		return c.Rewards
	}
	return nil
}

// Size is the number of defaults seeded for kind.
func (c *Catalog) Size(kind Kind) int { return len(c.Templates(kind)) }

// Instantiate turns the templates for kind into pending entities, each with
// an id from newID and creation time now.
func (c *Catalog) Instantiate(kind Kind, now time.Time, newID func() string) []Entity {
	ts := c.Templates(kind)
	out := make([]Entity, 0, len(ts))
	for _, t := range ts {
		out = append(out, Entity{
			ID:          newID(),
			Kind:        kind,
			Title:       t.Title,
			Description: t.Description,
			EnergyValue: t.Energy,
			CreatedAt:   now.UTC(),
		})
	}
	return out
}
