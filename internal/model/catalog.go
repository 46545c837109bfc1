package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"connector-align/internal/mathutil"
)

// Built-in model names.
const (
	LargeConnector = "LargeBlockConnector"
	SmallConnector = "SmallBlockConnector"
	DecorativePort = "ConnectorDecorative"
	TextPanel      = "LargeTextPanel"
)

// Catalog is a concurrency-safe registry of models keyed by case-insensitive name.
type Catalog struct {
	mu     sync.RWMutex
	models map[string]Model
}

// NewCatalog returns a catalog preloaded with the built-in models.
func NewCatalog() *Catalog {
	c := &Catalog{models: make(map[string]Model)}
	for _, m := range builtins() {
		c.models[strings.ToLower(m.Name)] = m
	}
	return c
}

// Register adds or replaces a model definition.
func (c *Catalog) Register(m Model) error {
	if m.Name == "" {
		return fmt.Errorf("model: empty model name")
	}
	for i, d := range m.Dummies {
		if d.Parent >= i {
			return fmt.Errorf("model: %s: dummy %q parent %d must precede it", m.Name, d.Name, d.Parent)
		}
	}
	c.mu.Lock()
	c.models[strings.ToLower(m.Name)] = m
	c.mu.Unlock()
	return nil
}

// Lookup returns the model registered under name.
func (c *Catalog) Lookup(name string) (Model, bool) {
	c.mu.RLock()
	m, ok := c.models[strings.ToLower(name)]
	c.mu.RUnlock()
	return m, ok
}

// Names returns the registered model names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.models))
	for _, m := range c.models {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

func builtins() []Model {
	return []Model{
		{
			Name: LargeConnector,
			Dummies: []Dummy{
				{Name: "detector_terminal_1", Parent: -1, Position: mathutil.Vec3{0, -1.1, 0}},
				{Name: "detector_Connector_001", Parent: -1},
			},
		},
		{
			Name: SmallConnector,
			Dummies: []Dummy{
				{Name: "detector_small_connector", Parent: -1},
			},
		},
		{
			Name: DecorativePort,
			Dummies: []Dummy{
				{Name: "detector_conveyor", Parent: -1},
			},
		},
		{Name: TextPanel},
	}
}
