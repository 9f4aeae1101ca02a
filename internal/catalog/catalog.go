// Package catalog declares pipeline flavors: the ordered role list, the
// turn budget, per-role instruction text, extraction rules and fallback
// scaffold for one category of generation. Flavors are pure
// configuration; once loaded the catalog is read-only and safe to share
// across concurrent runs.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kayz/codeloom/internal/extract"
	"github.com/kayz/codeloom/internal/synth"
)

// ErrUnknownFlavor is returned when a flavor id is not in the catalog.
var ErrUnknownFlavor = errors.New("unknown pipeline flavor")

var (
	exeDirCache string
)

func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

// DefaultPath returns the catalog override file next to the executable.
func DefaultPath() string {
	return filepath.Join(getExecutableDir(), ".codeloom", "catalog.yaml")
}

// RoleSpec is one role turn: a label and the instruction text fed to the
// generator as that turn's system prompt.
type RoleSpec struct {
	Label        string `yaml:"label"`
	Instructions string `yaml:"instructions"`
}

// PipelineSpec is the ordered role list plus the hard turn budget.
type PipelineSpec struct {
	Roles      []RoleSpec `yaml:"roles"`
	TurnBudget int        `yaml:"turn_budget"`
}

// Flavor is one named pipeline configuration.
type Flavor struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description,omitempty"`
	Spec        PipelineSpec   `yaml:",inline"`
	Extract     extract.Rules  `yaml:"extract"`
	Scaffold    synth.Scaffold `yaml:"scaffold"`
}

// Catalog holds flavors keyed by id, preserving declaration order.
type Catalog struct {
	flavors map[string]*Flavor
	order   []string
}

type catalogFile struct {
	Flavors []*Flavor `yaml:"flavors"`
}

// New builds a catalog from the given flavors, keeping their order.
func New(flavors ...*Flavor) *Catalog {
	c := &Catalog{flavors: make(map[string]*Flavor)}
	for _, f := range flavors {
		c.add(f)
	}
	return c
}

// Builtin returns the compiled-in catalog.
func Builtin() *Catalog {
	return New(builtinFlavors()...)
}

// Load returns the builtin catalog merged with overrides from the YAML
// file at path. A missing file is not an error; a malformed or invalid
// one is.
func Load(path string) (*Catalog, error) {
	c := Builtin()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for _, f := range cf.Flavors {
		if err := Validate(f); err != nil {
			return nil, fmt.Errorf("invalid flavor %q: %w", f.ID, err)
		}
		c.add(f)
	}

	return c, nil
}

func (c *Catalog) add(f *Flavor) {
	if _, exists := c.flavors[f.ID]; !exists {
		c.order = append(c.order, f.ID)
	}
	c.flavors[f.ID] = f
}

// Get returns the flavor for id.
func (c *Catalog) Get(id string) (*Flavor, bool) {
	f, ok := c.flavors[id]
	return f, ok
}

// List returns every flavor in declaration order.
func (c *Catalog) List() []*Flavor {
	flavors := make([]*Flavor, 0, len(c.order))
	for _, id := range c.order {
		if f, ok := c.flavors[id]; ok {
			flavors = append(flavors, f)
		}
	}
	return flavors
}

// Validate checks a flavor's pipeline spec. A turn budget larger than
// the role list would leave the loop order undefined, so such specs are
// rejected outright; a role list longer than the budget is legal and is
// truncated at run time.
func Validate(f *Flavor) error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("flavor id is required")
	}
	if len(f.Spec.Roles) == 0 {
		return fmt.Errorf("at least one role is required")
	}
	for i, role := range f.Spec.Roles {
		if strings.TrimSpace(role.Label) == "" {
			return fmt.Errorf("role %d has an empty label", i)
		}
	}
	if f.Spec.TurnBudget <= 0 {
		return fmt.Errorf("turn_budget must be positive, got %d", f.Spec.TurnBudget)
	}
	if f.Spec.TurnBudget > len(f.Spec.Roles) {
		return fmt.Errorf("turn_budget %d exceeds configured roles (%d)",
			f.Spec.TurnBudget, len(f.Spec.Roles))
	}
	return nil
}
