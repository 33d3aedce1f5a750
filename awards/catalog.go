package awards

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownAward          = errors.New("unknown award")
	ErrMissingPrerequisite   = errors.New("missing prerequisite")
	ErrCatalogOrder          = errors.New("prerequisite listed after dependant")
	ErrUndeclaredDependency  = errors.New("undeclared award dependency")
	ErrInconsistentAggregate = errors.New("inconsistent aggregate")
)

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// Definition is one catalog.yaml entry.
type Definition struct {
	Key         Key    `yaml:"key"`
	Scope       Scope  `yaml:"scope"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Retired     bool   `yaml:"retired"`
	// Requires must all be held; RequiresAny needs one of them.
	Requires    []Key `yaml:"requires"`
	RequiresAny []Key `yaml:"requires_any"`
	// Excludes and Clears are looked up or rewritten but impose no order.
	Excludes []Key `yaml:"excludes"`
	Clears   []Key `yaml:"clears"`
}

type catalogFile struct {
	Awards []Definition `yaml:"awards"`
}

// Rule is a loaded catalog entry bound to its predicate.
type Rule struct {
	Definition
	Order     int
	Predicate Predicate

	declared map[Key]bool
}

// Declares reports whether the rule may look up or touch key.
func (r *Rule) Declares(key Key) bool { return r.declared[key] }

// Check rejects decisions that touch keys the rule did not declare.
func (r *Rule) Check(d Decision) error {
	for _, k := range d.Keys() {
		if !r.declared[k] {
			return fmt.Errorf("%s decision touches %s: %w", r.Key, k, ErrUndeclaredDependency)
		}
	}
	return nil
}

// ImageKey is the object key of the award artwork.
func (r *Rule) ImageKey() string {
	return "awards/" + slug.Make(r.Title) + ".png"
}

// Catalog is the ordered, validated rule set.
type Catalog struct {
	rules []*Rule
	byKey map[Key]*Rule
}

// All returns every rule in catalog order.
func (c *Catalog) All() []*Rule { return c.rules }

// Rules returns the active rules of one scope in catalog order.
func (c *Catalog) Rules(scope Scope) []*Rule {
	var out []*Rule
	for _, r := range c.rules {
		if r.Scope == scope && !r.Retired {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) Rule(key Key) (*Rule, bool) {
	r, ok := c.byKey[key]
	return r, ok
}

var defaultTitle = cases.Title(language.English)

// Load parses the embedded catalog against the built-in registry. Every
// registered predicate must have an entry.
func Load() (*Catalog, error) {
	preds := Registry()
	c, err := Parse(catalogYAML, preds)
	if err != nil {
		return nil, err
	}
	for key := range preds {
		if _, ok := c.byKey[key]; !ok {
			return nil, fmt.Errorf("catalog.yaml: %s has no entry: %w", key, ErrUnknownAward)
		}
	}
	return c, nil
}

// Parse validates raw catalog YAML and builds the catalog.
func Parse(data []byte, preds map[Key]Predicate) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog.yaml: %w", err)
	}
	return Build(f.Awards, preds)
}

func validateSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(catalogSchema)); err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return fmt.Errorf("catalog schema: %w", err)
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("catalog.yaml: %w", err)
	}
	// the validator wants plain JSON values
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("catalog.yaml: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("catalog.yaml: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("catalog.yaml: %w", err)
	}
	return nil
}

// Build binds definitions to predicates and validates the dependency graph:
// unknown keys, prerequisites missing from the catalog, and same-scope
// prerequisites listed after their dependant are rejected.
func Build(defs []Definition, preds map[Key]Predicate) (*Catalog, error) {
	c := &Catalog{byKey: make(map[Key]*Rule, len(defs))}
	for i, d := range defs {
		pred, ok := preds[d.Key]
		if !ok {
			return nil, fmt.Errorf("catalog entry %q: %w", d.Key, ErrUnknownAward)
		}
		if _, dup := c.byKey[d.Key]; dup {
			return nil, fmt.Errorf("catalog entry %q listed twice", d.Key)
		}
		if d.Title == "" {
			d.Title = defaultTitle.String(strings.ReplaceAll(string(d.Key), "_", " "))
		}
		r := &Rule{Definition: d, Order: i, Predicate: pred, declared: map[Key]bool{d.Key: true}}
		c.rules = append(c.rules, r)
		c.byKey[d.Key] = r
	}

	for _, r := range c.rules {
		for _, k := range append(append([]Key{}, r.Requires...), r.RequiresAny...) {
			dep, ok := c.byKey[k]
			if !ok {
				return nil, fmt.Errorf("%s requires %s: %w", r.Key, k, ErrMissingPrerequisite)
			}
			if dep.Scope == r.Scope && dep.Order > r.Order {
				return nil, fmt.Errorf("%s requires %s: %w", r.Key, k, ErrCatalogOrder)
			}
			r.declared[k] = true
		}
		for _, k := range append(append([]Key{}, r.Excludes...), r.Clears...) {
			if _, ok := c.byKey[k]; !ok {
				return nil, fmt.Errorf("%s references %s: %w", r.Key, k, ErrMissingPrerequisite)
			}
			r.declared[k] = true
		}
	}
	return c, nil
}
