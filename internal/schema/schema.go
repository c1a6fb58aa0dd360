// Package schema holds the read-only metamodel consumed by the graph layer.
//
// A Language is a set of Classifiers; every Classifier declares Features. A
// Feature is a property, a containment or a reference, and carries the
// multiplicity and declared type used to validate mutations and to pick the
// notification variant a mutation produces.
package schema

import "fmt"

// FeatureKind distinguishes properties from the two link kinds
type FeatureKind string

const (
	KindProperty    FeatureKind = "property"
	KindContainment FeatureKind = "containment"
	KindReference   FeatureKind = "reference"
)

// Property datatypes
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Feature describes one slot of a classifier
type Feature struct {
	Key      string      `yaml:"key" json:"key"`
	Kind     FeatureKind `yaml:"kind" json:"kind"`
	Multiple bool        `yaml:"multiple,omitempty" json:"multiple,omitempty"`
	Optional bool        `yaml:"optional,omitempty" json:"optional,omitempty"`
	// Type is a datatype for properties and a classifier key for links.
	// Empty means unconstrained.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`
}

// IsLink reports whether the feature is a containment or a reference
func (f *Feature) IsLink() bool {
	return f.Kind == KindContainment || f.Kind == KindReference
}

// Required reports whether the feature must hold a value
func (f *Feature) Required() bool {
	return !f.Optional
}

func (f *Feature) String() string {
	return f.Key
}

// Classifier is a node type
type Classifier struct {
	Key        string     `yaml:"key" json:"key"`
	Extends    string     `yaml:"extends,omitempty" json:"extends,omitempty"`
	Partition  bool       `yaml:"partition,omitempty" json:"partition,omitempty"`
	Annotation bool       `yaml:"annotation,omitempty" json:"annotation,omitempty"`
	Features   []*Feature `yaml:"features,omitempty" json:"features,omitempty"`

	lang *Language
}

// Feature looks up a feature by key, including inherited ones
func (c *Classifier) Feature(key string) (*Feature, bool) {
	for cur := c; cur != nil; cur = cur.super() {
		for _, f := range cur.Features {
			if f.Key == key {
				return f, true
			}
		}
	}
	return nil, false
}

// AllFeatures returns own and inherited features, supertypes first
func (c *Classifier) AllFeatures() []*Feature {
	var chain []*Classifier
	for cur := c; cur != nil; cur = cur.super() {
		chain = append(chain, cur)
	}
	var out []*Feature
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i].Features...)
	}
	return out
}

func (c *Classifier) super() *Classifier {
	if c.Extends == "" || c.lang == nil {
		return nil
	}
	return c.lang.classifiers[c.Extends]
}

// Language is a closed set of classifiers
type Language struct {
	Key         string
	Version     string
	classifiers map[string]*Classifier
	order       []string
}

// NewLanguage builds a language and checks its internal consistency
func NewLanguage(key, version string, classifiers ...*Classifier) (*Language, error) {
	l := &Language{
		Key:         key,
		Version:     version,
		classifiers: make(map[string]*Classifier, len(classifiers)),
	}
	for _, c := range classifiers {
		if c.Key == "" {
			return nil, fmt.Errorf("classifier key required")
		}
		if _, dup := l.classifiers[c.Key]; dup {
			return nil, fmt.Errorf("duplicate classifier %s", c.Key)
		}
		c.lang = l
		l.classifiers[c.Key] = c
		l.order = append(l.order, c.Key)
	}
	for _, c := range classifiers {
		if err := l.check(c); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// MustLanguage is NewLanguage for statically known languages
func MustLanguage(key, version string, classifiers ...*Classifier) *Language {
	l, err := NewLanguage(key, version, classifiers...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Language) check(c *Classifier) error {
	seen := make(map[string]bool)
	for cur, depth := c, 0; cur != nil; cur, depth = cur.super(), depth+1 {
		if depth > len(l.classifiers) {
			return fmt.Errorf("classifier %s: inheritance cycle", c.Key)
		}
		if cur.Extends != "" {
			if _, ok := l.classifiers[cur.Extends]; !ok {
				return fmt.Errorf("classifier %s: unknown supertype %s", cur.Key, cur.Extends)
			}
		}
	}
	for _, f := range c.AllFeatures() {
		if f.Key == "" {
			return fmt.Errorf("classifier %s: feature key required", c.Key)
		}
		if seen[f.Key] {
			return fmt.Errorf("classifier %s: duplicate feature %s", c.Key, f.Key)
		}
		seen[f.Key] = true
		switch f.Kind {
		case KindProperty:
			switch f.Type {
			case "", TypeString, TypeInteger, TypeBoolean:
			default:
				return fmt.Errorf("classifier %s: property %s has unknown datatype %s", c.Key, f.Key, f.Type)
			}
			if f.Multiple {
				return fmt.Errorf("classifier %s: property %s cannot be multiple", c.Key, f.Key)
			}
		case KindContainment, KindReference:
			if f.Type != "" {
				if _, ok := l.classifiers[f.Type]; !ok {
					return fmt.Errorf("classifier %s: link %s has unknown type %s", c.Key, f.Key, f.Type)
				}
			}
		default:
			return fmt.Errorf("classifier %s: feature %s has unknown kind %q", c.Key, f.Key, f.Kind)
		}
	}
	return nil
}

// Classifier looks up a classifier by key
func (l *Language) Classifier(key string) (*Classifier, bool) {
	c, ok := l.classifiers[key]
	return c, ok
}

// Classifiers returns all classifiers in declaration order
func (l *Language) Classifiers() []*Classifier {
	out := make([]*Classifier, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.classifiers[k])
	}
	return out
}

// IsA reports whether classifier sub is super or one of its descendants.
// An empty super accepts everything.
func (l *Language) IsA(sub, super string) bool {
	if super == "" {
		return true
	}
	c, ok := l.classifiers[sub]
	for depth := 0; ok && c != nil && depth <= len(l.classifiers); depth++ {
		if c.Key == super {
			return true
		}
		c = c.super()
	}
	return false
}
