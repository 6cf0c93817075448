// Package loader reads YAML pattern documents: a schema section (`define`)
// and an insert section describing the patterns of one insert operation.
//
// `isa` labels desugar into an anonymous type var carrying the label plus an
// isa on the subject, the same shape the engine's equivalence resolver
// merges when two entries name the same type.
package loader

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tesseradb/tessera/pkg/graph"
	"github.com/tesseradb/tessera/pkg/pattern"
)

// Document is the parsed form of a pattern file.
type Document struct {
	Define []TypeDef   `yaml:"define,omitempty"`
	Insert []InsertDef `yaml:"insert,omitempty"`
}

// TypeDef declares a schema type.
type TypeDef struct {
	Label string `yaml:"label"`
	Kind  string `yaml:"kind"`
}

// InsertDef describes one pattern: a var and the assertions about it.
type InsertDef struct {
	Var     string    `yaml:"var"`
	Type    string    `yaml:"type,omitempty"`  // subject denotes this schema type
	Isa     string    `yaml:"isa,omitempty"`   // subject is an instance of this type
	Value   any       `yaml:"value,omitempty"` // scalar attribute value
	Has     []string  `yaml:"has,omitempty"`   // attribute vars owned by the subject
	Players []RoleDef `yaml:"players,omitempty"`
}

// RoleDef names one role player of a relation pattern.
type RoleDef struct {
	Role string `yaml:"role"`
	Var  string `yaml:"var"`
}

// Load reads and parses a pattern document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern document: %w", err)
	}
	return Parse(data)
}

// Parse parses a pattern document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse pattern document: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	for i, td := range d.Define {
		if td.Label == "" {
			return fmt.Errorf("define entry %d: label is required", i)
		}
		if !graph.Kind(td.Kind).IsValid() {
			return fmt.Errorf("define entry %d (%s): unknown kind %q", i, td.Label, td.Kind)
		}
	}
	for i, in := range d.Insert {
		if in.Var == "" {
			return fmt.Errorf("insert entry %d: var is required", i)
		}
		if in.Type != "" && in.Isa != "" {
			return fmt.Errorf("insert entry %d (%s): type and isa are mutually exclusive", i, in.Var)
		}
		if in.Value != nil {
			switch in.Value.(type) {
			case string, bool, int, int64, uint64, float64:
			default:
				return fmt.Errorf("insert entry %d (%s): value must be a scalar, got %T", i, in.Var, in.Value)
			}
		}
		for j, rp := range in.Players {
			if rp.Role == "" || rp.Var == "" {
				return fmt.Errorf("insert entry %d (%s): player %d needs role and var", i, in.Var, j)
			}
		}
	}
	return nil
}

// Patterns converts the insert section into engine patterns.
func (d *Document) Patterns() []*pattern.VarPattern {
	// One anonymous type var per distinct isa label keeps the desugared
	// statement count down; the equivalence resolver would merge duplicates
	// anyway.
	typeVars := make(map[string]pattern.Var)
	var patterns []*pattern.VarPattern

	typeVarFor := func(label string) pattern.Var {
		if v, ok := typeVars[label]; ok {
			return v
		}
		v := pattern.AnonVar()
		typeVars[label] = v
		patterns = append(patterns, pattern.New(v).Type(label))
		return v
	}

	for _, in := range d.Insert {
		p := pattern.New(pattern.NewVar(in.Var))
		if in.Type != "" {
			p.Type(in.Type)
		}
		if in.Isa != "" {
			p.Isa(typeVarFor(in.Isa))
		}
		if in.Value != nil {
			p.Val(in.Value)
		}
		for _, a := range in.Has {
			p.Has(pattern.NewVar(a))
		}
		for _, rp := range in.Players {
			p.Rel(rp.Role, pattern.NewVar(rp.Var))
		}
		patterns = append(patterns, p)
	}
	return patterns
}
