package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesseradb/tessera/pkg/pattern"
)

const sampleDoc = `
define:
  - label: person
    kind: entity
  - label: marriage
    kind: relation
  - label: name
    kind: attribute

insert:
  - var: x
    isa: person
    has: [n]
  - var: y
    isa: person
  - var: m
    isa: marriage
    players:
      - role: spouse
        var: x
      - role: spouse
        var: y
  - var: n
    isa: name
    value: Alice
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	require.Len(t, doc.Define, 3)
	assert.Equal(t, TypeDef{Label: "person", Kind: "entity"}, doc.Define[0])

	require.Len(t, doc.Insert, 4)
	assert.Equal(t, "x", doc.Insert[0].Var)
	assert.Equal(t, []string{"n"}, doc.Insert[0].Has)
	require.Len(t, doc.Insert[2].Players, 2)
	assert.Equal(t, RoleDef{Role: "spouse", Var: "x"}, doc.Insert[2].Players[0])
	assert.Equal(t, "Alice", doc.Insert[3].Value)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
insert:
  - var: x
    isa: person
    colour: blue
`))
	assert.Error(t, err)
}

func TestParse_Validation(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"missing label", "define:\n  - kind: entity\n"},
		{"bad kind", "define:\n  - label: person\n    kind: widget\n"},
		{"missing var", "insert:\n  - isa: person\n"},
		{"type and isa together", "insert:\n  - var: x\n    type: person\n    isa: person\n"},
		{"non-scalar value", "insert:\n  - var: n\n    value: [1, 2]\n"},
		{"player missing role", "insert:\n  - var: m\n    players:\n      - var: x\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Insert, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPatterns_SharedTypeVarPerLabel(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	patterns := doc.Patterns()

	// Three distinct isa labels plus four insert entries.
	require.Len(t, patterns, 7)

	// Both person entries must reference the one anonymous person type var.
	typeVarByLabel := make(map[string]pattern.Var)
	isaByVar := make(map[pattern.Var]pattern.Var)
	for _, p := range patterns {
		for _, prop := range p.Props {
			switch prop := prop.(type) {
			case pattern.TypeProperty:
				typeVarByLabel[prop.TypeLabel] = p.Var
			case pattern.IsaProperty:
				isaByVar[p.Var] = prop.Type
			}
		}
	}
	x := pattern.NewVar("x")
	y := pattern.NewVar("y")
	require.Contains(t, isaByVar, x)
	assert.Equal(t, isaByVar[x], isaByVar[y], "same isa label must reuse one type var")
	assert.Equal(t, typeVarByLabel["person"], isaByVar[x])
	assert.False(t, isaByVar[x].UserDefined(), "desugared type vars stay anonymous")
}

func TestPatterns_DirectTypeReference(t *testing.T) {
	doc, err := Parse([]byte("insert:\n  - var: t\n    type: person\n"))
	require.NoError(t, err)

	patterns := doc.Patterns()
	require.Len(t, patterns, 1)
	require.Len(t, patterns[0].Props, 1)
	assert.Equal(t, pattern.TypeProperty{TypeLabel: "person"}, patterns[0].Props[0])
	assert.Equal(t, pattern.NewVar("t"), patterns[0].Var)
}
