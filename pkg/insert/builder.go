package insert

import (
	"context"
	"fmt"

	"github.com/tesseradb/tessera/pkg/graph"
	"github.com/tesseradb/tessera/pkg/pattern"
)

type rolePlayer struct {
	role   string
	player pattern.Var
}

// conceptBuilder accumulates construction constraints for one canonical var.
// Deferred var references (the type var, role players) are resolved through
// the executor only when the builder is forced, so a builder can be created
// and populated before the vars it mentions exist.
type conceptBuilder struct {
	subject pattern.Var

	typ      graph.Concept // resolved type, if an isa statement already ran
	label    string        // schema type label, for type-reference vars
	value    any
	hasValue bool
	players  []rolePlayer
}

func newConceptBuilder(subject pattern.Var) *conceptBuilder {
	return &conceptBuilder{subject: subject}
}

// pattern.Builder implementation.

func (b *conceptBuilder) Isa(typ graph.Concept) { b.typ = typ }
func (b *conceptBuilder) Label(label string)    { b.label = label }
func (b *conceptBuilder) Value(v any) {
	b.value = v
	b.hasValue = true
}
func (b *conceptBuilder) RolePlayer(role string, player pattern.Var) {
	b.players = append(b.players, rolePlayer{role: role, player: player})
}

// build materializes the concept from the accumulated constraints. Called
// exactly once per builder, by the executor.
func (b *conceptBuilder) build(ctx context.Context, ex *Executor) (graph.Concept, error) {
	// A bare label with no value and no type means the var denotes the
	// schema type itself.
	if b.label != "" && !b.hasValue && b.typ.IsZero() {
		return ex.backend.ResolveType(ctx, b.label)
	}

	typ, err := b.resolveType(ctx, ex)
	if err != nil {
		return graph.Concept{}, err
	}

	var concept graph.Concept
	switch {
	case b.hasValue:
		concept, err = ex.backend.CreateAttribute(ctx, typ, b.value)
	case typ.Kind == graph.KindRelation || len(b.players) > 0:
		concept, err = ex.backend.CreateRelation(ctx, typ)
	default:
		concept, err = ex.backend.CreateEntity(ctx, typ)
	}
	if err != nil {
		return graph.Concept{}, err
	}

	for _, rp := range b.players {
		player, err := ex.Get(ctx, rp.player)
		if err != nil {
			return graph.Concept{}, err
		}
		if err := ex.backend.AttachRolePlayer(ctx, concept, rp.role, player); err != nil {
			return graph.Concept{}, err
		}
	}
	return concept, nil
}

func (b *conceptBuilder) resolveType(ctx context.Context, ex *Executor) (graph.Concept, error) {
	switch {
	case !b.typ.IsZero():
		return b.typ, nil
	case b.label != "":
		return ex.backend.ResolveType(ctx, b.label)
	}
	return graph.Concept{}, &UndefinedVarError{
		Pattern: fmt.Sprintf("%s (no type information)", ex.printable(b.subject)),
	}
}
