package pattern

import (
	"github.com/google/uuid"
)

// Var is a placeholder for a concept to be resolved or constructed during one
// insert operation. A Var is either user-named or engine-generated
// (anonymous). Equality is structural, so a Var can key maps directly;
// equivalence between distinct Vars is tracked separately by the partition in
// the insert engine.
type Var struct {
	Name string
	Anon bool
}

// NewVar returns a user-named var.
func NewVar(name string) Var {
	return Var{Name: name}
}

// AnonVar returns a fresh engine-generated var. Anonymous vars are necessary
// scaffolding during execution but are suppressed from operation results.
func AnonVar() Var {
	return Var{Name: "v_" + uuid.NewString()[:8], Anon: true}
}

// UserDefined reports whether the var was named by the user.
func (v Var) UserDefined() bool {
	return !v.Anon
}

func (v Var) String() string {
	return "$" + v.Name
}
