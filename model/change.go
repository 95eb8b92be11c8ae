package model

import "fmt"

// State is the desired presence of an attribute set.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

func ParseState(s string) (State, error) {
	switch State(s) {
	case StatePresent, StateAbsent:
		return State(s), nil
	case "":
		return StatePresent, nil
	}
	return "", &ValidationError{Field: "state", Msg: fmt.Sprintf("invalid state %q: must be one of present, absent", s)}
}

// Operation selects how chattr combines the given attributes with the current ones.
type Operation int

const (
	OpAdd Operation = iota
	OpRemove
	OpSet
)

// Flag returns the chattr mode prefix of the operation.
func (o Operation) Flag() string {
	switch o {
	case OpAdd:
		return "+"
	case OpRemove:
		return "-"
	default:
		return "="
	}
}

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	default:
		return "set"
	}
}

// DesiredChange describes the single path reconciliation.
type DesiredChange struct {
	Path      string
	Attrs     AttributeSet
	State     State
	Recursive bool
}

// Operation maps the desired state to the chattr operation that converges it.
func (d DesiredChange) Operation() Operation {
	if d.State == StateAbsent {
		return OpRemove
	}
	return OpAdd
}

// NeedsChange reports whether current differs from the desired state.
func (d DesiredChange) NeedsChange(current AttributeSet) bool {
	if d.State == StateAbsent {
		return d.Attrs.Intersects(current)
	}
	return d.Attrs.MissingFrom(current)
}

// Result is reported after every run.
// Attr is either a PathAttributes or a ChangeBatch depending on the mode.
type Result struct {
	Changed bool   `json:"changed"`
	Failed  bool   `json:"failed,omitempty"`
	Msg     string `json:"msg"`
	Attr    any    `json:"attr"`
}
