package parser

import (
	"github.com/nooga/esparse/pkg/ast"
	"github.com/nooga/esparse/pkg/lexer"
)

// label is an entry of the enclosing label set. Kind is "loop", "switch"
// or "" for a labelled non-loop statement.
type label struct {
	Name           string
	Kind           string
	StatementStart int
}

// flowPragma records what the leading comments said about the file.
type flowPragma int

const (
	pragmaUnknown flowPragma = iota // still looking
	pragmaFlow                      // @flow
	pragmaNoFlow                    // @noflow
	pragmaNone                      // settled without a pragma
)

// State is everything a speculative parse may change. Restoring a snapshot
// taken with clone undoes a failed trial completely.
type State struct {
	lexer.State

	InFunction      bool
	InAsync         bool
	InMethod        string // "", "constructor", "method", "get" or "set"
	InClassProperty bool
	InParameters    bool
	ClassLevel      int

	// Dialect flags
	NoAnonFunctionType        bool
	InPossibleArrowParams     bool
	NoArrowAt                 []int
	NoArrowParamsConversionAt []int

	// PotentialArrowAt is the start of an atom that may turn out to be
	// arrow parameters, or -1.
	PotentialArrowAt int

	// YieldInArrowParams is the first `yield` seen while the current
	// parenthesized list could still become arrow parameters.
	YieldInArrowParams int

	Labels              []label
	DecoratorStack      [][]*ast.Node
	ExportedIdentifiers []string

	FlowPragma flowPragma
	Depth      int
}

func newState(startLine int, strict bool) State {
	s := State{
		State:              lexer.NewState(startLine),
		PotentialArrowAt:   -1,
		YieldInArrowParams: -1,
		DecoratorStack:     [][]*ast.Node{{}},
	}
	s.Strict = strict
	return s
}

// clone returns a snapshot of s that later changes to s cannot disturb.
// Nil slices stay nil.
func (s *State) clone() State {
	c := *s
	c.State = s.State.Clone()
	c.NoArrowAt = cloneInts(s.NoArrowAt)
	c.NoArrowParamsConversionAt = cloneInts(s.NoArrowParamsConversionAt)
	if s.Labels != nil {
		c.Labels = make([]label, len(s.Labels))
		copy(c.Labels, s.Labels)
	}
	if s.DecoratorStack != nil {
		c.DecoratorStack = make([][]*ast.Node, len(s.DecoratorStack))
		for i, ds := range s.DecoratorStack {
			if ds != nil {
				c.DecoratorStack[i] = append(make([]*ast.Node, 0, len(ds)), ds...)
			}
		}
	}
	if s.ExportedIdentifiers != nil {
		c.ExportedIdentifiers = make([]string, len(s.ExportedIdentifiers))
		copy(c.ExportedIdentifiers, s.ExportedIdentifiers)
	}
	return c
}

func cloneInts(xs []int) []int {
	if xs == nil {
		return nil
	}
	c := make([]int, len(xs))
	copy(c, xs)
	return c
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
