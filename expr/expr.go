// Package expr implements the sum-typed Expression tree of §3/§4.3: a
// per-row evaluable AST (Literal, Sibling, Foreign, Identity, Call,
// Comparison) plus the algebraic optimizer (Prepare).
package expr

import (
	"fmt"
	"strings"

	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

// EvalContext bundles the inputs Apply needs: the current row, an
// optional foreign (joined) row, and the Identity placeholder value used
// during calculate (§4.3: "Identity returns input_value").
type EvalContext struct {
	Row     schema.Row
	Foreign *schema.Row
	Input   value.Value
}

// Expression is the common interface of every tree variant (§3).
type Expression interface {
	// Apply evaluates this expression against ctx.
	Apply(ctx EvalContext) value.Value
	// IsConstant reports whether this expression is deterministic and has
	// no sibling/foreign/identity dependency -- it always evaluates to
	// the same Value regardless of row.
	IsConstant() bool
	// DependsOnSiblings reports whether evaluation reads the current row.
	DependsOnSiblings() bool
	// DependsOnForeigns reports whether evaluation reads a foreign row.
	DependsOnForeigns() bool
	// SiblingDependencies returns the set of sibling columns referenced,
	// in first-encountered order, deduplicated case-insensitively.
	SiblingDependencies() []schema.Column
	// Prepare returns a semantically equivalent, optimized expression
	// (§4.3); Prepare is idempotent and safe to call repeatedly.
	Prepare() Expression
	String() string
}

// Literal is a constant Value.
type Literal struct{ Value value.Value }

func NewLiteral(v value.Value) *Literal                  { return &Literal{Value: v} }
func (l *Literal) Apply(EvalContext) value.Value         { return l.Value }
func (l *Literal) IsConstant() bool                      { return true }
func (l *Literal) DependsOnSiblings() bool                { return false }
func (l *Literal) DependsOnForeigns() bool                { return false }
func (l *Literal) SiblingDependencies() []schema.Column   { return nil }
func (l *Literal) Prepare() Expression                    { return l }
func (l *Literal) String() string                         { return l.Value.ToString() }

// Sibling references the current row's column.
type Sibling struct{ Column schema.Column }

func NewSibling(c schema.Column) *Sibling { return &Sibling{Column: c} }
func (s *Sibling) Apply(ctx EvalContext) value.Value { return ctx.Row.Get(s.Column) }
func (s *Sibling) IsConstant() bool                  { return false }
func (s *Sibling) DependsOnSiblings() bool           { return true }
func (s *Sibling) DependsOnForeigns() bool           { return false }
func (s *Sibling) SiblingDependencies() []schema.Column {
	return []schema.Column{s.Column}
}
func (s *Sibling) Prepare() Expression { return s }
func (s *Sibling) String() string      { return s.Column.Name() }

// Foreign references a row from a joined foreign dataset.
type Foreign struct{ Column schema.Column }

func NewForeign(c schema.Column) *Foreign { return &Foreign{Column: c} }
func (f *Foreign) Apply(ctx EvalContext) value.Value {
	if ctx.Foreign == nil {
		return value.Invalid
	}
	return ctx.Foreign.Get(f.Column)
}
func (f *Foreign) IsConstant() bool                    { return false }
func (f *Foreign) DependsOnSiblings() bool             { return false }
func (f *Foreign) DependsOnForeigns() bool             { return true }
func (f *Foreign) SiblingDependencies() []schema.Column { return nil }
func (f *Foreign) Prepare() Expression                  { return f }
func (f *Foreign) String() string                       { return "foreign." + f.Column.Name() }

// Identity is the "current value" placeholder used during calculate.
type Identity struct{}

func NewIdentity() *Identity                              { return &Identity{} }
func (Identity) Apply(ctx EvalContext) value.Value        { return ctx.Input }
func (Identity) IsConstant() bool                         { return false }
func (Identity) DependsOnSiblings() bool                  { return false }
func (Identity) DependsOnForeigns() bool                  { return false }
func (Identity) SiblingDependencies() []schema.Column     { return nil }
func (i *Identity) Prepare() Expression                   { return i }
func (Identity) String() string                           { return "$" }

// Call invokes a named Function over evaluated argument expressions.
type Call struct {
	Fn   *function.Function
	Args []Expression
}

func NewCall(fn *function.Function, args ...Expression) *Call {
	return &Call{Fn: fn, Args: args}
}

func (c *Call) Apply(ctx EvalContext) value.Value {
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Apply(ctx)
	}
	return c.Fn.Eval(args)
}

func (c *Call) IsConstant() bool {
	if !c.Fn.Deterministic {
		return false
	}
	for _, a := range c.Args {
		if !a.IsConstant() {
			return false
		}
	}
	return true
}

func (c *Call) DependsOnSiblings() bool {
	for _, a := range c.Args {
		if a.DependsOnSiblings() {
			return true
		}
	}
	return false
}

func (c *Call) DependsOnForeigns() bool {
	for _, a := range c.Args {
		if a.DependsOnForeigns() {
			return true
		}
	}
	return false
}

func (c *Call) SiblingDependencies() []schema.Column {
	return dedupColumns(collectSiblingDeps(c.Args))
}

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Fn.Name, strings.Join(parts, ", "))
}

// Comparison applies a Binary operator to two evaluated expressions.
type Comparison struct {
	Left, Right Expression
	Op          value.Binary
}

func NewComparison(left Expression, op value.Binary, right Expression) *Comparison {
	return &Comparison{Left: left, Right: right, Op: op}
}

func (c *Comparison) Apply(ctx EvalContext) value.Value {
	return c.Left.Apply(ctx).ApplyBinary(c.Op, c.Right.Apply(ctx))
}
func (c *Comparison) IsConstant() bool {
	return c.Left.IsConstant() && c.Right.IsConstant()
}
func (c *Comparison) DependsOnSiblings() bool {
	return c.Left.DependsOnSiblings() || c.Right.DependsOnSiblings()
}
func (c *Comparison) DependsOnForeigns() bool {
	return c.Left.DependsOnForeigns() || c.Right.DependsOnForeigns()
}
func (c *Comparison) SiblingDependencies() []schema.Column {
	return dedupColumns(append(c.Left.SiblingDependencies(), c.Right.SiblingDependencies()...))
}
func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

func collectSiblingDeps(exprs []Expression) []schema.Column {
	var out []schema.Column
	for _, e := range exprs {
		out = append(out, e.SiblingDependencies()...)
	}
	return out
}

func dedupColumns(cols []schema.Column) []schema.Column {
	seen := make(map[string]bool, len(cols))
	var out []schema.Column
	for _, c := range cols {
		if !seen[c.Key()] {
			seen[c.Key()] = true
			out = append(out, c)
		}
	}
	return out
}
