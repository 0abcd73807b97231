// Package tac lowers a semantically analysed program into three-address
// code: a flat, append-only instruction list in which every instruction
// touches at most two source operands and one destination.
package tac

import "lcompiler/src/symtab"

// Constant is an immediate integer operand.
type Constant struct {
	Value int32
}

// Label names a jump target. Two Labels with the same Name refer to the
// same instruction.
type Label struct {
	Name string
}

// Temp is a synthetic operand introduced during lowering. Its identity
// is its ID; ThreeAddressCode.LastUse looks up its last-use index in a
// side table rather than carrying a mutable field, since Go values are
// copied freely and a shared mutable cell would fight that.
type Temp struct {
	ID uint32
}

// Variable is a named operand resolved against the symbol table: Id is
// the surface identifier prefixed with "v", Scope and Address are
// copied from the resolved symbol, and Indice is non-nil for an
// indexed vector access.
type Variable struct {
	Id      string
	Indice  *CT
	Address int
	Scope   symtab.Scope
}

// CTV is the sum type of operands accepted wherever a Constant, Temp or
// Variable may appear: arithmetic/assign sources, write/param/ret
// values, jump-if operands.
type CTV interface {
	ctv()
}

// TV is the sum type of operands accepted as a destination: Temp or
// Variable.
type TV interface {
	CTV
	tv()
}

// CT is the sum type of operands accepted as a vector index: Constant
// or Temp (never a bare Variable — the generator forces any Variable
// index through an assignment first).
type CT interface {
	CTV
	ct()
}

func (Constant) ctv() {}
func (Constant) ct()  {}

func (Temp) ctv() {}
func (Temp) tv()  {}
func (Temp) ct()  {}

func (Variable) ctv() {}
func (Variable) tv()  {}

// ArithOp is one of the four arithmetic operators.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// Condition is a jump-if comparison.
type Condition int

const (
	Less Condition = iota
	LessOrEqual
	Equal
	NotEqual
	Greater
	GreaterOrEqual
)

func (c Condition) String() string {
	switch c {
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	default:
		return "?"
	}
}
