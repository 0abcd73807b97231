// Package semantics walks a parsed program, populates a symbol table and
// reports every problem it finds rather than stopping at the first one,
// the same way a user expects from a batch compiler.
package semantics

import (
	"fmt"

	"lcompiler/src/ast"
	"lcompiler/src/symtab"
)

// Kind identifies the class of a Diagnostic.
type Kind int

const (
	AlreadyDeclared Kind = iota
	Undeclared
	VectorWithoutIndice
	ScalarWithIndice
	TypeConversion
	InvalidFunctionArguments
	MainUndeclared
	VariableShadowing
)

func (k Kind) String() string {
	switch k {
	case AlreadyDeclared:
		return "AlreadyDeclared"
	case Undeclared:
		return "Undeclared"
	case VectorWithoutIndice:
		return "VectorWithoutIndice"
	case ScalarWithIndice:
		return "ScalarWithIndice"
	case TypeConversion:
		return "TypeConversion"
	case InvalidFunctionArguments:
		return "InvalidFunctionArguments"
	case MainUndeclared:
		return "MainUndeclared"
	case VariableShadowing:
		return "VariableShadowing"
	default:
		return "?"
	}
}

// Diagnostic is one semantic error or warning produced by Analyse.
type Diagnostic struct {
	Kind    Kind
	Pos     ast.Pos
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s at %s", d.Kind, d.Message, d.Pos)
}

// IsWarning reports whether d is non-fatal. The only warning kind today
// is VariableShadowing, unless Options.ShadowingIsError asked for it to
// be promoted to an error at analysis time, in which case it is emitted
// as AlreadyDeclared instead and this never sees it.
func (d Diagnostic) IsWarning() bool {
	return d.Kind == VariableShadowing
}

// Ok reports whether diags contains no fatal diagnostic.
func Ok(diags []Diagnostic) bool {
	for _, d := range diags {
		if !d.IsWarning() {
			return false
		}
	}
	return true
}

// Options configures analyser behaviour left open by the language
// definition.
type Options struct {
	// ShadowingIsError promotes a local/argument declaration that
	// shadows a global from a VariableShadowing warning to an
	// AlreadyDeclared error. Default false: shadowing is permitted.
	ShadowingIsError bool
}

// Analyse walks prog and returns the populated symbol table together
// with every diagnostic found. The table is valid to consume even when
// diags contains errors; callers should check Ok(diags) first.
func Analyse(prog *ast.Program) (*symtab.Tables, []Diagnostic) {
	return AnalyseWithOptions(prog, Options{})
}

// AnalyseWithOptions is Analyse with explicit Options.
func AnalyseWithOptions(prog *ast.Program, opts Options) (*symtab.Tables, []Diagnostic) {
	tabs := symtab.New()
	w := &walker{tabs: tabs, table: tabs.Global(), scope: symtab.Global, opts: opts}
	w.walkProgram(prog)
	return tabs, w.diags
}

// walker carries the mutable state of the walk: current table, current
// scope, next free address in that scope, and the accumulated
// diagnostics.
type walker struct {
	tabs  *symtab.Tables
	table int
	scope symtab.Scope
	addr  int
	diags []Diagnostic
	opts  Options
}

func (w *walker) emit(kind Kind, pos ast.Pos, msg string) {
	w.diags = append(w.diags, Diagnostic{Kind: kind, Pos: pos, Message: msg})
}

func (w *walker) walkProgram(p *ast.Program) {
	for _, d := range p.Decls {
		switch n := d.(type) {
		case *ast.ScalarDecl:
			w.declareGlobal(n.Id, n.Pos, n.Size(), symtab.Scalar{Scope: symtab.Global})
		case *ast.VectorDecl:
			w.declareGlobal(n.Id, n.Pos, n.Size(), symtab.Vector{Scope: symtab.Global, Size: n.Count})
		case *ast.FuncDecl:
			w.walkFuncDecl(n)
		}
	}
	if sym, _, ok := w.tabs.Lookup(w.tabs.Global(), "main"); !ok || !isFunction(sym.Kind) {
		w.emit(MainUndeclared, ast.Pos{}, `function "main" is not declared`)
	}
}

func isFunction(k symtab.Kind) bool {
	_, ok := k.(symtab.Function)
	return ok
}

func (w *walker) declareGlobal(id string, pos ast.Pos, size int, kind symtab.Kind) {
	for _, s := range w.tabs.Table(w.tabs.Global()).Symbols {
		if s.Id == id {
			w.emit(AlreadyDeclared, pos, fmt.Sprintf("%q already declared", id))
			return
		}
	}
	w.tabs.Append(w.table, symtab.Symbol{Id: id, Address: w.addr, Kind: kind})
	w.addr += size
}

func (w *walker) walkFuncDecl(f *ast.FuncDecl) {
	for _, s := range w.tabs.Table(w.tabs.Global()).Symbols {
		if s.Id == f.Id && isFunction(s.Kind) {
			w.emit(AlreadyDeclared, f.Pos, fmt.Sprintf("function %q already declared", f.Id))
			return
		}
	}

	child := w.tabs.NewChild(w.table)
	w.tabs.Append(w.table, symtab.Symbol{Id: f.Id, Address: 0, Kind: symtab.Function{Arity: f.Arity(), Child: child}})

	savedTable, savedScope, savedAddr := w.table, w.scope, w.addr
	w.table, w.scope, w.addr = child, symtab.Argument, 0
	for _, p := range f.Params {
		w.declareLocal(p, symtab.Argument)
	}
	w.scope, w.addr = symtab.Local, 0
	for _, l := range f.Locals {
		w.declareLocal(l, symtab.Local)
	}
	for _, s := range f.Body {
		w.walkStmt(s)
	}
	w.table, w.scope, w.addr = savedTable, savedScope, savedAddr
}

// declareLocal adds a parameter or local scalar to the current
// (function) table, checking for a same-scope conflict, a local
// shadowing an argument, and a warning-level shadow of a global.
func (w *walker) declareLocal(d *ast.ScalarDecl, scope symtab.Scope) {
	conflict := false
	shadowsGlobal := false

	for _, s := range w.tabs.Table(w.table).Symbols {
		if s.Id != d.Id {
			continue
		}
		sc, ok := s.Kind.(symtab.Scalar)
		if !ok {
			continue
		}
		if sc.Scope == scope || (scope == symtab.Local && sc.Scope == symtab.Argument) {
			conflict = true
		}
	}
	if conflict {
		w.emit(AlreadyDeclared, d.Pos, fmt.Sprintf("%q already declared", d.Id))
		return
	}

	for _, s := range w.tabs.Table(w.tabs.Global()).Symbols {
		if s.Id == d.Id {
			shadowsGlobal = true
			break
		}
	}

	w.tabs.Append(w.table, symtab.Symbol{Id: d.Id, Address: w.addr, Kind: symtab.Scalar{Scope: scope}})
	w.addr += d.Size()

	if shadowsGlobal {
		if w.opts.ShadowingIsError {
			w.emit(AlreadyDeclared, d.Pos, fmt.Sprintf("%q shadows a global declaration", d.Id))
		} else {
			w.emit(VariableShadowing, d.Pos, fmt.Sprintf("%q shadows a global declaration", d.Id))
		}
	}
}

func (w *walker) walkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.AssignStmt:
		w.walkLValue(n.Left)
		w.walkExpr(n.Right)
	case *ast.ExprStmt:
		w.walkExpr(n.Call)
	case *ast.ReturnStmt:
		w.walkExpr(n.Expr)
	case *ast.IfStmt:
		w.walkExpr(n.Cond)
		for _, s2 := range n.Then {
			w.walkStmt(s2)
		}
		for _, s2 := range n.Else {
			w.walkStmt(s2)
		}
	case *ast.WhileStmt:
		w.walkExpr(n.Cond)
		for _, s2 := range n.Body {
			w.walkStmt(s2)
		}
	case *ast.WriteStmt:
		w.walkExpr(n.Expr)
	case *ast.NopStmt:
	}
}

func (w *walker) walkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
	case *ast.LValueExpr:
		w.walkLValue(n.LValue)
	case *ast.CallExpr:
		w.walkCall(n)
	case *ast.ReadExpr:
	case *ast.UnaryExpr:
		w.walkExpr(n.Expr)
	case *ast.BinaryExpr:
		w.walkExpr(n.Left)
		w.walkExpr(n.Right)
	}
}

func (w *walker) walkLValue(lv ast.LValue) {
	switch n := lv.(type) {
	case *ast.IdentLValue:
		sym, _, ok := w.tabs.Lookup(w.table, n.Id)
		if !ok || isFunction(sym.Kind) {
			w.emit(Undeclared, n.Pos, fmt.Sprintf("%q is not declared", n.Id))
			return
		}
		if _, isVector := sym.Kind.(symtab.Vector); isVector {
			w.emit(VectorWithoutIndice, n.Pos, fmt.Sprintf("%q is a vector and requires an index", n.Id))
		}
	case *ast.IndexLValue:
		w.walkExpr(n.Index)
		sym, _, ok := w.tabs.Lookup(w.table, n.Id)
		if !ok || isFunction(sym.Kind) {
			w.emit(Undeclared, n.Pos, fmt.Sprintf("%q is not declared", n.Id))
			return
		}
		if _, isScalar := sym.Kind.(symtab.Scalar); isScalar {
			w.emit(ScalarWithIndice, n.Pos, fmt.Sprintf("%q is a scalar and cannot be indexed", n.Id))
		}
	}
}

func (w *walker) walkCall(c *ast.CallExpr) {
	sym, _, ok := w.tabs.Lookup(w.table, c.Id)
	fn, isFunc := sym.Kind.(symtab.Function)
	switch {
	case !ok || !isFunc:
		w.emit(Undeclared, c.Pos, fmt.Sprintf("function %q is not declared", c.Id))
	case fn.Arity != len(c.Args):
		w.emit(InvalidFunctionArguments, c.Pos,
			fmt.Sprintf("function %q expects %d argument(s), got %d", c.Id, fn.Arity, len(c.Args)))
	}
	for _, a := range c.Args {
		w.walkExpr(a)
	}
}
