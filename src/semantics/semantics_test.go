package semantics

import (
	"testing"

	"lcompiler/src/ast"
	"lcompiler/src/symtab"
)

func mainFunc(body ...ast.Stmt) *ast.FuncDecl {
	return &ast.FuncDecl{Id: "main", Body: body}
}

func program(decls ...ast.TopLevel) *ast.Program {
	return &ast.Program{Decls: decls}
}

func TestScalarAssignToGlobal(t *testing.T) {
	prog := program(
		&ast.ScalarDecl{Id: "x"},
		mainFunc(&ast.AssignStmt{
			Left:  &ast.IdentLValue{Id: "x"},
			Right: &ast.IntLit{Value: 1},
		}),
	)

	tabs, diags := Analyse(prog)
	if !Ok(diags) {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	g := tabs.Table(tabs.Global())
	if len(g.Symbols) != 2 {
		t.Fatalf("global table has %d symbols, want 2 (x, main)", len(g.Symbols))
	}
	if g.Symbols[0].Id != "x" || g.Symbols[0].Address != 0 {
		t.Fatalf("x symbol = %+v, want address 0", g.Symbols[0])
	}
	fn, ok := g.Symbols[1].Kind.(symtab.Function)
	if !ok || g.Symbols[1].Id != "main" {
		t.Fatalf("main symbol = %+v", g.Symbols[1])
	}
	if len(tabs.Table(fn.Child).Symbols) != 0 {
		t.Fatalf("main's child table is not empty")
	}
}

func TestDuplicateGlobalAndMissingMain(t *testing.T) {
	prog := program(
		&ast.ScalarDecl{Id: "x"},
		&ast.ScalarDecl{Id: "x"},
	)

	_, diags := Analyse(prog)

	var kinds []Kind
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	if len(kinds) != 2 || kinds[0] != AlreadyDeclared || kinds[1] != MainUndeclared {
		t.Fatalf("diagnostics = %v, want [AlreadyDeclared MainUndeclared]", kinds)
	}
}

func TestUndeclaredIdentifier(t *testing.T) {
	prog := program(mainFunc(&ast.AssignStmt{
		Left:  &ast.IdentLValue{Id: "y"},
		Right: &ast.IntLit{Value: 1},
	}))

	_, diags := Analyse(prog)
	if len(diags) != 1 || diags[0].Kind != Undeclared {
		t.Fatalf("diagnostics = %v, want [Undeclared]", diags)
	}
}

func TestVectorWithoutIndice(t *testing.T) {
	prog := program(
		&ast.VectorDecl{Id: "t", Count: 3},
		mainFunc(&ast.AssignStmt{
			Left:  &ast.IdentLValue{Id: "t"},
			Right: &ast.IntLit{Value: 1},
		}),
	)

	_, diags := Analyse(prog)
	if len(diags) != 1 || diags[0].Kind != VectorWithoutIndice {
		t.Fatalf("diagnostics = %v, want [VectorWithoutIndice]", diags)
	}
}

func TestScalarWithIndice(t *testing.T) {
	prog := program(
		&ast.ScalarDecl{Id: "x"},
		mainFunc(&ast.AssignStmt{
			Left:  &ast.IndexLValue{Id: "x", Index: &ast.IntLit{Value: 0}},
			Right: &ast.IntLit{Value: 1},
		}),
	)

	_, diags := Analyse(prog)
	if len(diags) != 1 || diags[0].Kind != ScalarWithIndice {
		t.Fatalf("diagnostics = %v, want [ScalarWithIndice]", diags)
	}
}

func TestInvalidFunctionArguments(t *testing.T) {
	prog := program(
		&ast.FuncDecl{Id: "f", Params: []*ast.ScalarDecl{{Id: "a"}}, Body: []ast.Stmt{
			&ast.ReturnStmt{Expr: &ast.IntLit{Value: 0}},
		}},
		mainFunc(&ast.ExprStmt{Call: &ast.CallExpr{Id: "f"}}),
	)

	_, diags := Analyse(prog)
	if len(diags) != 1 || diags[0].Kind != InvalidFunctionArguments {
		t.Fatalf("diagnostics = %v, want [InvalidFunctionArguments]", diags)
	}
}

func TestLocalShadowsGlobalIsWarningByDefault(t *testing.T) {
	prog := program(
		&ast.ScalarDecl{Id: "x"},
		&ast.FuncDecl{Id: "main", Locals: []*ast.ScalarDecl{{Id: "x"}}, Body: []ast.Stmt{
			&ast.AssignStmt{Left: &ast.IdentLValue{Id: "x"}, Right: &ast.IntLit{Value: 1}},
		}},
	)

	_, diags := Analyse(prog)
	if len(diags) != 1 || diags[0].Kind != VariableShadowing {
		t.Fatalf("diagnostics = %v, want [VariableShadowing]", diags)
	}
	if !Ok(diags) {
		t.Fatalf("a shadowing warning must not fail analysis")
	}
}

func TestLocalShadowsGlobalIsErrorWhenConfigured(t *testing.T) {
	prog := program(
		&ast.ScalarDecl{Id: "x"},
		&ast.FuncDecl{Id: "main", Locals: []*ast.ScalarDecl{{Id: "x"}}, Body: nil},
	)

	_, diags := AnalyseWithOptions(prog, Options{ShadowingIsError: true})
	if len(diags) != 1 || diags[0].Kind != AlreadyDeclared {
		t.Fatalf("diagnostics = %v, want [AlreadyDeclared]", diags)
	}
	if Ok(diags) {
		t.Fatalf("promoted shadowing must fail analysis")
	}
}

func TestLocalShadowsArgumentIsConflict(t *testing.T) {
	prog := program(&ast.FuncDecl{
		Id:     "main",
		Params: []*ast.ScalarDecl{{Id: "a"}},
		Locals: []*ast.ScalarDecl{{Id: "a"}},
	})

	_, diags := Analyse(prog)
	if len(diags) != 1 || diags[0].Kind != AlreadyDeclared {
		t.Fatalf("diagnostics = %v, want [AlreadyDeclared]", diags)
	}
}
