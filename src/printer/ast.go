package printer

import (
	"fmt"
	"strings"

	"lcompiler/src/ast"
)

// Tree renders prog as an indented tree, one node per line, each child
// padded two columns further right than its parent — the same
// depth-padding scheme the teacher's IR node printer used.
func Tree(prog *ast.Program) string {
	var sb strings.Builder
	for _, d := range prog.Decls {
		printTopLevel(&sb, d, 0)
	}
	return sb.String()
}

func pad(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
}

func printTopLevel(sb *strings.Builder, d ast.TopLevel, depth int) {
	switch n := d.(type) {
	case *ast.ScalarDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "scalar %s\n", n.Id)
	case *ast.VectorDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "vector %s[%d]\n", n.Id, n.Count)
	case *ast.FuncDecl:
		pad(sb, depth)
		fmt.Fprintf(sb, "function %s\n", n.Id)
		for _, p := range n.Params {
			pad(sb, depth+1)
			fmt.Fprintf(sb, "param %s\n", p.Id)
		}
		for _, l := range n.Locals {
			pad(sb, depth+1)
			fmt.Fprintf(sb, "local %s\n", l.Id)
		}
		for _, s := range n.Body {
			printStmt(sb, s, depth+1)
		}
	}
}

func printStmt(sb *strings.Builder, s ast.Stmt, depth int) {
	pad(sb, depth)
	switch n := s.(type) {
	case *ast.AssignStmt:
		fmt.Fprintf(sb, "assign %s = %s\n", ast.Render(&ast.LValueExpr{LValue: n.Left}), ast.Render(n.Right))
	case *ast.ExprStmt:
		fmt.Fprintf(sb, "expr %s\n", ast.Render(n.Call))
	case *ast.ReturnStmt:
		fmt.Fprintf(sb, "return %s\n", ast.Render(n.Expr))
	case *ast.IfStmt:
		fmt.Fprintf(sb, "if %s\n", ast.Render(n.Cond))
		for _, s2 := range n.Then {
			printStmt(sb, s2, depth+1)
		}
		if len(n.Else) > 0 {
			pad(sb, depth)
			sb.WriteString("else\n")
			for _, s2 := range n.Else {
				printStmt(sb, s2, depth+1)
			}
		}
	case *ast.WhileStmt:
		fmt.Fprintf(sb, "while %s\n", ast.Render(n.Cond))
		for _, s2 := range n.Body {
			printStmt(sb, s2, depth+1)
		}
	case *ast.WriteStmt:
		fmt.Fprintf(sb, "write %s\n", ast.Render(n.Expr))
	case *ast.NopStmt:
		sb.WriteString("nop\n")
	}
}
