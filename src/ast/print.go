package ast

import (
	"strconv"
	"strings"
)

// Render returns the human-readable text of e, the same way the original
// tree's Display implementation did. The TAC generator calls this single
// helper whenever it needs to embed an expression in a comment; nothing
// else in the compiler re-derives expression text.
func Render(e Expr) string {
	var sb strings.Builder
	render(&sb, e)
	return sb.String()
}

func render(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *IntLit:
		sb.WriteString(strconv.Itoa(int(n.Value)))
	case *LValueExpr:
		renderLValue(sb, n.LValue)
	case *CallExpr:
		sb.WriteString(n.Id)
		sb.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			render(sb, a)
		}
		sb.WriteByte(')')
	case *ReadExpr:
		sb.WriteString("lire()")
	case *UnaryExpr:
		sb.WriteString(n.Op.String())
		sb.WriteByte('(')
		render(sb, n.Expr)
		sb.WriteByte(')')
	case *BinaryExpr:
		sb.WriteByte('(')
		render(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		render(sb, n.Right)
		sb.WriteByte(')')
	default:
		sb.WriteString("<?>")
	}
}

func renderLValue(sb *strings.Builder, lv LValue) {
	switch n := lv.(type) {
	case *IdentLValue:
		sb.WriteString(n.Id)
	case *IndexLValue:
		sb.WriteString(n.Id)
		sb.WriteByte('[')
		render(sb, n.Index)
		sb.WriteByte(']')
	default:
		sb.WriteString("<?>")
	}
}
