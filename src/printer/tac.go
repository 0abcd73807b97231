package printer

import (
	"fmt"
	"strconv"
	"strings"

	"lcompiler/src/tac"
)

// TAC renders code in the test-stable textual format: a 4-digit index,
// a fixed-width label field, the instruction body left-justified to 50
// columns, and a trailing comment when the instruction carries one.
func TAC(code *tac.ThreeAddressCode) string {
	var sb strings.Builder
	for i, instr := range code.Instructions {
		fmt.Fprintf(&sb, "%04d", i)
		if instr.Label != nil {
			fmt.Fprintf(&sb, " >%-8s", instr.Label.Name)
		} else {
			sb.WriteString(strings.Repeat(" ", 10))
		}
		sb.WriteString(" : ")
		fmt.Fprintf(&sb, "%-50s", body(instr.Kind))
		if instr.Comment != "" {
			sb.WriteString("; ")
			sb.WriteString(instr.Comment)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func body(k tac.Kind) string {
	switch n := k.(type) {
	case tac.Arithmetic:
		return fmt.Sprintf("%s = %s %s %s", operand(n.Dest), operand(n.Left), n.Op, operand(n.Right))
	case tac.Assign:
		return fmt.Sprintf("%s = %s", operand(n.Dest), operand(n.Value))
	case tac.Alloc:
		if n.Var != nil {
			return fmt.Sprintf("alloc %s %s", operand(n.Size), variable(*n.Var))
		}
		return fmt.Sprintf("alloc %s", operand(n.Size))
	case tac.Read:
		return fmt.Sprintf("%s = read", operand(n.Dest))
	case tac.Write:
		return fmt.Sprintf("write %s", operand(n.Value))
	case tac.Call:
		return fmt.Sprintf("%s = %s", operand(n.Dest), n.Label.Name)
	case tac.FBegin:
		return "fbegin"
	case tac.FEnd:
		return "fend"
	case tac.Param:
		return fmt.Sprintf("param %s", operand(n.Arg))
	case tac.Ret:
		return fmt.Sprintf("ret %s", operand(n.Value))
	case tac.Jump:
		return fmt.Sprintf("goto %s", n.Label.Name)
	case tac.JumpIf:
		return fmt.Sprintf("if %s %s %s goto %s", operand(n.Left), n.Cond, operand(n.Right), n.Label.Name)
	case tac.Nop:
		return "nop"
	default:
		return "?"
	}
}

// operand renders any CTV-family value (Constant, Temp, Variable).
func operand(v interface{}) string {
	switch n := v.(type) {
	case tac.Constant:
		return strconv.Itoa(int(n.Value))
	case tac.Temp:
		return fmt.Sprintf("t%d", n.ID)
	case tac.Variable:
		return variable(n)
	default:
		return "?"
	}
}

func variable(v tac.Variable) string {
	if v.Indice == nil {
		return v.Id
	}
	return fmt.Sprintf("%s[%s]", v.Id, operand(*v.Indice))
}
