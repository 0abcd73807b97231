package printer

import (
	"fmt"
	"strings"

	"lcompiler/src/symtab"
)

const divider = "------------------------------------------"

// SymbolTable renders the listing contract: one block per function
// declared in the global table, each bounded by divider lines. base is
// one past the function's index in the global table and sommet is base
// plus the number of the function's child-table symbols. The block then
// lists, numbered consecutively from 0, the global symbols up to and
// including the function itself, followed by the function's own
// child-table symbols, which occupy the indices [base, sommet).
func SymbolTable(tabs *symtab.Tables) string {
	var sb strings.Builder
	global := tabs.Table(tabs.Global())

	for gi, sym := range global.Symbols {
		fn, ok := sym.Kind.(symtab.Function)
		if !ok {
			continue
		}
		base := gi + 1
		child := tabs.Table(fn.Child)
		sommet := base + len(child.Symbols)

		sb.WriteString(divider + "\n")
		fmt.Fprintf(&sb, "base = %d\n", base)
		fmt.Fprintf(&sb, "sommet = %d\n", sommet)

		idx := 0
		for ; idx < base; idx++ {
			fmt.Fprintf(&sb, "%d %s\n", idx, symbolLine(global.Symbols[idx]))
		}
		for _, csym := range child.Symbols {
			fmt.Fprintf(&sb, "%d %s\n", idx, symbolLine(csym))
			idx++
		}
		sb.WriteString(divider + "\n")
	}
	return sb.String()
}

func symbolLine(s symtab.Symbol) string {
	var scope symtab.Scope
	var kind string
	var additional int

	switch k := s.Kind.(type) {
	case symtab.Scalar:
		scope, kind, additional = k.Scope, "ENTIER", 1
	case symtab.Vector:
		scope, kind, additional = k.Scope, "TABLEAU", k.Size
	case symtab.Function:
		scope, kind, additional = symtab.Global, "FONCTION", k.Arity
	}
	return fmt.Sprintf("%s %s %s %d %d", s.Id, scope, kind, s.Address, additional)
}
