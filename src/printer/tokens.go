package printer

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"lcompiler/src/frontend"
)

// TokenStream renders toks as a three-column table: value, type and
// source position, the same shape the teacher's token dump used.
func TokenStream(toks []frontend.Token) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 10, 2, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Value\tType\tPosition\n")
	for _, t := range toks {
		val := t.Val
		if len(val) > 20 {
			val = val[:17] + "..."
		}
		_, _ = fmt.Fprintf(tw, "%q\t%s\tline %d:%d\n", val, t.Kind, t.Line, t.Col)
	}
	_ = tw.Flush()
	return sb.String()
}
