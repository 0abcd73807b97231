package nasm

import (
	"strings"
	"testing"

	"lcompiler/src/frontend"
	"lcompiler/src/semantics"
	"lcompiler/src/tac"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	prog, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tabs, diags := semantics.Analyse(prog)
	if !semantics.Ok(diags) {
		t.Fatalf("analysis failed: %v", diags)
	}
	code := tac.Generate(prog, tabs)
	return Generate(tabs, code)
}

func TestGenerateEmitsFunctionAndEntryPoint(t *testing.T) {
	out := compile(t, `
fonction main() {
	ecrire(1);
	retour 0;
}`)
	for _, want := range []string{"_start:", "fmain:", "push\trbp", "call\twrite_int", "ret"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateGlobalAndCall(t *testing.T) {
	out := compile(t, `
entier total;

fonction add(entier a, entier b) {
	retour a + b;
}

fonction main() {
	total = add(1, 2);
	retour 0;
}`)
	for _, want := range []string{"vtotal: resb 4", "fadd:", "call\tfadd", "add\trsp, 16"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateVectorIndexing(t *testing.T) {
	out := compile(t, `
entier v[4];

fonction main() {
	v[0] = 1;
	retour 0;
}`)
	if !strings.Contains(out, "vv: resb 16") {
		t.Fatalf("output missing vector reservation:\n%s", out)
	}
	if !strings.Contains(out, "imul\trcx, rcx, 4") {
		t.Fatalf("output missing index scaling:\n%s", out)
	}
}
