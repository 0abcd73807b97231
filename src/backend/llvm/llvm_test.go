package llvm

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
	out, err := Generate("main", code)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return out
}

func TestGenerateEmitsFunctionAndReturn(t *testing.T) {
	out := compile(t, `
fonction main() {
	ecrire(1);
	retour 0;
}`)
	for _, want := range []string{"define i32 @fmain()", "call void @write_int", "ret i32"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateGlobalAndCallWithArguments(t *testing.T) {
	out := compile(t, `
entier total;

fonction add(entier a, entier b) {
	retour a + b;
}

fonction main() {
	total = add(1, 2);
	retour 0;
}`)
	for _, want := range []string{
		"@vtotal = global i32 0",
		"define i32 @fadd(i32",
		"call i32 @fadd(i32",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateBranchesForIfAndWhile(t *testing.T) {
	out := compile(t, `
fonction main() {
	entier x;
	x = 0;
	tantque (x < 10) faire {
		x = x + 1;
	}
	si (x == 10) alors {
		ecrire(1);
	} sinon {
		ecrire(0);
	}
	retour 0;
}`)
	for _, want := range []string{"br i1", "icmp slt", "icmp eq"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
