package main

import (
	"fmt"
	"os"

	"lcompiler/src/backend/llvm"
	"lcompiler/src/backend/nasm"
	"lcompiler/src/frontend"
	"lcompiler/src/printer"
	"lcompiler/src/semantics"
	"lcompiler/src/tac"
	"lcompiler/src/util"
)

// run reads source code and drives the compiler stages selected by
// opt, writing whichever artefact the caller asked for.
func run(opt util.Options) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	if opt.TokenStream {
		return util.WriteOutput(opt.Out, printer.TokenStream(frontend.Tokens(src)))
	}

	prog, err := frontend.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	if opt.Tree {
		return util.WriteOutput(opt.Out, printer.Tree(prog))
	}

	tabs, diags := semantics.AnalyseWithOptions(prog, semantics.Options{ShadowingIsError: opt.ShadowingIsError})
	errs := &util.ErrorList{}
	for _, d := range diags {
		if d.IsWarning() {
			fmt.Fprintln(os.Stderr, d)
			continue
		}
		errs.Append(fmt.Errorf("%s", d))
	}
	if errs.Len() > 0 {
		for _, e := range errs.Errors() {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("semantic analysis failed with %d error(s)", errs.Len())
	}

	if opt.SymbolTable {
		return util.WriteOutput(opt.Out, printer.SymbolTable(tabs))
	}

	code := tac.Generate(prog, tabs)

	if opt.TAC {
		return util.WriteOutput(opt.Out, printer.TAC(code))
	}

	if opt.LLVM {
		ir, err := llvm.Generate("lcc", code)
		if err != nil {
			return fmt.Errorf("llvm generation error: %s", err)
		}
		return util.WriteOutput(opt.Out, ir)
	}

	out := nasm.Generate(tabs, code)
	return util.WriteOutput(opt.Out, out)
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "argument error: %s\n", err)
		os.Exit(1)
	}
	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
