package util

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Options holds the parsed command-line configuration for a single
// compilation run.
type Options struct {
	Src         string // Path to source file. Empty means read stdin.
	Out         string // Path to output file. Empty means stdout.
	Verbose     bool   // Set by -vb; no compiler stage reads it.
	TokenStream bool   // Print the token stream and exit.
	Tree        bool   // Print the syntax tree and exit.
	SymbolTable bool   // Print the symbol table listing and exit.
	TAC         bool   // Print the three-address code listing and exit.
	NASM        bool   // Emit NASM assembly; also what happens when no other output flag is set.
	LLVM        bool   // Use the LLVM backend instead of the NASM backend.
	ShadowingIsError bool // Treat local-shadows-global as an error instead of a warning.
}

const appVersion = "lcompiler 1.0"

// ParseArgs parses os.Args[1:] into an Options value.
func ParseArgs() (Options, error) {
	opt := Options{}
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "--v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-o":
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return opt, fmt.Errorf("flag -o expects a path argument")
			}
			i++
			opt.Out = args[i]
		case "-ts":
			opt.TokenStream = true
		case "-tree":
			opt.Tree = true
		case "-st":
			opt.SymbolTable = true
		case "-tac":
			opt.TAC = true
		case "-nasm":
			opt.NASM = true
		case "-ll":
			opt.LLVM = true
		case "-vb":
			opt.Verbose = true
		case "-shadow-error":
			opt.ShadowingIsError = true
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	return opt, nil
}

func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, ' ', 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath to the output file. Defaults to stdout.")
	_, _ = fmt.Fprintln(w, "-ts\tPrint the token stream and exit.")
	_, _ = fmt.Fprintln(w, "-tree\tPrint the syntax tree and exit.")
	_, _ = fmt.Fprintln(w, "-st\tPrint the symbol table listing and exit.")
	_, _ = fmt.Fprintln(w, "-tac\tPrint the three-address code listing and exit.")
	_, _ = fmt.Fprintln(w, "-nasm\tEmit NASM assembly.")
	_, _ = fmt.Fprintln(w, "-ll\tUse the LLVM backend instead of NASM.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode. Accepted, but it does not change the output.")
	_, _ = fmt.Fprintln(w, "-shadow-error\tTreat local variables shadowing globals as an error.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits.")
	_ = w.Flush()
}
