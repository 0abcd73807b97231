package util

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestWriterInstructionHelpers(t *testing.T) {
	w := &Writer{}
	w.Label("fmain")
	w.Ins1("push", "rbp")
	w.Ins2("mov", "rbp", "rsp")
	w.Ins3("add", "rax", "rbx", "rcx")

	want := "fmain:\n\tpush\trbp\n\tmov\trbp, rsp\n\tadd\trax, rbx, rcx\n"
	if got := w.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestWriterFlushResetsBuffer(t *testing.T) {
	w := &Writer{}
	w.WriteString("hello\n")

	var sb strings.Builder
	if err := w.Flush(&sb); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sb.String() != "hello\n" {
		t.Fatalf("Flush wrote %q", sb.String())
	}
	if w.String() != "" {
		t.Fatalf("buffer not reset after Flush: %q", w.String())
	}
}

func TestErrorListIgnoresNil(t *testing.T) {
	var el ErrorList
	el.Append(nil)
	el.Append(errors.New("first"))
	el.Append(errors.New("second"))

	if el.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", el.Len())
	}
	got := el.Errors()
	if got[0].Error() != "first" || got[1].Error() != "second" {
		t.Fatalf("Errors() = %v", got)
	}
}

func TestStackPushPopPeek(t *testing.T) {
	var s Stack
	s.Push(1)
	s.Push(2)
	s.Push(3)

	if s.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", s.Size())
	}
	if s.Peek() != 3 {
		t.Fatalf("Peek() = %v, want 3", s.Peek())
	}
	if v := s.Pop(); v != 3 {
		t.Fatalf("Pop() = %v, want 3", v)
	}
	if v := s.Pop(); v != 2 {
		t.Fatalf("Pop() = %v, want 2", v)
	}
	if s.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", s.Size())
	}
}

func TestStackPopEmpty(t *testing.T) {
	var s Stack
	if v := s.Pop(); v != nil {
		t.Fatalf("Pop() on empty stack = %v, want nil", v)
	}
}

func TestStackIgnoresNilPush(t *testing.T) {
	var s Stack
	s.Push(nil)
	if s.Size() != 0 {
		t.Fatalf("Size() = %d, want 0 after pushing nil", s.Size())
	}
}

func TestParseArgsFlags(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()

	os.Args = []string{"lcc", "-ts", "-o", "out.s", "-shadow-error", "prog.l"}
	opt, err := ParseArgs()
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !opt.TokenStream || opt.Out != "out.s" || !opt.ShadowingIsError || opt.Src != "prog.l" {
		t.Fatalf("ParseArgs() = %+v", opt)
	}
}

func TestParseArgsMissingOutputPath(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()

	os.Args = []string{"lcc", "-o"}
	if _, err := ParseArgs(); err == nil {
		t.Fatal("expected error for -o with no path")
	}
}

func TestParseArgsUnknownFlag(t *testing.T) {
	old := os.Args
	defer func() { os.Args = old }()

	os.Args = []string{"lcc", "-bogus"}
	if _, err := ParseArgs(); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
