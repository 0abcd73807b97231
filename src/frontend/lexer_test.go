package frontend

import "testing"

func lex(src string) []Token {
	l := newLexer(src)
	go l.run()
	var toks []Token
	for t := range l.tokens {
		toks = append(toks, t)
	}
	return toks
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	toks := lex("entier x;")
	want := []Kind{KwEntier, Ident, Semicolon, EOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
	if toks[1].Val != "x" {
		t.Fatalf("ident value = %q, want x", toks[1].Val)
	}
}

func TestLexerFunctionHeader(t *testing.T) {
	toks := lex("fonction main(entier a, entier b) { }")
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{
		KwFonction, Ident, LParen, KwEntier, Ident, Comma, KwEntier, Ident, RParen,
		LBrace, RBrace, EOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestLexerOperatorsAndComment(t *testing.T) {
	toks := lex("a == b & c | !d < 1 // trailing comment\n")
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{Ident, EqEq, Ident, Amp, Ident, Pipe, Bang, Ident, Less, Int, EOF}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("token %d: got %s, want %s", i, kinds[i], k)
		}
	}
}

func TestLexerLineTracking(t *testing.T) {
	toks := lex("entier x;\nentier y;")
	var lines []int
	for _, tok := range toks {
		if tok.Kind == Ident {
			lines = append(lines, tok.Line)
		}
	}
	if len(lines) != 2 || lines[0] != 1 || lines[1] != 2 {
		t.Fatalf("ident lines = %v, want [1 2]", lines)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	toks := lex("entier x @ ;")
	last := toks[len(toks)-1]
	found := false
	for _, tok := range toks {
		if tok.Kind == Error {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an Error token, got %v (last %v)", toks, last)
	}
}
