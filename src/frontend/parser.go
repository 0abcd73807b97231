// The parser is a hand-written recursive-descent parser, one function
// per grammar rule, in the same style as the teacher's goyacc grammar
// but without a generated table: each nonterminal reads a lookahead
// token and dispatches on it directly.
package frontend

import (
	"fmt"

	"lcompiler/src/ast"
)

type parser struct {
	toks []Token
	pos  int
}

func newParser(toks []Token) *parser {
	return &parser{toks: toks}
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) peekKind() Kind { return p.cur().Kind }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) pos2() ast.Pos {
	t := p.cur()
	return ast.Pos{Line: t.Line, Col: t.Col}
}

func (p *parser) expect(k Kind) (Token, error) {
	if p.peekKind() != k {
		t := p.cur()
		return t, fmt.Errorf("line %d:%d: expected %s, got %s", t.Line, t.Col, k, t.Kind)
	}
	return p.advance(), nil
}

// parseProgram parses { declaration }.
func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.peekKind() != EOF {
		d, err := p.declaration()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog, nil
}

// declaration parses a scalar, vector or function declaration. A
// function starts with "fonction"; a scalar or vector starts with
// "entier". An "entier" identifier followed by '(' is also parsed as a
// function declaration.
func (p *parser) declaration() (ast.TopLevel, error) {
	pos := p.pos2()
	if p.peekKind() == KwFonction {
		p.advance()
		id, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		return p.funcDecl(pos, id.Val)
	}
	if _, err := p.expect(KwEntier); err != nil {
		return nil, err
	}
	id, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	switch p.peekKind() {
	case LParen:
		return p.funcDecl(pos, id.Val)
	case LBracket:
		p.advance()
		n, err := p.expect(Int)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBracket); err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.VectorDecl{Pos: pos, Id: id.Val, Count: atoi(n.Val)}, nil
	default:
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.ScalarDecl{Pos: pos, Id: id.Val}, nil
	}
}

func (p *parser) funcDecl(pos ast.Pos, id string) (*ast.FuncDecl, error) {
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	var params []*ast.ScalarDecl
	for p.peekKind() != RParen {
		ppos := p.pos2()
		if _, err := p.expect(KwEntier); err != nil {
			return nil, err
		}
		pid, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.ScalarDecl{Pos: ppos, Id: pid.Val})
		if p.peekKind() == Comma {
			p.advance()
		}
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}

	var locals []*ast.ScalarDecl
	for p.peekKind() == KwEntier {
		lpos := p.pos2()
		p.advance()
		lid, err := p.expect(Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		locals = append(locals, &ast.ScalarDecl{Pos: lpos, Id: lid.Val})
	}

	var body []ast.Stmt
	for p.peekKind() != RBrace {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Pos: pos, Id: id, Params: params, Locals: locals, Body: body}, nil
}

func (p *parser) stmt() (ast.Stmt, error) {
	pos := p.pos2()
	switch p.peekKind() {
	case Semicolon:
		p.advance()
		return &ast.NopStmt{Pos: pos}, nil
	case KwRetour:
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Pos: pos, Expr: e}, nil
	case KwEcrire:
		p.advance()
		if _, err := p.expect(LParen); err != nil {
			return nil, err
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.WriteStmt{Pos: pos, Expr: e}, nil
	case KwSi:
		return p.ifStmt(pos)
	case KwTantque:
		return p.whileStmt(pos)
	case Ident:
		return p.assignOrCall(pos)
	default:
		t := p.cur()
		return nil, fmt.Errorf("line %d:%d: unexpected token %s in statement", t.Line, t.Col, t.Kind)
	}
}

func (p *parser) block() ([]ast.Stmt, error) {
	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.peekKind() != RBrace {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(RBrace); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) ifStmt(pos ast.Pos) (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(KwAlors); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var els []ast.Stmt
	if p.peekKind() == KwSinon {
		p.advance()
		els, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Pos: pos, Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) whileStmt(pos ast.Pos) (ast.Stmt, error) {
	p.advance()
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(KwFaire); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
}

// assignOrCall disambiguates "id = expr;", "id[expr] = expr;" and
// "id(args);" — all three start with an identifier.
func (p *parser) assignOrCall(pos ast.Pos) (ast.Stmt, error) {
	id, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}
	switch p.peekKind() {
	case LParen:
		call, err := p.callTail(pos, id.Val)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Pos: pos, Call: call}, nil
	case LBracket:
		p.advance()
		idx, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBracket); err != nil {
			return nil, err
		}
		if _, err := p.expect(Assign); err != nil {
			return nil, err
		}
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Pos: pos, Left: &ast.IndexLValue{Pos: pos, Id: id.Val, Index: idx}, Right: rhs}, nil
	default:
		if _, err := p.expect(Assign); err != nil {
			return nil, err
		}
		rhs, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(Semicolon); err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Pos: pos, Left: &ast.IdentLValue{Pos: pos, Id: id.Val}, Right: rhs}, nil
	}
}

func (p *parser) callTail(pos ast.Pos, id string) (*ast.CallExpr, error) {
	p.advance()
	var args []ast.Expr
	for p.peekKind() != RParen {
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.peekKind() == Comma {
			p.advance()
		}
	}
	if _, err := p.expect(RParen); err != nil {
		return nil, err
	}
	return &ast.CallExpr{Pos: pos, Id: id, Args: args}, nil
}

// expr := or
func (p *parser) expr() (ast.Expr, error) { return p.orExpr() }

func (p *parser) orExpr() (ast.Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == Pipe {
		pos := p.pos2()
		p.advance()
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: pos, Op: ast.Or, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) andExpr() (ast.Expr, error) {
	left, err := p.notExpr()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == Amp {
		pos := p.pos2()
		p.advance()
		right, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: pos, Op: ast.And, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) notExpr() (ast.Expr, error) {
	if p.peekKind() == Bang {
		pos := p.pos2()
		p.advance()
		e, err := p.notExpr()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: pos, Op: ast.Not, Expr: e}, nil
	}
	return p.relExpr()
}

func (p *parser) relExpr() (ast.Expr, error) {
	left, err := p.addExpr()
	if err != nil {
		return nil, err
	}
	switch p.peekKind() {
	case EqEq:
		pos := p.pos2()
		p.advance()
		right, err := p.addExpr()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Pos: pos, Op: ast.Equal, Left: left, Right: right}, nil
	case Less:
		pos := p.pos2()
		p.advance()
		right, err := p.addExpr()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Pos: pos, Op: ast.LessThan, Left: left, Right: right}, nil
	default:
		return left, nil
	}
}

func (p *parser) addExpr() (ast.Expr, error) {
	left, err := p.mulExpr()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == Plus || p.peekKind() == Minus {
		pos := p.pos2()
		op := ast.Add
		if p.peekKind() == Minus {
			op = ast.Sub
		}
		p.advance()
		right, err := p.mulExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) mulExpr() (ast.Expr, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.peekKind() == Star || p.peekKind() == Slash {
		pos := p.pos2()
		op := ast.Mul
		if p.peekKind() == Slash {
			op = ast.Div
		}
		p.advance()
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) primary() (ast.Expr, error) {
	pos := p.pos2()
	switch p.peekKind() {
	case Int:
		t := p.advance()
		return &ast.IntLit{Pos: pos, Value: int32(atoi(t.Val))}, nil
	case KwLire:
		p.advance()
		if _, err := p.expect(LParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return &ast.ReadExpr{Pos: pos}, nil
	case LParen:
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}
		return e, nil
	case Ident:
		id := p.advance()
		switch p.peekKind() {
		case LParen:
			return p.callTail(pos, id.Val)
		case LBracket:
			p.advance()
			idx, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBracket); err != nil {
				return nil, err
			}
			return &ast.LValueExpr{Pos: pos, LValue: &ast.IndexLValue{Pos: pos, Id: id.Val, Index: idx}}, nil
		default:
			return &ast.LValueExpr{Pos: pos, LValue: &ast.IdentLValue{Pos: pos, Id: id.Val}}, nil
		}
	default:
		t := p.cur()
		return nil, fmt.Errorf("line %d:%d: unexpected token %s in expression", t.Line, t.Col, t.Kind)
	}
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
