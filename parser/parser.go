package parser

import (
	"fmt"

	"Core/errors"
	"Core/lexer"
)

// Parser builds the parse tree top-down with one token of lookahead and no
// backtracking. Each grammar production has a parse method; the grammar's
// right-recursive sequences fall out of the recursion as written, so
// 2-3-4 parses as 2-(3-4).
type Parser struct {
	lexer *lexer.Lexer
}

func NewParser(lex *lexer.Lexer) *Parser {
	p := &Parser{lexer: lex}
	// Load the first token
	p.lexer.NextToken()
	return p
}

// ParseProgram parses a complete program and verifies that nothing follows
// the closing end.
func (p *Parser) ParseProgram() (*ProgramAST, error) {
	if err := p.expect(lexer.TokProgram); err != nil {
		return nil, err
	}

	decls, err := p.parseDeclSeq()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.TokBegin); err != nil {
		return nil, err
	}

	stmts, err := p.parseStmtSeq()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.TokEnd); err != nil {
		return nil, err
	}

	if p.lexer.CurrTok != lexer.TokEOF {
		return nil, errors.New(errors.TrailingTokensAfterEnd,
			"declarations following end statement: found %s", p.found())
	}

	return &ProgramAST{Decls: decls, Stmts: stmts}, nil
}

// expect consumes the current token after checking its kind.
func (p *Parser) expect(tok int) error {
	if p.lexer.CurrTok != tok {
		return errors.New(errors.UnexpectedToken, "expected %s, found %s",
			lexer.TokenName(tok), p.found())
	}
	p.lexer.NextToken()
	return nil
}

// found names the current token for error messages, including the payload
// for identifiers and constants.
func (p *Parser) found() string {
	switch p.lexer.CurrTok {
	case lexer.TokIdentifier:
		return fmt.Sprintf("identifier %q", p.lexer.Ident)
	case lexer.TokNumber:
		return fmt.Sprintf("constant %d", p.lexer.NumVal)
	case lexer.TokError:
		return fmt.Sprintf("invalid constant %q", p.lexer.Ident)
	}
	return lexer.TokenName(p.lexer.CurrTok)
}

func (p *Parser) parseDeclSeq() (*DeclSeqAST, error) {
	decl, err := p.parseDecl()
	if err != nil {
		return nil, err
	}

	seq := &DeclSeqAST{Decl: decl}
	if p.lexer.CurrTok != lexer.TokBegin {
		seq.Rest, err = p.parseDeclSeq()
		if err != nil {
			return nil, err
		}
	}
	return seq, nil
}

func (p *Parser) parseDecl() (*DeclAST, error) {
	if err := p.expect(lexer.TokInt); err != nil {
		return nil, err
	}

	ids, err := p.parseIdList()
	if err != nil {
		return nil, err
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}

	return &DeclAST{Ids: ids}, nil
}

func (p *Parser) parseIdList() (*IdListAST, error) {
	id, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	list := &IdListAST{Id: id}
	if p.lexer.CurrTok == ',' {
		// Eat ,
		p.lexer.NextToken()
		list.Rest, err = p.parseIdList()
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (p *Parser) parseIdent() (*IdentAST, error) {
	if p.lexer.CurrTok != lexer.TokIdentifier {
		return nil, errors.New(errors.UnexpectedToken, "expected identifier, found %s", p.found())
	}

	name := p.lexer.Ident
	p.lexer.NextToken()

	return &IdentAST{Name: name}, nil
}

func (p *Parser) parseStmtSeq() (*StmtSeqAST, error) {
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}

	seq := &StmtSeqAST{Stmt: stmt}
	if !p.atStmtSeqEnd() {
		seq.Rest, err = p.parseStmtSeq()
		if err != nil {
			return nil, err
		}
	}
	return seq, nil
}

// atStmtSeqEnd reports whether the current token closes the enclosing
// statement sequence.
func (p *Parser) atStmtSeqEnd() bool {
	switch p.lexer.CurrTok {
	case lexer.TokEnd, lexer.TokEndIf, lexer.TokEndWhile, lexer.TokElse:
		return true
	}
	return false
}

func (p *Parser) parseStmt() (StmtAST, error) {
	switch p.lexer.CurrTok {
	case lexer.TokIdentifier:
		return p.parseAssign()
	case lexer.TokInput:
		return p.parseInput()
	case lexer.TokOutput:
		return p.parseOutput()
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokInt:
		return p.parseDecl()
	}
	return nil, errors.New(errors.UnexpectedToken, "bad start to statement: found %s", p.found())
}

func (p *Parser) parseAssign() (*AssignAST, error) {
	target, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	if err := p.expect('='); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}

	return &AssignAST{Target: target, Value: value}, nil
}

func (p *Parser) parseIf() (*IfAST, error) {
	// Eat "if"
	p.lexer.NextToken()

	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.TokThen); err != nil {
		return nil, err
	}

	then, err := p.parseStmtSeq()
	if err != nil {
		return nil, err
	}

	node := &IfAST{Cond: cond, Then: then}
	if p.lexer.CurrTok == lexer.TokElse {
		// Eat "else"
		p.lexer.NextToken()
		node.Else, err = p.parseStmtSeq()
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(lexer.TokEndIf); err != nil {
		return nil, err
	}

	return node, nil
}

func (p *Parser) parseWhile() (*WhileAST, error) {
	// Eat "while"
	p.lexer.NextToken()

	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.TokBegin); err != nil {
		return nil, err
	}

	body, err := p.parseStmtSeq()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.TokEndWhile); err != nil {
		return nil, err
	}

	return &WhileAST{Cond: cond, Body: body}, nil
}

func (p *Parser) parseInput() (*InputAST, error) {
	// Eat "input"
	p.lexer.NextToken()

	target, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}

	return &InputAST{Target: target}, nil
}

func (p *Parser) parseOutput() (*OutputAST, error) {
	// Eat "output"
	p.lexer.NextToken()

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}

	return &OutputAST{Value: value}, nil
}

func (p *Parser) parseExpr() (*ExprAST, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	expr := &ExprAST{Left: left}
	if p.lexer.CurrTok == '+' || p.lexer.CurrTok == '-' {
		expr.Op = p.lexer.CurrTok
		// Eat + or -
		p.lexer.NextToken()
		expr.Right, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func (p *Parser) parseTerm() (*TermAST, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	term := &TermAST{Left: left}
	if p.lexer.CurrTok == '*' {
		// Eat *
		p.lexer.NextToken()
		term.Right, err = p.parseTerm()
		if err != nil {
			return nil, err
		}
	}
	return term, nil
}

func (p *Parser) parseFactor() (*FactorAST, error) {
	switch p.lexer.CurrTok {
	case lexer.TokIdentifier:
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		return &FactorAST{Id: id}, nil

	case lexer.TokNumber:
		num := &ConstAST{Val: p.lexer.NumVal}
		p.lexer.NextToken()
		return &FactorAST{Num: num}, nil

	case '(':
		// Eat (
		p.lexer.NextToken()

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &FactorAST{Paren: inner}, nil
	}

	return nil, errors.New(errors.UnexpectedToken,
		`expected identifier, constant, or "(", found %s`, p.found())
}

func (p *Parser) parseCond() (*CondAST, error) {
	if p.lexer.CurrTok == '!' {
		// Eat !
		p.lexer.NextToken()

		if err := p.expect('('); err != nil {
			return nil, err
		}

		inner, err := p.parseCond()
		if err != nil {
			return nil, err
		}

		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return &CondAST{Not: inner}, nil
	}

	cmpr, err := p.parseCmpr()
	if err != nil {
		return nil, err
	}

	cond := &CondAST{Cmpr: cmpr}
	if p.lexer.CurrTok == '|' {
		// Eat |
		p.lexer.NextToken()
		cond.Or, err = p.parseCond()
		if err != nil {
			return nil, err
		}
	}
	return cond, nil
}

func (p *Parser) parseCmpr() (*CmprAST, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	op := p.lexer.CurrTok
	if op != lexer.TokEqual && op != '<' && op != lexer.TokLessEqual {
		return nil, errors.New(errors.UnexpectedToken,
			"expected comparison operator, found %s", p.found())
	}
	// Eat the operator
	p.lexer.NextToken()

	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &CmprAST{Left: left, Op: op, Right: right}, nil
}
