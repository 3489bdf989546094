package parser

import (
	"bufio"
	"strings"
	"testing"

	"Core/errors"
	"Core/lexer"
)

// Test helper to run the parser over a source string
func parseString(src string) (*ProgramAST, error) {
	lex := lexer.NewLexer(bufio.NewReader(strings.NewReader(src)))
	return NewParser(lex).ParseProgram()
}

// Test helper for programs that must parse
func mustParse(t *testing.T, src string) *ProgramAST {
	t.Helper()
	prog, err := parseString(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return prog
}

// ===== Grammar Acceptance Tests =====

func TestProgramAcceptance(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		shouldPass bool
	}{
		{"minimal program", "program int x; begin x = 0; end", true},
		{"multiple declarations", "program int x; int y, z; begin x = 0; end", true},
		{"declaration as statement", "program int x; begin int y; y = 1; x = y; end", true},
		{"input and output", "program int x; begin input x; output x; end", true},
		{"if without else", "program int x; begin x = 0; if x < 1 then x = 1; endif end", true},
		{"if with else", "program int x; begin x = 0; if x == 1 then x = 2; else x = 3; endif end", true},
		{"while loop", "program int x; begin x = 0; while x < 3 begin x = x + 1; endwhile end", true},
		{"negated condition", "program int x; begin x = 0; if !(x == 1) then x = 1; endif end", true},
		{"or condition", "program int x; begin x = 0; if x == 1 | x < 5 then x = 1; endif end", true},
		{"all comparison operators", "program int x; begin x = 0; if x < 1 then x = 1; endif if x <= 1 then x = 2; endif if x == 2 then x = 3; endif end", true},
		{"parenthesized expression", "program int x; begin x = (1 + 2) * 3; end", true},
		{"nested parentheses", "program int x; begin x = ((1)); end", true},
		{"expression chain", "program int x; begin x = 1 + 2 - 3 * 4; end", true},

		{"no declarations", "program begin x = 0; end", false},
		{"empty body", "program int x; begin end", false},
		{"missing semicolon", "program int x begin x = 0; end", false},
		{"missing begin", "program int x; x = 0; end", false},
		{"missing end", "program int x; begin x = 0;", false},
		{"missing then", "program int x; begin if x < 1 x = 1; endif end", false},
		{"missing endif", "program int x; begin if x < 1 then x = 1; end", false},
		{"missing endwhile", "program int x; begin while x < 1 begin x = 1; end", false},
		{"missing comparison operator", "program int x; begin if x 1 then x = 1; endif end", false},
		{"negation without parens", "program int x; begin if !x == 1 then x = 1; endif end", false},
		{"assignment without target", "program int x; begin = 3; end", false},
		{"stray character", "program int x; begin x = $; end", false},
		{"unclosed paren", "program int x; begin x = (1 + 2; end", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseString(test.src)
			if test.shouldPass && err != nil {
				t.Errorf("expected parse to succeed, got: %v", err)
			}
			if !test.shouldPass && err == nil {
				t.Errorf("expected parse to fail but it succeeded")
			}
		})
	}
}

func TestParseErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
	}{
		{"bad token", "program int x; begin x = ; end", errors.UnexpectedToken},
		{"tokens after end", "program int x; begin x = 0; end int y;", errors.TrailingTokensAfterEnd},
		{"truncated input", "program int x; begin x = 0;", errors.UnexpectedToken},
		{"constant out of range", "program int x; begin x = 9223372036854775808; end", errors.UnexpectedToken},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseString(test.src)
			if err == nil {
				t.Fatalf("expected parse to fail")
			}
			if got := errors.KindOf(err); got != test.kind {
				t.Errorf("got error kind %s, want %s (err: %v)", got, test.kind, err)
			}
		})
	}
}

// ===== Tree Shape Tests =====

// firstStmt digs the first statement out of a parsed program.
func firstStmt(t *testing.T, src string) StmtAST {
	t.Helper()
	return mustParse(t, src).Stmts.Stmt
}

func TestExpressionRightAssociativity(t *testing.T) {
	assign, ok := firstStmt(t, "program int x; begin x = 2 - 3 - 4; end").(*AssignAST)
	if !ok {
		t.Fatalf("first statement is not an assignment")
	}

	// The tail of 2-3-4 must be the whole of 3-4: 2-(3-4)
	e := assign.Value
	if e.Op != '-' || e.Right == nil {
		t.Fatalf("outer expression did not split at the first -")
	}
	if e.Right.Op != '-' || e.Right.Right == nil {
		t.Fatalf("tail expression is not 3-4")
	}
	if e.Right.Right.Right != nil {
		t.Errorf("tail of the tail should be a bare term")
	}
}

func TestTermRightAssociativity(t *testing.T) {
	assign := firstStmt(t, "program int x; begin x = 2 * 3 * 4; end").(*AssignAST)

	term := assign.Value.Left
	if term.Right == nil {
		t.Fatalf("term did not split at the first *")
	}
	if term.Right.Right == nil {
		t.Errorf("tail term is not 3*4")
	}
}

func TestElseBindsToInnermostIf(t *testing.T) {
	src := `program int x; begin
		x = 0;
		if x < 1 then
			if x < 2 then x = 1; else x = 2; endif
		endif
	end`
	prog := mustParse(t, src)

	outer := prog.Stmts.Rest.Stmt.(*IfAST)
	if outer.Else != nil {
		t.Errorf("outer if should have no else branch")
	}
	inner := outer.Then.Stmt.(*IfAST)
	if inner.Else == nil {
		t.Errorf("inner if lost its else branch")
	}
}

// ===== Listing Tests =====

func TestProgramListing(t *testing.T) {
	src := "program int x, y; begin input x; if x < 2 then y = x * 3 + 1; else y = 0; endif output y; end"
	want := "program\n" +
		"\tint x, y;\n" +
		"begin\n" +
		"\tinput x;\n" +
		"\tif x<2 then\n" +
		"\t\ty = x*3+1;\n" +
		"\telse\n" +
		"\t\ty = 0;\n" +
		"\tendif\n" +
		"\toutput y;\n" +
		"end\n"

	if got := mustParse(t, src).String(); got != want {
		t.Errorf("listing mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestListingReparses(t *testing.T) {
	src := `program
		int n, total;
	begin
		input n;
		total = 0;
		while 0 < n begin
			int square;
			square = n * n;
			total = total + square;
			n = n - 1;
		endwhile
		output total;
	end`

	listing := mustParse(t, src).String()
	reparsed, err := parseString(listing)
	if err != nil {
		t.Fatalf("listing does not parse: %v", err)
	}
	if again := reparsed.String(); again != listing {
		t.Errorf("listing is not a fixed point:\nfirst:\n%s\nsecond:\n%s", listing, again)
	}
}
