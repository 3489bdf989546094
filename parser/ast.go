package parser

import (
	"fmt"
	"strings"

	"Core/lexer"
	"Core/scope"

	"github.com/llir/llvm/ir"
)

// AST is implemented by every parse-tree node. The tree mirrors the grammar
// one struct per production and is never mutated after parsing, except for
// the scope-frame slots owned by the block statements.
type AST interface {
	fmt.Stringer
}

// StmtAST is the dispatch interface for the statement alternatives. Each
// pass walks the tree through it: check in check.go, execute in execute.go,
// compile in codegen.go, render below.
type StmtAST interface {
	AST
	check(c *checker, cur *scope.Frame) error
	execute(rt *runtime, cur *scope.Frame) error
	compile(g *generator, block *ir.Block) (*ir.Block, error)
	render(sb *strings.Builder, indent int)
}

// ProgramAST is the root: declarations, then the statement body.
type ProgramAST struct {
	Decls *DeclSeqAST
	Stmts *StmtSeqAST
}

func (p *ProgramAST) String() string {
	var sb strings.Builder
	sb.WriteString("program\n")
	p.Decls.render(&sb, 1)
	sb.WriteString("begin\n")
	p.Stmts.render(&sb, 1)
	sb.WriteString("end\n")
	return sb.String()
}

// DeclSeqAST is a right-recursive run of declarations.
type DeclSeqAST struct {
	Decl *DeclAST
	Rest *DeclSeqAST
}

func (d *DeclSeqAST) String() string {
	var sb strings.Builder
	d.render(&sb, 0)
	return sb.String()
}

func (d *DeclSeqAST) render(sb *strings.Builder, indent int) {
	d.Decl.render(sb, indent)
	if d.Rest != nil {
		d.Rest.render(sb, indent)
	}
}

// DeclAST is one "int IdList;" declaration. It remembers the frame it
// last executed against so a loop body can re-run the same declaration
// without tripping the duplicate guard (the variables keep their values).
type DeclAST struct {
	Ids       *IdListAST
	lastFrame *scope.Frame
}

func (d *DeclAST) String() string {
	return "int " + d.Ids.String() + ";"
}

func (d *DeclAST) render(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("\t", indent))
	sb.WriteString(d.String())
	sb.WriteByte('\n')
}

// IdListAST is a right-recursive comma-separated identifier list.
type IdListAST struct {
	Id   *IdentAST
	Rest *IdListAST
}

func (l *IdListAST) String() string {
	if l.Rest != nil {
		return l.Id.String() + ", " + l.Rest.String()
	}
	return l.Id.String()
}

// IdentAST is a single identifier occurrence.
type IdentAST struct {
	Name string
}

func (id *IdentAST) String() string {
	return id.Name
}

// StmtSeqAST is a right-recursive run of statements.
type StmtSeqAST struct {
	Stmt StmtAST
	Rest *StmtSeqAST
}

func (s *StmtSeqAST) String() string {
	var sb strings.Builder
	s.render(&sb, 0)
	return sb.String()
}

func (s *StmtSeqAST) render(sb *strings.Builder, indent int) {
	s.Stmt.render(sb, indent)
	if s.Rest != nil {
		s.Rest.render(sb, indent)
	}
}

// AssignAST is "Id = Expr;".
type AssignAST struct {
	Target *IdentAST
	Value  *ExprAST
}

func (a *AssignAST) String() string {
	return a.Target.String() + " = " + a.Value.String() + ";"
}

func (a *AssignAST) render(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("\t", indent))
	sb.WriteString(a.String())
	sb.WriteByte('\n')
}

// IfAST owns one scope frame per visit: a fresh frame is attached every
// time the statement executes, so branch-local variables never survive
// from one visit to the next. Then and else share the frame.
type IfAST struct {
	Cond  *CondAST
	Then  *StmtSeqAST
	Else  *StmtSeqAST
	local *scope.Frame
}

func (i *IfAST) String() string {
	s := "if " + i.Cond.String() + " then ..."
	if i.Else != nil {
		s += " else ..."
	}
	return s + " endif"
}

func (i *IfAST) render(sb *strings.Builder, indent int) {
	tabs := strings.Repeat("\t", indent)
	sb.WriteString(tabs)
	sb.WriteString("if " + i.Cond.String() + " then\n")
	i.Then.render(sb, indent+1)
	if i.Else != nil {
		sb.WriteString(tabs)
		sb.WriteString("else\n")
		i.Else.render(sb, indent+1)
	}
	sb.WriteString(tabs)
	sb.WriteString("endif\n")
}

// WhileAST owns one scope frame per execution of the loop statement,
// reused across every iteration: variables declared in the body keep
// their values from one iteration to the next.
type WhileAST struct {
	Cond  *CondAST
	Body  *StmtSeqAST
	local *scope.Frame
}

func (w *WhileAST) String() string {
	return "while " + w.Cond.String() + " begin ... endwhile"
}

func (w *WhileAST) render(sb *strings.Builder, indent int) {
	tabs := strings.Repeat("\t", indent)
	sb.WriteString(tabs)
	sb.WriteString("while " + w.Cond.String() + " begin\n")
	w.Body.render(sb, indent+1)
	sb.WriteString(tabs)
	sb.WriteString("endwhile\n")
}

// InputAST is "input Id;".
type InputAST struct {
	Target *IdentAST
}

func (in *InputAST) String() string {
	return "input " + in.Target.String() + ";"
}

func (in *InputAST) render(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("\t", indent))
	sb.WriteString(in.String())
	sb.WriteByte('\n')
}

// OutputAST is "output Expr;".
type OutputAST struct {
	Value *ExprAST
}

func (o *OutputAST) String() string {
	return "output " + o.Value.String() + ";"
}

func (o *OutputAST) render(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("\t", indent))
	sb.WriteString(o.String())
	sb.WriteByte('\n')
}

// ExprAST is "Term ((+|-) Expr)?". The tail is the right operand of the
// whole expression, so chains associate to the right: 2-3-4 is 2-(3-4).
type ExprAST struct {
	Left  *TermAST
	Op    int
	Right *ExprAST
}

func (e *ExprAST) String() string {
	if e.Right != nil {
		return e.Left.String() + opText(e.Op) + e.Right.String()
	}
	return e.Left.String()
}

// TermAST is "Factor (* Term)?", right-recursive like ExprAST.
type TermAST struct {
	Left  *FactorAST
	Right *TermAST
}

func (t *TermAST) String() string {
	if t.Right != nil {
		return t.Left.String() + "*" + t.Right.String()
	}
	return t.Left.String()
}

// FactorAST is an identifier, a constant, or a parenthesized expression.
// Exactly one of the three fields is set.
type FactorAST struct {
	Id    *IdentAST
	Num   *ConstAST
	Paren *ExprAST
}

func (f *FactorAST) String() string {
	switch {
	case f.Id != nil:
		return f.Id.String()
	case f.Num != nil:
		return f.Num.String()
	}
	return "(" + f.Paren.String() + ")"
}

// ConstAST is an integer constant.
type ConstAST struct {
	Val int64
}

func (c *ConstAST) String() string {
	return fmt.Sprintf("%d", c.Val)
}

// CondAST is "!(Cond)" when Not is set, otherwise "Cmpr (| Cond)?".
type CondAST struct {
	Not  *CondAST
	Cmpr *CmprAST
	Or   *CondAST
}

func (c *CondAST) String() string {
	if c.Not != nil {
		return "!(" + c.Not.String() + ")"
	}
	if c.Or != nil {
		return c.Cmpr.String() + "|" + c.Or.String()
	}
	return c.Cmpr.String()
}

// CmprAST compares two expressions with ==, <, or <=.
type CmprAST struct {
	Left  *ExprAST
	Op    int
	Right *ExprAST
}

func (c *CmprAST) String() string {
	return c.Left.String() + opText(c.Op) + c.Right.String()
}

// opText renders an operator token inside an expression listing.
func opText(op int) string {
	switch op {
	case lexer.TokEqual:
		return "=="
	case lexer.TokLessEqual:
		return "<="
	}
	return string(rune(op))
}
