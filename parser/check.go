package parser

import (
	"Core/errors"
	"Core/scope"
)

// identRole says how an identifier occurrence uses its variable. The
// checker dispatches on it when a walk reaches an IdentAST.
type identRole int

const (
	roleDeclare identRole = iota
	roleGet
	roleAssign
)

// checker carries the state of one semantic pass: the root of its own
// scope chain and the reads whose initialization is still unproven.
type checker struct {
	root    *scope.Frame
	pending []pendingRead
}

// pendingRead is a read of a declared variable that was not yet assigned
// when the walk reached it. Checking is flow-insensitive: an assignment
// anywhere in the owning scope settles the read, wherever it appears.
type pendingRead struct {
	frame *scope.Frame
	name  string
}

// Check validates the declaration and initialization of every identifier
// in prog: no redeclaration within a frame, no use of undeclared names,
// no read of a variable that is never assigned in its scope. Check builds
// its own scope chain, so repeated calls on the same tree are independent
// and reach the same verdict.
func Check(prog *ProgramAST) error {
	c := &checker{root: scope.NewFrame()}

	if err := prog.Decls.check(c, c.root); err != nil {
		return err
	}

	block := scope.NewFrame()
	c.root.AttachChild(block)
	defer c.root.DetachChild()

	if err := prog.Stmts.check(c, block); err != nil {
		return err
	}

	return c.settle()
}

// settle reports the first recorded read whose variable never became set
// anywhere in its scope.
func (c *checker) settle() error {
	for _, r := range c.pending {
		if !r.frame.IsSet(r.name) {
			return errors.New(errors.UninitializedVariable,
				"variable %s is never assigned in its scope", r.name)
		}
	}
	return nil
}

func (d *DeclSeqAST) check(c *checker, cur *scope.Frame) error {
	for seq := d; seq != nil; seq = seq.Rest {
		if err := seq.Decl.check(c, cur); err != nil {
			return err
		}
	}
	return nil
}

func (d *DeclAST) check(c *checker, cur *scope.Frame) error {
	for l := d.Ids; l != nil; l = l.Rest {
		if err := l.Id.check(c, cur, roleDeclare); err != nil {
			return err
		}
	}
	return nil
}

// check resolves one identifier occurrence under its role. Write marks the
// variable set; the checker never looks at values.
func (id *IdentAST) check(c *checker, cur *scope.Frame, role identRole) error {
	switch role {
	case roleDeclare:
		return cur.Declare(id.Name)

	case roleAssign:
		return c.root.Write(id.Name, 0)
	}

	// roleGet
	owner := c.root.Resolve(id.Name)
	if owner == nil {
		return errors.New(errors.UndeclaredVariable,
			"variable %s is not declared in any scope", id.Name)
	}
	if !owner.IsSet(id.Name) {
		c.pending = append(c.pending, pendingRead{frame: owner, name: id.Name})
	}
	return nil
}

func (s *StmtSeqAST) check(c *checker, cur *scope.Frame) error {
	for seq := s; seq != nil; seq = seq.Rest {
		if err := seq.Stmt.check(c, cur); err != nil {
			return err
		}
	}
	return nil
}

func (a *AssignAST) check(c *checker, cur *scope.Frame) error {
	// The value side first: a self-referencing assignment like x = x+1
	// records a pending read that its own write then settles.
	if err := a.Value.check(c, cur); err != nil {
		return err
	}
	return a.Target.check(c, cur, roleAssign)
}

func (i *IfAST) check(c *checker, cur *scope.Frame) error {
	if err := i.Cond.check(c, cur); err != nil {
		return err
	}

	local := scope.NewFrame()
	cur.AttachChild(local)
	defer cur.DetachChild()

	if err := i.Then.check(c, local); err != nil {
		return err
	}
	if i.Else != nil {
		return i.Else.check(c, local)
	}
	return nil
}

func (w *WhileAST) check(c *checker, cur *scope.Frame) error {
	if err := w.Cond.check(c, cur); err != nil {
		return err
	}

	local := scope.NewFrame()
	cur.AttachChild(local)
	defer cur.DetachChild()

	return w.Body.check(c, local)
}

func (in *InputAST) check(c *checker, cur *scope.Frame) error {
	return in.Target.check(c, cur, roleAssign)
}

func (o *OutputAST) check(c *checker, cur *scope.Frame) error {
	return o.Value.check(c, cur)
}

func (e *ExprAST) check(c *checker, cur *scope.Frame) error {
	if err := e.Left.check(c, cur); err != nil {
		return err
	}
	if e.Right != nil {
		return e.Right.check(c, cur)
	}
	return nil
}

func (t *TermAST) check(c *checker, cur *scope.Frame) error {
	if err := t.Left.check(c, cur); err != nil {
		return err
	}
	if t.Right != nil {
		return t.Right.check(c, cur)
	}
	return nil
}

func (f *FactorAST) check(c *checker, cur *scope.Frame) error {
	switch {
	case f.Id != nil:
		return f.Id.check(c, cur, roleGet)
	case f.Num != nil:
		return nil
	}
	return f.Paren.check(c, cur)
}

func (co *CondAST) check(c *checker, cur *scope.Frame) error {
	if co.Not != nil {
		return co.Not.check(c, cur)
	}
	if err := co.Cmpr.check(c, cur); err != nil {
		return err
	}
	if co.Or != nil {
		return co.Or.check(c, cur)
	}
	return nil
}

func (cm *CmprAST) check(c *checker, cur *scope.Frame) error {
	if err := cm.Left.check(c, cur); err != nil {
		return err
	}
	return cm.Right.check(c, cur)
}
