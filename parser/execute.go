package parser

import (
	"fmt"
	"io"

	"Core/errors"
	"Core/lexer"
	"Core/scope"
)

// runtime carries the mutable state of one execution: the root of the
// scope chain, the queue of input values, and the output sink.
type runtime struct {
	root  *scope.Frame
	input []int64
	out   io.Writer
}

// Execute runs prog against the input value queue, writing one decimal
// line per output statement. The first violation aborts the run with a
// typed error; output already written stays written. Execute builds a
// fresh scope chain, disjoint from any chain Check used.
func Execute(prog *ProgramAST, input []int64, out io.Writer) error {
	rt := &runtime{root: scope.NewFrame(), input: input, out: out}

	if err := prog.Decls.execute(rt, rt.root); err != nil {
		return err
	}

	block := scope.NewFrame()
	rt.root.AttachChild(block)
	defer rt.root.DetachChild()

	return prog.Stmts.execute(rt, block)
}

func (d *DeclSeqAST) execute(rt *runtime, cur *scope.Frame) error {
	for seq := d; seq != nil; seq = seq.Rest {
		if err := seq.Decl.execute(rt, cur); err != nil {
			return err
		}
	}
	return nil
}

func (d *DeclAST) execute(rt *runtime, cur *scope.Frame) error {
	// A loop body re-runs its declarations against the same frame on every
	// iteration; the names stay bound to their current values. Declaring
	// into a different frame, or a genuine duplicate, still goes through
	// Declare and its guard.
	if d.lastFrame == cur {
		return nil
	}

	for l := d.Ids; l != nil; l = l.Rest {
		if err := cur.Declare(l.Id.Name); err != nil {
			return err
		}
	}
	d.lastFrame = cur
	return nil
}

func (s *StmtSeqAST) execute(rt *runtime, cur *scope.Frame) error {
	for seq := s; seq != nil; seq = seq.Rest {
		if err := seq.Stmt.execute(rt, cur); err != nil {
			return err
		}
	}
	return nil
}

func (a *AssignAST) execute(rt *runtime, cur *scope.Frame) error {
	v, err := a.Value.execute(rt)
	if err != nil {
		return err
	}
	return rt.root.Write(a.Target.Name, v)
}

func (i *IfAST) execute(rt *runtime, cur *scope.Frame) error {
	ok, err := i.Cond.execute(rt)
	if err != nil {
		return err
	}

	// A fresh frame every visit; branch-local variables never survive
	// from one visit to the next.
	i.local = scope.NewFrame()
	cur.AttachChild(i.local)
	defer cur.DetachChild()

	if ok {
		return i.Then.execute(rt, i.local)
	}
	if i.Else != nil {
		return i.Else.execute(rt, i.local)
	}
	return nil
}

func (w *WhileAST) execute(rt *runtime, cur *scope.Frame) error {
	// One frame for the whole loop statement, reused across iterations:
	// variables declared in the body keep their values from one iteration
	// to the next.
	w.local = scope.NewFrame()
	cur.AttachChild(w.local)
	defer cur.DetachChild()

	for {
		ok, err := w.Cond.execute(rt)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := w.Body.execute(rt, w.local); err != nil {
			return err
		}
	}
}

func (in *InputAST) execute(rt *runtime, cur *scope.Frame) error {
	if len(rt.input) == 0 {
		return errors.New(errors.InputExhausted,
			"insufficient input values to complete execution")
	}
	v := rt.input[0]
	rt.input = rt.input[1:]

	return rt.root.Write(in.Target.Name, v)
}

func (o *OutputAST) execute(rt *runtime, cur *scope.Frame) error {
	v, err := o.Value.execute(rt)
	if err != nil {
		return err
	}
	fmt.Fprintf(rt.out, "%d\n", v)
	return nil
}

func (e *ExprAST) execute(rt *runtime) (int64, error) {
	left, err := e.Left.execute(rt)
	if err != nil {
		return 0, err
	}
	if e.Right == nil {
		return left, nil
	}

	right, err := e.Right.execute(rt)
	if err != nil {
		return 0, err
	}

	if e.Op == '+' {
		return left + right, nil
	}
	return left - right, nil
}

func (t *TermAST) execute(rt *runtime) (int64, error) {
	left, err := t.Left.execute(rt)
	if err != nil {
		return 0, err
	}
	if t.Right == nil {
		return left, nil
	}

	right, err := t.Right.execute(rt)
	if err != nil {
		return 0, err
	}
	return left * right, nil
}

func (f *FactorAST) execute(rt *runtime) (int64, error) {
	switch {
	case f.Id != nil:
		return rt.root.Read(f.Id.Name)
	case f.Num != nil:
		return f.Num.Val, nil
	}
	return f.Paren.execute(rt)
}

func (c *CondAST) execute(rt *runtime) (bool, error) {
	if c.Not != nil {
		ok, err := c.Not.execute(rt)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}

	ok, err := c.Cmpr.execute(rt)
	if err != nil {
		return false, err
	}
	if c.Or == nil {
		return ok, nil
	}

	// | evaluates both arms; it does not short-circuit
	other, err := c.Or.execute(rt)
	if err != nil {
		return false, err
	}
	return ok || other, nil
}

func (cm *CmprAST) execute(rt *runtime) (bool, error) {
	left, err := cm.Left.execute(rt)
	if err != nil {
		return false, err
	}
	right, err := cm.Right.execute(rt)
	if err != nil {
		return false, err
	}

	switch cm.Op {
	case '<':
		return left < right, nil
	case lexer.TokLessEqual:
		return left <= right, nil
	}
	return left == right, nil
}
