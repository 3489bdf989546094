package parser

import (
	"fmt"

	"Core/lexer"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// generator holds the state of one lowering: the module under
// construction, the printf/scanf externs, and the stack of name-to-slot
// scopes that mirrors the interpreter's frame chain.
type generator struct {
	module  *ir.Module
	fn      *ir.Func
	entry   *ir.Block
	scopes  []map[string]*ir.InstAlloca
	printf  *ir.Func
	scanf   *ir.Func
	outFmt  *ir.Global
	inFmt   *ir.Global
	nblocks int
}

// Compile lowers a checked program to an LLVM IR module: a main function
// returning i32 0, one i64 slot per declared variable, printf for output
// and scanf for input (the input queue becomes stdin in compiled form).
// Compile trusts the check pass; a read of a slot that is never stored is
// undefined in the lowered program.
func Compile(prog *ProgramAST) (*ir.Module, error) {
	g := &generator{module: ir.NewModule()}

	i8ptr := types.NewPointer(types.I8)
	g.printf = g.module.NewFunc("printf", types.I32, ir.NewParam("format", i8ptr))
	g.printf.Sig.Variadic = true
	g.scanf = g.module.NewFunc("scanf", types.I32, ir.NewParam("format", i8ptr))
	g.scanf.Sig.Variadic = true

	g.outFmt = g.module.NewGlobalDef("fmt.out", constant.NewCharArrayFromString("%lld\n\x00"))
	g.inFmt = g.module.NewGlobalDef("fmt.in", constant.NewCharArrayFromString("%lld\x00"))

	g.fn = g.module.NewFunc("main", types.I32)
	g.entry = g.fn.NewBlock("entry")

	g.pushScope()
	block, err := prog.Decls.compile(g, g.entry)
	if err != nil {
		return nil, err
	}

	g.pushScope()
	block, err = prog.Stmts.compile(g, block)
	if err != nil {
		return nil, err
	}

	block.NewRet(constant.NewInt(types.I32, 0))

	return g.module, nil
}

func (g *generator) pushScope() {
	g.scopes = append(g.scopes, map[string]*ir.InstAlloca{})
}

func (g *generator) popScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

// declareSlot gives name an i64 slot in the innermost scope. Slots alloca
// in the entry block so a loop body's variables keep one slot across all
// iterations.
func (g *generator) declareSlot(name string) error {
	top := g.scopes[len(g.scopes)-1]
	if _, ok := top[name]; ok {
		return fmt.Errorf("duplicate slot for variable %s", name)
	}
	top[name] = g.entry.NewAlloca(types.I64)
	return nil
}

// lookupSlot resolves name innermost-first through the scope stack.
func (g *generator) lookupSlot(name string) (*ir.InstAlloca, error) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if slot, ok := g.scopes[i][name]; ok {
			return slot, nil
		}
	}
	return nil, fmt.Errorf("no slot for variable %s", name)
}

// newBlock appends a block to main with a unique, readable name.
func (g *generator) newBlock(name string) *ir.Block {
	g.nblocks++
	return g.fn.NewBlock(fmt.Sprintf("%s.%d", name, g.nblocks))
}

// formatPtr is the i8* to one of the format string globals.
func (g *generator) formatPtr(format *ir.Global) value.Value {
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(format.ContentType, format, zero, zero)
}

func (d *DeclSeqAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	for seq := d; seq != nil; seq = seq.Rest {
		next, err := seq.Decl.compile(g, block)
		if err != nil {
			return nil, err
		}
		block = next
	}
	return block, nil
}

func (d *DeclAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	for l := d.Ids; l != nil; l = l.Rest {
		if err := g.declareSlot(l.Id.Name); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func (s *StmtSeqAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	for seq := s; seq != nil; seq = seq.Rest {
		next, err := seq.Stmt.compile(g, block)
		if err != nil {
			return nil, err
		}
		block = next
	}
	return block, nil
}

func (a *AssignAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	v, err := a.Value.compile(g, block)
	if err != nil {
		return nil, err
	}

	slot, err := g.lookupSlot(a.Target.Name)
	if err != nil {
		return nil, err
	}
	block.NewStore(v, slot)

	return block, nil
}

func (i *IfAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	condVal, err := i.Cond.compile(g, block)
	if err != nil {
		return nil, err
	}

	ifBlock := g.newBlock("if-true-block")
	afterBlock := g.newBlock("if-after-block")

	// Then and else share one scope, like one frame per visit at run time
	g.pushScope()

	ifCurrentBlock, err := i.Then.compile(g, ifBlock)
	if err != nil {
		return nil, err
	}
	if ifCurrentBlock.Term == nil {
		ifCurrentBlock.NewBr(afterBlock)
	}

	if i.Else != nil {
		elseBlock := g.newBlock("if-false-block")
		elseCurrentBlock, err := i.Else.compile(g, elseBlock)
		if err != nil {
			return nil, err
		}
		if elseCurrentBlock.Term == nil {
			elseCurrentBlock.NewBr(afterBlock)
		}
		block.NewCondBr(condVal, ifBlock, elseBlock)
	} else {
		// No else
		block.NewCondBr(condVal, ifBlock, afterBlock)
	}

	g.popScope()

	return afterBlock, nil
}

func (w *WhileAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	testBlock := g.newBlock("while-test")
	loopBlock := g.newBlock("while-loop")
	afterBlock := g.newBlock("while-after")

	block.NewBr(testBlock)

	// Entry test: the loop scope holds nothing on the first evaluation, so
	// the condition resolves in the enclosing scopes.
	condVal, err := w.Cond.compile(g, testBlock)
	if err != nil {
		return nil, err
	}
	testBlock.NewCondBr(condVal, loopBlock, afterBlock)

	g.pushScope()
	loopCurrentBlock, err := w.Body.compile(g, loopBlock)
	if err != nil {
		return nil, err
	}

	// Back-edge test: compiled with the body's declarations in scope, so a
	// condition name the body shadows re-tests against the shadow slot, as
	// under the attached loop frame from iteration two on.
	retestBlock := g.newBlock("while-test")
	if loopCurrentBlock.Term == nil {
		loopCurrentBlock.NewBr(retestBlock)
	}
	recondVal, err := w.Cond.compile(g, retestBlock)
	if err != nil {
		return nil, err
	}
	retestBlock.NewCondBr(recondVal, loopBlock, afterBlock)
	g.popScope()

	return afterBlock, nil
}

func (in *InputAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	slot, err := g.lookupSlot(in.Target.Name)
	if err != nil {
		return nil, err
	}
	block.NewCall(g.scanf, g.formatPtr(g.inFmt), slot)

	return block, nil
}

func (o *OutputAST) compile(g *generator, block *ir.Block) (*ir.Block, error) {
	v, err := o.Value.compile(g, block)
	if err != nil {
		return nil, err
	}
	block.NewCall(g.printf, g.formatPtr(g.outFmt), v)

	return block, nil
}

func (e *ExprAST) compile(g *generator, block *ir.Block) (value.Value, error) {
	left, err := e.Left.compile(g, block)
	if err != nil {
		return nil, err
	}
	if e.Right == nil {
		return left, nil
	}

	right, err := e.Right.compile(g, block)
	if err != nil {
		return nil, err
	}

	if e.Op == '+' {
		return block.NewAdd(left, right), nil
	}
	return block.NewSub(left, right), nil
}

func (t *TermAST) compile(g *generator, block *ir.Block) (value.Value, error) {
	left, err := t.Left.compile(g, block)
	if err != nil {
		return nil, err
	}
	if t.Right == nil {
		return left, nil
	}

	right, err := t.Right.compile(g, block)
	if err != nil {
		return nil, err
	}
	return block.NewMul(left, right), nil
}

func (f *FactorAST) compile(g *generator, block *ir.Block) (value.Value, error) {
	switch {
	case f.Id != nil:
		slot, err := g.lookupSlot(f.Id.Name)
		if err != nil {
			return nil, err
		}
		return block.NewLoad(types.I64, slot), nil

	case f.Num != nil:
		return constant.NewInt(types.I64, f.Num.Val), nil
	}

	return f.Paren.compile(g, block)
}

func (co *CondAST) compile(g *generator, block *ir.Block) (value.Value, error) {
	if co.Not != nil {
		inner, err := co.Not.compile(g, block)
		if err != nil {
			return nil, err
		}
		return block.NewXor(inner, constant.True), nil
	}

	left, err := co.Cmpr.compile(g, block)
	if err != nil {
		return nil, err
	}
	if co.Or == nil {
		return left, nil
	}

	right, err := co.Or.compile(g, block)
	if err != nil {
		return nil, err
	}
	return block.NewOr(left, right), nil
}

func (cm *CmprAST) compile(g *generator, block *ir.Block) (value.Value, error) {
	left, err := cm.Left.compile(g, block)
	if err != nil {
		return nil, err
	}
	right, err := cm.Right.compile(g, block)
	if err != nil {
		return nil, err
	}

	switch cm.Op {
	case '<':
		return block.NewICmp(enum.IPredSLT, left, right), nil
	case lexer.TokLessEqual:
		return block.NewICmp(enum.IPredSLE, left, right), nil
	}
	return block.NewICmp(enum.IPredEQ, left, right), nil
}
