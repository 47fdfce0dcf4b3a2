// Package z3check answers questions about conditions with the Z3 solver
// instead of enumerating truth tables.
package z3check

import (
	"github.com/aclements/go-z3/z3"
	"github.com/pkg/errors"

	"github.com/borzacchiello/statelogic"
)

const (
	RESULT_ERROR   = 0
	RESULT_SAT     = 1
	RESULT_UNSAT   = 2
	RESULT_UNKNOWN = 3
)

// Checker owns a Z3 context. It is not safe for concurrent use.
type Checker struct {
	ctx    *z3.Context
	cfg    *z3.Config
	solver *z3.Solver

	lastSymbols map[*statelogic.Signal]z3.BV
}

func NewChecker() *Checker {
	cfg := z3.NewContextConfig()
	ctx := z3.NewContext(cfg)
	return &Checker{
		ctx:    ctx,
		cfg:    cfg,
		solver: z3.NewSolver(ctx),
	}
}

// Satisfiable checks whether cond can be true. On RESULT_SAT, Model returns a
// witness assignment.
func (c *Checker) Satisfiable(cond *statelogic.Expression) (int, error) {
	return c.check(func(conv *converter) (z3.Bool, error) {
		return conv.isTrue(cond)
	})
}

// Overlap checks whether a and b can be true at the same time.
func (c *Checker) Overlap(a, b *statelogic.Expression) (int, error) {
	return c.check(func(conv *converter) (z3.Bool, error) {
		qa, err := conv.isTrue(a)
		if err != nil {
			return z3.Bool{}, err
		}
		qb, err := conv.isTrue(b)
		if err != nil {
			return z3.Bool{}, err
		}
		return qa.And(qb), nil
	})
}

// Equivalent checks whether a and b can differ: RESULT_UNSAT means they are
// equivalent, RESULT_SAT comes with a distinguishing Model.
func (c *Checker) Equivalent(a, b *statelogic.Expression) (int, error) {
	return c.check(func(conv *converter) (z3.Bool, error) {
		va, err := conv.convert(a)
		if err != nil {
			return z3.Bool{}, err
		}
		vb, err := conv.convert(b)
		if err != nil {
			return z3.Bool{}, err
		}
		if a.Size() != b.Size() {
			return c.ctx.FromBool(true), nil
		}
		return va.NE(vb), nil
	})
}

func (c *Checker) check(build func(*converter) (z3.Bool, error)) (int, error) {
	c.solver.Reset()
	c.lastSymbols = make(map[*statelogic.Signal]z3.BV)

	conv := &converter{ctx: c.ctx, symbols: c.lastSymbols, cache: make(map[*statelogic.Expression]z3.BV)}
	query, err := build(conv)
	if err != nil {
		return RESULT_ERROR, err
	}
	c.solver.Assert(query)

	r, err := c.solver.Check()
	if err != nil {
		return RESULT_UNKNOWN, nil
	}
	if r {
		return RESULT_SAT, nil
	}
	return RESULT_UNSAT, nil
}

// Model returns the assignment found by the last satisfiable query, by signal
// name. Signals the solver left unconstrained are reported as zero.
func (c *Checker) Model() map[string]statelogic.BitVector {
	m := c.solver.Model()
	if m == nil {
		return nil
	}

	res := make(map[string]statelogic.BitVector)
	for sig, sym := range c.lastSymbols {
		v := m.Eval(sym, true).(z3.BV)
		val, ok := v.AsBigUnsigned()
		if !ok {
			continue
		}
		res[sig.Name()] = statelogic.BitVectorFromBigInt(val, sig.Size())
	}
	return res
}

/*
 *  Expression to Z3 translation
 */

type converter struct {
	ctx     *z3.Context
	symbols map[*statelogic.Signal]z3.BV
	cache   map[*statelogic.Expression]z3.BV
}

func (c *converter) isTrue(cond *statelogic.Expression) (z3.Bool, error) {
	if cond.IsValid() && cond.Size() != 1 {
		return z3.Bool{}, errors.Wrapf(statelogic.ErrNotBoolean, "condition %q is %d bits wide", cond.Text(), cond.Size())
	}
	v, err := c.convert(cond)
	if err != nil {
		return z3.Bool{}, err
	}
	return v.Eq(c.ctx.FromInt(1, c.ctx.BVSort(1)).(z3.BV)), nil
}

func (c *converter) literal(v statelogic.BitVector) z3.BV {
	return c.ctx.FromBigInt(v.BigInt(), c.ctx.BVSort(int(v.Size()))).(z3.BV)
}

func (c *converter) signal(s *statelogic.Signal) z3.BV {
	if s.IsConstant() {
		return c.literal(s.CurrentValue())
	}
	if sym, ok := c.symbols[s]; ok {
		return sym
	}
	sym := c.ctx.BVConst(s.Name(), int(s.Size()))
	c.symbols[s] = sym
	return sym
}

func (c *converter) operand(e *statelogic.Expression, i int) (z3.BV, error) {
	v, err := e.Operand(i)
	if err != nil {
		return z3.BV{}, err
	}
	switch v := v.(type) {
	case *statelogic.Signal:
		return c.signal(v), nil
	case *statelogic.Expression:
		return c.convert(v)
	}
	return z3.BV{}, errors.Wrapf(statelogic.ErrNullOperand, "operand %d of %q", i, e.Text())
}

// convert translates e. Only expressions whose value can currently be computed
// are accepted: a failure cause is returned as its error kind.
func (c *converter) convert(e *statelogic.Expression) (z3.BV, error) {
	if v, ok := c.cache[e]; ok {
		return v, nil
	}
	if err := e.FailureCause().Err(); err != nil {
		return z3.BV{}, errors.Wrapf(err, "expression %q", e.Text())
	}

	var result z3.BV
	switch e.Operator() {
	case statelogic.OpConstant:
		result = c.literal(e.ConstantValue())
	case statelogic.OpIdentity, statelogic.OpNot, statelogic.OpExtract:
		child, err := c.operand(e, 0)
		if err != nil {
			return z3.BV{}, err
		}
		switch e.Operator() {
		case statelogic.OpIdentity:
			result = child
		case statelogic.OpNot:
			result = child.Not()
		default:
			low := e.RangeR()
			if low < 0 {
				low = e.RangeL()
			}
			result = child.Extract(e.RangeL(), low)
		}
	case statelogic.OpEqual, statelogic.OpDiffer:
		lhs, err := c.operand(e, 0)
		if err != nil {
			return z3.BV{}, err
		}
		rhs, err := c.operand(e, 1)
		if err != nil {
			return z3.BV{}, err
		}
		guard := lhs.Eq(rhs)
		if e.Operator() == statelogic.OpDiffer {
			guard = lhs.NE(rhs)
		}
		one := c.ctx.FromInt(1, c.ctx.BVSort(1))
		zero := c.ctx.FromInt(0, c.ctx.BVSort(1))
		result = guard.IfThenElse(one, zero).(z3.BV)
	default:
		res, err := c.operand(e, 0)
		if err != nil {
			return z3.BV{}, err
		}
		for i := 1; i < e.OperandCount(); i++ {
			child, err := c.operand(e, i)
			if err != nil {
				return z3.BV{}, err
			}
			switch e.Operator() {
			case statelogic.OpAnd, statelogic.OpNand:
				res = res.And(child)
			case statelogic.OpOr, statelogic.OpNor:
				res = res.Or(child)
			case statelogic.OpXor, statelogic.OpXnor:
				res = res.Xor(child)
			case statelogic.OpConcat:
				res = res.Concat(child)
			default:
				return z3.BV{}, errors.Errorf("invalid operator %s", e.Operator())
			}
		}
		if e.Operator().IsInverted() {
			res = res.Not()
		}
		result = res
	}

	c.cache[e] = result
	return result, nil
}
