package statelogic

import (
	"weak"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Operator is the function computed by an Expression.
type Operator int

const (
	OpNot Operator = iota
	OpIdentity
	OpExtract
	OpEqual
	OpDiffer
	OpAnd
	OpOr
	OpXor
	OpNand
	OpNor
	OpXnor
	OpConcat
	OpConstant
)

func (op Operator) String() string {
	switch op {
	case OpNot:
		return "not"
	case OpIdentity:
		return "identity"
	case OpExtract:
		return "extract"
	case OpEqual:
		return "equal"
	case OpDiffer:
		return "differ"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpNand:
		return "nand"
	case OpNor:
		return "nor"
	case OpXnor:
		return "xnor"
	case OpConcat:
		return "concat"
	case OpConstant:
		return "constant"
	}
	return "unknown"
}

// Arity returns the allowed operand count range. max is -1 for variable
// arity operators.
func (op Operator) Arity() (min, max int) {
	switch op {
	case OpNot, OpIdentity, OpExtract:
		return 1, 1
	case OpEqual, OpDiffer:
		return 2, 2
	case OpConstant:
		return 0, 0
	}
	return 2, -1
}

// IsVariableArity reports whether operands can be added or removed.
func (op Operator) IsVariableArity() bool {
	_, max := op.Arity()
	return max < 0
}

// IsInverted reports whether the result of op is complemented.
func (op Operator) IsInverted() bool {
	switch op {
	case OpNot, OpNand, OpNor, OpXnor:
		return true
	}
	return false
}

func checkCount(op Operator, n int) error {
	min, max := op.Arity()
	if n < min || (max >= 0 && n > max) {
		return errors.Wrapf(ErrIllegalOperandCount, "%d operands for operator %s", n, op)
	}
	return nil
}

/*
 *  Operand slots
 */

// An operand slot is either empty (nil), an external signal referenced weakly,
// or an expression owned by the slot.
type operand interface {
	resolve() (Value, bool)
	// cancel stops notifications, detach also releases what the slot owns.
	cancel()
	detach()
}

type externalOperand struct {
	ref SignalRef
	sub *Subscription
}

func (o *externalOperand) resolve() (Value, bool) {
	s, err := o.ref.Get()
	if err != nil {
		return nil, false
	}
	return s, true
}

func (o *externalOperand) cancel() {
	o.sub.Cancel()
}

func (o *externalOperand) detach() {
	o.cancel()
}

type ownedOperand struct {
	expr *Expression
	sub  *Subscription
}

func (o *ownedOperand) resolve() (Value, bool) {
	return o.expr, true
}

func (o *ownedOperand) cancel() {
	o.sub.Cancel()
}

func (o *ownedOperand) detach() {
	o.cancel()
	o.expr.Release()
}

/*
 *  Expression
 */

// Expression is an operator applied to an ordered list of operands. Its current
// value is cached and recomputed whenever an operand changes.
//
// Signals are referenced weakly. Expressions passed as operands are cloned:
// the parent owns the clone and never shares it. Operands only hold their
// parent weakly, so an expression dropped by its owner is garbage collected
// without calling Release.
type Expression struct {
	op       Operator
	operands []operand
	current  BitVector
	cause    FailureCause

	rangeL, rangeR int
	constant       BitVector

	// quiet suppresses recomputation during bulk updates.
	quiet bool
	ls    *listeners
}

func newExpression(op Operator, count int) *Expression {
	return &Expression{
		op:       op,
		operands: make([]operand, count),
		rangeL:   -1,
		rangeR:   -1,
		ls:       &listeners{},
	}
}

// NewExpression builds an expression over the given operands. With no
// operands, the expression gets the minimum number of empty slots for op.
func NewExpression(op Operator, operands ...Value) (*Expression, error) {
	if op == OpConstant {
		return nil, errors.Wrap(ErrIllegalOperandCount, "constant expressions take a value, not operands")
	}
	if len(operands) == 0 {
		min, _ := op.Arity()
		e := newExpression(op, min)
		e.recompute()
		return e, nil
	}
	if err := checkCount(op, len(operands)); err != nil {
		return nil, err
	}
	e := newExpression(op, len(operands))
	if err := e.SetOperands(operands...); err != nil {
		e.Release()
		return nil, err
	}
	return e, nil
}

// NewConstantExpression returns an expression publishing a literal value.
func NewConstantExpression(v BitVector) *Expression {
	e := newExpression(OpConstant, 0)
	e.constant = v
	e.recompute()
	return e
}

// NewExtractExpression selects bit rangeL (rangeR < 0) or bits rangeR..rangeL
// of operand.
func NewExtractExpression(operand Value, rangeL, rangeR int) (*Expression, error) {
	e := newExpression(OpExtract, 1)
	e.rangeL, e.rangeR = rangeL, rangeR
	if err := e.SetOperands(operand); err != nil {
		e.Release()
		return nil, err
	}
	return e, nil
}

func (e *Expression) Operator() Operator {
	return e.op
}

// SetOperator changes the operator, growing or trimming the operand list to
// fit its arity. Trimmed operands are dropped from the end.
func (e *Expression) SetOperator(op Operator) error {
	if op == e.op {
		return nil
	}
	if op == OpConstant || e.op == OpConstant {
		return errors.Wrapf(ErrIllegalOperatorChange, "from %s to %s", e.op, op)
	}
	min, max := op.Arity()
	switch n := len(e.operands); {
	case n < min:
		e.resizeOperands(min)
	case max >= 0 && n > max:
		e.resizeOperands(max)
	}
	if op != OpExtract {
		e.rangeL, e.rangeR = -1, -1
	}
	e.op = op
	e.changed()
	return nil
}

func (e *Expression) OperandCount() int {
	return len(e.operands)
}

// SetOperandCount grows (with empty slots) or shrinks the operand list.
func (e *Expression) SetOperandCount(n int) error {
	if err := checkCount(e.op, n); err != nil {
		return err
	}
	if n == len(e.operands) {
		return nil
	}
	e.resizeOperands(n)
	e.changed()
	return nil
}

// IncreaseOperandCount appends an empty slot to a variable arity expression.
func (e *Expression) IncreaseOperandCount() error {
	if !e.op.IsVariableArity() {
		return errors.Wrapf(ErrIllegalOperandCount, "operator %s has a fixed arity", e.op)
	}
	return e.SetOperandCount(len(e.operands) + 1)
}

// DecreaseOperandCount drops the last slot of a variable arity expression.
func (e *Expression) DecreaseOperandCount() error {
	if !e.op.IsVariableArity() {
		return errors.Wrapf(ErrIllegalOperandCount, "operator %s has a fixed arity", e.op)
	}
	return e.SetOperandCount(len(e.operands) - 1)
}

func (e *Expression) resizeOperands(n int) {
	for i := n; i < len(e.operands); i++ {
		if e.operands[i] != nil {
			e.operands[i].detach()
		}
	}
	if n <= len(e.operands) {
		e.operands = e.operands[:n:n]
		return
	}
	e.operands = append(e.operands, make([]operand, n-len(e.operands))...)
}

// Operand returns operand i: a *Signal, an *Expression owned by e, or nil when
// the slot is empty or its signal is gone. Changes made to a returned
// expression are reflected in e.
func (e *Expression) Operand(i int) (Value, error) {
	if i < 0 || i >= len(e.operands) {
		return nil, errors.Wrapf(ErrOutOfRange, "operand %d of %d", i, len(e.operands))
	}
	if e.operands[i] == nil {
		return nil, nil
	}
	v, ok := e.operands[i].resolve()
	if !ok {
		return nil, nil
	}
	return v, nil
}

// SetOperand assigns slot i. An *Expression is cloned and the clone is owned
// by e; a *Signal is referenced weakly; nil clears the slot.
func (e *Expression) SetOperand(i int, v Value) error {
	if i < 0 || i >= len(e.operands) {
		return errors.Wrapf(ErrOutOfRange, "operand %d of %d", i, len(e.operands))
	}
	if err := e.assign(i, v); err != nil {
		return err
	}
	e.changed()
	return nil
}

// ClearOperand empties slot i.
func (e *Expression) ClearOperand(i int) error {
	return e.SetOperand(i, nil)
}

// SetOperands replaces every operand at once, adjusting the operand count.
// The value is recomputed once, after all the operands are in place. On error
// e is left unchanged.
func (e *Expression) SetOperands(vs ...Value) error {
	if err := checkCount(e.op, len(vs)); err != nil {
		return err
	}
	next := make([]operand, len(vs))
	for i, v := range vs {
		o, err := e.attach(v)
		if err != nil {
			for _, o := range next[:i] {
				if o != nil {
					o.detach()
				}
			}
			return errors.Wrapf(err, "operand %d", i)
		}
		next[i] = o
	}

	e.resizeOperands(len(vs))
	for i, o := range next {
		if old := e.operands[i]; old != nil {
			old.detach()
		}
		e.operands[i] = o
	}
	e.changed()
	return nil
}

// assign replaces slot i. The new operand is built before the old one is
// detached: v may be the expression currently owned by the slot.
func (e *Expression) assign(i int, v Value) error {
	o, err := e.attach(v)
	if err != nil {
		return err
	}
	if old := e.operands[i]; old != nil {
		old.detach()
	}
	e.operands[i] = o
	return nil
}

// attach builds a subscribed operand slot for v, nil for an empty one.
func (e *Expression) attach(v Value) (operand, error) {
	switch v := v.(type) {
	case nil:
	case *Signal:
		if v == nil {
			return nil, nil
		}
		if v.IsDeleted() {
			return nil, errors.Wrapf(ErrExpiredReference, "signal %q", v.Name())
		}
		o := &externalOperand{ref: v.Ref()}
		o.sub = v.Subscribe(e.watch(o))
		return o, nil
	case *Expression:
		if v == nil {
			return nil, nil
		}
		o := &ownedOperand{expr: v.Clone()}
		o.sub = o.expr.Subscribe(e.watch(o))
		return o, nil
	default:
		return nil, errors.Errorf("unsupported operand type %T", v)
	}
	return nil, nil
}

// watch returns the listener attached to operand slot o. The listener holds e
// weakly: an expression nobody references any more is collected, and its
// subscription is cancelled on the next event.
func (e *Expression) watch(o operand) Listener {
	wp := weak.Make(e)
	return func(_ Value, ev Event) {
		e := wp.Value()
		if e == nil {
			o.cancel()
			return
		}
		switch ev {
		case EventValueChanged:
			e.recompute()
		case EventStructureChanged:
			e.changed()
		case EventDeleted:
			e.drop(o)
		}
	}
}

func (e *Expression) drop(o operand) {
	for i, x := range e.operands {
		if x == o {
			o.detach()
			e.operands[i] = nil
			log.Debugf("operand %d of %s detached", i, e.op)
			e.changed()
			return
		}
	}
}

// changed recomputes and reports a structural change.
func (e *Expression) changed() {
	if e.quiet {
		return
	}
	e.recompute()
	e.ls.emit(e, EventStructureChanged)
}

func (e *Expression) RangeL() int {
	return e.rangeL
}

func (e *Expression) RangeR() int {
	return e.rangeR
}

// SetRange sets the bit selection of an extract expression. Bounds are
// checked when the value is computed, not here.
func (e *Expression) SetRange(rangeL, rangeR int) error {
	if e.op != OpExtract {
		return errors.Wrapf(ErrIncorrectParameter, "range on a %s expression", e.op)
	}
	if rangeL == e.rangeL && rangeR == e.rangeR {
		return nil
	}
	e.rangeL, e.rangeR = rangeL, rangeR
	e.changed()
	return nil
}

func (e *Expression) ConstantValue() BitVector {
	return e.constant
}

func (e *Expression) SetConstantValue(v BitVector) error {
	if e.op != OpConstant {
		return errors.Wrapf(ErrIllegalOperatorChange, "constant value on a %s expression", e.op)
	}
	if v.Equal(e.constant) {
		return nil
	}
	e.constant = v
	e.changed()
	return nil
}

// CurrentValue returns the cached value; the null value when FailureCause is
// not CauseNone.
func (e *Expression) CurrentValue() BitVector {
	return e.current
}

func (e *Expression) Size() uint {
	return e.current.Size()
}

func (e *Expression) FailureCause() FailureCause {
	return e.cause
}

func (e *Expression) IsValid() bool {
	return e.cause == CauseNone && !e.current.IsNull()
}

// IsTrue reports whether a 1 bit expression evaluates to '1'.
func (e *Expression) IsTrue() (bool, error) {
	if e.Size() != 1 {
		return false, errors.Wrapf(ErrNotBoolean, "expression is %d bits wide", e.Size())
	}
	return e.current.IsAllOnes(), nil
}

// IsFalse reports whether a 1 bit expression evaluates to '0'.
func (e *Expression) IsFalse() (bool, error) {
	if e.Size() != 1 {
		return false, errors.Wrapf(ErrNotBoolean, "expression is %d bits wide", e.Size())
	}
	return e.current.IsAllZeros(), nil
}

// Name returns the expression text.
func (e *Expression) Name() string {
	return e.Text()
}

func (e *Expression) Subscribe(fn Listener) *Subscription {
	return e.ls.add(fn)
}

// Clone returns an independent deep copy of e: owned operands are cloned,
// signals are referenced again. Listeners are not copied.
func (e *Expression) Clone() *Expression {
	c := newExpression(e.op, len(e.operands))
	c.rangeL, c.rangeR = e.rangeL, e.rangeR
	c.constant = e.constant
	c.quiet = true
	for i, o := range e.operands {
		if o == nil {
			continue
		}
		if v, ok := o.resolve(); ok {
			// cannot fail: v is a live signal or an expression
			_ = c.assign(i, v)
		}
	}
	c.quiet = false
	c.recompute()
	return c
}

// Release detaches e from all its operands, recursively. e computes nothing
// afterwards.
func (e *Expression) Release() {
	for i, o := range e.operands {
		if o != nil {
			o.detach()
			e.operands[i] = nil
		}
	}
	e.quiet = true
}

// Variables returns the non-constant signals referenced by e, in first
// encounter order, without duplicates.
func (e *Expression) Variables() []*Signal {
	var (
		res  []*Signal
		seen = make(map[*Signal]bool)
	)
	e.collectVariables(&res, seen)
	return res
}

func (e *Expression) collectVariables(res *[]*Signal, seen map[*Signal]bool) {
	for _, o := range e.operands {
		if o == nil {
			continue
		}
		v, ok := o.resolve()
		if !ok {
			continue
		}
		switch v := v.(type) {
		case *Signal:
			if v.IsConstant() || seen[v] {
				continue
			}
			seen[v] = true
			*res = append(*res, v)
		case *Expression:
			v.collectVariables(res, seen)
		}
	}
}
