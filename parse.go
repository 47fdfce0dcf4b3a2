package statelogic

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"
)

// ParseExpression reads an expression written in the syntax produced by Text:
//
//	~x  (a & b)  (a | b)  (a ^ b)  ~(a & b)  (a == b)  (a != b)
//	{a, b}  x[2]  x[2..1]  '1'  "0101"  <?>
//
// Binary operators may also be chained without brackets, from loosest to
// tightest: == and !=, |, ^, &. A chain of one operator becomes a single
// variable arity expression. lookup resolves signal names and returns nil for
// unknown ones.
//
// A bare signal yields an identity expression, a bare literal a constant one.
func ParseExpression(input string, lookup func(string) *Signal) (*Expression, error) {
	p := newParser(input, lookup)
	n, err := p.parseTop()
	if err != nil {
		return nil, err
	}

	switch n.kind {
	case nodeSignal:
		return NewExpression(OpIdentity, n.sig)
	case nodeLiteral:
		return NewConstantExpression(n.lit), nil
	case nodeMissing:
		return NewExpression(OpIdentity)
	}
	return n.build()
}

// MustParseExpression is like ParseExpression but panics on error.
func MustParseExpression(input string, lookup func(string) *Signal) *Expression {
	e, err := ParseExpression(input, lookup)
	if err != nil {
		panic(err)
	}
	return e
}

// SignalLookup returns a lookup function resolving names among signals.
func SignalLookup(signals ...*Signal) func(string) *Signal {
	return func(name string) *Signal {
		for _, s := range signals {
			if s.Name() == name {
				return s
			}
		}
		return nil
	}
}

/*
 *  Syntax tree
 */

type nodeKind int

const (
	nodeSignal nodeKind = iota
	nodeLiteral
	nodeMissing
	nodeOperator
)

type node struct {
	kind           nodeKind
	sig            *Signal
	lit            BitVector
	op             Operator
	kids           []*node
	rangeL, rangeR int
}

// build turns the tree into an expression. Intermediate expressions are
// released once their parent holds a clone.
func (n *node) build() (*Expression, error) {
	var (
		vals  = make([]Value, len(n.kids))
		temps []*Expression
	)
	defer func() {
		for _, t := range temps {
			t.Release()
		}
	}()

	for i, k := range n.kids {
		switch k.kind {
		case nodeSignal:
			vals[i] = k.sig
		case nodeLiteral:
			c := NewConstantExpression(k.lit)
			temps = append(temps, c)
			vals[i] = c
		case nodeOperator:
			c, err := k.build()
			if err != nil {
				return nil, err
			}
			temps = append(temps, c)
			vals[i] = c
		}
	}
	if n.op == OpExtract {
		return NewExtractExpression(vals[0], n.rangeL, n.rangeR)
	}
	return NewExpression(n.op, vals...)
}

/*
 *  Parser
 */

type parser struct {
	s      scanner.Scanner
	lookup func(string) *Signal
	tok    rune
	errs   []string
}

func newParser(input string, lookup func(string) *Signal) *parser {
	p := &parser{lookup: lookup}
	p.s.Init(strings.NewReader(input))
	p.s.Filename = "expr"
	// no ScanFloats: "2..1" must lex as 2 . . 1
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanChars
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.errs = append(p.errs, fmt.Sprintf("%s: %s", s.Position, msg))
	}
	p.next()
	return p
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) fail(format string, args ...any) error {
	return errors.Wrapf(ErrSyntax, "%s: %s", p.s.Position, fmt.Sprintf(format, args...))
}

func (p *parser) expect(tok rune) error {
	if p.tok != tok {
		return p.fail("expected %s, found %q", scanner.TokenString(tok), p.s.TokenText())
	}
	p.next()
	return nil
}

func (p *parser) parseTop() (*node, error) {
	n, err := p.parseCompare()
	if err == nil && len(p.errs) > 0 {
		err = errors.Wrap(ErrSyntax, p.errs[0])
	}
	if err != nil {
		return nil, err
	}
	if p.tok != scanner.EOF {
		return nil, p.fail("unexpected %q", p.s.TokenText())
	}
	return n, nil
}

func (p *parser) parseCompare() (*node, error) {
	lhs, err := p.parseChain('|', OpOr, 0)
	if err != nil {
		return nil, err
	}
	for p.tok == '=' || p.tok == '!' {
		op := OpEqual
		if p.tok == '!' {
			op = OpDiffer
		}
		p.next()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		rhs, err := p.parseChain('|', OpOr, 0)
		if err != nil {
			return nil, err
		}
		lhs = &node{kind: nodeOperator, op: op, kids: []*node{lhs, rhs}}
	}
	return lhs, nil
}

var chainLevels = []struct {
	tok rune
	op  Operator
}{
	{'|', OpOr},
	{'^', OpXor},
	{'&', OpAnd},
}

// parseChain parses operands separated by tok at the given precedence level.
func (p *parser) parseChain(tok rune, op Operator, level int) (*node, error) {
	operand := func() (*node, error) {
		if level+1 < len(chainLevels) {
			next := chainLevels[level+1]
			return p.parseChain(next.tok, next.op, level+1)
		}
		return p.parseUnary()
	}

	first, err := operand()
	if err != nil {
		return nil, err
	}
	if p.tok != tok {
		return first, nil
	}
	n := &node{kind: nodeOperator, op: op, kids: []*node{first}}
	for p.tok == tok {
		p.next()
		k, err := operand()
		if err != nil {
			return nil, err
		}
		n.kids = append(n.kids, k)
	}
	return n, nil
}

func (p *parser) parseUnary() (*node, error) {
	if p.tok != '~' {
		return p.parsePostfix()
	}
	p.next()
	n, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if n.kind == nodeOperator {
		// a bracketed group under ~ is its inverted operator
		switch n.op {
		case OpAnd:
			n.op = OpNand
			return n, nil
		case OpOr:
			n.op = OpNor
			return n, nil
		case OpXor:
			n.op = OpXnor
			return n, nil
		}
	}
	return &node{kind: nodeOperator, op: OpNot, kids: []*node{n}}, nil
}

func (p *parser) parsePostfix() (*node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.tok == '[' {
		p.next()
		ext := &node{kind: nodeOperator, op: OpExtract, kids: []*node{n}, rangeL: -1, rangeR: -1}
		if p.tok == '?' {
			p.next()
		} else {
			if ext.rangeL, err = p.parseIndex(); err != nil {
				return nil, err
			}
			if p.tok == '.' {
				p.next()
				if err := p.expect('.'); err != nil {
					return nil, err
				}
				if ext.rangeR, err = p.parseIndex(); err != nil {
					return nil, err
				}
			}
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		n = ext
	}
	return n, nil
}

func (p *parser) parseIndex() (int, error) {
	if p.tok != scanner.Int {
		return 0, p.fail("expected bit index, found %q", p.s.TokenText())
	}
	v, err := strconv.Atoi(p.s.TokenText())
	if err != nil {
		return 0, p.fail("bit index %s: %v", p.s.TokenText(), err)
	}
	p.next()
	return v, nil
}

func (p *parser) parsePrimary() (*node, error) {
	switch p.tok {
	case scanner.Ident:
		name := p.s.TokenText()
		var sig *Signal
		if p.lookup != nil {
			sig = p.lookup(name)
		}
		if sig == nil {
			return nil, p.fail("unknown signal %q", name)
		}
		p.next()
		return &node{kind: nodeSignal, sig: sig}, nil

	case scanner.Char, scanner.String:
		text := p.s.TokenText()
		if len(text) < 2 {
			return nil, p.fail("unterminated literal %s", text)
		}
		raw := text[1 : len(text)-1]
		lit, err := ParseBitVector(raw)
		if err != nil {
			return nil, p.fail("literal %s: %v", text, err)
		}
		if lit.IsNull() {
			return nil, p.fail("empty literal")
		}
		p.next()
		return &node{kind: nodeLiteral, lit: lit}, nil

	case '(':
		p.next()
		n, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		return n, p.expect(')')

	case '{':
		p.next()
		n := &node{kind: nodeOperator, op: OpConcat}
		for {
			k, err := p.parseCompare()
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, k)
			if p.tok != ',' {
				break
			}
			p.next()
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		if len(n.kids) < 2 {
			return nil, p.fail("concatenation of a single operand")
		}
		return n, nil

	case '<':
		p.next()
		if err := p.expect('?'); err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &node{kind: nodeMissing}, nil
	}

	if p.tok == scanner.EOF {
		return nil, p.fail("unexpected end of expression")
	}
	return nil, p.fail("unexpected %q", p.s.TokenText())
}
