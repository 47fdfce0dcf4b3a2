package statelogic

import (
	"fmt"
	"strings"
)

// Style decorates a leaf of an expression text. active is true when the leaf
// currently evaluates to all ones.
type Style func(text string, active bool) string

const missingText = "<?>"

func (op Operator) symbol() string {
	switch op {
	case OpAnd, OpNand:
		return "&"
	case OpOr, OpNor:
		return "|"
	case OpXor, OpXnor:
		return "^"
	case OpEqual:
		return "=="
	case OpDiffer:
		return "!="
	case OpNot:
		return "~"
	}
	return ""
}

// Text renders e in the syntax accepted by ParseExpression. Empty or expired
// operands are rendered as "<?>".
func (e *Expression) Text() string {
	return e.text(nil)
}

// ColoredText is like Text, with every signal name and literal passed through
// style.
func (e *Expression) ColoredText(style Style) string {
	return e.text(style)
}

func (e *Expression) String() string {
	return e.Text()
}

func (e *Expression) text(style Style) string {
	if e.op == OpConstant {
		return literalText(e.constant, style)
	}

	parts := make([]string, len(e.operands))
	for i, o := range e.operands {
		parts[i] = operandText(o, style)
	}

	switch e.op {
	case OpIdentity:
		return parts[0]
	case OpNot:
		return "~" + parts[0]
	case OpExtract:
		if c, ok := e.operandValue(0).(*Expression); ok && c.op.IsInverted() {
			// "~x[1]" selects before inverting
			parts[0] = "(" + parts[0] + ")"
		}
		switch {
		case e.rangeL < 0:
			return parts[0] + "[?]"
		case e.rangeR < 0:
			return fmt.Sprintf("%s[%d]", parts[0], e.rangeL)
		}
		return fmt.Sprintf("%s[%d..%d]", parts[0], e.rangeL, e.rangeR)
	case OpConcat:
		return "{" + strings.Join(parts, ", ") + "}"
	}

	b := strings.Builder{}
	if e.op.IsInverted() {
		b.WriteString("~")
	}
	b.WriteString("(")
	b.WriteString(strings.Join(parts, fmt.Sprintf(" %s ", e.op.symbol())))
	b.WriteString(")")
	return b.String()
}

func (e *Expression) operandValue(i int) Value {
	if e.operands[i] == nil {
		return nil
	}
	v, _ := e.operands[i].resolve()
	return v
}

func operandText(o operand, style Style) string {
	if o == nil {
		return missingText
	}
	v, ok := o.resolve()
	if !ok {
		return missingText
	}
	switch v := v.(type) {
	case *Signal:
		if style == nil {
			return v.Name()
		}
		return style(v.Name(), v.CurrentValue().IsAllOnes())
	case *Expression:
		return v.text(style)
	}
	return missingText
}

// literalText renders a 1 bit value as '1' and wider values as "0101".
func literalText(v BitVector, style Style) string {
	var s string
	switch v.Size() {
	case 0:
		return missingText
	case 1:
		s = fmt.Sprintf("'%s'", v)
	default:
		s = fmt.Sprintf("%q", v.String())
	}
	if style == nil {
		return s
	}
	return style(s, v.IsAllOnes())
}
