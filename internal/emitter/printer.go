package emitter

import (
	"bytes"
)

// C++ operator precedence, higher binds tighter.
var operatorPrecedence = map[string]int{
	"=": 1, "+=": 1, "-=": 1, "*=": 1, "/=": 1, "%=": 1,
	"&=": 1, "|=": 1, "^=": 1, "<<=": 1, ">>=": 1,
	"?:": 2,
	"||": 3,
	"&&": 4,
	"|":  5,
	"^":  6,
	"&":  7,
	"==": 8, "!=": 8,
	"<": 9, ">": 9, "<=": 9, ">=": 9,
	"<<": 10, ">>": 10,
	"+": 11, "-": 11,
	"*": 12, "/": 12, "%": 12,
}

const (
	precUnary   = 13
	precPostfix = 14
	precPrimary = 15
)

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return precPrimary
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"?:": true,
}

// needParens reports whether an operator of precedence prec printed as an
// operand of a parent with parentPrec must be parenthesized.
func needParens(op string, prec, parentPrec int, isRight bool) bool {
	if prec != parentPrec {
		return prec < parentPrec
	}
	if isRight {
		return !rightAssoc[op]
	}
	return rightAssoc[op]
}

// CodePrinter accumulates indented target text.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

// line writes one indented line.
func (p *CodePrinter) line(s string) {
	if s == "" {
		p.writeln()
		return
	}
	p.writeIndent()
	p.write(s)
	p.writeln()
}

// open writes an indented line ending in "{" and indents.
func (p *CodePrinter) open(s string) {
	p.line(s + " {")
	p.indent++
}

// close dedents and writes the closing brace plus suffix.
func (p *CodePrinter) close(suffix string) {
	p.indent--
	p.line("}" + suffix)
}
