package schemafile

import (
	"fmt"
	"strings"
)

type exprKind int

const (
	exprName exprKind = iota
	exprArray
	exprUnion
)

// typeExpr is a parsed type expression: a name, "[]T", "A|B" or a parenthesized group.
type typeExpr struct {
	kind    exprKind
	name    string
	elem    *typeExpr
	members []*typeExpr
}

func parseTypeExpr(src string) (*typeExpr, error) {
	p := &exprParser{src: src}
	e, err := p.union()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) union() (*typeExpr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	members := []*typeExpr{first}
	for p.skipSpace(); p.peek() == '|'; p.skipSpace() {
		p.pos++
		m, err := p.term()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return first, nil
	}
	return &typeExpr{kind: exprUnion, members: members}, nil
}

func (p *exprParser) term() (*typeExpr, error) {
	p.skipSpace()
	switch {
	case strings.HasPrefix(p.src[p.pos:], "[]"):
		p.pos += 2
		elem, err := p.term()
		if err != nil {
			return nil, err
		}
		return &typeExpr{kind: exprArray, elem: elem}, nil
	case p.peek() == '(':
		p.pos++
		e, err := p.union()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return e, nil
	}
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return nil, p.errorf("type name expected")
	}
	return &typeExpr{kind: exprName, name: p.src[start:p.pos]}, nil
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) errorf(format string, a ...any) error {
	return fmt.Errorf("type %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, a...))
}

func isNameByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
