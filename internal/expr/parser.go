package expr

import (
	"fmt"
)

// Node is a parsed expression. The set of node kinds is closed: Number,
// Name, Unary, Binary, Call and Compare.
type Node interface {
	node()
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// Name is a reference to a constant or function.
type Name struct {
	Ident string
}

// Unary is a prefix + or -.
type Unary struct {
	Op string
	X  Node
}

// Binary is an arithmetic operation.
type Binary struct {
	Op   string
	X, Y Node
}

// Call is a function call. The callee is always a plain name.
type Call struct {
	Func string
	Args []Node
}

// Compare is a comparison chain: a < b <= c holds when every link holds.
type Compare struct {
	First    Node
	Ops      []string
	Operands []Node
}

func (Number) node()  {}
func (Name) node()    {}
func (Unary) node()   {}
func (Binary) node()  {}
func (Call) node()    {}
func (Compare) node() {}

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 200

type parser struct {
	toks  []token
	pos   int
	depth int
}

// Parse parses a normalized expression.
func Parse(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	if len(toks) == 1 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &parser{toks: toks}
	n, err := p.comparison()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) unexpected(t token) error {
	if t.kind == tokEOF {
		return fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}
	return fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, t.text, t.pos)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return fmt.Errorf("%w: expression nested too deeply", ErrSyntax)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// comparison := arith (compop arith)*
func (p *parser) comparison() (Node, error) {
	first, err := p.arith()
	if err != nil {
		return nil, err
	}
	cmp := Compare{First: first}
	for {
		op, ok := p.acceptOp("<", "<=", ">", ">=", "==", "!=")
		if !ok {
			break
		}
		operand, err := p.arith()
		if err != nil {
			return nil, err
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Operands = append(cmp.Operands, operand)
	}
	if len(cmp.Ops) == 0 {
		return first, nil
	}
	return cmp, nil
}

// arith := term (("+" | "-") term)*
func (p *parser) arith() (Node, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return x, nil
		}
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: op, X: x, Y: y}
	}
}

// term := factor (("*" | "/" | "//" | "%") factor)*
func (p *parser) term() (Node, error) {
	x, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "//", "%")
		if !ok {
			return x, nil
		}
		y, err := p.factor()
		if err != nil {
			return nil, err
		}
		x = Binary{Op: op, X: x, Y: y}
	}
}

// factor := ("+" | "-") factor | power
func (p *parser) factor() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if op, ok := p.acceptOp("+", "-"); ok {
		x, err := p.factor()
		if err != nil {
			return nil, err
		}
		return Unary{Op: op, X: x}, nil
	}
	return p.power()
}

// power := primary ["**" factor]
//
// The right operand is a factor, so ** is right-associative and -2**2
// parses as -(2**2).
func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("**"); !ok {
		return base, nil
	}
	exp, err := p.factor()
	if err != nil {
		return nil, err
	}
	return Binary{Op: "**", X: base, Y: exp}, nil
}

// primary := number | name | name "(" args ")" | "(" comparison ")"
func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return p.noCall(Number{Value: t.num})
	case tokName:
		if p.peek().kind != tokLParen {
			return Name{Ident: t.text}, nil
		}
		p.next()
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return p.noCall(Call{Func: t.text, Args: args})
	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.comparison()
		if err != nil {
			return nil, err
		}
		if r := p.next(); r.kind != tokRParen {
			return nil, p.unexpected(r)
		}
		return p.noCall(inner)
	default:
		return nil, p.unexpected(t)
	}
}

// noCall rejects calling the result of an expression, as in (f)(x).
func (p *parser) noCall(n Node) (Node, error) {
	if p.peek().kind == tokLParen {
		return nil, fmt.Errorf("%w: only named functions can be called", ErrUnsupportedExpression)
	}
	return n, nil
}

func (p *parser) args() ([]Node, error) {
	var args []Node
	if p.peek().kind == tokRParen {
		p.next()
		return args, nil
	}
	for {
		a, err := p.comparison()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		t := p.next()
		switch t.kind {
		case tokComma:
			continue
		case tokRParen:
			return args, nil
		default:
			return nil, p.unexpected(t)
		}
	}
}
