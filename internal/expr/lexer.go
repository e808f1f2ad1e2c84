package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokName
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// keywords are Python words that parse as names but mean something this
// grammar does not support.
var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "else": true, "for": true, "while": true, "lambda": true,
	"def": true, "class": true, "import": true, "from": true, "return": true,
	"yield": true, "None": true, "True": true, "False": true, "with": true,
	"as": true, "del": true, "global": true, "nonlocal": true, "assert": true,
	"try": true, "except": true, "finally": true, "raise": true, "pass": true,
	"break": true, "continue": true, "async": true, "await": true,
}

// unsupportedChars start constructs outside the grammar: strings,
// subscripts, attribute access, assignment, bitwise operators.
const unsupportedChars = `'"[]{}.=:;@&|^~!`

// twoCharOps must be tried before the single-character operators.
var twoCharOps = []string{"**", "//", "<=", ">=", "==", "!="}

const singleCharOps = "+-*/%<>"

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case startsNumber(rs, i):
			j := scanNumber(rs, i)
			text := string(rs[i:j])
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid number %q", ErrSyntax, text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: f, pos: i})
			i = j
		case isNameStart(r):
			j := i + 1
			for j < len(rs) && isNamePart(rs[j]) {
				j++
			}
			name := string(rs[i:j])
			if keywords[name] {
				return nil, fmt.Errorf("%w: keyword %q", ErrUnsupportedExpression, name)
			}
			toks = append(toks, token{kind: tokName, text: name, pos: i})
			i = j
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			if op := matchTwoCharOp(rs, i); op != "" {
				toks = append(toks, token{kind: tokOp, text: op, pos: i})
				i += 2
				continue
			}
			if strings.ContainsRune(singleCharOps, r) {
				toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
				i++
				continue
			}
			if strings.ContainsRune(unsupportedChars, r) {
				return nil, fmt.Errorf("%w: %q at position %d", ErrUnsupportedExpression, r, i)
			}
			return nil, fmt.Errorf("%w: unexpected character %q at position %d", ErrSyntax, r, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

func matchTwoCharOp(rs []rune, i int) string {
	if i+1 >= len(rs) {
		return ""
	}
	pair := string(rs[i : i+2])
	for _, op := range twoCharOps {
		if pair == op {
			return op
		}
	}
	return ""
}
