package expr

import "strings"

var symbolReplacer = strings.NewReplacer(
	"×", "*",
	"÷", "/",
	"²", "**2",
	"³", "**3",
)

// Normalize rewrites common math notation into the plain grammar Parse
// accepts: × ÷ ² ³ become operators, √x becomes sqrt(x), and a numeric
// literal directly followed by a name, "(" or √ gets an explicit "*".
// Digits inside names (log10) and exponents (1e5) are left intact.
func Normalize(s string) string {
	rs := []rune(symbolReplacer.Replace(s))

	var b strings.Builder
	b.Grow(len(rs) + 8)

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '√':
			if out := b.String(); out != "" {
				if last := rune(out[len(out)-1]); isDigit(last) || last == ')' {
					b.WriteByte('*')
				}
			}
			b.WriteString("sqrt")
			i++
			j := i
			for j < len(rs) && rs[j] == ' ' {
				j++
			}
			if j < len(rs) && startsNumber(rs, j) {
				end := scanNumber(rs, j)
				b.WriteByte('(')
				b.WriteString(string(rs[j:end]))
				b.WriteByte(')')
				i = end
			}
		case isNameStart(r):
			j := i + 1
			for j < len(rs) && isNamePart(rs[j]) {
				j++
			}
			b.WriteString(string(rs[i:j]))
			i = j
		case startsNumber(rs, i):
			j := scanNumber(rs, i)
			b.WriteString(string(rs[i:j]))
			if j < len(rs) && (isNameStart(rs[j]) || rs[j] == '(') {
				b.WriteByte('*')
			}
			i = j
		default:
			b.WriteRune(r)
			i++
		}
	}
	return b.String()
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNamePart(r rune) bool {
	return isNameStart(r) || isDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func startsNumber(rs []rune, i int) bool {
	if isDigit(rs[i]) {
		return true
	}
	return rs[i] == '.' && i+1 < len(rs) && isDigit(rs[i+1])
}

// scanNumber returns the end of the numeric literal starting at i:
// digits, an optional fraction and an optional exponent. An "e" not
// followed by digits is not part of the literal.
func scanNumber(rs []rune, i int) int {
	j := i
	for j < len(rs) && isDigit(rs[j]) {
		j++
	}
	if j < len(rs) && rs[j] == '.' {
		j++
		for j < len(rs) && isDigit(rs[j]) {
			j++
		}
	}
	if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
		k := j + 1
		if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
			k++
		}
		if k < len(rs) && isDigit(rs[k]) {
			for k < len(rs) && isDigit(rs[k]) {
				k++
			}
			j = k
		}
	}
	return j
}
