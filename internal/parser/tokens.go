package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vektah/goparsify"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/relgraph/internal/ast"
)

// reserved words cannot be used as variable names inside expressions, where
// they would be ambiguous with operators and literals.
var reserved = map[string]bool{
	"MATCH": true, "WHERE": true, "RETURN": true, "AS": true,
	"AND": true, "OR": true, "XOR": true, "NOT": true,
	"TRUE": true, "FALSE": true,
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// nameLen returns the byte length of the symbolic name at the start of in,
// or 0 if in does not start with one.
func nameLen(in string) int {
	r, size := utf8.DecodeRuneInString(in)
	if size == 0 || !isNameStart(r) {
		return 0
	}
	n := size
	for n < len(in) {
		r, size = utf8.DecodeRuneInString(in[n:])
		if !isNameChar(r) {
			break
		}
		n += size
	}
	return n
}

// keyword matches word ignoring case. The match must end at a word
// boundary, so the keyword AS does not match the start of ASSET.
func keyword(word string) goparsify.Parser {
	return goparsify.NewParser(word, func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		in := s.Get()
		if len(in) < len(word) || !strings.EqualFold(word, in[:len(word)]) {
			s.ErrorHere(word)
			return
		}
		if next, _ := utf8.DecodeRuneInString(in[len(word):]); isNameChar(next) {
			s.ErrorHere(word)
			return
		}
		s.Advance(len(word))
		r.Token = word
	})
}

// symbolicName matches a name: a letter or underscore followed by letters,
// digits, and underscores. The token is NFC normalized.
func symbolicName(description string) goparsify.Parser {
	return goparsify.NewParser(description, func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		n := nameLen(s.Get())
		if n == 0 {
			s.ErrorHere(description)
			return
		}
		r.Token = norm.NFC.String(s.Get()[:n])
		s.Advance(n)
	})
}

// variableName is a symbolicName that is not a reserved word.
func variableName() goparsify.Parser {
	return goparsify.NewParser("variable", func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		in := s.Get()
		n := nameLen(in)
		if n == 0 || reserved[strings.ToUpper(in[:n])] {
			s.ErrorHere("variable")
			return
		}
		r.Token = norm.NFC.String(in[:n])
		r.Result = ast.Variable{Name: r.Token}
		s.Advance(n)
	})
}

// numberLiteral matches a 0x-prefixed hex integer or an unsigned decimal
// with optional fraction and exponent. The sign is a separate unary operator.
func numberLiteral() goparsify.Parser {
	return goparsify.NewParser("number", func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		in := s.Get()

		if len(in) > 2 && in[0] == '0' && (in[1] == 'x' || in[1] == 'X') {
			end := 2
			for end < len(in) && isHexDigit(in[end]) {
				end++
			}
			if end > 2 {
				n, err := strconv.ParseUint(in[2:end], 16, 64)
				if err != nil {
					s.ErrorHere("number")
					return
				}
				r.Token = in[:end]
				r.Result = ast.Number{Value: float64(n), Raw: r.Token}
				s.Advance(end)
				return
			}
		}

		end := digits(in, 0)
		if end == 0 {
			s.ErrorHere("number")
			return
		}
		if end < len(in) && in[end] == '.' {
			if frac := digits(in, end+1); frac > end+1 {
				end = frac
			}
		}
		if end < len(in) && (in[end] == 'e' || in[end] == 'E') {
			exp := end + 1
			if exp < len(in) && (in[exp] == '+' || in[exp] == '-') {
				exp++
			}
			if d := digits(in, exp); d > exp {
				end = d
			}
		}
		f, err := strconv.ParseFloat(in[:end], 64)
		if err != nil {
			s.ErrorHere("number")
			return
		}
		r.Token = in[:end]
		r.Result = ast.Number{Value: f, Raw: r.Token}
		s.Advance(end)
	})
}

func digits(in string, from int) int {
	i := from
	for i < len(in) && in[i] >= '0' && in[i] <= '9' {
		i++
	}
	return i
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// stringLiteral matches text between a pair of single or double quotes.
// There are no escape sequences; the value runs to the next matching quote.
func stringLiteral() goparsify.Parser {
	return goparsify.NewParser("string", func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		in := s.Get()
		if in == "" || (in[0] != '\'' && in[0] != '"') {
			s.ErrorHere("string")
			return
		}
		end := strings.IndexByte(in[1:], in[0])
		if end < 0 {
			s.Advance(len(in))
			s.ErrorHere("closing quote")
			return
		}
		r.Token = in[:end+2]
		r.Result = ast.String{Value: norm.NFC.String(in[1 : end+1])}
		s.Advance(end + 2)
	})
}

// comparisonOp matches the longest comparison operator at the current
// position. `!=` and `<>` are synonyms.
func comparisonOp() goparsify.Parser {
	ops := []struct {
		text string
		op   ast.BinaryOp
	}{
		{"<=", ast.LessEqual},
		{">=", ast.GreaterEqual},
		{"<>", ast.NotEqual},
		{"!=", ast.NotEqual},
		{"=", ast.Equal},
		{"<", ast.Less},
		{">", ast.Greater},
	}
	return goparsify.NewParser("comparison operator", func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		in := s.Get()
		for _, o := range ops {
			if strings.HasPrefix(in, o.text) {
				r.Token = o.text
				r.Result = o.op
				s.Advance(len(o.text))
				return
			}
		}
		s.ErrorHere("comparison operator")
	})
}

// runeClass matches a single rune from set.
func runeClass(description, set string) goparsify.Parser {
	return goparsify.NewParser(description, func(s *goparsify.State, r *goparsify.Result) {
		s.WS(s)
		c, size := utf8.DecodeRuneInString(s.Get())
		if size == 0 || !strings.ContainsRune(set, c) {
			s.ErrorHere(description)
			return
		}
		r.Token = string(c)
		s.Advance(size)
	})
}

// Dash and arrow-head characters accepted in relationship patterns.
const (
	dashes     = "-\u00ad\u2010\u2011\u2012\u2013\u2014\u2015\u2212\ufe58\ufe63\uff0d"
	leftHeads  = "<\u27e8\u3008\ufe64\uff1c"
	rightHeads = ">\u27e9\u3009\ufe65\uff1e"
)
