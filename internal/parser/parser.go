// Package parser turns query text into an ast.Query.
//
// The grammar is built from goparsify combinators in grammar.go; the token
// level parsers that need custom behavior (keywords, names, literals,
// operators) live in tokens.go.
package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vektah/goparsify"

	"github.com/roach88/relgraph/internal/ast"
	"github.com/roach88/relgraph/internal/qerr"
)

// Parse parses a query. On failure it returns a *qerr.Error with code
// PARSE_ERROR naming the rule that failed and the text where it failed.
func Parse(text string) (*ast.Query, error) {
	result, err := run("query", queryRoot, text)
	if err != nil {
		return nil, err
	}
	q, ok := result.Result.(*ast.Query)
	if !ok {
		return nil, fmt.Errorf("invalid result type: %T", result.Result)
	}
	return q, nil
}

// ParseExpr parses a single expression.
func ParseExpr(text string) (ast.Expr, error) {
	result, err := run("expression", exprRoot, text)
	if err != nil {
		return nil, err
	}
	e, ok := result.Result.(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("invalid result type: %T", result.Result)
	}
	return e, nil
}

// MustParse parses a query and panics if an error occurs. It is meant for
// tests and static fixtures.
func MustParse(text string) *ast.Query {
	q, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("unable to parse query: '%s': %v", strings.ReplaceAll(text, "\n", "\\n"), err))
	}
	return q
}

// run applies parser to all of in. Leading and trailing whitespace is
// allowed; any other unparsed text is an error.
func run(what string, parser goparsify.Parser, in string) (*goparsify.Result, error) {
	state := goparsify.NewState(in)
	state.WS = goparsify.UnicodeWhitespace
	state.WS(state)

	result := &goparsify.Result{}
	parser(state, result)
	if state.Errored() {
		return nil, parseError(in, state.Error.Pos(), expectedText(&state.Error))
	}

	state.WS(state)
	if state.Get() != "" {
		return nil, parseError(in, state.Pos, "end of "+what)
	}
	return result, nil
}

func parseError(in string, offset int, rule string) *qerr.Error {
	line, col := coordinates(in, offset)
	return qerr.NewParseError(rule, fragmentAt(in, offset), offset, line, col)
}

// fragmentAt returns the text from offset to the end of its line, without
// trailing whitespace.
func fragmentAt(in string, offset int) string {
	if offset > len(in) {
		offset = len(in)
	}
	rest := in[offset:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimRightFunc(rest, unicode.IsSpace)
}

// coordinates returns the 1-based line and column of a byte offset. The
// column counts runes.
func coordinates(input string, atOffset int) (line, col int) {
	input = strings.TrimRightFunc(input, unicode.IsSpace)
	if atOffset > len(input) {
		atOffset = len(input)
	}
	line = 1
	lineStart := 0
	for i := 0; i < atOffset; i++ {
		if input[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(input[lineStart:atOffset]) + 1
}

// expectedText extracts the expected text from a goparsify Error. This relies
// on the format of the error message generated by goparsify.
func expectedText(e *goparsify.Error) string {
	msg := e.Error()
	idx := strings.Index(msg, "expected")
	if idx == -1 {
		slog.Warn("goparsify error without 'expected' text", "error", msg)
		return msg
	}
	return strings.TrimSpace(msg[idx+len("expected"):])
}
