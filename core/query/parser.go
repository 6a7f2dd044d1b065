package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/asaidimu/go-sift/core/value"
)

// ParseError reports where and why a query string failed to parse.
type ParseError struct {
	Offset   int    // byte offset into the input
	Expected string // what the parser was looking for
	Found    string // the input at Offset, or "end of input"
}

// Error returns the error message for a ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: expected %s, found %s", e.Offset, e.Expected, e.Found)
}

const (
	directiveLimit  = "limit"
	directiveOffset = "offset"
)

// reserved holds the keywords that cannot be used as a field name segment.
var reserved = map[string]bool{
	string(ComparisonOperatorEq):  true,
	string(ComparisonOperatorNeq): true,
	string(ComparisonOperatorLt):  true,
	string(ComparisonOperatorLte): true,
	string(ComparisonOperatorGt):  true,
	string(ComparisonOperatorGte): true,
	string(ComparisonOperatorIn):  true,
	directiveLimit:                true,
	directiveOffset:               true,
}

// Parse parses a query string into a Query.
//
// The grammar is a list of clauses separated by '&':
//
//	query     = [ clause { "&" clause } ]
//	clause    = filter | "$limit=" uint | "$offset=" uint
//	filter    = key [ "__" op ] "=" literal
//	key       = segment [ "__" segment ]          ; parent__child is a relation
//	segment   = alnum { "_" alnum }                ; not a reserved keyword
//	op        = "eq" | "neq" | "lt" | "lte" | "gt" | "gte" | "in"
//	literal   = item { "," item }                  ; more than one item is a list
//	item      = uint | "true" | "false" | string   ; strings are percent-decoded
//
// Filter clauses are combined left to right with "and". A repeated $limit or
// $offset keeps the last value. An empty input yields an empty Query. Parsing
// is all or nothing: on error no partial result is returned.
func Parse(input string) (*Query, error) {
	q := &Query{}
	if input == "" {
		return q, nil
	}

	p := &parser{input: input}
	var filters []Expr
	for {
		if err := p.parseClause(q, &filters); err != nil {
			return nil, err
		}
		if p.eof() {
			break
		}
		if err := p.expectByte('&', `"&"`); err != nil {
			return nil, err
		}
	}

	q.Filter = AndAll(filters...)
	return q, nil
}

// MustParse is like Parse but panics on error. It is intended for queries
// known at compile time.
func MustParse(input string) *Query {
	q, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return q
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.input) {
		return 0
	}
	return p.input[p.pos+n]
}

func (p *parser) errorf(offset int, expected string) *ParseError {
	found := "end of input"
	if offset < len(p.input) {
		rest := p.input[offset:]
		if i := strings.IndexByte(rest, '&'); i >= 0 {
			rest = rest[:i]
		}
		if len(rest) > 16 {
			rest = rest[:16] + "..."
		}
		if rest == "" {
			rest = p.input[offset : offset+1]
		}
		found = strconv.Quote(rest)
	}
	return &ParseError{Offset: offset, Expected: expected, Found: found}
}

func (p *parser) expectByte(b byte, expected string) error {
	if p.eof() || p.input[p.pos] != b {
		return p.errorf(p.pos, expected)
	}
	p.pos++
	return nil
}

// clause = filter | directive
func (p *parser) parseClause(q *Query, filters *[]Expr) error {
	if p.peek() == '$' {
		return p.parseDirective(q)
	}
	e, err := p.parseFilter()
	if err != nil {
		return err
	}
	*filters = append(*filters, e)
	return nil
}

// directive = "$" ( "limit" | "offset" ) "=" uint
func (p *parser) parseDirective(q *Query) error {
	p.pos++ // '$'
	start := p.pos
	name := p.alnumRun()
	if name != directiveLimit && name != directiveOffset {
		return p.errorf(start, "directive $limit or $offset")
	}
	if err := p.expectByte('=', `"="`); err != nil {
		return err
	}

	start = p.pos
	raw := p.until('&')
	if raw == "" || !isDigits(raw) {
		return p.errorf(start, "unsigned integer")
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return p.errorf(start, "unsigned integer within 64 bits")
	}

	if name == directiveLimit {
		q.Limit = Uint64Ptr(n)
	} else {
		q.Offset = Uint64Ptr(n)
	}
	return nil
}

// filter = key [ "__" op ] "=" literal
func (p *parser) parseFilter() (Expr, error) {
	start := p.pos
	first, err := p.parseSegment()
	if err != nil {
		return nil, err
	}
	if reserved[first] {
		return nil, p.errorf(start, reservedField(first))
	}

	var left Expr = FieldExpr{Name: first}
	op := ComparisonOperatorEq
	relation := false

	for p.peek() == '_' && p.peekAt(1) == '_' {
		p.pos += 2
		segStart := p.pos
		seg, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		if candidate := ComparisonOperator(seg); candidate.IsStandard() {
			if p.peek() != '=' {
				return nil, p.errorf(p.pos, `"=" after operator`)
			}
			op = candidate
			break
		}
		if reserved[seg] {
			return nil, p.errorf(segStart, reservedField(seg))
		}
		if relation {
			return nil, p.errorf(segStart-2, "\"=\" or operator; relations are limited to one level")
		}
		relation = true
		left = RelationExpr{
			Root:  EntityExpr{Name: first},
			Field: FieldExpr{Name: seg},
		}
	}

	if err := p.expectByte('=', `"=" or "__"`); err != nil {
		return nil, err
	}

	right, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if _, isList := right.Value.(value.List); op == ComparisonOperatorIn && !isList {
		// field__in=a is a one element set
		right.Value = value.List{right.Value}
	}
	return RelationalExpr{Operator: op, Left: left, Right: right}, nil
}

// segment = alnum { "_" alnum }
func (p *parser) parseSegment() (string, error) {
	start := p.pos
	if p.alnumRun() == "" {
		return "", p.errorf(p.pos, "field name")
	}
	for p.peek() == '_' && isAlnum(p.peekAt(1)) {
		p.pos++
		p.alnumRun()
	}
	if p.peek() == '_' && p.peekAt(1) != '_' {
		return "", p.errorf(p.pos+1, `alphanumeric character after "_"`)
	}
	return p.input[start:p.pos], nil
}

func reservedField(seg string) string {
	return fmt.Sprintf("field name (%q is a reserved keyword)", seg)
}

// literal = item { "," item }
func (p *parser) parseLiteral() (LiteralExpr, error) {
	start := p.pos
	raw := p.until('&')
	if raw == "" {
		return LiteralExpr{}, p.errorf(start, "literal")
	}

	if !strings.Contains(raw, ",") {
		v, err := p.parseItem(raw, start)
		if err != nil {
			return LiteralExpr{}, err
		}
		return LiteralExpr{Value: v}, nil
	}

	items := strings.Split(raw, ",")
	list := make(value.List, 0, len(items))
	offset := start
	for _, item := range items {
		if item == "" {
			return LiteralExpr{}, p.errorf(offset, "list item")
		}
		v, err := p.parseItem(item, offset)
		if err != nil {
			return LiteralExpr{}, err
		}
		list = append(list, v)
		offset += len(item) + 1
	}
	return LiteralExpr{Value: list}, nil
}

// item = uint | "true" | "false" | string
func (p *parser) parseItem(raw string, offset int) (value.Value, error) {
	switch {
	case isDigits(raw):
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, p.errorf(offset, "unsigned integer within 64 bits")
		}
		return value.Uint(n), nil
	case raw == "true":
		return value.Bool(true), nil
	case raw == "false":
		return value.Bool(false), nil
	}

	s, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, p.errorf(offset, "valid percent-encoded string")
	}
	return value.String(s), nil
}

func (p *parser) alnumRun() string {
	start := p.pos
	for !p.eof() && isAlnum(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) until(b byte) string {
	start := p.pos
	for !p.eof() && p.input[p.pos] != b {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
