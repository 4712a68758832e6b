// ABOUTME: Statement parser for SZN documents: classifies each statement as environment, nodes, ports, or links.
// ABOUTME: Handles multi-line attribute blocks, typed literal coercion, and per-statement error reporting.
package szn

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is one parsed top-level statement of an SZN document, in source
// order. Concrete kinds: EnvironmentStatement, NodesStatement,
// PortsStatement, LinksStatement.
type Statement interface {
	// Pos returns the 1-based source line where the statement starts.
	Pos() int
}

// EnvironmentStatement is an attribute block with no trailing element tokens.
// At most one is allowed per document.
type EnvironmentStatement struct {
	Line       int
	Attributes *AttributeSet
}

// Pos returns the statement's starting line.
func (s *EnvironmentStatement) Pos() int { return s.Line }

// NodesStatement declares one or more nodes sharing an optional attribute block.
type NodesStatement struct {
	Line       int
	Attributes *AttributeSet
	Nodes      []string
}

// Pos returns the statement's starting line.
func (s *NodesStatement) Pos() int { return s.Line }

// PortsStatement declares one or more ports sharing an optional attribute block.
type PortsStatement struct {
	Line       int
	Attributes *AttributeSet
	Ports      []Endpoint
}

// Pos returns the statement's starting line.
func (s *PortsStatement) Pos() int { return s.Line }

// LinksStatement declares one or more links sharing an optional attribute
// block. Each link is a pair of endpoints.
type LinksStatement struct {
	Line       int
	Attributes *AttributeSet
	Links      [][2]Endpoint
}

// Pos returns the statement's starting line.
func (s *LinksStatement) Pos() int { return s.Line }

// Parse parses an SZN document into a Topology. It is the composition of
// ParseStatements and Assemble.
func Parse(text string) (*Topology, error) {
	statements, err := ParseStatements(text)
	if err != nil {
		return nil, err
	}
	return Assemble(statements)
}

// ParseStatements tokenizes an SZN document and groups the tokens into an
// ordered list of classified statements. Statement classification precedence
// when a line could match more than one shape: links > ports > nodes >
// environment.
func ParseStatements(text string) ([]Statement, error) {
	lines := strings.Split(text, "\n")

	tokens, err := Lex(text)
	if err != nil {
		return nil, wrapLexError(err, lines)
	}

	p := &parser{tokens: tokens, lines: lines}
	return p.parseDocument()
}

// parser holds the state of the statement parser.
type parser struct {
	tokens []Token
	pos    int
	lines  []string
}

// current returns the current token.
func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token and returns the consumed token.
func (p *parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

// rawLine returns the raw source text of the given 1-based line.
func (p *parser) rawLine(line int) string {
	if line < 1 || line > len(p.lines) {
		return ""
	}
	return strings.TrimRight(p.lines[line-1], "\r")
}

// parseDocument consumes all statements until EOF.
func (p *parser) parseDocument() ([]Statement, error) {
	statements := make([]Statement, 0)

	for {
		// Blank lines between statements are insignificant.
		for p.current().Type == TokenNewline {
			p.advance()
		}
		if p.current().Type == TokenEOF {
			return statements, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
}

// parseStatement collects one statement's tokens and classifies them. A
// statement ends at the first newline outside an open bracket or paren, so
// attribute blocks and lists may span multiple lines.
func (p *parser) parseStatement() (Statement, error) {
	startLine := p.current().Line

	var body []Token
	depth := 0
	for {
		tok := p.current()
		switch tok.Type {
		case TokenEOF:
			if depth > 0 {
				return nil, p.syntaxError(startLine, fmt.Errorf("unclosed attribute block or list"))
			}
			goto classify
		case TokenNewline:
			p.advance()
			if depth == 0 {
				goto classify
			}
			// Newlines inside an open block are plain separators.
		case TokenLBracket, TokenLParen:
			depth++
			body = append(body, tok)
			p.advance()
		case TokenRBracket, TokenRParen:
			depth--
			body = append(body, tok)
			p.advance()
		default:
			body = append(body, tok)
			p.advance()
		}
	}

classify:
	stmt, err := classifyStatement(startLine, body)
	if err != nil {
		return nil, p.syntaxError(startLine, err)
	}
	return stmt, nil
}

// syntaxError wraps a cause into a ParseError for the given statement line.
func (p *parser) syntaxError(line int, cause error) error {
	return &ParseError{Line: line, RawLine: p.rawLine(line), Err: cause}
}

// wrapLexError attaches the raw offending line to a lexer failure.
func wrapLexError(err error, lines []string) error {
	line := 0
	if le, ok := err.(*lexError); ok {
		line = le.line
	}
	raw := ""
	if line >= 1 && line <= len(lines) {
		raw = strings.TrimRight(lines[line-1], "\r")
	}
	return &ParseError{Line: line, RawLine: raw, Err: err}
}

// stmtCursor walks the token slice of a single statement.
type stmtCursor struct {
	tokens []Token
	pos    int
}

func (c *stmtCursor) current() Token {
	if c.pos >= len(c.tokens) {
		return Token{Type: TokenEOF}
	}
	return c.tokens[c.pos]
}

func (c *stmtCursor) advance() Token {
	tok := c.current()
	c.pos++
	return tok
}

func (c *stmtCursor) expect(typ TokenType) (Token, error) {
	tok := c.current()
	if tok.Type != typ {
		return tok, fmt.Errorf("expected %v but got %v (%q) at line %d, col %d",
			typ, tok.Type, tok.Value, tok.Line, tok.Col)
	}
	c.advance()
	return tok, nil
}

// classifyStatement parses an optional leading attribute block and then
// decides the statement kind from the remaining tokens.
func classifyStatement(line int, body []Token) (Statement, error) {
	c := &stmtCursor{tokens: body}

	var attrs *AttributeSet
	if c.current().Type == TokenLBracket {
		parsed, err := parseAttrBlock(c)
		if err != nil {
			return nil, err
		}
		attrs = parsed
	}

	rest := body[c.pos:]
	if len(rest) == 0 {
		if attrs == nil {
			return nil, fmt.Errorf("empty statement")
		}
		return &EnvironmentStatement{Line: line, Attributes: attrs}, nil
	}

	hasDashDash := false
	hasColon := false
	for _, tok := range rest {
		switch tok.Type {
		case TokenDashDash:
			hasDashDash = true
		case TokenColon:
			hasColon = true
		}
	}

	if attrs == nil {
		attrs = NewAttributeSet()
	}

	switch {
	case hasDashDash:
		links, err := parseLinkList(c)
		if err != nil {
			return nil, err
		}
		return &LinksStatement{Line: line, Attributes: attrs, Links: links}, nil
	case hasColon:
		ports, err := parsePortList(c)
		if err != nil {
			return nil, err
		}
		return &PortsStatement{Line: line, Attributes: attrs, Ports: ports}, nil
	default:
		nodes, err := parseNodeList(c)
		if err != nil {
			return nil, err
		}
		return &NodesStatement{Line: line, Attributes: attrs, Nodes: nodes}, nil
	}
}

// parseNodeList parses: Identifier+
func parseNodeList(c *stmtCursor) ([]string, error) {
	var nodes []string
	for c.current().Type != TokenEOF {
		tok, err := c.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, tok.Value)
	}
	return nodes, nil
}

// parsePortList parses: ( Identifier ':' PortLabel )+
func parsePortList(c *stmtCursor) ([]Endpoint, error) {
	var ports []Endpoint
	for c.current().Type != TokenEOF {
		ep, err := parseEndpoint(c)
		if err != nil {
			return nil, err
		}
		ports = append(ports, ep)
	}
	return ports, nil
}

// parseLinkList parses: ( Endpoint '--' Endpoint )+
func parseLinkList(c *stmtCursor) ([][2]Endpoint, error) {
	var links [][2]Endpoint
	for c.current().Type != TokenEOF {
		a, err := parseEndpoint(c)
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(TokenDashDash); err != nil {
			return nil, err
		}
		b, err := parseEndpoint(c)
		if err != nil {
			return nil, err
		}
		links = append(links, [2]Endpoint{a, b})
	}
	return links, nil
}

// parseEndpoint parses a "node:port" token pair. The port label may be an
// identifier or a bare number.
func parseEndpoint(c *stmtCursor) (Endpoint, error) {
	node, err := c.expect(TokenIdentifier)
	if err != nil {
		return Endpoint{}, err
	}
	if _, err := c.expect(TokenColon); err != nil {
		return Endpoint{}, err
	}
	label := c.current()
	if label.Type != TokenIdentifier && label.Type != TokenNumber {
		return Endpoint{}, fmt.Errorf("expected port label but got %v (%q) at line %d, col %d",
			label.Type, label.Value, label.Line, label.Col)
	}
	c.advance()
	return Endpoint{Node: node.Value, Port: label.Value}, nil
}

// parseAttrBlock parses: '[' ( Identifier '=' Value )+ ']'
func parseAttrBlock(c *stmtCursor) (*AttributeSet, error) {
	if _, err := c.expect(TokenLBracket); err != nil {
		return nil, err
	}

	attrs := NewAttributeSet()
	for c.current().Type != TokenRBracket {
		key, err := c.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(TokenEquals); err != nil {
			return nil, err
		}
		value, err := parseValue(c)
		if err != nil {
			return nil, err
		}
		attrs.Set(key.Value, value)
	}
	c.advance() // consume ]

	if attrs.Len() == 0 {
		return nil, fmt.Errorf("empty attribute block")
	}
	return attrs, nil
}

// parseValue parses a scalar literal or a parenthesized list of scalars.
func parseValue(c *stmtCursor) (any, error) {
	if c.current().Type == TokenLParen {
		return parseList(c)
	}
	return parseScalar(c)
}

// parseList parses: '(' Scalar ( ','? Scalar )* ')'
// Commas between items are optional, as are newlines (already stripped).
func parseList(c *stmtCursor) ([]any, error) {
	c.advance() // consume (

	list := make([]any, 0)
	for c.current().Type != TokenRParen {
		item, err := parseScalar(c)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
		if c.current().Type == TokenComma {
			c.advance()
		}
	}
	c.advance() // consume )

	if len(list) == 0 {
		return nil, fmt.Errorf("empty list value")
	}
	return list, nil
}

// parseScalar parses one typed literal: quoted string, number, boolean, or
// bare identifier (kept as a string).
func parseScalar(c *stmtCursor) (any, error) {
	tok := c.current()
	switch tok.Type {
	case TokenString:
		c.advance()
		return tok.Value, nil
	case TokenNumber:
		c.advance()
		return coerceNumber(tok.Value)
	case TokenBoolean:
		c.advance()
		return strings.EqualFold(tok.Value, "true"), nil
	case TokenIdentifier:
		c.advance()
		return tok.Value, nil
	default:
		return nil, fmt.Errorf("expected value but got %v (%q) at line %d, col %d",
			tok.Type, tok.Value, tok.Line, tok.Col)
	}
}

// coerceNumber converts a numeric literal to int, retrying as float64 when
// integer parsing fails (fractions and exponents).
func coerceNumber(literal string) (any, error) {
	if i, err := strconv.Atoi(literal); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric literal %q", literal)
	}
	return f, nil
}
