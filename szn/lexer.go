// ABOUTME: Tokenizer for the SZN topology description language.
// ABOUTME: Produces identifiers, numbers, booleans, quoted strings, and structural tokens with line/col info.
package szn

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF        TokenType = iota
	TokenNewline              // statement terminator
	TokenLBracket             // [
	TokenRBracket             // ]
	TokenLParen               // (
	TokenRParen               // )
	TokenEquals               // =
	TokenColon                // :
	TokenComma                // ,
	TokenDashDash             // -- link separator
	TokenIdentifier           // bare identifier
	TokenString               // double-quoted string
	TokenNumber               // integer or float literal
	TokenBoolean              // true or false, case-insensitive
)

// String returns a human-readable name for the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	case TokenLBracket:
		return "LBRACKET"
	case TokenRBracket:
		return "RBRACKET"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenEquals:
		return "EQUALS"
	case TokenColon:
		return "COLON"
	case TokenComma:
		return "COMMA"
	case TokenDashDash:
		return "DASHDASH"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenBoolean:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// Token represents a single lexical token with its type, value, and source location.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

// lexError is a tokenization failure with its source position.
type lexError struct {
	line int
	col  int
	msg  string
}

// Error implements the error interface.
func (e *lexError) Error() string {
	return fmt.Sprintf("%s at line %d, col %d", e.msg, e.line, e.col)
}

// lexer holds the state of the lexical scanner.
type lexer struct {
	input  []rune
	pos    int
	line   int
	col    int
	tokens []Token
}

// Lex tokenizes an SZN document into a slice of tokens. Newlines are emitted
// as tokens because they terminate statements; the statement parser decides
// when they are significant. Comments run from '#' to end of line.
func Lex(input string) ([]Token, error) {
	l := &lexer{
		input:  []rune(input),
		pos:    0,
		line:   1,
		col:    1,
		tokens: make([]Token, 0),
	}

	if err := l.scan(); err != nil {
		return nil, err
	}

	return l.tokens, nil
}

// scan processes all characters in the input and produces tokens.
func (l *lexer) scan() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == '\n' {
			l.emit(TokenNewline, "\n")
			l.advance()
			continue
		}

		// Spaces and tabs separate tokens but are otherwise insignificant.
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
			continue
		}

		// Comments: # ... to end of line
		if ch == '#' {
			l.skipComment()
			continue
		}

		if ch == '"' {
			if err := l.lexString(); err != nil {
				return err
			}
			continue
		}

		// Link separator: --
		if ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '-' {
			l.emit(TokenDashDash, "--")
			l.advance()
			l.advance()
			continue
		}

		// Numbers: digit, or minus followed by digit or dot
		if ch == '-' && l.pos+1 < len(l.input) && (unicode.IsDigit(l.input[l.pos+1]) || l.input[l.pos+1] == '.') {
			l.lexNumber()
			continue
		}

		if unicode.IsDigit(ch) {
			l.lexNumber()
			continue
		}

		if isIdentStart(ch) {
			l.lexIdentifier()
			continue
		}

		switch ch {
		case '[':
			l.emit(TokenLBracket, "[")
			l.advance()
		case ']':
			l.emit(TokenRBracket, "]")
			l.advance()
		case '(':
			l.emit(TokenLParen, "(")
			l.advance()
		case ')':
			l.emit(TokenRParen, ")")
			l.advance()
		case '=':
			l.emit(TokenEquals, "=")
			l.advance()
		case ':':
			l.emit(TokenColon, ":")
			l.advance()
		case ',':
			l.emit(TokenComma, ",")
			l.advance()
		default:
			return &lexError{line: l.line, col: l.col, msg: fmt.Sprintf("unexpected character %q", string(ch))}
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Value: "", Line: l.line, Col: l.col})
	return nil
}

// isIdentStart reports whether ch can begin an identifier.
func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isIdentPart reports whether ch can continue an identifier.
func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '_'
}

// advance moves the position forward by one character, tracking line and column.
func (l *lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// emit adds a token to the token list with the current position info.
func (l *lexer) emit(typ TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Line: l.line, Col: l.col})
}

// skipComment skips from # to end of line, leaving the newline in place.
func (l *lexer) skipComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
}

// lexString reads a double-quoted string. The quotes only delimit the value;
// no escape sequences are processed and the string may not span lines.
func (l *lexer) lexString() error {
	startLine := l.line
	startCol := l.col
	l.advance() // skip opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == '\n' {
			break
		}
		if ch == '"' {
			l.advance() // skip closing quote
			l.tokens = append(l.tokens, Token{Type: TokenString, Value: sb.String(), Line: startLine, Col: startCol})
			return nil
		}

		sb.WriteRune(ch)
		l.advance()
	}

	return &lexError{line: startLine, col: startCol, msg: "unterminated string"}
}

// lexNumber reads an integer or float literal: optional sign, digits,
// optional fraction, optional exponent with its own optional sign.
func (l *lexer) lexNumber() {
	startLine := l.line
	startCol := l.col
	var sb strings.Builder

	if l.pos < len(l.input) && l.input[l.pos] == '-' {
		sb.WriteByte('-')
		l.advance()
	}

	for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
		sb.WriteRune(l.input[l.pos])
		l.advance()
	}

	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		sb.WriteByte('.')
		l.advance()
		for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
			sb.WriteRune(l.input[l.pos])
			l.advance()
		}
	}

	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		// Only consume the exponent if it is actually followed by digits,
		// otherwise "1e" would swallow a trailing identifier.
		next := l.pos + 1
		if next < len(l.input) && (l.input[next] == '+' || l.input[next] == '-') {
			next++
		}
		if next < len(l.input) && unicode.IsDigit(l.input[next]) {
			for l.pos < next {
				sb.WriteRune(l.input[l.pos])
				l.advance()
			}
			for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
				sb.WriteRune(l.input[l.pos])
				l.advance()
			}
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenNumber, Value: sb.String(), Line: startLine, Col: startCol})
}

// lexIdentifier reads an identifier. The literals true/false (any case) are
// emitted as boolean tokens.
func (l *lexer) lexIdentifier() {
	startLine := l.line
	startCol := l.col
	var sb strings.Builder

	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		sb.WriteRune(l.input[l.pos])
		l.advance()
	}

	word := sb.String()

	typ := TokenIdentifier
	if strings.EqualFold(word, "true") || strings.EqualFold(word, "false") {
		typ = TokenBoolean
	}

	l.tokens = append(l.tokens, Token{Type: typ, Value: word, Line: startLine, Col: startCol})
}
