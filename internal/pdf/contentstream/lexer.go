// Package contentstream tokenizes decoded PDF page content streams and turns
// their path painting operators into layout elements.
package contentstream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// TokenType is the lexical class of a content stream token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenName
	TokenString
	TokenHexString
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
	TokenOperator
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "number"
	case TokenName:
		return "name"
	case TokenString:
		return "string"
	case TokenHexString:
		return "hexstring"
	case TokenArrayStart:
		return "["
	case TokenArrayEnd:
		return "]"
	case TokenDictStart:
		return "<<"
	case TokenDictEnd:
		return ">>"
	case TokenOperator:
		return "operator"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is one lexical unit. Pos is the byte offset of its first character.
type Token struct {
	Type  TokenType
	Value string
	Pos   int64
}

// Lexer splits a content stream into tokens
type Lexer struct {
	reader  *bufio.Reader
	pos     int64
	current byte
	hasNext bool
	err     error
}

// NewLexer creates a lexer reading from r
func NewLexer(r io.Reader) *Lexer {
	l := &Lexer{reader: bufio.NewReader(r), pos: -1, hasNext: true}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if !l.hasNext {
		return
	}
	ch, err := l.reader.ReadByte()
	if err != nil {
		if err != io.EOF {
			l.err = err
		}
		l.hasNext = false
		l.current = 0
		return
	}
	l.current = ch
	l.pos++
}

func (l *Lexer) peek() byte {
	if !l.hasNext {
		return 0
	}
	next, err := l.reader.Peek(1)
	if err != nil || len(next) == 0 {
		return 0
	}
	return next[0]
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(c byte) bool {
	return !isWhitespace(c) && !isDelimiter(c)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *Lexer) skipSpaceAndComments() {
	for l.hasNext {
		switch {
		case isWhitespace(l.current):
			l.advance()
		case l.current == '%':
			for l.hasNext && l.current != '\n' && l.current != '\r' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token, TokenEOF at the end of input.
func (l *Lexer) Next() (Token, error) {
	l.skipSpaceAndComments()
	if l.err != nil {
		return Token{Type: TokenEOF, Pos: l.pos}, fmt.Errorf("read content stream: %w", l.err)
	}
	if !l.hasNext {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	switch c := l.current; {
	case c == '(':
		return l.readLiteralString()
	case c == '<':
		if l.peek() == '<' {
			l.advance()
			l.advance()
			return Token{Type: TokenDictStart, Value: "<<", Pos: start}, nil
		}
		return l.readHexString()
	case c == '>':
		l.advance()
		if l.hasNext && l.current == '>' {
			l.advance()
			return Token{Type: TokenDictEnd, Value: ">>", Pos: start}, nil
		}
		return Token{}, fmt.Errorf("unexpected '>' at offset %d", start)
	case c == '[':
		l.advance()
		return Token{Type: TokenArrayStart, Value: "[", Pos: start}, nil
	case c == ']':
		l.advance()
		return Token{Type: TokenArrayEnd, Value: "]", Pos: start}, nil
	case c == '{' || c == '}':
		// PostScript calculator braces only appear in type 4 functions; treat as operators
		l.advance()
		return Token{Type: TokenOperator, Value: string(c), Pos: start}, nil
	case c == ')':
		return Token{}, fmt.Errorf("unbalanced ')' at offset %d", start)
	case c == '/':
		return l.readName()
	case (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.':
		return l.readNumber()
	default:
		return l.readOperator()
	}
}

func (l *Lexer) readLiteralString() (Token, error) {
	start := l.pos
	var buf bytes.Buffer
	l.advance()

	depth := 1
	for l.hasNext {
		c := l.current
		switch c {
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				l.advance()
				return Token{Type: TokenString, Value: buf.String(), Pos: start}, nil
			}
			buf.WriteByte(c)
		case '\\':
			l.advance()
			if !l.hasNext {
				continue
			}
			l.readEscape(&buf)
		default:
			buf.WriteByte(c)
		}
		l.advance()
	}
	return Token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func (l *Lexer) readEscape(buf *bytes.Buffer) {
	switch l.current {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if l.peek() == '\n' {
			l.advance()
		}
	case '\n':
	default:
		if l.current >= '0' && l.current <= '7' {
			octal := []byte{l.current}
			for i := 0; i < 2 && l.peek() >= '0' && l.peek() <= '7'; i++ {
				l.advance()
				octal = append(octal, l.current)
			}
			v, _ := strconv.ParseUint(string(octal), 8, 16)
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(l.current)
	}
}

func (l *Lexer) readHexString() (Token, error) {
	start := l.pos
	var buf bytes.Buffer
	l.advance()

	for l.hasNext && l.current != '>' {
		if !isWhitespace(l.current) {
			if !isHexDigit(l.current) {
				return Token{}, fmt.Errorf("invalid hex digit %q at offset %d", l.current, l.pos)
			}
			buf.WriteByte(l.current)
		}
		l.advance()
	}
	if !l.hasNext {
		return Token{}, fmt.Errorf("unterminated hex string at offset %d", start)
	}
	l.advance()

	if buf.Len()%2 == 1 {
		buf.WriteByte('0')
	}
	return Token{Type: TokenHexString, Value: buf.String(), Pos: start}, nil
}

func (l *Lexer) readName() (Token, error) {
	start := l.pos
	var buf bytes.Buffer
	l.advance()

	for l.hasNext && isRegular(l.current) {
		if l.current == '#' && isHexDigit(l.peek()) {
			l.advance()
			hi := l.current
			if isHexDigit(l.peek()) {
				l.advance()
				v, _ := strconv.ParseUint(string([]byte{hi, l.current}), 16, 8)
				buf.WriteByte(byte(v))
				l.advance()
				continue
			}
			buf.WriteByte('#')
			buf.WriteByte(hi)
			l.advance()
			continue
		}
		buf.WriteByte(l.current)
		l.advance()
	}
	return Token{Type: TokenName, Value: buf.String(), Pos: start}, nil
}

func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	var buf bytes.Buffer
	for l.hasNext && isRegular(l.current) {
		buf.WriteByte(l.current)
		l.advance()
	}
	if _, err := strconv.ParseFloat(buf.String(), 64); err != nil {
		// e.g. "-" alone or "1.2.3"; producers emit these rarely, keep them as operators
		return Token{Type: TokenOperator, Value: buf.String(), Pos: start}, nil
	}
	return Token{Type: TokenNumber, Value: buf.String(), Pos: start}, nil
}

func (l *Lexer) readOperator() (Token, error) {
	start := l.pos
	var buf bytes.Buffer
	for l.hasNext && isRegular(l.current) {
		buf.WriteByte(l.current)
		l.advance()
	}
	return Token{Type: TokenOperator, Value: buf.String(), Pos: start}, nil
}

// SkipInlineImage discards inline image data following an ID operator, up to
// and including the EI operator.
func (l *Lexer) SkipInlineImage() error {
	// a single whitespace byte separates ID from the data
	if l.hasNext && isWhitespace(l.current) {
		l.advance()
	}
	var prev byte = ' '
	for l.hasNext {
		if l.current == 'E' && isWhitespace(prev) && l.peek() == 'I' {
			l.advance()
			l.advance()
			if !l.hasNext || isWhitespace(l.current) || isDelimiter(l.current) {
				return nil
			}
			prev = 'I'
			continue
		}
		prev = l.current
		l.advance()
	}
	if l.err != nil {
		return fmt.Errorf("read inline image: %w", l.err)
	}
	return fmt.Errorf("unterminated inline image")
}
