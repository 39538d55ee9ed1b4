package token

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/compozy/unitgen/engine/unitconfig"
)

// ProcedureName identifies a remotely resolved procedure
type ProcedureName string

const (
	GetPresignedURL          ProcedureName = "getPresignedUrl"
	GetMultiplePresignedURLs ProcedureName = "getMultiplePresignedUrls"
)

// KnownProcedures is the closed set of procedures a token may call
var KnownProcedures = []ProcedureName{
	GetPresignedURL,
	GetMultiplePresignedURLs,
}

// ErrNotProcedure is returned for text that is not call-shaped
var ErrNotProcedure = errors.New("not a procedure call")

// ProcedureToken is a parsed `name("argument")` token
type ProcedureToken struct {
	Name ProcedureName
	Arg  string
	// Raw is the token text exactly as scanned, used as the substitution key
	Raw string
}

func isKnown(name string) bool {
	for _, p := range KnownProcedures {
		if string(p) == name {
			return true
		}
	}
	return false
}

func knownNames() []string {
	out := make([]string, len(KnownProcedures))
	for i, p := range KnownProcedures {
		out[i] = string(p)
	}
	return out
}

// ParseProcedure parses `ident ( string-literal )` with optional whitespace around
// each part. Text that does not start with an identifier followed by "(" is not a
// procedure; a well-formed call to an unknown name yields *UnknownProcedureError.
func ParseProcedure(text string) (ProcedureToken, error) {
	p := &procParser{src: text}
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return ProcedureToken{}, ErrNotProcedure
	}
	p.skipSpace()
	if !p.consume('(') {
		return ProcedureToken{}, ErrNotProcedure
	}
	p.skipSpace()
	arg, err := p.stringLiteral()
	if err != nil {
		return ProcedureToken{}, fmt.Errorf("malformed procedure call '%s': %w", text, err)
	}
	p.skipSpace()
	if !p.consume(')') {
		return ProcedureToken{}, fmt.Errorf("malformed procedure call '%s': expected ')' at offset %d", text, p.pos)
	}
	p.skipSpace()
	if !p.done() {
		return ProcedureToken{}, fmt.Errorf("malformed procedure call '%s': unexpected text at offset %d", text, p.pos)
	}
	if !isKnown(name) {
		return ProcedureToken{}, &unitconfig.UnknownProcedureError{Name: name, Token: text, Known: knownNames()}
	}
	return ProcedureToken{Name: ProcedureName(name), Arg: arg, Raw: text}, nil
}

// Args splits a multiple-URL argument on commas
func (t ProcedureToken) Args() []string {
	if t.Name != GetMultiplePresignedURLs {
		return []string{t.Arg}
	}
	parts := strings.Split(t.Arg, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type procParser struct {
	src string
	pos int
}

func (p *procParser) done() bool {
	return p.pos >= len(p.src)
}

func (p *procParser) skipSpace() {
	for !p.done() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *procParser) consume(c byte) bool {
	if p.done() || p.src[p.pos] != c {
		return false
	}
	p.pos++
	return true
}

func (p *procParser) ident() string {
	start := p.pos
	for !p.done() {
		c := p.src[p.pos]
		isLetter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && (!isDigit || p.pos == start) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *procParser) stringLiteral() (string, error) {
	if p.done() {
		return "", errors.New("expected string literal")
	}
	quote := p.src[p.pos]
	if quote != '"' && quote != '\'' {
		return "", fmt.Errorf("expected string literal at offset %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", errors.New("unterminated escape")
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == quote:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", errors.New("unterminated string literal")
}
