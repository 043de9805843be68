// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdtemplate

import (
	"fmt"
	"strings"
)

// TokenKind identifies a template token.
type TokenKind int

const (
	// TokenLiteral is verbatim text.
	TokenLiteral TokenKind = iota
	// TokenEnv is {env}.
	TokenEnv
	// TokenProgram is {program}.
	TokenProgram
	// TokenInput is {input}.
	TokenInput
	// TokenOutputDir is {output_dir}.
	TokenOutputDir
)

var placeholders = map[string]TokenKind{
	"env":        TokenEnv,
	"program":    TokenProgram,
	"input":      TokenInput,
	"output_dir": TokenOutputDir,
}

// Placeholder returns the literal placeholder text of k, e.g. "{input}".
func (k TokenKind) Placeholder() string {
	for name, kind := range placeholders {
		if kind == k {
			return "{" + name + "}"
		}
	}

	return ""
}

// Token is one element of a parsed template.
type Token struct {
	Kind TokenKind
	Text string // only set for TokenLiteral
}

// TemplateError describes why a template could not be parsed.
type TemplateError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("command template error at offset %d: %s", e.Offset, e.Reason)
}

// Template is a parsed command template.
type Template struct {
	raw    string
	tokens []Token
}

// Parse splits s into literal text and placeholders.
func Parse(s string) (*Template, error) {
	t := &Template{raw: s}

	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.tokens = append(t.tokens, Token{Kind: TokenLiteral, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++

				continue
			}

			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return nil, &TemplateError{Template: s, Offset: i, Reason: "unterminated '{'"}
			}

			name := s[i+1 : i+1+end]

			kind, ok := placeholders[name]
			if !ok {
				return nil, &TemplateError{Template: s, Offset: i, Reason: fmt.Sprintf("unknown placeholder {%s}", name)}
			}

			flush()
			t.tokens = append(t.tokens, Token{Kind: kind})
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++

				continue
			}

			return nil, &TemplateError{Template: s, Offset: i, Reason: "single '}' in template"}
		default:
			lit.WriteByte(c)
		}
	}

	flush()

	return t, nil
}

// String returns the template as written.
func (t *Template) String() string {
	return t.raw
}

// Tokens returns a copy of the parsed tokens.
func (t *Template) Tokens() []Token {
	return append([]Token(nil), t.tokens...)
}

// Uses reports whether the template references k.
func (t *Template) Uses(k TokenKind) bool {
	for _, tok := range t.tokens {
		if tok.Kind == k {
			return true
		}
	}

	return false
}

// Values are substituted into a template. Input and OutputDir must already be escaped.
type Values struct {
	Env       string
	Program   string
	Input     string
	OutputDir string
}

// Render substitutes v into the template.
func (t *Template) Render(v Values) string {
	var b strings.Builder

	for _, tok := range t.tokens {
		switch tok.Kind {
		case TokenLiteral:
			b.WriteString(tok.Text)
		case TokenEnv:
			b.WriteString(v.Env)
		case TokenProgram:
			b.WriteString(v.Program)
		case TokenInput:
			b.WriteString(v.Input)
		case TokenOutputDir:
			b.WriteString(v.OutputDir)
		}
	}

	return b.String()
}
