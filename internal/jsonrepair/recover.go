// Package jsonrepair turns the loosely formatted JSON that language models
// return into text that encoding/json has a fair chance of parsing.
package jsonrepair

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// Recover repairs raw model output that should contain a single JSON object.
//
// It strips markdown code fences, makes sure the text opens with '{', removes
// commas that sit directly before a closer, deletes orphan closers and
// appends whatever closers are still open in last-opened-first-closed order.
// Braces and brackets inside string literals are treated as data.
//
// The result is balanced and delimited but not guaranteed to be valid JSON;
// callers must still handle a failing json.Unmarshal. Empty input yields "{}".
func Recover(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "{}"
	}
	if s[0] != '{' {
		s = "{" + s
	}
	return balance(s)
}

// Parse recovers raw and unmarshals the result into v.
func Parse(raw string, v any) error {
	if err := json.Unmarshal([]byte(Recover(raw)), v); err != nil {
		return fmt.Errorf("parse recovered json: %w", err)
	}
	return nil
}

func balance(s string) string {
	out := make([]byte, 0, len(s)+8)
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			out = append(out, c)
		case '{', '[':
			stack = append(stack, c)
			out = append(out, c)
		case '}', ']':
			idx := lastIndex(stack, openerFor(c))
			if idx < 0 {
				// orphan closer
				continue
			}
			for len(stack)-1 > idx {
				out = append(dropTrailingComma(out), closerFor(stack[len(stack)-1]))
				stack = stack[:len(stack)-1]
			}
			out = append(dropTrailingComma(out), c)
			stack = stack[:idx]
		default:
			out = append(out, c)
		}
	}

	if inString {
		if escaped {
			out = out[:len(out)-1]
		}
		out = append(out, '"')
	}
	if len(stack) > 0 {
		out = fillDanglingColon(out)
	}
	for len(stack) > 0 {
		out = append(dropTrailingComma(out), closerFor(stack[len(stack)-1]))
		stack = stack[:len(stack)-1]
	}
	return string(out)
}

// dropTrailingComma removes a comma that is followed only by whitespace at
// the end of out. Called right before a closer is written, so the comma can
// never belong to a string literal.
func dropTrailingComma(out []byte) []byte {
	j := len(out)
	for j > 0 && isSpace(out[j-1]) {
		j--
	}
	if j > 0 && out[j-1] == ',' {
		return append(out[:j-1], out[j:]...)
	}
	return out
}

// fillDanglingColon completes a key that was cut off before its value.
func fillDanglingColon(out []byte) []byte {
	j := len(out)
	for j > 0 && isSpace(out[j-1]) {
		j--
	}
	if j > 0 && out[j-1] == ':' {
		return append(out, "null"...)
	}
	return out
}

func lastIndex(stack []byte, c byte) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == c {
			return i
		}
	}
	return -1
}

func openerFor(c byte) byte {
	if c == '}' {
		return '{'
	}
	return '['
}

func closerFor(c byte) byte {
	if c == '{' {
		return '}'
	}
	return ']'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
