package formatter

import (
	"context"
	"strings"

	"github.com/smacker/go-tree-sitter/javascript"
)

var scriptAtomic = map[string]bool{
	"string":          true,
	"template_string": true,
	"regex":           true,
	"comment":         true,

	// JSX is kept as written.
	"jsx_element":              true,
	"jsx_self_closing_element": true,
	"jsx_fragment":             true,
}

// Children of these nodes start on their own line.
var scriptContainers = map[string]bool{
	"program":         true,
	"statement_block": true,
	"class_body":      true,
	"switch_case":     true,
	"switch_default":  true,
	"object":          true,
	"object_pattern":  true,
}

var scriptPrefixes = map[string]bool{
	"unary_expression":  true,
	"update_expression": true,
	"spread_element":    true,
	"rest_pattern":      true,
}

// Operators whose parent is one of these are spaced on both sides.
var scriptBinary = map[string]bool{
	"binary_expression":               true,
	"assignment_expression":           true,
	"augmented_assignment_expression": true,
	"ternary_expression":              true,
	"arrow_function":                  true,
	"variable_declarator":             true,
	"assignment_pattern":              true,
	"object_assignment_pattern":       true,
	"field_definition":                true,
	"public_field_definition":         true,
}

// Keywords followed by a space before an opening parenthesis.
var scriptParenKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"with": true, "return": true, "typeof": true, "await": true, "yield": true,
	"in": true, "of": true, "async": true, "else": true, "do": true,
	"delete": true, "void": true, "throw": true, "case": true,
}

// Script formats JavaScript source.
func Script(ctx context.Context, src string, opts Options) (string, error) {
	w, err := scriptLayout(ctx, src, opts)
	if err != nil {
		return "", err
	}
	return w.String(), nil
}

func scriptLayout(ctx context.Context, src string, opts Options) (*writer, error) {
	tree, err := parse(ctx, javascript.GetLanguage(), []byte(src))
	if err != nil {
		return nil, err
	}
	tz := &tokenizer{
		src:        []byte(src),
		atomic:     scriptAtomic,
		containers: scriptContainers,
		prefixes:   scriptPrefixes,
	}
	p := &scriptPrinter{
		w:      newWriter(opts),
		opts:   opts,
		tokens: tz.run(tree.RootNode()),
		scopes: []scriptScope{{}},
	}
	p.print()
	return p.w, nil
}

type scriptScope struct {
	parens   int
	caseOpen bool
}

type scriptPrinter struct {
	w      *writer
	opts   Options
	tokens []token
	scopes []scriptScope
}

func (p *scriptPrinter) scope() *scriptScope {
	return &p.scopes[len(p.scopes)-1]
}

func (p *scriptPrinter) peek(i int) *token {
	if i < len(p.tokens) {
		return &p.tokens[i]
	}
	return nil
}

func (p *scriptPrinter) print() {
	var prev *token
	for i := 0; i < len(p.tokens); i++ {
		cur := &p.tokens[i]
		next := p.peek(i + 1)
		if cur.opens || (cur.kind == "comment" && cur.breaks > 0) {
			p.w.newline()
		}
		if p.opts.PreserveNewlines && !p.w.started && cur.breaks >= 2 && !prev.is("{") && !cur.is("}") {
			p.w.blank = true
		}

		switch {
		case cur.kind == "comment":
			p.put(prev, cur)
			if strings.HasPrefix(cur.text, "//") || (next != nil && next.breaks > 0) {
				p.w.newline()
			}
		case cur.is("{"):
			p.put(prev, cur)
			if next.is("}") {
				p.w.write("}")
				i++
				p.closed(p.peek(i + 1))
				prev = next
				continue
			}
			p.scopes = append(p.scopes, scriptScope{})
			p.w.level++
			p.endLine(next)
		case cur.is("}"):
			p.w.newline()
			if sc := p.scope(); sc.caseOpen {
				p.w.level--
				sc.caseOpen = false
			}
			if len(p.scopes) > 1 {
				p.scopes = p.scopes[:len(p.scopes)-1]
				p.w.level--
			}
			p.w.write("}")
			p.closed(next)
		case cur.is("(", "["):
			p.put(prev, cur)
			p.scope().parens++
		case cur.is(")", "]"):
			p.put(prev, cur)
			if p.scope().parens > 0 {
				p.scope().parens--
			}
		case cur.is(";"):
			p.w.write(";")
			if p.scope().parens == 0 {
				p.endLine(next)
			}
		case cur.is("case", "default") && (cur.parent == "switch_case" || cur.parent == "switch_default"):
			p.w.newline()
			if sc := p.scope(); sc.caseOpen {
				p.w.level--
				sc.caseOpen = false
			}
			p.w.write(cur.text)
		case cur.is(":") && (cur.parent == "switch_case" || cur.parent == "switch_default"):
			p.w.write(":")
			p.w.level++
			p.scope().caseOpen = true
			p.endLine(next)
		default:
			p.put(prev, cur)
		}
		prev = cur
	}
}

// endLine breaks the line unless a trailing comment follows on the same
// source line.
func (p *scriptPrinter) endLine(next *token) {
	if next != nil && next.kind == "comment" && next.breaks == 0 {
		return
	}
	p.w.newline()
}

// closed decides whether the line ends after a closing brace.
func (p *scriptPrinter) closed(next *token) {
	if next == nil || next.opens || next.is("}") {
		p.w.newline()
	}
}

func (p *scriptPrinter) put(prev, cur *token) {
	if prev != nil && p.spaced(prev, cur) {
		p.w.spaced(cur.text)
		return
	}
	p.w.write(cur.text)
}

func (p *scriptPrinter) spaced(prev, cur *token) bool {
	if cur.kind == "comment" || prev.kind == "comment" {
		return true
	}
	if cur.is(")", "]", ",", ";", ".", "?.") {
		return false
	}
	if prev.is("(", "[", ".", "?.") || prev.prefix {
		return false
	}
	if scriptOperator(cur) && !cur.prefix && cur.parent == "update_expression" {
		return false
	}
	if p.binary(prev) || p.binary(cur) {
		return true
	}
	if prev.is(",", ";", ":") {
		return true
	}
	switch cur.text {
	case "(":
		return (scriptKeyword(prev) && scriptParenKeywords[prev.text]) || scriptOperator(prev)
	case "[":
		return scriptKeyword(prev) || scriptOperator(prev)
	case "{":
		return true
	case ":":
		return false
	}
	if scriptWord(cur) || cur.prefix {
		return scriptWord(prev) || prev.is(")", "]", "}") || scriptOperator(prev)
	}
	return scriptOperator(prev)
}

func (p *scriptPrinter) binary(t *token) bool {
	return scriptOperator(t) && scriptBinary[t.parent]
}

func scriptWord(t *token) bool {
	switch t.kind {
	case "string", "template_string", "regex", "number",
		"jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return true
	}
	return isWordText(t.text)
}

// scriptKeyword reports anonymous keyword nodes such as "if" or "return".
func scriptKeyword(t *token) bool {
	return !t.named && isWordText(t.text)
}

func scriptOperator(t *token) bool {
	if t.kind == "comment" || scriptWord(t) {
		return false
	}
	switch t.text {
	case "(", ")", "[", "]", "{", "}", ";", ",", ".", "?.":
		return false
	}
	return true
}
