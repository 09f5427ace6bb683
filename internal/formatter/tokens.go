package formatter

import (
	"bytes"
	"context"
	"fmt"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

type token struct {
	text   string
	kind   string
	named  bool
	parent string
	start  uint32
	end    uint32
	// breaks counts newlines in the source whitespace before the token.
	breaks int
	// gap reports whether any whitespace preceded the token in the source.
	gap bool
	// opens marks the first token of a statement, declaration or member.
	opens bool
	// prefix marks a prefix unary operator.
	prefix bool
}

func (t *token) is(texts ...string) bool {
	if t == nil {
		return false
	}
	for _, s := range texts {
		if t.text == s {
			return true
		}
	}
	return false
}

type tokenizer struct {
	src        []byte
	atomic     map[string]bool
	containers map[string]bool
	prefixes   map[string]bool
	tokens     []token
}

func parse(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("formatter: %w", err)
	}
	if tree == nil {
		return nil, ErrParse
	}
	return tree, nil
}

func (tz *tokenizer) run(root *sitter.Node) []token {
	if root == nil {
		return nil
	}
	stack := []*sitter.Node{root}
	for i := 0; i < int(root.ChildCount()); i++ {
		tz.walk(root.Child(i), stack)
	}
	var prevEnd uint32
	for i := range tz.tokens {
		t := &tz.tokens[i]
		between := tz.src[prevEnd:t.start]
		t.breaks = bytes.Count(between, []byte{'\n'})
		t.gap = len(bytes.TrimSpace(between)) < len(between)
		prevEnd = t.end
	}
	return tz.tokens
}

func (tz *tokenizer) walk(n *sitter.Node, stack []*sitter.Node) {
	if n == nil || n.StartByte() >= n.EndByte() {
		return
	}
	if n.ChildCount() == 0 || tz.atomic[n.Type()] || tz.uncovered(n) {
		tz.emit(n, stack)
		return
	}
	stack = append(stack, n)
	for i := 0; i < int(n.ChildCount()); i++ {
		tz.walk(n.Child(i), stack)
	}
}

// uncovered reports whether n owns non-whitespace text that none of its
// children span. Such nodes are emitted as a single token.
func (tz *tokenizer) uncovered(n *sitter.Node) bool {
	pos := n.StartByte()
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		if c.StartByte() > pos && len(bytes.TrimSpace(tz.src[pos:c.StartByte()])) > 0 {
			return true
		}
		if c.EndByte() > pos {
			pos = c.EndByte()
		}
	}
	return n.EndByte() > pos && len(bytes.TrimSpace(tz.src[pos:n.EndByte()])) > 0
}

func (tz *tokenizer) emit(n *sitter.Node, stack []*sitter.Node) {
	parent := stack[len(stack)-1]
	t := token{
		text:   string(tz.src[n.StartByte():n.EndByte()]),
		kind:   n.Type(),
		named:  n.IsNamed(),
		parent: parent.Type(),
		start:  n.StartByte(),
		end:    n.EndByte(),
	}
	t.prefix = tz.prefixes[t.parent] && !t.named && parent.StartByte() == t.start && !isWordText(t.text)
	t.opens = tz.opensChild(n, stack)
	tz.tokens = append(tz.tokens, t)
}

func (tz *tokenizer) opensChild(n *sitter.Node, stack []*sitter.Node) bool {
	child := n
	for i := len(stack) - 1; i >= 0; i-- {
		anc := stack[i]
		if tz.containers[anc.Type()] {
			return child.IsNamed() && child.Type() != "comment"
		}
		if anc.StartByte() != n.StartByte() {
			return false
		}
		child = anc
	}
	return false
}

func isWordText(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '_', '$', '#', '"', '\'', '`', '@':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
