package formatter

import (
	"context"

	"github.com/smacker/go-tree-sitter/css"
)

var styleAtomic = map[string]bool{
	"comment":       true,
	"js_comment":    true,
	"string_value":  true,
	"integer_value": true,
	"float_value":   true,
	"color_value":   true,
}

var styleContainers = map[string]bool{
	"stylesheet":          true,
	"block":               true,
	"keyframe_block_list": true,
}

// Style formats CSS source.
func Style(ctx context.Context, src string, opts Options) (string, error) {
	w, err := styleLayout(ctx, src, opts)
	if err != nil {
		return "", err
	}
	return w.String(), nil
}

func styleLayout(ctx context.Context, src string, opts Options) (*writer, error) {
	tree, err := parse(ctx, css.GetLanguage(), []byte(src))
	if err != nil {
		return nil, err
	}
	tz := &tokenizer{
		src:        []byte(src),
		atomic:     styleAtomic,
		containers: styleContainers,
	}
	p := &stylePrinter{
		w:      newWriter(opts),
		opts:   opts,
		tokens: tz.run(tree.RootNode()),
	}
	p.print()
	return p.w, nil
}

type stylePrinter struct {
	w      *writer
	opts   Options
	tokens []token
	parens int
}

func (p *stylePrinter) peek(i int) *token {
	if i < len(p.tokens) {
		return &p.tokens[i]
	}
	return nil
}

func (p *stylePrinter) print() {
	var prev *token
	for i := 0; i < len(p.tokens); i++ {
		cur := &p.tokens[i]
		next := p.peek(i + 1)
		comment := styleComment(cur)
		if cur.opens || (comment && cur.breaks > 0) {
			p.w.newline()
		}
		if p.opts.PreserveNewlines && !p.w.started && cur.breaks >= 2 && !prev.is("{") && !cur.is("}") {
			p.w.blank = true
		}

		switch {
		case comment:
			p.put(prev, cur)
			if next != nil && next.breaks > 0 {
				p.w.newline()
			}
		case cur.is("{"):
			p.w.spaced("{")
			if next.is("}") {
				p.w.write("}")
				i++
				p.closed(p.peek(i + 1))
				prev = next
				continue
			}
			p.w.level++
			p.endLine(next)
		case cur.is("}"):
			p.w.blank = false
			p.w.newline()
			if p.w.level > 0 {
				p.w.level--
			}
			p.w.write("}")
			p.closed(next)
		case cur.is(";"):
			p.w.write(";")
			if p.parens == 0 {
				p.endLine(next)
			}
		case cur.is("("):
			p.put(prev, cur)
			p.parens++
		case cur.is(")"):
			p.put(prev, cur)
			if p.parens > 0 {
				p.parens--
			}
		case cur.is(","):
			p.w.write(",")
			if cur.parent == "selectors" && p.opts.SelectorSeparatorNewline {
				p.w.newline()
			} else {
				p.w.space = true
			}
		case cur.is(":") && cur.parent == "declaration":
			p.w.write(":")
			p.w.space = true
		default:
			p.put(prev, cur)
		}
		prev = cur
	}
}

func (p *stylePrinter) endLine(next *token) {
	if next != nil && styleComment(next) && next.breaks == 0 {
		return
	}
	p.w.newline()
}

func (p *stylePrinter) closed(next *token) {
	p.endLine(next)
	if p.opts.NewlineBetweenRules && next != nil && !next.is("}") {
		p.w.blank = true
	}
}

func (p *stylePrinter) put(prev, cur *token) {
	if prev != nil && p.spaced(prev, cur) {
		p.w.spaced(cur.text)
		return
	}
	p.w.write(cur.text)
}

func (p *stylePrinter) spaced(prev, cur *token) bool {
	if styleComment(cur) || styleComment(prev) {
		return true
	}
	if cur.is(")", ",", ";") || prev.is("(") {
		return false
	}
	return cur.gap
}

func styleComment(t *token) bool {
	return t.kind == "comment" || t.kind == "js_comment"
}
