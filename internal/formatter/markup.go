package formatter

import (
	"bytes"
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// Elements that flow inside a line of text.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true,
	"button": true, "cite": true, "code": true, "data": true, "dfn": true,
	"em": true, "i": true, "img": true, "input": true, "kbd": true,
	"label": true, "mark": true, "q": true, "s": true, "samp": true,
	"select": true, "small": true, "span": true, "strong": true, "sub": true,
	"sup": true, "textarea": true, "time": true, "u": true, "var": true,
	"wbr": true,
}

// Elements whose content is emitted verbatim.
var unformattedTags = map[string]bool{
	"pre":      true,
	"textarea": true,
}

// Markup formats HTML source. Script and style bodies are handed to Script
// and Style.
func Markup(ctx context.Context, src string, opts Options) (string, error) {
	tree, err := parse(ctx, html.GetLanguage(), []byte(src))
	if err != nil {
		return "", err
	}
	m := &markupPrinter{
		ctx:  ctx,
		src:  []byte(src),
		opts: opts,
		w:    newWriter(opts),
	}
	root := tree.RootNode()
	m.children(nodeChildren(root), root.StartByte())
	if m.err != nil {
		return "", m.err
	}
	return m.w.String(), nil
}

type markupPrinter struct {
	ctx  context.Context
	src  []byte
	opts Options
	w    *writer
	err  error
}

type inlineRun struct {
	b     strings.Builder
	trail bool
}

func (r *inlineRun) add(s string, lead, trail bool) {
	if s == "" {
		r.trail = r.trail || lead || trail
		return
	}
	if r.b.Len() > 0 && (lead || r.trail) {
		r.b.WriteByte(' ')
	}
	r.b.WriteString(s)
	r.trail = trail
}

func nodeChildren(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c != nil && c.StartByte() < c.EndByte() {
			out = append(out, c)
		}
	}
	return out
}

// children lays out sibling nodes: inline content is gathered into lines,
// everything else gets lines of its own.
func (m *markupPrinter) children(nodes []*sitter.Node, from uint32) {
	var run inlineRun
	emitted := false
	flush := func() {
		if run.b.Len() > 0 {
			m.w.write(run.b.String())
			m.w.newline()
			emitted = true
		}
		run = inlineRun{}
	}
	prev := from
	for _, c := range nodes {
		gap := m.gap(prev, c.StartByte())
		if s, ok := m.piece(c); ok {
			lead, trail := m.edges(c)
			run.add(s, gap.space || lead, trail)
		} else {
			flush()
			if m.opts.PreserveNewlines && emitted && gap.breaks >= 2 {
				m.w.blank = true
			}
			m.block(c)
			emitted = true
		}
		prev = c.EndByte()
	}
	flush()
}

type gapInfo struct {
	space  bool
	breaks int
}

func (m *markupPrinter) gap(from, to uint32) gapInfo {
	if to <= from {
		return gapInfo{}
	}
	between := m.src[from:to]
	return gapInfo{
		space:  len(bytes.TrimSpace(between)) < len(between),
		breaks: bytes.Count(between, []byte{'\n'}),
	}
}

func (m *markupPrinter) edges(n *sitter.Node) (lead, trail bool) {
	if n.Type() != "text" {
		return false, false
	}
	text := m.content(n)
	return strings.TrimLeft(text, " \t\r\n") != text, strings.TrimRight(text, " \t\r\n") != text
}

// piece renders n for use inside a line of text.
func (m *markupPrinter) piece(n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "text":
		return strings.Join(strings.Fields(m.content(n)), " "), true
	case "entity":
		return m.content(n), true
	case "element":
		if !inlineTags[m.tagName(n)] {
			return "", false
		}
		return m.flat(n)
	}
	return "", false
}

// flat renders an element on a single line when all of its content is inline.
func (m *markupPrinter) flat(n *sitter.Node) (string, bool) {
	start, end, content := m.parts(n)
	if start == nil {
		return "", false
	}
	var body string
	if unformattedTags[m.tagName(n)] {
		to := n.EndByte()
		if end != nil {
			to = end.StartByte()
		}
		body = string(m.src[start.EndByte():to])
	} else {
		var run inlineRun
		prev := start.EndByte()
		for _, c := range content {
			s, ok := m.piece(c)
			if !ok {
				return "", false
			}
			lead, trail := m.edges(c)
			run.add(s, m.gap(prev, c.StartByte()).space || lead, trail)
			prev = c.EndByte()
		}
		body = run.b.String()
	}
	return m.tag(start) + body + m.tag(end), true
}

func (m *markupPrinter) block(n *sitter.Node) {
	switch n.Type() {
	case "element":
		if s, ok := m.flat(n); ok {
			m.w.write(s)
			m.w.newline()
			return
		}
		m.expanded(n)
	case "script_element":
		m.embedded(n, scriptLayout)
	case "style_element":
		m.embedded(n, styleLayout)
	case "comment":
		m.w.write(strings.TrimSpace(m.content(n)))
		m.w.newline()
	default:
		m.w.write(strings.Join(strings.Fields(m.content(n)), " "))
		m.w.newline()
	}
}

func (m *markupPrinter) expanded(n *sitter.Node) {
	start, end, content := m.parts(n)
	if start == nil {
		m.w.write(strings.Join(strings.Fields(m.content(n)), " "))
		m.w.newline()
		return
	}
	m.w.write(m.tag(start))
	m.w.newline()
	indent := m.tagName(n) != "html" || m.opts.IndentInnerHTML
	if indent {
		m.w.level++
	}
	m.children(content, start.EndByte())
	if indent {
		m.w.level--
	}
	if end != nil {
		m.w.write(m.tag(end))
		m.w.newline()
	}
}

func (m *markupPrinter) embedded(n *sitter.Node, layout func(context.Context, string, Options) (*writer, error)) {
	start, end, content := m.parts(n)
	if start == nil {
		m.w.write(strings.TrimSpace(m.content(n)))
		m.w.newline()
		return
	}
	var body string
	if len(content) > 0 {
		body = string(m.src[content[0].StartByte():content[len(content)-1].EndByte()])
	}
	if strings.TrimSpace(body) == "" {
		m.w.write(m.tag(start) + m.tag(end))
		m.w.newline()
		return
	}
	m.w.write(m.tag(start))
	m.w.newline()
	m.w.level++
	if n.Type() == "style_element" || scriptType(m.attr(start, "type")) {
		inner, err := layout(m.ctx, body, m.opts)
		if err != nil {
			if m.err == nil {
				m.err = err
			}
			m.w.block(dedent(body))
		} else {
			m.w.splice(inner)
		}
	} else {
		m.w.block(dedent(body))
	}
	m.w.level--
	if end != nil {
		m.w.write(m.tag(end))
		m.w.newline()
	}
}

func scriptType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "text/javascript", "application/javascript", "module", "text/ecmascript":
		return true
	}
	return false
}

// parts splits an element into its opening tag, closing tag and content.
func (m *markupPrinter) parts(n *sitter.Node) (start, end *sitter.Node, content []*sitter.Node) {
	for _, c := range nodeChildren(n) {
		switch c.Type() {
		case "start_tag", "self_closing_tag":
			start = c
		case "end_tag":
			end = c
		default:
			content = append(content, c)
		}
	}
	return start, end, content
}

func (m *markupPrinter) tagName(n *sitter.Node) string {
	start, _, _ := m.parts(n)
	if start == nil {
		return ""
	}
	for _, c := range nodeChildren(start) {
		if c.Type() == "tag_name" {
			return strings.ToLower(m.content(c))
		}
	}
	return ""
}

func (m *markupPrinter) attr(tag *sitter.Node, name string) string {
	for _, c := range nodeChildren(tag) {
		if c.Type() != "attribute" {
			continue
		}
		var key, value string
		for _, part := range nodeChildren(c) {
			switch part.Type() {
			case "attribute_name":
				key = m.content(part)
			case "attribute_value":
				value = m.content(part)
			case "quoted_attribute_value":
				value = strings.Trim(m.content(part), `"'`)
			}
		}
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

// tag renders a start, end or self-closing tag with normalized spacing.
func (m *markupPrinter) tag(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range nodeChildren(n) {
		switch c.Type() {
		case "<", "</":
			b.WriteString(c.Type())
		case ">":
			b.WriteString(">")
		case "/>":
			b.WriteString(" />")
		case "tag_name":
			b.WriteString(m.content(c))
		case "attribute":
			b.WriteByte(' ')
			for _, part := range nodeChildren(c) {
				b.WriteString(strings.TrimSpace(m.content(part)))
			}
		default:
			b.WriteByte(' ')
			b.WriteString(strings.Join(strings.Fields(m.content(c)), " "))
		}
	}
	return b.String()
}

func (m *markupPrinter) content(n *sitter.Node) string {
	return string(m.src[n.StartByte():n.EndByte()])
}

// dedent strips the indentation shared by all non-blank lines.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\r\n"), "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
