// Package document is the text buffer hosted by the editor. It exposes the
// text, cursor and mode of a single session and notifies observers
// synchronously about every change.
package document

import (
	"strings"
)

type Pos struct {
	Line int
	Col  int
}

// Less reports whether p comes before q.
func (p Pos) Less(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

type Origin int

const (
	OriginInput Origin = iota
	OriginDelete
	OriginSetValue
)

func (o Origin) String() string {
	switch o {
	case OriginInput:
		return "input"
	case OriginDelete:
		return "delete"
	case OriginSetValue:
		return "setValue"
	}
	return "unknown"
}

// Change describes one edit. From and To delimit the replaced range in
// pre-change coordinates; Text holds the inserted lines.
type Change struct {
	From    Pos
	To      Pos
	Text    []string
	Removed []string
	Origin  Origin
}

// Inserted returns the inserted text joined with newlines.
func (c Change) Inserted() string {
	return strings.Join(c.Text, "\n")
}

type Observer interface {
	OnDocumentChanged(c Change)
}

type Buffer struct {
	lines      [][]rune
	cursor     Pos
	mode       string
	indentUnit int
	observers  []Observer
	changeTick uint64
}

func New(text string) *Buffer {
	return &Buffer{
		lines:      splitLines(text),
		indentUnit: 2,
	}
}

func splitLines(text string) [][]rune {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

func joinLines(lines [][]rune) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(line))
	}
	return b.String()
}

func (b *Buffer) Value() string {
	return joinLines(b.lines)
}

// SetValue replaces the whole document and moves the cursor to the start.
func (b *Buffer) SetValue(text string) {
	removed := b.lineStrings()
	to := b.end()
	b.lines = splitLines(text)
	b.cursor = Pos{}
	b.emit(Change{
		From:    Pos{},
		To:      to,
		Text:    b.lineStrings(),
		Removed: removed,
		Origin:  OriginSetValue,
	})
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the text of line i, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return string(b.lines[i])
}

// Range returns the text between two positions.
func (b *Buffer) Range(from, to Pos) string {
	from = b.clamp(from)
	to = b.clamp(to)
	if to.Less(from) {
		from, to = to, from
	}
	if from.Line == to.Line {
		return string(b.lines[from.Line][from.Col:to.Col])
	}
	var sb strings.Builder
	sb.WriteString(string(b.lines[from.Line][from.Col:]))
	for i := from.Line + 1; i < to.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(string(b.lines[i]))
	}
	sb.WriteByte('\n')
	sb.WriteString(string(b.lines[to.Line][:to.Col]))
	return sb.String()
}

func (b *Buffer) Cursor() Pos {
	return b.cursor
}

func (b *Buffer) SetCursor(pos Pos) {
	b.cursor = b.clamp(pos)
}

// ModeName returns the content mode descriptor, "" until one is set.
func (b *Buffer) ModeName() string {
	return b.mode
}

func (b *Buffer) SetModeName(name string) {
	b.mode = name
}

func (b *Buffer) IndentUnit() int {
	return b.indentUnit
}

func (b *Buffer) SetIndentUnit(n int) {
	if n > 0 {
		b.indentUnit = n
	}
}

// ChangeTick increments on every change.
func (b *Buffer) ChangeTick() uint64 {
	return b.changeTick
}

// Insert places text at pos, moves the cursor past it and returns the end
// position of the insertion.
func (b *Buffer) Insert(pos Pos, text string) Pos {
	if text == "" {
		return pos
	}
	pos = b.clamp(pos)
	ins := splitLines(text)
	line := b.lines[pos.Line]
	suffix := append([]rune(nil), line[pos.Col:]...)

	first := append(append([]rune(nil), line[:pos.Col]...), ins[0]...)
	var end Pos
	if len(ins) == 1 {
		b.lines[pos.Line] = append(first, suffix...)
		end = Pos{Line: pos.Line, Col: pos.Col + len(ins[0])}
	} else {
		last := ins[len(ins)-1]
		newLines := make([][]rune, 0, len(b.lines)+len(ins)-1)
		newLines = append(newLines, b.lines[:pos.Line]...)
		newLines = append(newLines, first)
		for i := 1; i < len(ins)-1; i++ {
			newLines = append(newLines, ins[i])
		}
		newLines = append(newLines, append(append([]rune(nil), last...), suffix...))
		newLines = append(newLines, b.lines[pos.Line+1:]...)
		b.lines = newLines
		end = Pos{Line: pos.Line + len(ins) - 1, Col: len(last)}
	}
	b.cursor = end
	text = strings.ReplaceAll(text, "\r\n", "\n")
	b.emit(Change{
		From:   pos,
		To:     pos,
		Text:   strings.Split(text, "\n"),
		Origin: OriginInput,
	})
	return end
}

// DeleteBefore removes the rune before pos, joining lines at a line start,
// and returns the new cursor position.
func (b *Buffer) DeleteBefore(pos Pos) Pos {
	pos = b.clamp(pos)
	var from Pos
	switch {
	case pos.Col > 0:
		from = Pos{Line: pos.Line, Col: pos.Col - 1}
	case pos.Line > 0:
		from = Pos{Line: pos.Line - 1, Col: len(b.lines[pos.Line-1])}
	default:
		return pos
	}
	removed := strings.Split(b.Range(from, pos), "\n")
	if from.Line == pos.Line {
		line := b.lines[pos.Line]
		b.lines[pos.Line] = append(line[:from.Col:from.Col], line[pos.Col:]...)
	} else {
		joined := append(append([]rune(nil), b.lines[from.Line]...), b.lines[pos.Line]...)
		b.lines[from.Line] = joined
		b.lines = append(b.lines[:pos.Line], b.lines[pos.Line+1:]...)
	}
	b.cursor = from
	b.emit(Change{
		From:    from,
		To:      pos,
		Text:    []string{""},
		Removed: removed,
		Origin:  OriginDelete,
	})
	return from
}

// Subscribe registers o for change notifications. Subscribing twice is a
// no-op.
func (b *Buffer) Subscribe(o Observer) {
	for _, cur := range b.observers {
		if cur == o {
			return
		}
	}
	b.observers = append(b.observers, o)
}

func (b *Buffer) Unsubscribe(o Observer) {
	for i, cur := range b.observers {
		if cur == o {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

// emit delivers c to a snapshot of the observers so callbacks may edit the
// buffer or change subscriptions.
func (b *Buffer) emit(c Change) {
	b.changeTick++
	observers := append([]Observer(nil), b.observers...)
	for _, o := range observers {
		o.OnDocumentChanged(c)
	}
}

func (b *Buffer) lineStrings() []string {
	out := make([]string, len(b.lines))
	for i, line := range b.lines {
		out[i] = string(line)
	}
	return out
}

func (b *Buffer) end() Pos {
	last := len(b.lines) - 1
	return Pos{Line: last, Col: len(b.lines[last])}
}

func (b *Buffer) clamp(p Pos) Pos {
	if p.Line < 0 {
		return Pos{}
	}
	if p.Line >= len(b.lines) {
		return b.end()
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := len(b.lines[p.Line]); p.Col > n {
		p.Col = n
	}
	return p
}
