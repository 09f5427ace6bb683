package formatter

import "strings"

// writer accumulates indented output lines.
type writer struct {
	opts    Options
	lines   []string
	cur     strings.Builder
	started bool
	space   bool
	blank   bool
	level   int
}

func newWriter(opts Options) *writer {
	return &writer{opts: opts}
}

func (w *writer) write(s string) {
	if s == "" {
		return
	}
	if !w.started {
		if w.blank && len(w.lines) > 0 {
			w.lines = append(w.lines, "")
		}
		w.blank = false
		w.cur.WriteString(w.opts.indent(w.level))
		w.started = true
	} else if w.space {
		w.cur.WriteByte(' ')
	}
	w.space = false
	w.cur.WriteString(s)
}

// spaced writes s preceded by a single space when the line already has content.
func (w *writer) spaced(s string) {
	w.space = true
	w.write(s)
}

func (w *writer) newline() {
	w.space = false
	if !w.started {
		return
	}
	w.lines = append(w.lines, strings.TrimRight(w.cur.String(), " \t"))
	w.cur.Reset()
	w.started = false
}

// block writes a pre-formatted multi-line chunk at the current level.
func (w *writer) block(text string) {
	w.newline()
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(w.lines) > 0 {
				w.blank = true
			}
			continue
		}
		w.write(line)
		w.newline()
	}
}

// splice copies the finished lines of inner at the current level. Text after
// a newline inside one of those lines belongs to a multi-line token and is
// copied unchanged.
func (w *writer) splice(inner *writer) {
	w.newline()
	inner.newline()
	for _, line := range inner.lines {
		if line == "" {
			if len(w.lines) > 0 {
				w.blank = true
			}
			continue
		}
		w.write(line)
		w.newline()
	}
}

func (w *writer) String() string {
	w.newline()
	out := strings.Join(w.lines, "\n")
	if w.opts.EndWithNewline && out != "" {
		out += "\n"
	}
	return out
}
