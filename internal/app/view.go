package app

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qbeautify/internal/beautify"
	"github.com/kobzarvs/qbeautify/internal/config"
)

type view struct {
	styleMain   tcell.Style
	styleStatus tcell.Style
	styleError  tcell.Style
	tabWidth    int
	scrollY     int
	scrollX     int
}

func newView(theme config.Theme, tabWidth int) *view {
	if tabWidth < 1 {
		tabWidth = 4
	}
	bg := parseColor(theme.Background, tcell.ColorBlack)
	statusBg := parseColor(theme.StatuslineBackground, tcell.ColorDarkSlateGray)
	return &view{
		styleMain: tcell.StyleDefault.
			Foreground(parseColor(theme.Foreground, tcell.ColorWhite)).
			Background(bg),
		styleStatus: tcell.StyleDefault.
			Foreground(parseColor(theme.StatuslineForeground, tcell.ColorWhite)).
			Background(statusBg),
		styleError: tcell.StyleDefault.
			Foreground(parseColor(theme.ErrorForeground, tcell.ColorRed)).
			Background(statusBg),
		tabWidth: tabWidth,
	}
}

// Render draws the buffer and the status line.
func (a *App) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}
	v := a.view
	viewHeight := h - 1
	cur := a.buf.Cursor()
	cursorX := v.visualCol(a.buf.Line(cur.Line), cur.Col)
	v.scrollTo(cur.Line, cursorX, viewHeight, w)

	s.SetStyle(v.styleMain)
	s.Clear()
	for y := 0; y < viewHeight; y++ {
		idx := v.scrollY + y
		clearLine(s, y, w, v.styleMain)
		if idx >= a.buf.LineCount() {
			continue
		}
		v.drawLine(s, y, w, a.buf.Line(idx))
	}

	statusStyle := v.styleStatus
	if a.statusErr {
		statusStyle = v.styleError
	}
	clearLine(s, h-1, w, statusStyle)
	for x, r := range composeStatusLine(a.statusLeft(), a.statusRight(), w) {
		s.SetContent(x, h-1, r, nil, statusStyle)
	}

	if y := cur.Line - v.scrollY; y >= 0 && y < viewHeight {
		s.ShowCursor(cursorX-v.scrollX, y)
	} else {
		s.HideCursor()
	}
	s.Show()
}

func (a *App) statusLeft() string {
	name := filepath.Base(a.path)
	if a.Dirty() {
		name += " [+]"
	}
	if a.status != "" {
		return name + "  " + a.status
	}
	return name
}

func (a *App) statusRight() string {
	mode := beautify.ModeForName(a.buf.ModeName())
	auto := "auto:off"
	if a.bridge.Enabled() {
		auto = "auto:on"
	}
	cur := a.buf.Cursor()
	return fmt.Sprintf("%s  %s  last:%s  %d:%d ",
		mode, auto, a.bridge.LastOutcome(), cur.Line+1, cur.Col+1)
}

func (v *view) drawLine(s tcell.Screen, y, w int, line string) {
	x := -v.scrollX
	for _, r := range line {
		if r == '\t' {
			next := (x + v.scrollX + v.tabWidth) / v.tabWidth * v.tabWidth
			for ; x+v.scrollX < next; x++ {
				if x >= 0 && x < w {
					s.SetContent(x, y, ' ', nil, v.styleMain)
				}
			}
			continue
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x >= 0 && x+rw <= w {
			s.SetContent(x, y, r, nil, v.styleMain)
		}
		x += rw
		if x >= w {
			return
		}
	}
}

// visualCol converts a rune column to a screen column.
func (v *view) visualCol(line string, col int) int {
	x := 0
	i := 0
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			x = (x + v.tabWidth) / v.tabWidth * v.tabWidth
		} else {
			x += runewidth.RuneWidth(r)
		}
		i++
	}
	return x
}

func (v *view) scrollTo(line, x, height, width int) {
	if height > 0 {
		if line < v.scrollY {
			v.scrollY = line
		} else if line >= v.scrollY+height {
			v.scrollY = line - height + 1
		}
	}
	if width > 0 {
		if x < v.scrollX {
			v.scrollX = x
		} else if x >= v.scrollX+width {
			v.scrollX = x - width + 1
		}
	}
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := width - len(leftRunes) - len(rightRunes)
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	line = append(line, []rune(strings.Repeat(" ", spaceCount))...)
	line = append(line, rightRunes...)
	return line
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
