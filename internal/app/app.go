package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qbeautify/internal/beautify"
	"github.com/kobzarvs/qbeautify/internal/config"
	"github.com/kobzarvs/qbeautify/internal/document"
	"github.com/kobzarvs/qbeautify/internal/logger"
	"github.com/kobzarvs/qbeautify/internal/session"
)

// App is the top-level runtime for the interactive editor.
type App struct {
	path    string
	cfg     config.Config
	buf     *document.Buffer
	bridge  *beautify.Bridge
	setting beautify.Setting
	log     *zap.Logger
	view    *view

	sessions *session.Manager

	status    string
	statusErr bool
	savedTick uint64
}

// New opens path (a missing file starts empty) and attaches auto-format to
// it. indent overrides the configured indent unit when positive.
func New(cfg config.Config, langs config.Languages, path string, indent int) (*App, error) {
	var text string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		text = string(data)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	buf := document.New(text)
	buf.SetIndentUnit(cfg.Editor.IndentUnit)
	if indent > 0 {
		buf.SetIndentUnit(indent)
	}
	if lang := langs.Match(path); lang != nil {
		buf.SetModeName(lang.Name)
	}

	setting, err := cfg.Beautify.Setting()
	if err != nil {
		return nil, err
	}

	a := &App{
		path:    path,
		cfg:     cfg,
		buf:     buf,
		setting: setting,
		log:     logger.Named("app"),
		view:    newView(cfg.Theme, cfg.Editor.TabWidth),
	}
	a.savedTick = buf.ChangeTick()
	a.bridge, err = beautify.Attach(buf, setting,
		beautify.WithLogger(logger.Named("beautify")),
		beautify.WithErrorHandler(a.reportError))
	if err != nil {
		a.reportError(err)
	}
	a.log.Info("file opened",
		zap.String("path", path),
		zap.String("mode", buf.ModeName()),
		zap.Int("lines", buf.LineCount()))
	return a, nil
}

func (a *App) Run() error {
	runtime.LockOSThread()
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	return a.Loop(s)
}

// Loop processes screen events until the user quits.
func (a *App) Loop(s tcell.Screen) error {
	a.Render(s)
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if a.HandleKey(ev) {
				a.saveSession()
				return nil
			}
			a.recordSession()
		case *tcell.EventResize:
			s.Sync()
		}
		a.Render(s)
	}
}

// HandleKey applies a key press and reports whether the app should exit.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	a.status = ""
	a.statusErr = false
	cur := a.buf.Cursor()
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlS:
		a.save()
	case tcell.KeyCtrlF:
		out, err := a.bridge.FormatNow(context.Background())
		if err != nil {
			a.reportError(err)
		} else {
			a.setStatus(out.String())
		}
	case tcell.KeyCtrlT:
		a.toggleAuto()
	case tcell.KeyRune:
		a.buf.Insert(cur, string(ev.Rune()))
	case tcell.KeyTab:
		a.buf.Insert(cur, "\t")
	case tcell.KeyEnter:
		a.buf.Insert(cur, "\n")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.buf.DeleteBefore(cur)
	case tcell.KeyLeft:
		if cur.Col > 0 {
			a.buf.SetCursor(document.Pos{Line: cur.Line, Col: cur.Col - 1})
		} else if cur.Line > 0 {
			a.buf.SetCursor(document.Pos{Line: cur.Line - 1, Col: a.lineLen(cur.Line - 1)})
		}
	case tcell.KeyRight:
		if cur.Col < a.lineLen(cur.Line) {
			a.buf.SetCursor(document.Pos{Line: cur.Line, Col: cur.Col + 1})
		} else if cur.Line+1 < a.buf.LineCount() {
			a.buf.SetCursor(document.Pos{Line: cur.Line + 1})
		}
	case tcell.KeyUp:
		a.buf.SetCursor(document.Pos{Line: cur.Line - 1, Col: cur.Col})
		if cur.Line == 0 {
			a.buf.SetCursor(cur)
		}
	case tcell.KeyDown:
		a.buf.SetCursor(document.Pos{Line: cur.Line + 1, Col: cur.Col})
		if cur.Line+1 >= a.buf.LineCount() {
			a.buf.SetCursor(cur)
		}
	case tcell.KeyHome:
		a.buf.SetCursor(document.Pos{Line: cur.Line})
	case tcell.KeyEnd:
		a.buf.SetCursor(document.Pos{Line: cur.Line, Col: a.lineLen(cur.Line)})
	}
	return false
}

func (a *App) lineLen(i int) int {
	return utf8.RuneCountInString(a.buf.Line(i))
}

// toggleAuto flips auto-format for the session without reformatting.
func (a *App) toggleAuto() {
	if !a.setting.Enabled {
		a.setStatus("auto-format disabled in config")
		return
	}
	var o beautify.Overrides
	if a.setting.Overrides != nil {
		o = *a.setting.Overrides
	}
	auto := !a.bridge.Enabled()
	initial := false
	o.AutoBeautify = &auto
	o.InitialBeautify = &initial
	a.setting = beautify.WithOverrides(o)
	if err := a.bridge.Reconfigure(a.setting); err != nil {
		a.reportError(err)
		return
	}
	if auto {
		a.setStatus("auto-format on")
	} else {
		a.setStatus("auto-format off")
	}
}

func (a *App) save() {
	if err := os.WriteFile(a.path, []byte(a.buf.Value()), 0o644); err != nil {
		a.reportError(err)
		return
	}
	a.savedTick = a.buf.ChangeTick()
	a.setStatus(fmt.Sprintf("written %s", filepath.Base(a.path)))
	a.log.Info("file saved", zap.String("path", a.path))
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) reportError(err error) {
	a.status = err.Error()
	a.statusErr = true
	a.log.Warn("auto-format error", zap.Error(err))
}

// RestoreSession applies the cursor and auto-format toggle saved for the
// file. The state is written back to m when the app exits.
func (a *App) RestoreSession(m *session.Manager) {
	a.sessions = m
	state, ok := m.FileState(a.absPath())
	if !ok {
		return
	}
	a.buf.SetCursor(document.Pos{Line: state.CursorLine, Col: state.CursorCol})
	if state.AutoFormat != nil && a.setting.Enabled && *state.AutoFormat != a.bridge.Enabled() {
		a.toggleAuto()
		a.status = ""
	}
}

// recordSession hands the current cursor and toggle to the session manager,
// whose autosave writes them out.
func (a *App) recordSession() {
	if a.sessions == nil {
		return
	}
	cur := a.buf.Cursor()
	state := session.FileState{CursorLine: cur.Line, CursorCol: cur.Col}
	if a.setting.Enabled {
		auto := a.bridge.Enabled()
		state.AutoFormat = &auto
	}
	a.sessions.SetFileState(a.absPath(), state)
}

func (a *App) saveSession() {
	if a.sessions == nil {
		return
	}
	a.recordSession()
	if err := a.sessions.Stop(); err != nil {
		a.log.Warn("session save failed", zap.Error(err))
	}
}

func (a *App) absPath() string {
	if abs, err := filepath.Abs(a.path); err == nil {
		return abs
	}
	return a.path
}

// Dirty reports whether the buffer changed since it was opened or saved.
func (a *App) Dirty() bool {
	return a.buf.ChangeTick() != a.savedTick
}

func (a *App) Value() string {
	return a.buf.Value()
}

func (a *App) Cursor() document.Pos {
	return a.buf.Cursor()
}

func (a *App) Status() (string, bool) {
	return a.status, a.statusErr
}
