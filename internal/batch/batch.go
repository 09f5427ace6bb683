// Package batch formats files outside the interactive editor, running the
// same bridge the editor attaches to every open document.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kobzarvs/qbeautify/internal/beautify"
	"github.com/kobzarvs/qbeautify/internal/config"
	"github.com/kobzarvs/qbeautify/internal/document"
)

// ErrUnknownMode is reported for files whose mode cannot be determined.
var ErrUnknownMode = errors.New("no formatting mode for file")

type Options struct {
	// Check reports files that would change without writing them.
	Check bool
	// Stdout keeps results in memory instead of rewriting files.
	Stdout bool
	// Mode forces a mode name for every file. Empty uses Languages.
	// FormatPaths rejects names ParseMode does not know.
	Mode       string
	IndentUnit int
	Jobs       int
	Setting    beautify.Setting
	Languages  config.Languages
	Logger     *zap.Logger
}

type Result struct {
	Path    string
	Mode    beautify.Mode
	Outcome beautify.Outcome
	// Formatted holds the formatter output, or the file as read when the
	// formatter left it unchanged.
	Formatted []byte
	Changed   bool
	Err       error
}

// FormatPaths formats every path concurrently. Per-file failures are
// reported in the results; the returned error is set only for an unknown
// opts.Mode or when ctx is done.
func FormatPaths(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if opts.Mode != "" {
		if _, err := beautify.ParseMode(opts.Mode); err != nil {
			return nil, err
		}
	}
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = formatFile(gctx, path, opts, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func formatFile(ctx context.Context, path string, opts Options, log *zap.Logger) Result {
	res := Result{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	modeName := opts.Mode
	if modeName == "" {
		if lang := opts.Languages.Match(path); lang != nil {
			modeName = lang.Name
		}
	}
	res.Mode = beautify.ModeForName(modeName)
	if res.Mode == beautify.ModeNone {
		res.Err = fmt.Errorf("%w (mode %q)", ErrUnknownMode, modeName)
		return res
	}

	buf := document.New(string(data))
	buf.SetModeName(modeName)
	buf.SetIndentUnit(opts.IndentUnit)

	b, err := beautify.Attach(buf, manual(opts.Setting), beautify.WithLogger(log.With(zap.String("path", path))))
	if err != nil {
		res.Err = err
		return res
	}
	defer b.Detach()

	res.Outcome, res.Err = b.FormatNow(ctx)
	if res.Err != nil {
		return res
	}
	res.Changed = res.Outcome == beautify.OutcomeFormatted
	res.Formatted = data
	if res.Changed {
		res.Formatted = []byte(buf.Value())
	}
	if res.Changed && !opts.Check && !opts.Stdout {
		if err := os.WriteFile(path, res.Formatted, 0o644); err != nil {
			res.Err = err
		}
	}
	return res
}

// manual turns off initial and automatic formatting so that the only
// format is the explicit FormatNow call.
func manual(s beautify.Setting) beautify.Setting {
	if !s.Enabled {
		return s
	}
	var o beautify.Overrides
	if s.Overrides != nil {
		o = *s.Overrides
	}
	off := false
	o.InitialBeautify = &off
	o.AutoBeautify = &off
	return beautify.WithOverrides(o)
}
