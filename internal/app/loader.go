package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/xcheck/internal/domain/cabrillo"
	"github.com/okian/xcheck/internal/domain/dedupe"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

const defaultExt = ".txt"

// Rejected is a log file left out of the batch.
type Rejected struct {
	Path string
	Mode model.Mode
	Err  error
}

// Batch is the set of parsed logs, grouped by mode.
type Batch struct {
	Logs     map[model.Mode][]model.ParticipantLog
	Rejected []Rejected
}

// Count returns the number of accepted logs.
func (b *Batch) Count() int {
	n := 0
	for _, logs := range b.Logs {
		n += len(logs)
	}
	return n
}

// Loader reads one directory per mode under a root directory.
type Loader struct {
	bands    cabrillo.BandLookup
	ext      string
	parallel int
	logger   logger.Logger
}

// NewLoader creates a loader assigning bands through bands.
func NewLoader(bands cabrillo.BandLookup, opts ...LoaderOption) *Loader {
	l := &Loader{
		bands:    bands,
		ext:      defaultExt,
		parallel: runtime.NumCPU(),
		logger:   logger.Get().Named("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads <root>/<MODE> for every mode. A missing mode directory is
// skipped; unreadable files and duplicate submissions are rejected without
// failing the batch. When two files carry the same call in one mode the
// first in name order wins.
func (l *Loader) Load(ctx context.Context, root string, modes []model.Mode) (*Batch, error) {
	b := &Batch{Logs: make(map[model.Mode][]model.ParticipantLog, len(modes))}
	seen := dedupe.NewInMemoryDeduper()

	for _, mode := range modes {
		dir := filepath.Join(root, string(mode))
		paths, err := l.list(dir)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn(ctx, "mode directory missing", logger.String("dir", dir))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}

		parsed, errs, err := l.parseAll(ctx, mode, paths)
		if err != nil {
			return nil, err
		}
		for i, path := range paths {
			if errs[i] != nil {
				b.reject(ctx, l.logger, path, mode, errs[i])
				continue
			}
			log := parsed[i]
			if log.Call == "" {
				b.reject(ctx, l.logger, path, mode, ErrNoCallsign)
				continue
			}
			if seen.SeenAndRecord(ctx, dedupe.Key(log.Call, string(mode))) {
				metrics.RecordDuplicateLog()
				b.reject(ctx, l.logger, path, mode, fmt.Errorf("%w: %s", ErrDuplicate, log.Call))
				continue
			}
			if len(log.Contacts) == 0 {
				l.logger.Warn(ctx, "log has no QSO lines", logger.String("path", path))
			}
			b.Logs[mode] = append(b.Logs[mode], log)
		}
		l.logger.Info(ctx, "mode loaded",
			logger.String("mode", string(mode)),
			logger.Int("files", len(paths)),
			logger.Int("logs", len(b.Logs[mode])),
		)
	}

	if b.Count() == 0 {
		return b, fmt.Errorf("%w under %s", ErrNoLogs, root)
	}
	return b, nil
}

func (b *Batch) reject(ctx context.Context, lg logger.Logger, path string, mode model.Mode, err error) {
	b.Rejected = append(b.Rejected, Rejected{Path: path, Mode: mode, Err: err})
	lg.Warn(ctx, "log rejected", logger.String("path", path), logger.Error(err))
}

// list returns the log files in dir, sorted by name.
func (l *Loader) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), l.ext) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// parseAll parses paths concurrently. Per-file errors are returned in errs;
// the error result is set only when ctx ends.
func (l *Loader) parseAll(ctx context.Context, mode model.Mode, paths []string) ([]model.ParticipantLog, []error, error) {
	logs := make([]model.ParticipantLog, len(paths))
	errs := make([]error, len(paths))
	p := cabrillo.New(l.bands, cabrillo.WithMode(mode), cabrillo.WithLogger(l.logger.Named("cabrillo")))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.parallel)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logs[i], errs[i] = parseFile(gctx, p, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("parse %s logs: %w", mode, err)
	}
	return logs, errs, nil
}

func parseFile(ctx context.Context, p *cabrillo.Parser, path string) (model.ParticipantLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ParticipantLog{}, err
	}
	defer f.Close()
	return p.Parse(ctx, f, path)
}
