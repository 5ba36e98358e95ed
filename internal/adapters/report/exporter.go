package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

const defaultResultsFile = "results.csv"

// Exporter writes a report tree:
//
//	<dir>/results.csv
//	<dir>/<MODE>/<CALL>.log   full check log
//	<dir>/<MODE>/<CALL>.err   error report, only when the log has errors
type Exporter struct {
	dir         string
	bands       []model.Band
	resultsFile string
	logger      logger.Logger
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string, bands []model.Band, opts ...Option) *Exporter {
	x := &Exporter{
		dir:         dir,
		bands:       bands,
		resultsFile: defaultResultsFile,
		logger:      logger.Get().Named("report"),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Export writes the full tree for runs.
func (x *Exporter) Export(ctx context.Context, runs ...*engine.Run) error {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return x.fail(err)
	}
	err := x.writeFile(filepath.Join(x.dir, x.resultsFile), func(w io.Writer) error {
		return WriteResults(w, x.bands, runs...)
	})
	if err != nil {
		return err
	}

	files := 0
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		modeDir := filepath.Join(x.dir, string(run.Mode))
		if err := os.MkdirAll(modeDir, 0o755); err != nil {
			return x.fail(err)
		}
		for _, r := range run.Results {
			base := filepath.Join(modeDir, fileName(r.Call()))
			if err := x.writeFile(base+".log", func(w io.Writer) error { return WriteCheckLog(w, r) }); err != nil {
				return err
			}
			files++
			if !hasErrors(r) {
				continue
			}
			if err := x.writeFile(base+".err", func(w io.Writer) error { return WriteErrors(w, r) }); err != nil {
				return err
			}
			files++
		}
	}

	x.logger.Info(ctx, "reports written",
		logger.String("dir", x.dir),
		logger.Int("runs", len(runs)),
		logger.Int("files", files+1),
	)
	return nil
}

func (x *Exporter) writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return x.fail(err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		metrics.RecordErrorByComponent("report", "write")
		return err
	}
	if err := f.Close(); err != nil {
		return x.fail(err)
	}
	return nil
}

func (x *Exporter) fail(err error) error {
	metrics.RecordErrorByComponent("report", "write")
	return fmt.Errorf("%w: %w", ErrWrite, err)
}

func hasErrors(r *engine.Result) bool {
	if len(r.Log.Failures) > 0 {
		return true
	}
	for _, o := range r.Outcomes {
		if o.Status != model.Full {
			return true
		}
	}
	return false
}

// fileName maps a call sign to a safe file name.
func fileName(call string) string {
	if call == "" {
		return "UNKNOWN"
	}
	return strings.NewReplacer("/", "_", "\\", "_").Replace(call)
}
