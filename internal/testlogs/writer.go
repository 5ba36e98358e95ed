package testlogs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/xcheck/internal/adapters/report"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/pkg/logger"
)

// Write stores every submitted log as a Cabrillo file under
// <dir>/<MODE>/<call>.txt and returns the number of files written.
func Write(ctx context.Context, c *Corpus, dir string, workers int) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	files := 0
	for mode, logs := range c.Logs {
		modeDir := filepath.Join(dir, string(mode))
		if err := os.MkdirAll(modeDir, dirPermission); err != nil {
			return 0, fmt.Errorf("create %s: %w", modeDir, err)
		}
		for i := range logs {
			l := &logs[i]
			path := filepath.Join(modeDir, strings.ToLower(strings.ReplaceAll(l.Call, "/", "_"))+".txt")
			files++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return writeLog(path, l)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	logger.Get().Info(ctx, "wrote log files", logger.String("dir", dir), logger.Int("files", files))
	return files, nil
}

func writeLog(path string, l *model.ParticipantLog) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "START-OF-LOG: 3.0\n")
	fmt.Fprintf(w, "CONTEST: NRAU-BALTIC-%s\n", l.Mode)
	fmt.Fprintf(w, "CALLSIGN: %s\n", l.Call)
	fmt.Fprintf(w, "CATEGORY-MODE: %s\n", l.Mode)
	fmt.Fprintf(w, "CATEGORY-POWER: %s\n", l.Power)
	fmt.Fprintf(w, "LOCATION: %s\n", l.County)
	for i := range l.Contacts {
		fmt.Fprintln(w, report.FormatQSO(&l.Contacts[i]))
	}
	fmt.Fprintf(w, "END-OF-LOG:\n")

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
