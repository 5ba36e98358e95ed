package testlogs

import (
	"context"
	"fmt"

	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/pkg/logger"
)

// Verify compares check runs with the outcomes the corpus was built to
// produce: every clean contact confirmed, every busted one partial.
func Verify(ctx context.Context, c *Corpus, runs []*engine.Run) error {
	for _, run := range runs {
		clean, partial := 0, 0
		for _, r := range run.Results {
			for _, o := range r.Outcomes {
				switch {
				case o.Status == model.Full && o.Reason == model.ReasonOK:
					clean++
				case o.Status == model.Partial && o.Reason == model.ReasonSerialMismatch:
					partial++
				}
			}
		}

		logger.Get().Info(ctx, "verification",
			logger.String("mode", string(run.Mode)),
			logger.Int("clean", clean),
			logger.Int("expectedClean", c.Clean[run.Mode]),
			logger.Int("partial", partial),
			logger.Int("expectedPartial", c.Busted[run.Mode]),
		)
		if clean != c.Clean[run.Mode] || partial != c.Busted[run.Mode] {
			return fmt.Errorf("%w: %s clean %d/%d partial %d/%d", ErrMismatch, run.Mode,
				clean, c.Clean[run.Mode], partial, c.Busted[run.Mode])
		}
	}
	return nil
}
