// Package engine runs a full cross-check of one mode: index, first
// validation pass, shadow resolution, rescoring and aggregation.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/xcheck/internal/adapters/mq/queue"
	"github.com/okian/xcheck/internal/adapters/mq/worker"
	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/county"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/domain/scoring"
	"github.com/okian/xcheck/internal/domain/shadow"
	"github.com/okian/xcheck/internal/domain/validation"
	"github.com/okian/xcheck/internal/domain/xref"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

const defaultQueueSize = 256

// Pass names used in job identifiers and logs.
const (
	PassValidate = "validate"
	PassRescore  = "rescore"
)

// Result is the checked outcome of one participant log.
type Result struct {
	Log *model.ParticipantLog
	// Outcomes is parallel to Log.Contacts.
	Outcomes []model.Outcome
	Claimed  scoring.Summary
	Final    scoring.Summary
	// ClaimedScore is the CLAIMED-SCORE header, or the computed claimed
	// score when the header is absent.
	ClaimedScore int
	// Promoted counts contacts credited through shadow stations.
	Promoted int
	// Err is set when the participant's job failed.
	Err error
}

// Call is a shorthand for r.Log.Call.
func (r *Result) Call() string { return r.Log.Call }

// Run is the outcome of one mode.
type Run struct {
	ID        string
	Mode      model.Mode
	StartedAt time.Time
	Duration  time.Duration
	// Results are ordered by call.
	Results []*Result
	Shadows shadow.Set
	// Duplicates lists calls whose later logs were ignored.
	Duplicates []string
	// FailedJobs counts pass jobs whose handler errored or panicked.
	FailedJobs int
}

// Ranked returns non-checklog results ordered by final score desc, then call.
func (r *Run) Ranked() []*Result {
	out := make([]*Result, 0, len(r.Results))
	for _, res := range r.Results {
		if !res.Log.Checklog {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Final.Score != out[j].Final.Score {
			return out[i].Final.Score > out[j].Final.Score
		}
		return out[i].Call() < out[j].Call()
	})
	return out
}

// Result returns the result for call.
func (r *Run) Result(call string) (*Result, bool) {
	i := sort.Search(len(r.Results), func(i int) bool { return r.Results[i].Call() >= call })
	if i < len(r.Results) && r.Results[i].Call() == call {
		return r.Results[i], true
	}
	return nil, false
}

// Engine cross-checks batches of logs under a fixed rule set.
type Engine struct {
	rules     contest.Rules
	counties  *county.Table
	workers   int
	queueSize int
	logger    logger.Logger
}

// New validates rules and builds an engine.
func New(rules contest.Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e := &Engine{
		rules:     rules,
		queueSize: defaultQueueSize,
		logger:    logger.Get().Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *contest.Rules { return &e.rules }

// Run cross-checks logs, all submitted for mode. When two logs share a
// call the first one is used. Run only fails when ctx ends or mode has no
// contest period; a failing participant job is recorded on its Result.
func (e *Engine) Run(ctx context.Context, mode model.Mode, logs []model.ParticipantLog) (*Run, error) {
	if _, ok := e.rules.Periods[mode]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	run := &Run{ID: uuid.NewString(), Mode: mode, StartedAt: time.Now().UTC()}
	log := e.logger.With(logger.String("run", run.ID), logger.String("mode", string(mode)))

	logs, run.Duplicates = unique(logs)
	for _, call := range run.Duplicates {
		log.Warn(ctx, "duplicate log ignored", logger.String("call", call))
	}

	index := xref.Build(logs)
	v := validation.New(&e.rules, index,
		validation.WithCounties(e.counties),
		validation.WithLogger(e.logger.Named("validation")),
	)

	results := make([]*Result, len(logs))
	sightings := make([][]validation.Sighting, len(logs))

	failedJobs, err := e.parallel(ctx, run.ID, PassValidate, len(logs), func(ctx context.Context, i int) error {
		res := v.ValidateLog(ctx, &logs[i])
		results[i] = &Result{Log: &logs[i], Outcomes: res.Outcomes}
		sightings[i] = res.Sightings
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range results {
		if results[i] == nil {
			results[i] = failed(&logs[i])
			log.Error(ctx, "validation job failed", logger.String("call", logs[i].Call))
		}
	}

	tally := shadow.NewTally()
	for i, ss := range sightings {
		for _, s := range ss {
			tally.Add(ctx, logs[i].Call, s.Worked, s.Band)
		}
	}
	run.Shadows = tally.Resolve(e.rules.ShadowThreshold)
	for _, c := range run.Shadows.Candidates() {
		log.Debug(ctx, "shadow station promoted",
			logger.String("call", c.Call),
			logger.String("band", string(c.Band)),
			logger.Int("corroborations", run.Shadows[c]),
		)
	}

	agg := scoring.New(e.rules.BandNames(), e.rules.Formula)
	rescoreFailed, err := e.parallel(ctx, run.ID, PassRescore, len(results), func(_ context.Context, i int) error {
		r := results[i]
		if r.Err != nil {
			return nil
		}
		r.Promoted = shadow.Rescore(r.Log, r.Outcomes, run.Shadows, v)
		r.Final = agg.Aggregate(r.Log.Contacts, r.Outcomes)
		r.Claimed = agg.Claimed(r.Log.Contacts)
		r.ClaimedScore = r.Claimed.Score
		if r.Log.HasClaimed {
			r.ClaimedScore = r.Log.ClaimedScore
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	run.FailedJobs = int(failedJobs + rescoreFailed)

	sort.Slice(results, func(i, j int) bool { return results[i].Call() < results[j].Call() })
	run.Results = results
	run.Duration = time.Since(run.StartedAt)

	metrics.RecordShadowPromotions(string(mode), len(run.Shadows))
	metrics.RecordRunDuration(string(mode), run.Duration.Seconds())
	metrics.UpdateParticipants(string(mode), len(results))

	log.Info(ctx, "cross-check complete",
		logger.Int("participants", len(results)),
		logger.Int("shadows", len(run.Shadows)),
		logger.Int("candidates", tally.Len()),
		logger.Int("failed_jobs", run.FailedJobs),
		logger.Duration("took", run.Duration),
	)
	return run, nil
}

// parallel feeds n jobs through a bounded queue to a worker pool and waits
// for all of them. It returns the number of jobs whose handler failed.
func (e *Engine) parallel(ctx context.Context, runID, pass string, n int, fn func(ctx context.Context, i int) error) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(min(e.queueSize, n)))
	h := worker.HandlerFunc(func(ctx context.Context, j queue.Job) error {
		return fn(ctx, j.Index)
	})
	pool := worker.NewPool(e.workers, q, h,
		worker.WithLogger(e.logger.Named(pass)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for i := 0; i < n; i++ {
			if err := q.EnqueueWait(gctx, queue.Job{ID: runID, Pass: pass, Index: i}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		return pool.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("%s pass: %w", pass, err)
	}
	_, failedJobs := pool.Stats()
	return failedJobs, nil
}

func failed(l *model.ParticipantLog) *Result {
	outcomes := make([]model.Outcome, len(l.Contacts))
	for i := range outcomes {
		outcomes[i] = model.Outcome{Status: model.Invalid, Detail: "validation failed"}
	}
	return &Result{Log: l, Outcomes: outcomes, Err: fmt.Errorf("%w: %s", ErrJobFailed, l.Call)}
}

// unique drops logs whose call was already seen and returns the dropped calls.
func unique(logs []model.ParticipantLog) ([]model.ParticipantLog, []string) {
	seen := make(map[string]bool, len(logs))
	out := make([]model.ParticipantLog, 0, len(logs))
	var dups []string
	for _, l := range logs {
		if seen[l.Call] {
			dups = append(dups, l.Call)
			continue
		}
		seen[l.Call] = true
		out = append(out, l)
	}
	return out, dups
}
