// Package service runs the cross-check over a batch of logs and keeps the
// resulting standings queryable.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/xcheck/internal/adapters/http/api"
	"github.com/okian/xcheck/internal/adapters/repository"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/pkg/logger"
)

// Service owns one engine run and one standings store per mode.
type Service struct {
	mu sync.RWMutex

	engine *engine.Engine
	logger logger.Logger

	runs     map[model.Mode]*engine.Run
	stores   map[model.Mode]*repository.TreapStore
	rejected int
	checked  time.Time
}

// New creates a service checking logs with eng.
func New(eng *engine.Engine, opts ...Option) *Service {
	s := &Service{
		engine: eng,
		logger: logger.Get().Named("service"),
		runs:   make(map[model.Mode]*engine.Run),
		stores: make(map[model.Mode]*repository.TreapStore),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check runs every mode present in batch, in report order, and publishes
// the standings. A failing mode aborts the check; modes already published
// stay queryable.
func (s *Service) Check(ctx context.Context, batch *Batch) ([]*engine.Run, error) {
	var out []*engine.Run
	for _, mode := range model.Modes {
		logs, ok := batch.Logs[mode]
		if !ok {
			continue
		}
		run, err := s.engine.Run(ctx, mode, logs)
		if err != nil {
			return out, fmt.Errorf("check %s: %w", mode, err)
		}
		if err := s.publish(ctx, run); err != nil {
			return out, err
		}
		out = append(out, run)
	}

	s.mu.Lock()
	s.rejected = len(batch.Rejected)
	s.checked = time.Now().UTC()
	s.mu.Unlock()
	return out, nil
}

func (s *Service) publish(ctx context.Context, run *engine.Run) error {
	ranked := run.Ranked()
	entries := make([]repository.Entry, 0, len(ranked))
	for _, r := range ranked {
		entries = append(entries, entryOf(r))
	}

	store := repository.NewTreapStore(repository.WithLabel(string(run.Mode)))
	if err := store.Replace(ctx, entries); err != nil {
		return fmt.Errorf("publish %s standings: %w", run.Mode, err)
	}

	s.mu.Lock()
	s.runs[run.Mode] = run
	s.stores[run.Mode] = store
	s.mu.Unlock()

	s.logger.Info(ctx, "standings published",
		logger.String("mode", string(run.Mode)),
		logger.String("run_id", run.ID),
		logger.Int("ranked", len(entries)),
	)
	return nil
}

func entryOf(r *engine.Result) repository.Entry {
	e := repository.Entry{
		Call:   r.Call(),
		Score:  r.Final.Score,
		Points: r.Final.Points,
		Mult:   r.Final.Mult,
		Power:  r.Log.Power,
		County: r.Log.County,
	}
	for _, b := range r.Final.Bands {
		e.QSO += b.QSO
	}
	return e
}

// Runs returns the published runs in report order.
func (s *Service) Runs() []*engine.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*engine.Run, 0, len(s.runs))
	for _, m := range model.Modes {
		if r, ok := s.runs[m]; ok {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) store(mode model.Mode) (*repository.TreapStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[mode]
	if !ok {
		return nil, fmt.Errorf("%w: no results for %s", api.ErrUnknownMode, mode)
	}
	return st, nil
}

// TopN returns the n best ranked participants of mode.
func (s *Service) TopN(ctx context.Context, mode model.Mode, n int) ([]repository.Entry, error) {
	st, err := s.store(mode)
	if err != nil {
		return nil, err
	}
	return st.TopN(ctx, n)
}

// Rank returns the standing of call in mode. Checklog participants are
// not ranked.
func (s *Service) Rank(ctx context.Context, mode model.Mode, call string) (repository.Entry, error) {
	st, err := s.store(mode)
	if err != nil {
		return repository.Entry{}, err
	}
	return st.Rank(ctx, call)
}

// Report returns the full check result of call in mode.
func (s *Service) Report(_ context.Context, mode model.Mode, call string) (api.ParticipantReport, error) {
	s.mu.RLock()
	run, ok := s.runs[mode]
	s.mu.RUnlock()
	if !ok {
		return api.ParticipantReport{}, fmt.Errorf("%w: no results for %s", api.ErrUnknownMode, mode)
	}
	r, ok := run.Result(call)
	if !ok {
		return api.ParticipantReport{}, fmt.Errorf("%w: %s", repository.ErrNotFound, call)
	}
	return reportOf(run, r), nil
}

func reportOf(run *engine.Run, r *engine.Result) api.ParticipantReport {
	rep := api.ParticipantReport{
		Call:         r.Call(),
		Mode:         string(run.Mode),
		Power:        string(r.Log.Power),
		County:       r.Log.County,
		Checklog:     r.Log.Checklog,
		ClaimedScore: r.ClaimedScore,
		Score:        r.Final.Score,
		Rejected:     len(r.Log.Failures),
		Bands:        make([]api.BandReport, 0, len(r.Final.Bands)),
		Contacts:     make([]api.ContactReport, 0, len(r.Log.Contacts)),
	}
	for _, b := range r.Final.Bands {
		c := r.Claimed.Band(b.Band)
		rep.Bands = append(rep.Bands, api.BandReport{
			Band:          string(b.Band),
			ClaimedQSO:    c.QSO,
			QSO:           b.QSO,
			ClaimedPoints: c.Points,
			Points:        b.Points,
			ClaimedMult:   c.Mult,
			Mult:          b.Mult,
		})
	}
	for i, c := range r.Log.Contacts {
		o := r.Outcomes[i]
		rep.Contacts = append(rep.Contacts, api.ContactReport{
			Seq:     c.Seq,
			Line:    c.Line,
			Time:    c.Time,
			Band:    string(c.Band),
			FreqKHz: c.FreqKHz,
			Worked:  c.Worked,
			Status:  o.Status.String(),
			Reason:  string(o.Reason),
			Detail:  o.Detail,
			Points:  o.Points(),
			Mult:    o.Mult && o.Points() > 0,
		})
	}
	return rep
}

// GetStats returns run statistics.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	modes := make(map[string]any, len(s.runs))
	for m, run := range s.runs {
		status := map[string]int{}
		contacts, checklogs, failed := 0, 0, 0
		for _, r := range run.Results {
			if r.Log.Checklog {
				checklogs++
			}
			if r.Err != nil {
				failed++
			}
			for _, o := range r.Outcomes {
				status[o.Status.String()]++
				contacts++
			}
		}
		modes[string(m)] = map[string]any{
			"runId":        run.ID,
			"participants": len(run.Results),
			"ranked":       s.stores[m].Count(context.Background()),
			"checklogs":    checklogs,
			"failed":       failed,
			"failedJobs":   run.FailedJobs,
			"duplicates":   len(run.Duplicates),
			"shadows":      len(run.Shadows),
			"contacts":     contacts,
			"byStatus":     status,
			"durationMs":   run.Duration.Milliseconds(),
		}
	}

	stats := map[string]any{
		"checked":  !s.checked.IsZero(),
		"rejected": s.rejected,
		"modes":    modes,
	}
	if !s.checked.IsZero() {
		stats["checkedAt"] = s.checked.Format(time.RFC3339)
	}
	return stats
}

var (
	_ api.Dependencies  = (*Service)(nil)
	_ api.StatsProvider = (*Service)(nil)
)
