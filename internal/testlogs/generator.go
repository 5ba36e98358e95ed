package testlogs

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/xcheck/internal/domain/contest"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/pkg/logger"
)

// Normalize fills zero fields with defaults.
func (c *Config) Normalize() {
	if c.Stations <= 0 {
		c.Stations = DefaultStations
	}
	if c.QSOs <= 0 {
		c.QSOs = DefaultQSOs
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if len(c.Modes) == 0 {
		c.Modes = model.Modes
	}
	if c.CWStart.IsZero() {
		c.CWStart = time.Date(2022, 1, 16, 6, 30, 0, 0, time.UTC)
	}
	if c.PHStart.IsZero() {
		c.PHStart = time.Date(2022, 1, 16, 9, 0, 0, 0, time.UTC)
	}
}

// Rules returns the contest rules the corpus is generated for.
func (c *Config) Rules() contest.Rules {
	return contest.NRAUBaltic(c.CWStart, c.PHStart)
}

// Generate builds a corpus. The result depends only on cfg.
func Generate(ctx context.Context, cfg *Config) (*Corpus, error) {
	cfg.Normalize()
	if cfg.Stations < 2 {
		return nil, fmt.Errorf("%w: need at least 2 stations", ErrInvalidConfig)
	}
	if cfg.Silent >= cfg.Stations {
		return nil, fmt.Errorf("%w: silent stations must be fewer than stations", ErrInvalidConfig)
	}
	if cfg.BustRate < 0 || cfg.BustRate > 1 {
		return nil, fmt.Errorf("%w: bust rate must be within [0, 1]", ErrInvalidConfig)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // reproducible test data
	rules := cfg.Rules()

	c := &Corpus{
		Stations: stations(rng, cfg.Stations, cfg.Silent),
		Logs:     make(map[model.Mode][]model.ParticipantLog, len(cfg.Modes)),
		Clean:    make(map[model.Mode]int, len(cfg.Modes)),
		Busted:   make(map[model.Mode]int, len(cfg.Modes)),
	}
	for _, mode := range cfg.Modes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during log generation: %w", err)
		}
		if err := c.generateMode(rng, &rules, cfg, mode); err != nil {
			return nil, err
		}
	}

	logger.Get().Info(ctx, "generated log corpus",
		logger.Int("stations", len(c.Stations)),
		logger.Int("silent", cfg.Silent),
		logger.Int("qsos", cfg.QSOs),
	)
	return c, nil
}

func stations(rng *rand.Rand, n, silent int) []Station {
	out := make([]Station, n)
	for i := range out {
		s := Station{
			Call:   callFor(i),
			County: counties[rng.IntN(len(counties))],
			Power:  model.PowerHigh,
			Silent: i < silent,
		}
		if rng.IntN(2) == 0 {
			s.Power = model.PowerLow
		}
		out[i] = s
	}
	return out
}

// callFor returns a unique call sign such as "LY1AAB".
func callFor(i int) string {
	suffix := make([]byte, suffixLength)
	n := i
	for k := suffixLength - 1; k >= 0; k-- {
		suffix[k] = byte('A' + n%suffixLetters)
		n /= suffixLetters
	}
	return fmt.Sprintf("%s%d%s", prefixes[i%len(prefixes)], i%10, suffix)
}

// channel is a usable frequency range with its band.
type channel struct {
	band model.Band
	low  int
	high int
}

func channels(rules *contest.Rules, mode model.Mode) []channel {
	var out []channel
	for _, r := range rules.SubBands[mode] {
		if r.HighKHz <= r.LowKHz {
			continue
		}
		if b, ok := rules.BandFor(r.LowKHz); ok {
			out = append(out, channel{band: b, low: r.LowKHz, high: r.HighKHz})
		}
	}
	return out
}

type pairKey struct {
	a, b int
	band model.Band
}

func (c *Corpus) generateMode(rng *rand.Rand, rules *contest.Rules, cfg *Config, mode model.Mode) error {
	period, ok := rules.Periods[mode]
	if !ok {
		return fmt.Errorf("%w: no period for %s", ErrInvalidConfig, mode)
	}
	chans := channels(rules, mode)
	if len(chans) == 0 {
		return fmt.Errorf("%w: no sub-band for %s", ErrInvalidConfig, mode)
	}
	report := "599"
	if mode == model.ModePH {
		report = "59"
	}

	n := len(c.Stations)
	serial := make([]int, n)
	logs := make([][]model.ContactRecord, n)
	worked := make(map[pairKey]bool)

	for q := 0; q < cfg.QSOs; q++ {
		ch := chans[rng.IntN(len(chans))]
		a, b, ok := pickPair(rng, n, ch.band, worked)
		if !ok {
			continue
		}
		serial[a]++
		serial[b]++
		sa, sb := &c.Stations[a], &c.Stations[b]
		at := period.Start.Add(time.Duration(q) * period.Duration / time.Duration(cfg.QSOs)).Truncate(time.Minute)
		freq := ch.low + rng.IntN(ch.high-ch.low+1)

		ra := model.ContactRecord{
			FreqKHz: freq, Band: ch.band, Mode: mode, Time: at,
			Call: sa.Call, Worked: sb.Call,
			Sent: model.Exchange{Report: report, Serial: serial[a], County: sa.County},
			Rcvd: model.Exchange{Report: report, Serial: serial[b], County: sb.County},
		}
		rb := model.ContactRecord{
			FreqKHz: freq, Band: ch.band, Mode: mode, Time: at,
			Call: sb.Call, Worked: sa.Call,
			Sent: ra.Rcvd,
			Rcvd: ra.Sent,
		}

		both := !sa.Silent && !sb.Silent
		switch {
		case both && rng.Float64() < cfg.BustRate:
			ra.Rcvd.Serial++
			c.Busted[mode] += 2
		case both:
			c.Clean[mode] += 2
		}
		logs[a] = append(logs[a], ra)
		logs[b] = append(logs[b], rb)
	}

	for i, s := range c.Stations {
		if s.Silent || len(logs[i]) == 0 {
			continue
		}
		recs := logs[i]
		for k := range recs {
			recs[k].Seq = k + 1
		}
		c.Logs[mode] = append(c.Logs[mode], model.ParticipantLog{
			Call:     s.Call,
			Mode:     mode,
			Power:    s.Power,
			County:   s.County,
			Contacts: recs,
		})
	}
	return nil
}

// pickPair picks two stations that have not worked each other on band.
func pickPair(rng *rand.Rand, n int, band model.Band, worked map[pairKey]bool) (int, int, bool) {
	for range maxPairAttempts {
		a, b := rng.IntN(n), rng.IntN(n)
		if a == b {
			continue
		}
		k := pairKey{a: min(a, b), b: max(a, b), band: band}
		if worked[k] {
			continue
		}
		worked[k] = true
		return a, b, true
	}
	return 0, 0, false
}
