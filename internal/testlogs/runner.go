package testlogs

import (
	"context"
	"time"
)

// Run generates a corpus and writes it to cfg.OutDir.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	c, err := Generate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, logs := range c.Logs {
		stats.Logs += len(logs)
		for _, l := range logs {
			stats.Contacts += len(l.Contacts)
		}
	}

	stats.Files, err = Write(ctx, c, cfg.OutDir, cfg.Workers)
	if err != nil {
		return nil, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats, nil
}
