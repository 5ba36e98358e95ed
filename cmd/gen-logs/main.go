package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/xcheck/internal/testlogs"
	"github.com/okian/xcheck/pkg/logger"
)

// Default configuration constants.
const (
	defaultOutDir   = "testdata/logs"
	defaultSilent   = 5
	defaultBustRate = 0.05
	defaultTimeout  = 5 * time.Minute
)

func main() {
	var (
		outDir   = flag.String("out", defaultOutDir, "Root directory for the logs")
		stations = flag.Int("stations", testlogs.DefaultStations, "Number of stations on the air")
		silent   = flag.Int("silent", defaultSilent, "Stations that make contacts but submit no log")
		qsos     = flag.Int("qsos", testlogs.DefaultQSOs, "Contacts generated per mode")
		bust     = flag.Float64("bust", defaultBustRate, "Share of contacts with a miscopied serial")
		seed     = flag.Uint64("seed", testlogs.DefaultSeed, "Generator seed")
		workers  = flag.Int("workers", runtime.NumCPU(), "Concurrent file writers")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testlogs.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cfg := &testlogs.Config{
		OutDir:   *outDir,
		Stations: *stations,
		Silent:   *silent,
		QSOs:     *qsos,
		BustRate: *bust,
		Seed:     *seed,
		Workers:  *workers,
	}
	stats, err := testlogs.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
	logger.Get().Info(ctx, "done",
		logger.Int("logs", stats.Logs),
		logger.Int("contacts", stats.Contacts),
		logger.Duration("duration", stats.Duration),
	)
}
