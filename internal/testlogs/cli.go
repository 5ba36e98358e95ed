package testlogs

import "os"

// ShowHelp prints usage information for the log generator.
func ShowHelp() {
	os.Stdout.WriteString(`xcheck Log Generator
====================

Writes a reproducible set of Cabrillo logs for the cross-checker.

Usage:
  go run ./cmd/gen-logs [options]

Options:
  -out string
        Root directory for the logs (default "testdata/logs")
  -stations int
        Number of stations on the air (default 60)
  -silent int
        Stations that make contacts but submit no log (default 5)
  -qsos int
        Contacts generated per mode (default 600)
  -bust float
        Share of contacts with a miscopied serial (default 0.05)
  -seed uint
        Generator seed (default 20220116)
  -workers int
        Concurrent file writers (default CPU cores)
  -help
        Show this help message

Examples:
  # Generate the default corpus and check it
  go run ./cmd/gen-logs -out /tmp/logs
  XCHECK_LOGS_DIR=/tmp/logs go run ./cmd

  # A larger field where silent stations reach the shadow threshold
  go run ./cmd/gen-logs -stations 200 -silent 3 -qsos 5000
`)
}
