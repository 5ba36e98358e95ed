package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/xcheck/internal/config"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const (
	ly2en = `START-OF-LOG: 3.0
CALLSIGN: LY2EN
QSO:  3525 CW 2022-01-16 0640 LY2EN         599 001 VI ES5TV         599 001 HA
END-OF-LOG:
`
	es5tv = `START-OF-LOG: 3.0
CALLSIGN: ES5TV
QSO:  3525 CW 2022-01-16 0642 ES5TV         599 001 HA LY2EN         599 002 VI
END-OF-LOG:
`
)

func writeLogs(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "CW")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, text := range map[string]string{"ly2en.txt": ly2en, "es5tv.txt": es5tv} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRun(t *testing.T) {
	convey.Convey("Given a logs directory configured through the environment", t, func() {
		logs := writeLogs(t)
		out := filepath.Join(t.TempDir(), "out")
		db := filepath.Join(t.TempDir(), "results.db")
		t.Setenv("XCHECK_LOGS_DIR", logs)
		t.Setenv("XCHECK_OUT_DIR", out)
		t.Setenv("XCHECK_DB_PATH", db)
		t.Setenv("XCHECK_WORKER_COUNT", "2")

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the cross-check runs", func() {
			svc, err := run(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then reports and the database are written", func() {
				for _, p := range []string{
					filepath.Join(out, "results.csv"),
					filepath.Join(out, "CW", "LY2EN.log"),
					filepath.Join(out, "CW", "LY2EN.err"),
					filepath.Join(out, "CW", "ES5TV.log"),
					db,
				} {
					_, err := os.Stat(p)
					convey.So(err, convey.ShouldBeNil)
				}
			})

			convey.Convey("Then the serial bust leaves both sides partial", func() {
				top, err := svc.TopN(context.Background(), model.ModeCW, 10)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(top), convey.ShouldEqual, 2)
				convey.So(top[0].Points, convey.ShouldEqual, 1)
				convey.So(top[1].Points, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given a logs directory without any logs", t, func() {
		t.Setenv("XCHECK_LOGS_DIR", t.TempDir())
		t.Setenv("XCHECK_OUT_DIR", filepath.Join(t.TempDir(), "out"))
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the run fails", func() {
			_, err := run(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a missing county table", t, func() {
		t.Setenv("XCHECK_LOGS_DIR", writeLogs(t))
		t.Setenv("XCHECK_COUNTIES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then the run fails before checking", func() {
			_, err := run(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestServe(t *testing.T) {
	convey.Convey("Given a checked batch and a loopback address", t, func() {
		t.Setenv("XCHECK_LOGS_DIR", writeLogs(t))
		t.Setenv("XCHECK_OUT_DIR", filepath.Join(t.TempDir(), "out"))
		t.Setenv("XCHECK_ADDR", "127.0.0.1:0")
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		svc, err := run(context.Background(), cfg)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then the server shuts down cleanly", func() {
				convey.So(serve(ctx, cfg, svc), convey.ShouldBeNil)
			})
		})
	})
}
