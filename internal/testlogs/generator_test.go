package testlogs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	service "github.com/okian/xcheck/internal/app"
	"github.com/okian/xcheck/internal/domain/model"
	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/internal/testlogs"
	"github.com/okian/xcheck/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func smallConfig(dir string) *testlogs.Config {
	return &testlogs.Config{
		OutDir:   dir,
		Stations: 30,
		Silent:   2,
		QSOs:     200,
		BustRate: 0.1,
		Seed:     7,
		Workers:  4,
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		ctx := context.Background()

		Convey("Then equal seeds give equal corpora", func() {
			a, err := testlogs.Generate(ctx, smallConfig(""))
			So(err, ShouldBeNil)
			b, err := testlogs.Generate(ctx, smallConfig(""))
			So(err, ShouldBeNil)
			So(cmp.Diff(a, b), ShouldBeEmpty)
		})

		Convey("Then silent stations submit nothing", func() {
			c, err := testlogs.Generate(ctx, smallConfig(""))
			So(err, ShouldBeNil)
			silent := map[string]bool{}
			for _, s := range c.Stations {
				if s.Silent {
					silent[s.Call] = true
				}
			}
			So(len(silent), ShouldEqual, 2)
			for _, mode := range model.Modes {
				So(len(c.Logs[mode]), ShouldBeGreaterThan, 0)
				for _, l := range c.Logs[mode] {
					So(silent[l.Call], ShouldBeFalse)
				}
			}
		})

		Convey("Then invalid configs are refused", func() {
			cfg := smallConfig("")
			cfg.Silent = cfg.Stations
			_, err := testlogs.Generate(ctx, cfg)
			So(errors.Is(err, testlogs.ErrInvalidConfig), ShouldBeTrue)

			cfg = smallConfig("")
			cfg.BustRate = 2
			_, err = testlogs.Generate(ctx, cfg)
			So(errors.Is(err, testlogs.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given a corpus written to disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := smallConfig(dir)

		c, err := testlogs.Generate(ctx, cfg)
		So(err, ShouldBeNil)
		files, err := testlogs.Write(ctx, c, dir, cfg.Workers)
		So(err, ShouldBeNil)
		So(files, ShouldEqual, len(c.Logs[model.ModeCW])+len(c.Logs[model.ModePH]))

		_, err = os.Stat(filepath.Join(dir, "CW"))
		So(err, ShouldBeNil)

		Convey("When the logs are loaded and checked", func() {
			rules := cfg.Rules()
			batch, err := service.NewLoader(&rules).Load(ctx, dir, model.Modes)
			So(err, ShouldBeNil)
			So(batch.Rejected, ShouldBeEmpty)

			eng, err := engine.New(rules, engine.WithWorkers(4))
			So(err, ShouldBeNil)
			runs, err := service.New(eng).Check(ctx, batch)
			So(err, ShouldBeNil)

			Convey("Then the outcomes match the generated expectations", func() {
				So(c.Busted[model.ModeCW], ShouldBeGreaterThan, 0)
				So(testlogs.Verify(ctx, c, runs), ShouldBeNil)
			})
		})
	})
}
