package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/xcheck/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When recording a key twice", func() {
			first := d.SeenAndRecord(ctx, dedupe.Key("OH1AA", "80m", "LY2EN"))
			second := d.SeenAndRecord(ctx, dedupe.Key("OH1AA", "80m", "LY2EN"))

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When keys differ in any part", func() {
			So(d.SeenAndRecord(ctx, dedupe.Key("OH1AA", "80m", "LY2EN")), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, dedupe.Key("OH1AA", "40m", "LY2EN")), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, dedupe.Key("OH1AA", "80m", "ES5TV")), ShouldBeFalse)

			Convey("Then each is distinct", func() {
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When parts would collide if concatenated", func() {
			So(d.SeenAndRecord(ctx, dedupe.Key("AB", "C")), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, dedupe.Key("A", "BC")), ShouldBeFalse)
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper()
		const writers, keys = 8, 200

		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < keys; k++ {
					if !d.SeenAndRecord(context.Background(), fmt.Sprintf("k-%d", k)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then every key is recorded exactly once", func() {
			So(fresh, ShouldEqual, keys)
			So(d.Size(), ShouldEqual, keys)
		})
	})
}
