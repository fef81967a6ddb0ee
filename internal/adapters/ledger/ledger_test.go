package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/litterpredict/internal/adapters/ledger"
)

func TestLedger(t *testing.T) {
	Convey("Given a ledger in a temp directory", t, func() {
		ctx := context.Background()
		l, err := ledger.Open(ctx, filepath.Join(t.TempDir(), "runs", "training.db"))
		So(err, ShouldBeNil)
		defer func() { _ = l.Close() }()

		Convey("When two runs are recorded", func() {
			score := 0.42
			base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			So(l.Record(ctx, []ledger.Entry{
				{RunID: "run-1", Target: "latitude", Source: "synthetic", Rows: 100, Estimators: 10, Seed: 42, Artifact: "a", TrainedAt: base},
			}), ShouldBeNil)
			So(l.Record(ctx, []ledger.Entry{
				{RunID: "run-2", Target: "latitude", Source: "file", Rows: 80, Estimators: 10, Seed: 42, HoldoutRows: 20, R2: &score, Artifact: "b", TrainedAt: base.Add(time.Hour)},
				{RunID: "run-2", Target: "temperature", Source: "file", Rows: 80, Estimators: 10, Seed: 42, HoldoutRows: 20, Artifact: "c", TrainedAt: base.Add(time.Hour)},
			}), ShouldBeNil)

			entries, err := l.Recent(ctx, 2)

			Convey("Then Recent lists the newest entries first", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].RunID, ShouldEqual, "run-2")
				So(entries[1].RunID, ShouldEqual, "run-2")
			})

			Convey("Then optional scores round-trip as nil or value", func() {
				all, err := l.Recent(ctx, 10)
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 3)
				var withScore, without int
				for _, e := range all {
					if e.R2 != nil {
						withScore++
						So(*e.R2, ShouldAlmostEqual, 0.42)
					} else {
						without++
					}
				}
				So(withScore, ShouldEqual, 1)
				So(without, ShouldEqual, 2)
			})
		})

		Convey("When the limit is not positive", func() {
			_, err := l.Recent(ctx, 0)
			So(errors.Is(err, ledger.ErrInvalidLimit), ShouldBeTrue)
		})
	})

	Convey("Given an empty ledger path", t, func() {
		_, err := ledger.Open(context.Background(), "")
		So(errors.Is(err, ledger.ErrDisabled), ShouldBeTrue)
	})
}
