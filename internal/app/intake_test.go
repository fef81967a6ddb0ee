package service_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/litterpredict/internal/app"
)

func TestIntake_Receive(t *testing.T) {
	Convey("Given an intake", t, func() {
		ctx := context.Background()
		in := service.NewIntake()

		Convey("When a batch of three arrives", func() {
			n, err := in.Receive(ctx, []map[string]any{{"a": 1}, {"b": "x"}, {}})

			Convey("Then all three are acknowledged", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})

		Convey("When the batch holds a null item", func() {
			n, err := in.Receive(ctx, []map[string]any{{"a": 1}, nil})

			Convey("Then the batch is rejected naming the item", func() {
				So(errors.Is(err, service.ErrInvalidItem), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "item 1")
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When the batch is empty", func() {
			_, err := in.Receive(ctx, nil)

			Convey("Then ErrEmptyBatch is returned", func() {
				So(errors.Is(err, service.ErrEmptyBatch), ShouldBeTrue)
			})
		})
	})
}
