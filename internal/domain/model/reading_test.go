package model_test

import (
	"testing"

	model "github.com/okian/litterpredict/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestFeatureRow(t *testing.T) {
	convey.Convey("Given a feature row", t, func() {
		row := model.FeatureRow{Category: "plastic", DayOfWeek: "Monday"}

		convey.Convey("When building its frame", func() {
			frame := row.Frame()

			convey.Convey("Then it should hold one row with the feature columns", func() {
				convey.So(frame.Err, convey.ShouldBeNil)
				convey.So(frame.Nrow(), convey.ShouldEqual, 1)
				convey.So(frame.Names(), convey.ShouldResemble, model.FeatureColumns())
				convey.So(frame.Col(model.ColCategory).Records(), convey.ShouldResemble, []string{"plastic"})
				convey.So(frame.Col(model.ColDayOfWeek).Records(), convey.ShouldResemble, []string{"Monday"})
			})
		})
	})
}

func TestPredictionRequest(t *testing.T) {
	convey.Convey("Given a prediction request", t, func() {
		str := func(s string) *string { return &s }

		convey.Convey("When both fields are present", func() {
			row, err := model.PredictionRequest{Category: str("plastic"), DayOfWeek: str("Monday")}.Row()

			convey.Convey("Then the feature row carries them", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(row, convey.ShouldResemble, model.FeatureRow{Category: "plastic", DayOfWeek: "Monday"})
			})
		})

		convey.Convey("When a field is an empty string", func() {
			row, err := model.PredictionRequest{Category: str(""), DayOfWeek: str(" ")}.Row()

			convey.Convey("Then the values are passed on unchanged", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(row, convey.ShouldResemble, model.FeatureRow{Category: "", DayOfWeek: " "})
			})
		})

		convey.Convey("When the category is absent", func() {
			_, err := model.PredictionRequest{DayOfWeek: str("Monday")}.Row()

			convey.Convey("Then the error names the field", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "missing category")
			})
		})

		convey.Convey("When the weekday is absent", func() {
			_, err := model.PredictionRequest{Category: str("plastic")}.Row()

			convey.Convey("Then the error names the field", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "missing day_of_week")
			})
		})
	})
}

func TestRequiredColumns(t *testing.T) {
	convey.Convey("Given the required columns", t, func() {
		cols := model.RequiredColumns()

		convey.Convey("Then they should cover timestamps, features and targets", func() {
			convey.So(cols, convey.ShouldContain, model.ColDateTime)
			convey.So(cols, convey.ShouldContain, model.ColCategory)
			convey.So(cols, convey.ShouldContain, model.ColConfidence)
			convey.So(len(cols), convey.ShouldEqual, 6)
		})
	})
}
