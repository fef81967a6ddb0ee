// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names shared by training data and inference frames.
const (
	ColID          = "id"
	ColDateTime    = "dateTime"
	ColCategory    = "category"
	ColLocationLat = "locationLat"
	ColLocationLon = "locationLon"
	ColTemperature = "temperature"
	ColConfidence  = "confidence"
	ColDayOfWeek   = "day_of_week"
)

// RequiredColumns lists the columns a sensor data file must carry.
func RequiredColumns() []string {
	return []string{ColDateTime, ColCategory, ColLocationLat, ColLocationLon, ColTemperature, ColConfidence}
}

// FeatureColumns lists the model input columns in encoding order.
func FeatureColumns() []string {
	return []string{ColCategory, ColDayOfWeek}
}

// Reading is a single litter detection reported by a sensor.
// JSON names mirror the sensoring export format.
type Reading struct {
	ID          string    `json:"id,omitempty"`
	DateTime    time.Time `json:"dateTime"`
	Category    string    `json:"category"`
	LocationLat float64   `json:"locationLat"`
	LocationLon float64   `json:"locationLon"`
	Temperature float64   `json:"temperature"`
	Confidence  float64   `json:"confidence"`
}

// PredictionRequest is the body of a prediction call. Pointer fields tell an
// absent key apart from an empty string.
type PredictionRequest struct {
	Category  *string `json:"category"`
	DayOfWeek *string `json:"day_of_week"`
}

// Row returns the feature row. Only absent or null fields are rejected; any
// string, empty included, is passed on to the encoder.
func (r PredictionRequest) Row() (FeatureRow, error) {
	switch {
	case r.Category == nil:
		return FeatureRow{}, errors.New("missing category")
	case r.DayOfWeek == nil:
		return FeatureRow{}, errors.New("missing day_of_week")
	}
	return FeatureRow{Category: *r.Category, DayOfWeek: *r.DayOfWeek}, nil
}

// FeatureRow is the only information the models observe.
type FeatureRow struct {
	Category  string `json:"category"`
	DayOfWeek string `json:"day_of_week"`
}

// Frame builds the one-row feature frame consumed by pipelines.
func (r FeatureRow) Frame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{r.Category}, series.String, ColCategory),
		series.New([]string{r.DayOfWeek}, series.String, ColDayOfWeek),
	)
}

// LocationPrediction is the response of a location prediction.
type LocationPrediction struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Unit      string  `json:"unit"`
}

// TemperaturePrediction is the response of a temperature prediction.
type TemperaturePrediction struct {
	Prediction float64 `json:"prediction"`
	Unit       string  `json:"unit"`
}
