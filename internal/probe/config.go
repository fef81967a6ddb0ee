// Package probe exercises a running litter prediction service end to end.
package probe

import "time"

// Defaults used by the probe command.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultSamples = 200
	DefaultTimeout = 30 * time.Second

	// UnseenCategory is sent alongside the trained categories to check
	// that unknown values still produce a prediction.
	UnseenCategory = "onbekend"

	workerChannelMultiplier = 2
	percentageMultiplier    = 100
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL string        // Base URL of the service
	Samples int           // Number of synthetic readings posted to /data
	Seed    int64         // Seed for the synthetic batch
	Workers int           // Number of concurrent prediction workers
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every prediction
}

// Query is one feature combination sent to both prediction routes.
type Query struct {
	Category  string `json:"category"`
	DayOfWeek string `json:"day_of_week"`
}

// Result is the outcome of one query.
type Result struct {
	Query       Query
	Latitude    float64
	Longitude   float64
	Temperature float64
	Err         error
}

// Stats holds probe statistics.
type Stats struct {
	ItemsPosted       int
	ItemsAcknowledged int
	Queries           int
	Succeeded         int
	Failed            int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
