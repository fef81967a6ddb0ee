package dataset

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/litterpredict/internal/domain/model"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/pkg/logger"
)

// DefaultConfidenceThreshold is the minimum confidence a reading needs to be trained on.
const DefaultConfidenceThreshold = 0.5

// Accepted dateTime layouts, tried in order before numeric epochs.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DropStats counts rows removed by Extract.
type DropStats struct {
	LowConfidence   int
	MissingCategory int
	InvalidTarget   int
}

// TrainingSet is the feature frame plus one target vector per target.
type TrainingSet struct {
	Features dataframe.DataFrame
	Targets  map[types.Target][]float64
	Dropped  DropStats
}

// Rows returns the number of training rows.
func (s TrainingSet) Rows() int { return s.Features.Nrow() }

// Subset returns the rows at idx. idx must not be empty.
func (s TrainingSet) Subset(idx []int) TrainingSet {
	out := TrainingSet{
		Features: s.Features.Subset(idx),
		Targets:  make(map[types.Target][]float64, len(s.Targets)),
	}
	for t, y := range s.Targets {
		sub := make([]float64, len(idx))
		for i, j := range idx {
			sub[i] = y[j]
		}
		out.Targets[t] = sub
	}
	return out
}

// Extract filters a table by confidence, derives day_of_week and splits the
// result into features and targets.
func Extract(ctx context.Context, t Table, threshold float64) (TrainingSet, error) {
	if err := ctx.Err(); err != nil {
		return TrainingSet{}, err
	}
	df := t.Frame
	if missing := missingColumns(df.Names()); len(missing) > 0 {
		return TrainingSet{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	conf := df.Col(model.ColConfidence).Float()
	stamps := df.Col(model.ColDateTime)
	cats := df.Col(model.ColCategory)
	targetCols := make(map[types.Target][]float64, 3)
	for _, tg := range types.Targets() {
		targetCols[tg] = df.Col(tg.Column()).Float()
	}

	var (
		stats    DropStats
		outCats  []string
		outDays  []string
		outYs    = make(map[types.Target][]float64, 3)
		catVals  = cats.Records()
		stampRec = stamps.Records()
	)

	for i := range conf {
		if math.IsNaN(conf[i]) || conf[i] < threshold {
			stats.LowConfidence++
			continue
		}
		ts, err := parseTimestamp(stampRec[i])
		if err != nil || stamps.Elem(i).IsNA() {
			return TrainingSet{}, fmt.Errorf("%w: row %d: %q", ErrBadTimestamp, i, stampRec[i])
		}
		if cats.Elem(i).IsNA() || strings.TrimSpace(catVals[i]) == "" {
			stats.MissingCategory++
			continue
		}
		if !finiteAt(targetCols, i) {
			stats.InvalidTarget++
			continue
		}
		outCats = append(outCats, catVals[i])
		outDays = append(outDays, ts.Weekday().String())
		for tg, col := range targetCols {
			outYs[tg] = append(outYs[tg], col[i])
		}
	}

	log := logger.Get().Named("dataset")
	if stats.MissingCategory > 0 || stats.InvalidTarget > 0 {
		log.Warn(ctx, "dropped incomplete rows",
			logger.Int("missing_category", stats.MissingCategory),
			logger.Int("invalid_target", stats.InvalidTarget))
	}

	if len(outCats) == 0 {
		return TrainingSet{}, fmt.Errorf("%w: %d rows, %d below confidence %.2f",
			ErrNoRows, len(conf), stats.LowConfidence, threshold)
	}

	features := dataframe.New(
		series.New(outCats, series.String, model.ColCategory),
		series.New(outDays, series.String, model.ColDayOfWeek),
	)
	log.Info(ctx, "features extracted",
		logger.Int("rows", features.Nrow()),
		logger.Int("low_confidence", stats.LowConfidence),
		logger.Float64("threshold", threshold))

	return TrainingSet{Features: features, Targets: outYs, Dropped: stats}, nil
}

func finiteAt(cols map[types.Target][]float64, i int) bool {
	for _, col := range cols {
		if math.IsNaN(col[i]) || math.IsInf(col[i], 0) {
			return false
		}
	}
	return true
}

// Epoch units tried in order for numeric timestamps. The first unit whose
// nanosecond value fits in an int64 wins, so 1704499200 reads as seconds and
// 1704499200000 as milliseconds.
var epochUnits = []time.Duration{time.Second, time.Millisecond, time.Microsecond, time.Nanosecond}

// parseTimestamp accepts the layouts in timeLayouts or a numeric epoch.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
	}
	if ts, ok := fromEpoch(v); ok {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("timestamp %q out of range", s)
}

func fromEpoch(v float64) (time.Time, bool) {
	for _, unit := range epochUnits {
		ns := v * float64(unit)
		if ns >= math.MinInt64 && ns < math.MaxInt64 {
			return time.Unix(0, int64(ns)).UTC(), true
		}
	}
	return time.Time{}, false
}
