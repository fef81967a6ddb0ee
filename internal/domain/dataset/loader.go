// Package dataset loads sensor readings into data frames and turns them into
// training sets.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/litterpredict/internal/domain/model"
	"github.com/okian/litterpredict/pkg/logger"
)

// Source describes where a table came from.
type Source string

// Table sources.
const (
	SourceFile      Source = "file"
	SourceSynthetic Source = "synthetic"
)

// Table is a loaded sensor data frame.
type Table struct {
	Frame  dataframe.DataFrame
	Source Source
	Path   string
}

// Rows returns the number of records in the table.
func (t Table) Rows() int { return t.Frame.Nrow() }

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	seed    int64
	samples int
}

// WithSyntheticSeed sets the seed of the fallback dataset.
func WithSyntheticSeed(seed int64) LoadOption {
	return func(c *loadConfig) { c.seed = seed }
}

// WithSyntheticSamples sets the size of the fallback dataset.
func WithSyntheticSamples(n int) LoadOption {
	return func(c *loadConfig) {
		if n > 0 {
			c.samples = n
		}
	}
}

// stringColumns are never type-detected so categories like "1" stay strings.
var stringColumns = map[string]series.Type{
	model.ColID:       series.String,
	model.ColDateTime: series.String,
	model.ColCategory: series.String,
}

// Load reads a JSON array of sensor records from path. When the file does not
// exist a synthetic dataset is generated instead.
func Load(ctx context.Context, path string, opts ...LoadOption) (Table, error) {
	cfg := loadConfig{seed: DefaultSeed, samples: DefaultSamples}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := logger.Get().Named("dataset")

	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn(ctx, "data file not found, generating synthetic data",
			logger.String("path", path),
			logger.Int("samples", cfg.samples),
			logger.Any("seed", cfg.seed))
		t := Table{Frame: FromReadings(Synthesize(cfg.seed, cfg.samples)), Source: SourceSynthetic}
		describe(ctx, log, t)
		return t, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := read(f)
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path

	for _, col := range []string{model.ColLocationLat, model.ColLocationLon, model.ColTemperature} {
		if typ := t.Frame.Col(col).Type(); typ != series.Float && typ != series.Int {
			log.Warn(ctx, "target column is not numeric, unparsable values will be dropped",
				logger.String("column", col),
				logger.String("type", string(typ)))
		}
	}
	describe(ctx, log, t)
	return t, nil
}

// Read parses a JSON array of sensor records from r.
func Read(r io.Reader) (Table, error) {
	return read(r)
}

// nullValues marks JSON null as missing. gota's defaults also treat "NA" as
// missing, which would drop a real category of that name.
var nullValues = []string{"<nil>"}

func read(r io.Reader) (Table, error) {
	df := dataframe.ReadJSON(r, dataframe.WithTypes(stringColumns), dataframe.NaNValues(nullValues))
	if df.Err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrMalformedData, df.Err)
	}
	if df.Nrow() == 0 {
		return Table{}, fmt.Errorf("%w: no records", ErrMalformedData)
	}
	if missing := missingColumns(df.Names()); len(missing) > 0 {
		return Table{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return Table{Frame: df, Source: SourceFile}, nil
}

// FromReadings builds a frame with the sensor export column layout.
func FromReadings(readings []model.Reading) dataframe.DataFrame {
	n := len(readings)
	ids := make([]string, n)
	stamps := make([]string, n)
	cats := make([]string, n)
	lats := make([]float64, n)
	lons := make([]float64, n)
	temps := make([]float64, n)
	confs := make([]float64, n)
	for i, r := range readings {
		ids[i] = r.ID
		stamps[i] = r.DateTime.UTC().Format(time.RFC3339)
		cats[i] = r.Category
		lats[i] = r.LocationLat
		lons[i] = r.LocationLon
		temps[i] = r.Temperature
		confs[i] = r.Confidence
	}
	return dataframe.New(
		series.New(ids, series.String, model.ColID),
		series.New(stamps, series.String, model.ColDateTime),
		series.New(cats, series.String, model.ColCategory),
		series.New(lats, series.Float, model.ColLocationLat),
		series.New(lons, series.Float, model.ColLocationLon),
		series.New(temps, series.Float, model.ColTemperature),
		series.New(confs, series.Float, model.ColConfidence),
	)
}

func missingColumns(names []string) []string {
	have := make(map[string]struct{}, len(names))
	for _, n := range names {
		have[n] = struct{}{}
	}
	var missing []string
	for _, col := range model.RequiredColumns() {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func describe(ctx context.Context, log logger.Logger, t Table) {
	rows, cols := t.Frame.Dims()
	names := t.Frame.Names()
	typs := t.Frame.Types()
	schema := make([]string, len(names))
	for i := range names {
		schema[i] = names[i] + ":" + string(typs[i])
	}
	log.Info(ctx, "sensor data loaded",
		logger.String("source", string(t.Source)),
		logger.Int("rows", rows),
		logger.Int("columns", cols),
		logger.Strings("schema", schema))
}
