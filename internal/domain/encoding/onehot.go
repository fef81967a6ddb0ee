// Package encoding turns categorical frame columns into numeric matrices.
package encoding

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// UnknownPolicy decides what Transform does with values not seen during Fit.
type UnknownPolicy string

// Unknown value policies.
const (
	// UnknownIgnore encodes an unseen value as an all-zero block.
	UnknownIgnore UnknownPolicy = "ignore"
	// UnknownError rejects unseen values.
	UnknownError UnknownPolicy = "error"
)

// OneHotEncoder learns the categories of each column and expands every value
// into an indicator block. Fields are exported for gob.
type OneHotEncoder struct {
	Columns       []string
	Categories    [][]string
	HandleUnknown UnknownPolicy

	index []map[string]int
}

// Option configures an encoder.
type Option func(*OneHotEncoder)

// WithHandleUnknown sets the unknown value policy.
func WithHandleUnknown(p UnknownPolicy) Option {
	return func(e *OneHotEncoder) { e.HandleUnknown = p }
}

// NewOneHotEncoder creates an encoder over columns. Unknown values are
// rejected unless WithHandleUnknown says otherwise.
func NewOneHotEncoder(columns []string, opts ...Option) *OneHotEncoder {
	e := &OneHotEncoder{
		Columns:       append([]string(nil), columns...),
		HandleUnknown: UnknownError,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fit learns the sorted distinct values of every encoded column.
func (e *OneHotEncoder) Fit(df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	if df.Nrow() == 0 {
		return ErrEmptyFrame
	}
	cats := make([][]string, len(e.Columns))
	for i, col := range e.Columns {
		vals, err := columnValues(df, col)
		if err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			cats[i] = append(cats[i], v)
		}
		sort.Strings(cats[i])
	}
	e.Categories = cats
	e.buildIndex()
	return nil
}

// Width is the number of encoded features.
func (e *OneHotEncoder) Width() int {
	w := 0
	for _, c := range e.Categories {
		w += len(c)
	}
	return w
}

// FeatureNames returns "<column>_<value>" for every encoded feature.
func (e *OneHotEncoder) FeatureNames() []string {
	names := make([]string, 0, e.Width())
	for i, col := range e.Columns {
		for _, v := range e.Categories[i] {
			names = append(names, col+"_"+v)
		}
	}
	return names
}

// Transform encodes df row by row. The frame must carry every encoded column.
func (e *OneHotEncoder) Transform(df dataframe.DataFrame) ([][]float64, error) {
	if len(e.Categories) != len(e.Columns) {
		return nil, ErrNotFitted
	}
	if df.Err != nil {
		return nil, df.Err
	}
	index := e.index
	if index == nil {
		index = e.lookup()
	}

	cols := make([][]string, len(e.Columns))
	for i, col := range e.Columns {
		vals, err := columnValues(df, col)
		if err != nil {
			return nil, err
		}
		cols[i] = vals
	}

	width := e.Width()
	out := make([][]float64, df.Nrow())
	for r := range out {
		row := make([]float64, width)
		offset := 0
		for c := range e.Columns {
			v := cols[c][r]
			if j, ok := index[c][v]; ok {
				row[offset+j] = 1
			} else if e.HandleUnknown != UnknownIgnore {
				return nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, e.Columns[c], v)
			}
			offset += len(e.Categories[c])
		}
		out[r] = row
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same frame.
func (e *OneHotEncoder) FitTransform(df dataframe.DataFrame) ([][]float64, error) {
	if err := e.Fit(df); err != nil {
		return nil, err
	}
	return e.Transform(df)
}

// Restore rebuilds lookup tables after the encoder was decoded. Call it
// before sharing the encoder between goroutines.
func (e *OneHotEncoder) Restore() {
	e.buildIndex()
}

func (e *OneHotEncoder) buildIndex() {
	e.index = e.lookup()
}

func (e *OneHotEncoder) lookup() []map[string]int {
	index := make([]map[string]int, len(e.Categories))
	for i, cats := range e.Categories {
		m := make(map[string]int, len(cats))
		for j, v := range cats {
			m[v] = j
		}
		index[i] = m
	}
	return index
}

func columnValues(df dataframe.DataFrame, col string) ([]string, error) {
	for _, name := range df.Names() {
		if name == col {
			return df.Col(col).Records(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
}
