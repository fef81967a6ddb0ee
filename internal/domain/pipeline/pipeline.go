// Package pipeline bundles a feature encoder with a fitted regressor for one
// prediction target.
package pipeline

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/okian/litterpredict/internal/domain/encoding"
	"github.com/okian/litterpredict/internal/domain/forest"
	"github.com/okian/litterpredict/internal/domain/model"
	"github.com/okian/litterpredict/internal/domain/types"
)

// Pipeline encodes category and day_of_week then regresses one target.
// It is immutable once fitted and safe for concurrent Predict calls.
type Pipeline struct {
	Target    types.Target
	Encoder   *encoding.OneHotEncoder
	Regressor *forest.Forest
	TrainedAt time.Time
	Rows      int
}

// New creates an unfitted pipeline for target. Unknown categories at
// prediction time encode to zeros.
func New(target types.Target, opts ...forest.Option) *Pipeline {
	return &Pipeline{
		Target: target,
		Encoder: encoding.NewOneHotEncoder(model.FeatureColumns(),
			encoding.WithHandleUnknown(encoding.UnknownIgnore)),
		Regressor: forest.New(opts...),
	}
}

// Fit learns the encoder categories from features then fits the regressor on y.
func (p *Pipeline) Fit(ctx context.Context, features dataframe.DataFrame, y []float64) error {
	x, err := p.Encoder.FitTransform(features)
	if err != nil {
		return fmt.Errorf("encode %s: %w", p.Target, err)
	}
	if err := p.Regressor.Fit(ctx, x, y); err != nil {
		return fmt.Errorf("fit %s: %w", p.Target, err)
	}
	p.Rows = len(y)
	p.TrainedAt = time.Now().UTC()
	return nil
}

// Predict returns one value per row of features.
func (p *Pipeline) Predict(features dataframe.DataFrame) ([]float64, error) {
	if p.Regressor == nil || !p.Regressor.Fitted() || p.Encoder == nil {
		return nil, ErrNotFitted
	}
	x, err := p.Encoder.Transform(features)
	if err != nil {
		return nil, err
	}
	return p.Regressor.Predict(x)
}

// artifact is the gob wire form of a Pipeline.
type artifact struct {
	Target    types.Target
	Encoder   encoding.OneHotEncoder
	Regressor forest.Forest
	TrainedAt time.Time
	Rows      int
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (p *Pipeline) MarshalBinary() ([]byte, error) {
	if p.Regressor == nil || !p.Regressor.Fitted() || p.Encoder == nil {
		return nil, ErrNotFitted
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(artifact{
		Target:    p.Target,
		Encoder:   *p.Encoder,
		Regressor: *p.Regressor,
		TrainedAt: p.TrainedAt,
		Rows:      p.Rows,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Pipeline) UnmarshalBinary(data []byte) error {
	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&a); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !a.Regressor.Fitted() || len(a.Encoder.Categories) != len(a.Encoder.Columns) {
		return fmt.Errorf("%w: incomplete artifact", ErrDecode)
	}
	a.Encoder.Restore()
	p.Target = a.Target
	p.Encoder = &a.Encoder
	p.Regressor = &a.Regressor
	p.TrainedAt = a.TrainedAt
	p.Rows = a.Rows
	return nil
}
