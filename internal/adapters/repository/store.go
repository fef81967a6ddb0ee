// Package repository persists trained pipelines, one artifact per target.
package repository

import (
	"context"

	"github.com/okian/litterpredict/internal/domain/pipeline"
	"github.com/okian/litterpredict/internal/domain/types"
)

// Store provides read/write access to trained pipelines.
type Store interface {
	// Save persists p under its target, replacing any previous artifact.
	Save(ctx context.Context, p *pipeline.Pipeline) (string, error)

	// Load returns the pipeline stored for target.
	// Returns ErrArtifactMissing, ErrArtifactCorrupt or ErrTargetMismatch.
	Load(ctx context.Context, target types.Target) (*pipeline.Pipeline, error)
}
