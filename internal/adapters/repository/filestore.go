package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/litterpredict/internal/domain/pipeline"
	"github.com/okian/litterpredict/internal/domain/types"
	"github.com/okian/litterpredict/pkg/logger"
)

const (
	artifactPrefix = "model_predict_"
	artifactExt    = ".gob"
	dirPerm        = 0o750
	filePerm       = 0o600
)

// FileStore keeps gob-encoded pipelines in a directory.
type FileStore struct {
	dir    string
	logger logger.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. The directory is created on
// first Save.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:    dir,
		logger: logger.Get().Named("model_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the artifact directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the artifact path for target.
func (s *FileStore) Path(target types.Target) string {
	return filepath.Join(s.dir, artifactPrefix+string(target)+artifactExt)
}

// Save writes p to its artifact path. The last writer wins.
func (s *FileStore) Save(ctx context.Context, p *pipeline.Pipeline) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !p.Target.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, p.Target)
	}
	data, err := p.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", p.Target, err)
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}
	path := s.Path(p.Target)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info(ctx, "model saved",
		logger.String("target", p.Target.String()),
		logger.String("path", path),
		logger.Int("bytes", len(data)))
	return path, nil
}

// Load reads the artifact for target.
func (s *FileStore) Load(ctx context.Context, target types.Target) (*pipeline.Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(target)
	data, err := os.ReadFile(path) //nolint:gosec // path built from a known target
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var p pipeline.Pipeline
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactCorrupt, path, err)
	}
	if p.Target != target {
		return nil, fmt.Errorf("%w: %s holds %q", ErrTargetMismatch, path, p.Target)
	}
	s.logger.Debug(ctx, "model loaded",
		logger.String("target", target.String()),
		logger.String("path", path),
		logger.Int("rows", p.Rows))
	return &p, nil
}
