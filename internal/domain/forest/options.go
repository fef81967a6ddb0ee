package forest

// Option configures a Forest.
type Option func(*Forest)

// WithEstimators sets the number of trees.
func WithEstimators(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.Estimators = n
		}
	}
}

// WithSeed sets the base seed; tree i uses seed+i.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.Seed = seed }
}

// WithWorkers bounds how many trees are fitted concurrently.
func WithWorkers(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithBootstrap toggles sampling rows with replacement per tree.
func WithBootstrap(enabled bool) Option {
	return func(f *Forest) { f.Bootstrap = enabled }
}

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(f *Forest) {
		if depth >= 0 {
			f.MaxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets the minimum node size that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(f *Forest) {
		if n >= 2 {
			f.MinSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(f *Forest) {
		if n >= 1 {
			f.MinSamplesLeaf = n
		}
	}
}

// WithMaxFeatures sets how many features each split considers; 0 means all.
func WithMaxFeatures(n int) Option {
	return func(f *Forest) {
		if n >= 0 {
			f.MaxFeatures = n
		}
	}
}
