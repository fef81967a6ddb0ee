package forest

import (
	"math/rand"
	"sort"
)

const leaf = -1

// Node is one entry of a flattened regression tree. Leaves have Feature -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Samples   int
}

// Tree is a CART regression tree stored as a flat node slice rooted at 0.
type Tree struct {
	Nodes []Node
}

// Predict walks the tree for a single row.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Feature == leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the length of the longest root to leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Feature == leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
}

type builder struct {
	x      [][]float64
	y      []float64
	params treeParams
	rng    *rand.Rand
	nodes  []Node
}

// growTree fits a tree on the rows named by idx. Repeated indices act as
// sample weights, which is how bootstrap draws reach the tree.
func growTree(x [][]float64, y []float64, idx []int, params treeParams, rng *rand.Rand) Tree {
	b := &builder{x: x, y: y, params: params, rng: rng}
	b.grow(append([]int(nil), idx...), 0)
	return Tree{Nodes: b.nodes}
}

func (b *builder) grow(idx []int, depth int) int {
	self := len(b.nodes)
	sum, sq := b.moments(idx)
	n := float64(len(idx))
	b.nodes = append(b.nodes, Node{Feature: leaf, Value: sum / n, Samples: len(idx)})

	if len(idx) < b.params.minSamplesSplit ||
		(b.params.maxDepth > 0 && depth >= b.params.maxDepth) ||
		sq-sum*sum/n <= 1e-12 {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self].Feature = feature
	b.nodes[self].Threshold = threshold
	b.nodes[self].Left = l
	b.nodes[self].Right = r
	return self
}

func (b *builder) moments(idx []int) (sum, sq float64) {
	for _, i := range idx {
		v := b.y[i]
		sum += v
		sq += v * v
	}
	return sum, sq
}

// bestSplit sweeps each candidate feature in sorted order and returns the
// split with the lowest summed squared error of both children.
func (b *builder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	width := len(b.x[idx[0]])
	candidates := b.rng.Perm(width)
	if m := b.params.maxFeatures; m > 0 && m < width {
		candidates = candidates[:m]
	}

	total, totalSq := b.moments(idx)
	n := len(idx)
	best := totalSq - total*total/float64(n)
	minLeaf := b.params.minSamplesLeaf

	order := make([]int, n)
	for _, f := range candidates {
		copy(order, idx)
		sort.SliceStable(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		var lSum, lSq float64
		for k := 0; k < n-1; k++ {
			v := b.y[order[k]]
			lSum += v
			lSq += v * v

			cur, next := b.x[order[k]][f], b.x[order[k+1]][f]
			if cur == next {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			rSum, rSq := total-lSum, totalSq-lSq
			sse := (lSq - lSum*lSum/float64(nl)) + (rSq - rSum*rSum/float64(nr))
			if sse < best-1e-12 {
				best = sse
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
