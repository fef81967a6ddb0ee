package dataset

import (
	"math"
	"math/rand"
	"sort"
)

// HoldoutSplit permutes 0..n-1 with seed and returns sorted train and test
// indices. The test share is ratio of n rounded, kept within [1, n-1] when
// ratio > 0 and n > 1. A zero ratio returns every index as train.
func HoldoutSplit(n int, ratio float64, seed int64) (train, test []int) {
	if n <= 0 {
		return nil, nil
	}
	if ratio <= 0 || n < 2 {
		train = make([]int, n)
		for i := range train {
			train[i] = i
		}
		return train, nil
	}

	nTest := int(math.Round(float64(n) * ratio))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	sort.Ints(test)
	sort.Ints(train)
	return train, test
}
