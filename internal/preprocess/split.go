package preprocess

import (
	"math"
	"math/rand"

	"agriprep/internal/dataset"
	"agriprep/internal/errors"
)

// SplitOptions configures a train/test split
type SplitOptions struct {
	TestSize float64
	Seed     int64
	Shuffle  bool
}

// DefaultSplitOptions holds an 80/20 shuffled split with a fixed seed
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{
		TestSize: 0.2,
		Seed:     42,
		Shuffle:  true,
	}
}

// SplitTrainTest partitions a table's rows into train and test tables.
// The test set receives ceil(rows*TestSize) rows, chosen by a seeded
// shuffle (or the table's tail when Shuffle is off). Both outputs keep
// the source's relative row order and share its column structure; the
// same seed always produces the same split.
func SplitTrainTest(t *dataset.Table, opts SplitOptions) (*dataset.Table, *dataset.Table, error) {
	rows := t.NumRows()
	if rows == 0 {
		return nil, nil, errors.NewValidationError("cannot split an empty table")
	}
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return nil, nil, errors.NewValidationError("test_size must be between 0 and 1 exclusive").
			WithContext("test_size", opts.TestSize)
	}

	testRows := int(math.Ceil(opts.TestSize * float64(rows)))
	if testRows >= rows {
		return nil, nil, errors.NewValidationError("test_size leaves no training rows").
			WithContext("rows", rows).
			WithContext("test_rows", testRows)
	}

	testMask := make([]bool, rows)
	if opts.Shuffle {
		indices := make([]int, rows)
		for i := range indices {
			indices[i] = i
		}
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(rows, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for _, idx := range indices[:testRows] {
			testMask[idx] = true
		}
	} else {
		for i := rows - testRows; i < rows; i++ {
			testMask[i] = true
		}
	}

	trainKeep := make([]bool, rows)
	testKeep := make([]bool, rows)
	for i, isTest := range testMask {
		trainKeep[i] = !isTest
		testKeep[i] = isTest
	}

	train := t.Clone()
	if err := train.FilterRows(trainKeep); err != nil {
		return nil, nil, err
	}
	test := t.Clone()
	if err := test.FilterRows(testKeep); err != nil {
		return nil, nil, err
	}

	return train, test, nil
}
