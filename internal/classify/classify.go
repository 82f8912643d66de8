// Package classify groups cell colors into a fixed number of clusters.
package classify

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"colorgrid/pkg/colorutil"

	"gocv.io/x/gocv"
)

// ErrClusteringFailure is returned when the samples cannot be split into K
// non-empty clusters.
var ErrClusteringFailure = errors.New("clustering failure")

// MinAttempts is the fewest k-means restarts Classify will run.
const MinAttempts = 10

// Options configures classification.
type Options struct {
	K        int // Number of clusters
	Attempts int // k-means restarts; the most compact result wins
	Seed     int // OpenCV RNG seed applied before every run
}

// DefaultOptions returns default classification options.
func DefaultOptions() Options {
	return Options{K: 8, Attempts: 20, Seed: 0}
}

// Result holds the clustering of a set of colors.
type Result struct {
	Labels      []int           // One label per input color, in input order
	Centroids   []colorutil.RGB // Cluster centers; Centroids[l] belongs to label l
	Counts      []int           // Members per label
	Compactness float64         // Sum of squared distances to the assigned centers
}

// Classify assigns each color one of K labels by k-means clustering.
//
// Labels are ordered by centroid: label 0 is the darkest cluster by mean
// channel intensity, ties broken by red, then green, then blue. With the
// same input and options the result is identical from run to run.
func Classify(colors []colorutil.RGB, opts Options) (*Result, error) {
	if opts.K < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", opts.K)
	}
	if len(colors) < opts.K {
		return nil, fmt.Errorf("%d samples for %d clusters: %w", len(colors), opts.K, ErrClusteringFailure)
	}
	if n := distinct(colors); n < opts.K {
		return nil, fmt.Errorf("%d distinct samples for %d clusters: %w", n, opts.K, ErrClusteringFailure)
	}

	attempts := max(opts.Attempts, MinAttempts)

	data := gocv.NewMatWithSize(len(colors), 3, gocv.MatTypeCV32F)
	defer data.Close()
	for i, c := range colors {
		data.SetFloatAt(i, 0, float32(c.R))
		data.SetFloatAt(i, 1, float32(c.G))
		data.SetFloatAt(i, 2, float32(c.B))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, 300, 1e-4)

	// OpenCV's default RNG is per thread.
	runtime.LockOSThread()
	gocv.SetRNGSeed(opts.Seed)
	compactness := gocv.KMeans(data, opts.K, &labels, criteria, attempts, gocv.KMeansPPCenters, &centers)
	runtime.UnlockOSThread()

	if math.IsNaN(compactness) || math.IsInf(compactness, 0) {
		return nil, fmt.Errorf("compactness %v: %w", compactness, ErrClusteringFailure)
	}
	if labels.Rows() != len(colors) || centers.Rows() != opts.K {
		return nil, fmt.Errorf("kmeans returned %d labels and %d centers: %w",
			labels.Rows(), centers.Rows(), ErrClusteringFailure)
	}

	raw := make([]int, len(colors))
	for i := range raw {
		raw[i] = int(labels.GetIntAt(i, 0))
	}
	centroids := make([]colorutil.RGB, opts.K)
	for k := range centroids {
		centroids[k] = colorutil.RGB{
			R: float64(centers.GetFloatAt(k, 0)),
			G: float64(centers.GetFloatAt(k, 1)),
			B: float64(centers.GetFloatAt(k, 2)),
		}
	}

	res, err := canonicalize(raw, centroids)
	if err != nil {
		return nil, err
	}
	res.Compactness = compactness
	return res, nil
}

// canonicalize relabels clusters so label order follows centroid order.
func canonicalize(raw []int, centroids []colorutil.RGB) (*Result, error) {
	k := len(centroids)

	counts := make([]int, k)
	for _, l := range raw {
		if l < 0 || l >= k {
			return nil, fmt.Errorf("label %d out of range: %w", l, ErrClusteringFailure)
		}
		counts[l]++
	}
	for l, n := range counts {
		if n == 0 {
			return nil, fmt.Errorf("cluster %d is empty: %w", l, ErrClusteringFailure)
		}
	}

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return centroids[order[i]].Less(centroids[order[j]])
	})

	remap := make([]int, k)
	res := &Result{
		Labels:    make([]int, len(raw)),
		Centroids: make([]colorutil.RGB, k),
		Counts:    make([]int, k),
	}
	for newLabel, old := range order {
		remap[old] = newLabel
		res.Centroids[newLabel] = centroids[old]
		res.Counts[newLabel] = counts[old]
	}
	for i, l := range raw {
		res.Labels[i] = remap[l]
	}
	return res, nil
}

// distinct counts colors that stay apart once converted to float32 for
// clustering.
func distinct(colors []colorutil.RGB) int {
	seen := make(map[[3]float32]struct{}, len(colors))
	for _, c := range colors {
		seen[[3]float32{float32(c.R), float32(c.G), float32(c.B)}] = struct{}{}
	}
	return len(seen)
}
