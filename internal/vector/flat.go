// Package vector provides the flat vector index, the positional chunk map,
// and the paired store that keeps the two consistent.
package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Sentinel is returned in a position slot when the index holds fewer vectors
// than requested. The paired distance is undefined and must be ignored.
const Sentinel = -1

// FlatIndex is an append-only, brute-force vector index over squared
// Euclidean (L2) distance. Lower distance = more similar. No normalization is
// applied: callers wanting cosine similarity must normalize before Add.
// Position i in the index corresponds to position i in the chunk enumeration
// used to build it.
type FlatIndex struct {
	dimensions int
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewFlatIndex creates an empty index with the given dimension.
func NewFlatIndex(dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &FlatIndex{dimensions: dimensions}, nil
}

// Add appends vectors in order. Positions are assigned sequentially.
func (x *FlatIndex) Add(vectors [][]float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, v := range vectors {
		if len(v) != x.dimensions {
			return fmt.Errorf("vector %d dimension mismatch: got %d, expected %d", i, len(v), x.dimensions)
		}
		vec := make([]float32, x.dimensions)
		copy(vec, v)
		x.vectors = append(x.vectors, vec)
	}
	return nil
}

// Search returns the k nearest positions by squared L2 distance, ascending.
// Ties keep insertion order. When the index holds fewer than k vectors the
// missing slots hold position Sentinel; callers must skip them. Always
// returns slices of length k (for k > 0).
func (x *FlatIndex) Search(query []float32, k int) (distances []float64, positions []int, err error) {
	if len(query) != x.dimensions {
		return nil, nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), x.dimensions)
	}
	if k <= 0 {
		return nil, nil, fmt.Errorf("k must be positive, got %d", k)
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	order := make([]int, len(x.vectors))
	dists := make([]float64, len(x.vectors))
	for i, vec := range x.vectors {
		var sum float64
		for j := 0; j < x.dimensions; j++ {
			d := float64(query[j] - vec[j])
			sum += d * d
		}
		order[i] = i
		dists[i] = sum
	}
	sort.SliceStable(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })

	distances = make([]float64, k)
	positions = make([]int, k)
	for i := 0; i < k; i++ {
		if i < len(order) {
			positions[i] = order[i]
			distances[i] = dists[order[i]]
		} else {
			positions[i] = Sentinel
		}
	}
	return distances, positions, nil
}

// Size returns the number of vectors in the index.
func (x *FlatIndex) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimensions returns the vector dimension.
func (x *FlatIndex) Dimensions() int {
	return x.dimensions
}

// Save persists the index to path. Directory is created if needed.
// Format: dimensions (4), n (4), then n vectors of dimensions*4 bytes,
// little-endian float32.
func (x *FlatIndex) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()
	if err := binary.Write(f, binary.LittleEndian, uint32(x.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(x.vectors))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, vec := range x.vectors {
		if _, err := f.Write(float32SliceToBytes(vec)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadFlatIndex reads an index written by Save. A missing file is an error:
// the caller decides whether an absent store is tolerable.
func LoadFlatIndex(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	x, err := NewFlatIndex(int(dim))
	if err != nil {
		return nil, err
	}
	buf := make([]byte, int(dim)*4)
	x.vectors = make([][]float32, 0, n)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		x.vectors = append(x.vectors, bytesToFloat32Slice(buf))
	}
	return x, nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
