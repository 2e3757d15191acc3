package vector

import (
	"errors"
	"fmt"
	"os"
)

// ErrInconsistentStore marks a vector store whose index and chunk map do not
// describe the same corpus: differing lengths, or a map entry referencing a
// missing chunk file. This is fatal for the retrieval subsystem; truncating
// or guessing would silently return wrong provenance.
var ErrInconsistentStore = errors.New("inconsistent vector store")

// Store pairs the flat index with its positional chunk map. The two are
// persisted and loaded as one unit; a Store is immutable once built.
type Store struct {
	index    *FlatIndex
	chunkMap ChunkMap
	// ordinals[i] = how many positions before i map to the same chunk file.
	// Build order is sorted chunk filenames then emission order, so the
	// ordinal is the chunk's element index within its file.
	ordinals []int
}

// NewStore validates that index and chunk map have equal length and builds
// the position ordinals.
func NewStore(index *FlatIndex, chunkMap ChunkMap) (*Store, error) {
	if index.Size() != len(chunkMap) {
		return nil, fmt.Errorf("%w: index has %d vectors, chunk map has %d entries",
			ErrInconsistentStore, index.Size(), len(chunkMap))
	}
	counts := make(map[string]int, len(chunkMap))
	ordinals := make([]int, len(chunkMap))
	for i, path := range chunkMap {
		ordinals[i] = counts[path]
		counts[path]++
	}
	return &Store{index: index, chunkMap: chunkMap, ordinals: ordinals}, nil
}

// LoadStore loads the index/map pair from disk. Loading one without the
// matching other, a length mismatch, or a map entry whose chunk file is
// missing all surface as ErrInconsistentStore.
func LoadStore(indexPath, chunkMapPath string) (*Store, error) {
	index, indexErr := LoadFlatIndex(indexPath)
	chunkMap, mapErr := LoadChunkMap(chunkMapPath)
	if (indexErr == nil) != (mapErr == nil) {
		return nil, fmt.Errorf("%w: index and chunk map must load together (index: %v, map: %v)",
			ErrInconsistentStore, indexErr, mapErr)
	}
	if indexErr != nil {
		return nil, indexErr
	}

	store, err := NewStore(index, chunkMap)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(chunkMap))
	for _, path := range chunkMap {
		if seen[path] {
			continue
		}
		seen[path] = true
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: chunk map references missing file %s", ErrInconsistentStore, path)
		}
	}
	return store, nil
}

// Save persists the index and chunk map together.
func (s *Store) Save(indexPath, chunkMapPath string) error {
	if err := s.index.Save(indexPath); err != nil {
		return err
	}
	return s.chunkMap.Save(chunkMapPath)
}

// Search runs a nearest-neighbor query over the paired index.
func (s *Store) Search(query []float32, k int) (distances []float64, positions []int, err error) {
	return s.index.Search(query, k)
}

// Resolve returns the chunk file path and the chunk's element index within
// that file for an index position.
func (s *Store) Resolve(position int) (path string, ordinal int, err error) {
	if position < 0 || position >= len(s.chunkMap) {
		return "", 0, fmt.Errorf("position %d out of range [0, %d)", position, len(s.chunkMap))
	}
	return s.chunkMap[position], s.ordinals[position], nil
}

// Size returns the number of indexed vectors.
func (s *Store) Size() int {
	return s.index.Size()
}

// Dimensions returns the embedding dimension of the index.
func (s *Store) Dimensions() int {
	return s.index.Dimensions()
}
