package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ChunkMap maps index position -> chunk file path, positionally. Written as a
// JSON array; a string-keyed object ({"0": "path", ...}) is accepted on load
// as a compatibility fallback.
type ChunkMap []string

// Save writes the map as a JSON array at path.
func (m ChunkMap) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chunk map dir: %w", err)
	}
	data, err := json.Marshal([]string(m))
	if err != nil {
		return fmt.Errorf("marshal chunk map: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write chunk map: %w", err)
	}
	return nil
}

// LoadChunkMap reads a chunk map from path, accepting either the array form
// or the string-keyed object form. Object keys must be contiguous integers
// starting at 0.
func LoadChunkMap(path string) (ChunkMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk map: %w", err)
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		return ChunkMap(arr), nil
	}

	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse chunk map %s: %w", path, err)
	}
	out := make(ChunkMap, len(obj))
	for k, v := range obj {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(obj) {
			return nil, fmt.Errorf("chunk map %s: non-positional key %q", path, k)
		}
		out[i] = v
	}
	return out, nil
}
