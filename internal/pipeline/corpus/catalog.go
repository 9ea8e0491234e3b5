package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
)

// ErrCatalogCorrupt marks a catalog whose ids are not unique and
// contiguous from 0. It is a fatal configuration error, not something
// to work around at query time.
var ErrCatalogCorrupt = errors.New("catalog ids are not contiguous from 0")

// SaveCatalog persists the catalog as a single ordered JSON file, the
// sole durable artifact between the offline pipeline and the service.
func SaveCatalog(path string, catalog []chunkmodel.EnrichedChunk) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

func LoadCatalog(path string) ([]chunkmodel.EnrichedChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var catalog []chunkmodel.EnrichedChunk
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := VerifyCatalog(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// VerifyCatalog checks the id invariant: unique and contiguous from 0
// in catalog order.
func VerifyCatalog(catalog []chunkmodel.EnrichedChunk) error {
	for i, chunk := range catalog {
		if chunk.Id != i {
			return fmt.Errorf("%w: position %d holds id %d", ErrCatalogCorrupt, i, chunk.Id)
		}
	}
	return nil
}
