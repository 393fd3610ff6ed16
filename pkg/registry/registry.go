// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"lead-qualifier/internal/models"
)

// SeedVersion is written by Export when the caller does not name one.
const SeedVersion = "1.0"

// LoadSeed reads and checks a fund catalog seed file.
func LoadSeed(path string) (*models.CatalogSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed validates data against the seed schema and decodes it. Duplicate
// fund ids are rejected.
func ParseSeed(data []byte) (*models.CatalogSeed, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	result, err := seedSchema.Validate(doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid seed: %s", strings.Join(result.GetErrorMessages(), "; "))
	}

	var seed models.CatalogSeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	seen := make(map[string]struct{}, len(seed.Fundos))
	for _, f := range seed.Fundos {
		if _, dup := seen[f.ID]; dup {
			return nil, fmt.Errorf("invalid seed: duplicate fund id %q", f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return &seed, nil
}

// Export writes funds as a seed file ordered by id and stamped with the
// current time.
func Export(path, versao string, funds []models.Fund) error {
	if versao == "" {
		versao = SeedVersion
	}
	out := make([]models.Fund, len(funds))
	copy(out, funds)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	data, err := json.MarshalIndent(models.CatalogSeed{
		Versao:            versao,
		UltimaAtualizacao: time.Now().UTC().Format(time.RFC3339),
		Fundos:            out,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
