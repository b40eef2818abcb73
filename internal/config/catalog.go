package config

import (
	"fmt"
	"os"

	"trivia-quiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadCatalog reads a YAML question catalog from path and validates it.
// File order defines presentation order.
func LoadCatalog(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, err
	}

	var catalog domain.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}
