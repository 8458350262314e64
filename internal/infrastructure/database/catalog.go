package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogEntry is one service in the seed catalog file
type CatalogEntry struct {
	Name        string  `yaml:"name"`
	Percentage  float64 `yaml:"percentage"`
	Description string  `yaml:"description"`
}

type catalogFile struct {
	Services []CatalogEntry `yaml:"services"`
}

// LoadCatalog reads the seed catalog. A missing file yields an empty catalog.
func LoadCatalog(path string) ([]CatalogEntry, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Services))
	for i, svc := range file.Services {
		name := strings.TrimSpace(svc.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog %s: service #%d has no name", path, i+1)
		}
		if svc.Percentage < 0 || svc.Percentage > 100 {
			return nil, fmt.Errorf("catalog %s: %q percentage %v outside 0..100", path, name, svc.Percentage)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("catalog %s: duplicate service %q", path, name)
		}
		seen[key] = true
		file.Services[i].Name = name
	}
	return file.Services, nil
}
