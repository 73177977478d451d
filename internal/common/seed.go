package common

import (
	"fmt"
	"os"
	"path/filepath"

	"family-fund-go/internal/models"

	"gopkg.in/yaml.v2"
)

type CategoryConfig struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Color   string `yaml:"color"`
	Icon    string `yaml:"icon"`
	Default bool   `yaml:"default"`
}

type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// LoadCategoryConfig reads the category seed file used by cmd/setup.
func LoadCategoryConfig(categoriesFile string) ([]CategoryConfig, error) {
	var categoriesPath string
	if filepath.IsAbs(categoriesFile) {
		categoriesPath = categoriesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		categoriesPath = filepath.Join(wd, categoriesFile)
	}

	data, err := os.ReadFile(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", categoriesFile, err)
	}

	var config CategoriesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", categoriesFile, err)
	}

	for i, category := range config.Categories {
		if category.Name == "" {
			return nil, fmt.Errorf("category at index %d missing name", i)
		}
		switch models.TransactionType(category.Type) {
		case models.TypeIncome, models.TypeExpense:
		default:
			return nil, fmt.Errorf("category %q has invalid type %q", category.Name, category.Type)
		}
	}

	return config.Categories, nil
}
