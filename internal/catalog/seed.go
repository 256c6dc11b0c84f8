package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedFile struct {
	Products []Product `yaml:"products"`
}

// seedProducts parses the embedded starter catalog. The file ships with the
// binary so a fresh store always has something to sell.
func seedProducts() ([]Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse seed: %w", err)
	}
	return f.Products, nil
}
