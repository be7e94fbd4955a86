package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadOverrides reads a YAML file of intervention type definitions and merges
// them into the catalog. Entries with a known key replace the built-in type;
// new keys extend the catalog. Weight maps are validated to sum to roughly 1.
func (c *Catalog) LoadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "catalog: read overrides %s", path)
	}

	var wrapper struct {
		Types []Type `yaml:"types"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return eris.Wrap(err, "catalog: parse overrides")
	}

	for _, t := range wrapper.Types {
		if t.Key == "" {
			return eris.New("catalog: override entry missing key")
		}
		if err := validateWeights(t); err != nil {
			return err
		}
		c.add(t)
	}

	zap.L().Info("loaded catalog overrides",
		zap.String("path", path),
		zap.Int("entries", len(wrapper.Types)),
		zap.Int("catalog_size", c.Len()),
	)
	return nil
}

// validateWeights checks that a type's weight map sums to approximately 1.
func validateWeights(t Type) error {
	if len(t.Weights) == 0 {
		return eris.Errorf("catalog: type %s has no factor weights", t.Key)
	}
	var sum float64
	for _, w := range t.Weights {
		if w < 0 {
			return eris.Errorf("catalog: type %s has negative factor weight", t.Key)
		}
		sum += w
	}
	if sum < 0.95 || sum > 1.05 {
		return eris.Errorf("catalog: type %s weights sum to %.3f, expected ~1.0", t.Key, sum)
	}
	return nil
}
