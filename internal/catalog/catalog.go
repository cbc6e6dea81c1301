// Package catalog describes the synthesizer models the remote service can
// train, with client-side validation of their tunable parameters.
package catalog

import (
	"fmt"
	"sort"
)

// ParamRange bounds one integer tuning parameter.
type ParamRange struct {
	Min     int
	Max     int
	Default int
}

// Model describes one synthesizer available on the service.
type Model struct {
	Name        string
	Label       string
	Description string
	Epochs      ParamRange
	BatchSize   ParamRange
}

var registry = map[string]Model{
	"ctgan": {
		Name:        "ctgan",
		Label:       "CTGAN",
		Description: "Conditional tabular GAN. Good all-round choice for mixed-type tables.",
		Epochs:      ParamRange{Min: 1, Max: 1000, Default: 300},
		BatchSize:   ParamRange{Min: 10, Max: 5000, Default: 500},
	},
	"tvae": {
		Name:        "tvae",
		Label:       "TVAE",
		Description: "Tabular variational autoencoder. Faster than CTGAN, smoother marginals.",
		Epochs:      ParamRange{Min: 1, Max: 1000, Default: 300},
		BatchSize:   ParamRange{Min: 10, Max: 5000, Default: 500},
	},
	"gaussian-copula": {
		Name:        "gaussian-copula",
		Label:       "Gaussian Copula",
		Description: "Statistical copula model. No training epochs, near-instant fitting.",
		Epochs:      ParamRange{Min: 1, Max: 1, Default: 1},
		BatchSize:   ParamRange{Min: 10, Max: 5000, Default: 500},
	},
	"copula-gan": {
		Name:        "copula-gan",
		Label:       "Copula GAN",
		Description: "CTGAN variant with copula-transformed inputs for skewed numeric columns.",
		Epochs:      ParamRange{Min: 1, Max: 1000, Default: 300},
		BatchSize:   ParamRange{Min: 10, Max: 5000, Default: 500},
	},
}

// Lookup returns the model with the given name.
func Lookup(name string) (Model, bool) {
	m, ok := registry[name]
	return m, ok
}

// Names returns all model names in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all models in stable name order.
func All() []Model {
	names := Names()
	out := make([]Model, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name])
	}
	return out
}

// ValidateParams checks model name, epochs and batch size against the
// catalog. Zero values select the model defaults and pass.
func ValidateParams(name string, epochs, batchSize int) error {
	m, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown model %q, available: %v", name, Names())
	}
	if epochs != 0 && (epochs < m.Epochs.Min || epochs > m.Epochs.Max) {
		return fmt.Errorf("epochs %d out of range [%d, %d] for model %s",
			epochs, m.Epochs.Min, m.Epochs.Max, name)
	}
	if batchSize != 0 && (batchSize < m.BatchSize.Min || batchSize > m.BatchSize.Max) {
		return fmt.Errorf("batch size %d out of range [%d, %d] for model %s",
			batchSize, m.BatchSize.Min, m.BatchSize.Max, name)
	}
	return nil
}
