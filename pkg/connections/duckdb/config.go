package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific configuration, decoded from
// ConnectionConfig.Params.
type Params struct {
	// Extensions to install once and load on every session (e.g. "json").
	Extensions []string `mapstructure:"extensions"`

	// Settings applied with SET on every session (e.g. memory_limit, threads).
	Settings map[string]string `mapstructure:"settings"`
}

// ParseParams decodes raw driver params. Scalar settings are converted to
// strings; unknown keys are an error.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid duckdb params: %w", err)
	}
	return p, nil
}
