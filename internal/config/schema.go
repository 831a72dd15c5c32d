package config

import (
	"encoding/json"
	"fmt"

	pkgconfig "github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag: "json",
	}

	s := r.Reflect(&pkgconfig.Config{})
	s.Title = "HolderIndexor configuration"

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config schema: %w", err)
	}
	return out, nil
}
