package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type scheduleSection struct {
	RefreshInterval Duration `json:"refresh_interval" yaml:"refresh_interval" toml:"refresh_interval"`
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "250ms", expected: 250 * time.Millisecond},
		{input: "30s", expected: 30 * time.Second},
		{input: "10m", expected: 10 * time.Minute},
		{input: "24h", expected: 24 * time.Hour},
		{input: "1h30m45s", expected: time.Hour + 30*time.Minute + 45*time.Second},
		{input: "0s"},
		{input: "7d", wantErr: true},
		{input: "soon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid duration")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDuration_ConfigFormats(t *testing.T) {
	tests := []struct {
		name      string
		unmarshal func([]byte, any) error
		input     string
	}{
		{name: "json", unmarshal: json.Unmarshal, input: `{"refresh_interval": "10m"}`},
		{name: "yaml", unmarshal: yaml.Unmarshal, input: "refresh_interval: 10m\n"},
		{name: "toml", unmarshal: toml.Unmarshal, input: "refresh_interval = \"10m\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var section scheduleSection
			require.NoError(t, tt.unmarshal([]byte(tt.input), &section))
			assert.Equal(t, 10*time.Minute, section.RefreshInterval.Duration)
		})
	}

	var section scheduleSection
	err := yaml.Unmarshal([]byte("refresh_interval: often\n"), &section)
	require.Error(t, err)
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	original := scheduleSection{RefreshInterval: NewDuration(90 * time.Second)}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"refresh_interval": "1m30s"}`, string(data))

	var decoded scheduleSection
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestDuration_JSONSchema(t *testing.T) {
	schema := Duration{}.JSONSchema()

	require.NotNil(t, schema)
	assert.Equal(t, "string", schema.Type)
	assert.Equal(t, "Duration", schema.Title)
	assert.Contains(t, schema.Examples, "10m")
}
