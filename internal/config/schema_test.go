package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	out, err := Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	require.Equal(t, "HolderIndexor configuration", doc["title"])

	s := string(out)
	require.Contains(t, s, `"collections"`)
	require.Contains(t, s, `"reward_strategy"`)
	require.Contains(t, s, `"refresh_interval"`)
	require.Contains(t, s, "Duration expressed in units")
}
