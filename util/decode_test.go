package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	EntityID string        `mapstructure:"entity_id"`
	Interval time.Duration `mapstructure:"interval"`
	Updated  time.Time     `mapstructure:"updated"`
	Count    int           `mapstructure:"count"`
}

func TestDecode(t *testing.T) {
	in := map[string]any{
		"entity_id": "sensor.a",
		"interval":  "30s",
		"updated":   "2024-03-01T12:00:00Z",
		"count":     "3",
	}

	var res decodeTarget
	require.NoError(t, DecodeOther(in, &res))

	assert.Equal(t, "sensor.a", res.EntityID)
	assert.Equal(t, 30*time.Second, res.Interval)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), res.Updated)
	assert.Equal(t, 3, res.Count)
}

func TestDecodeZeroTime(t *testing.T) {
	var res decodeTarget
	require.NoError(t, DecodeOther(map[string]any{"updated": ""}, &res))
	assert.True(t, res.Updated.IsZero())
}

func TestDecodeUnused(t *testing.T) {
	in := map[string]any{"entity_id": "sensor.a", "context": "c1"}

	var res decodeTarget
	assert.Error(t, DecodeOther(in, &res))

	require.NoError(t, DecodeLenient(in, &res))
	assert.Equal(t, "sensor.a", res.EntityID)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.1", FormatFloat(0.1))
	assert.Equal(t, "12.000333333333334", FormatFloat(12.000333333333334))
}
