package heap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, HeapStart, DefaultConfig.Start)
	assert.Equal(t, uint64(0x_6767_6767_0000), uint64(DefaultConfig.Start))
	assert.Equal(t, uint64(102400), DefaultConfig.Size)
	assert.Equal(t, FixedBlock, DefaultConfig.Strategy)
	assert.Equal(t, HeapStart+102400, DefaultConfig.End())
	require.NoError(t, DefaultConfig.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero size", Config{Start: HeapStart}},
		{"null start", Config{Start: 0, Size: 4096}},
		{"unaligned start", Config{Start: HeapStart + 3, Size: 4096}},
		{"overflow", Config{Start: ^HeapStart &^ 7, Size: 1 << 62}},
		{"unknown strategy", Config{Start: HeapStart, Size: 4096, Strategy: Strategy(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies() {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseStrategy(" Linked-List ")
	require.NoError(t, err)
	assert.Equal(t, LinkedList, got)

	_, err = ParseStrategy("buddy")
	require.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Contains(t, err.Error(), "fixed-block, bump, linked-list, dummy")

	assert.Equal(t, "Strategy(9)", Strategy(9).String())
}

func TestStrategyFlagValue(t *testing.T) {
	var s Strategy
	require.NoError(t, s.Set("bump"))
	assert.Equal(t, Bump, s)
	assert.Equal(t, "strategy", s.Type())

	require.Error(t, s.Set("nope"))
	assert.Equal(t, Bump, s, "failed Set leaves the value alone")
}

func TestStrategyJSON(t *testing.T) {
	b, err := json.Marshal(Stats{Strategy: LinkedList})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Strategy":"linked-list"`)

	var st Stats
	require.NoError(t, json.Unmarshal([]byte(`{"Strategy":"bump"}`), &st))
	assert.Equal(t, Bump, st.Strategy)

	_, err = json.Marshal(Strategy(-1))
	assert.Error(t, err)
}
