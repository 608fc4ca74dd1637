package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestIteratorOptions_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       IteratorOptions
		expected IteratorOptions
	}{
		{
			name:     "forward",
			in:       IteratorOptions{Start: []byte("a"), End: []byte("c")},
			expected: IteratorOptions{Gte: []byte("a"), Lte: []byte("c")},
		},
		{
			name:     "reverse swaps",
			in:       IteratorOptions{Start: []byte("c"), End: []byte("a"), Reverse: true},
			expected: IteratorOptions{Gte: []byte("a"), Lte: []byte("c"), Reverse: true},
		},
		{
			name:     "explicit bounds win",
			in:       IteratorOptions{Start: []byte("a"), End: []byte("c"), Gte: []byte("b"), Lte: []byte("bb")},
			expected: IteratorOptions{Gte: []byte("b"), Lte: []byte("bb")},
		},
		{
			name:     "only start",
			in:       IteratorOptions{Start: []byte("a"), Lt: []byte("z")},
			expected: IteratorOptions{Gte: []byte("a"), Lt: []byte("z")},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.in.Normalize())
		})
	}
}

func TestIteratorOptions_Validate(t *testing.T) {
	assert.NoError(t, IteratorOptions{Gt: []byte("a"), Lte: []byte("b")}.Validate())
	assert.NoError(t, IteratorOptions{Gt: []byte("a"), Gte: []byte{}}.Validate())

	err := IteratorOptions{Gt: []byte("a"), Gte: []byte("a")}.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorContains(t, err, "gt can not be provided with gte")

	err = IteratorOptions{Lt: []byte("a"), Lte: []byte("a")}.Validate()
	assert.ErrorContains(t, err, "lt can not be provided with lte")

	// a start folded into gte still conflicts with gt
	err = IteratorOptions{Gt: []byte("a"), Start: []byte("a")}.Normalize().Validate()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReadOptions_Kind(t *testing.T) {
	assert.Equal(t, KindText, ReadOptions{}.Kind(false))
	assert.Equal(t, KindBytes, ReadOptions{}.Kind(true))
	assert.Equal(t, KindBytes, ReadOptions{AsBuffer: true}.Kind(false))
	assert.Equal(t, KindText, ReadOptions{As: As(KindText)}.Kind(true))
	assert.Equal(t, KindNumber, ReadOptions{As: As(KindNumber)}.Kind(false))
}

func TestOptions(t *testing.T) {
	var o Options
	assert.True(t, o.ShouldCreate())
	assert.Equal(t, DefaultMapSize, o.EffectiveMapSize())

	o = Options{CreateIfMissing: Bool(false), MapSize: 1 << 20}
	assert.False(t, o.ShouldCreate())
	assert.Equal(t, int64(1<<20), o.EffectiveMapSize())
}

func TestOptions_YAML(t *testing.T) {
	var o Options
	err := yaml.Unmarshal([]byte("map_size: 4096\ndbi_name: data\ncreate_if_missing: false\nsentinel: scoped\n"), &o)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), o.MapSize)
	assert.Equal(t, "data", o.DBIName)
	assert.False(t, o.ShouldCreate())
	assert.Equal(t, SentinelScoped, o.Sentinel)

	err = yaml.Unmarshal([]byte("sentinel: global\n"), &o)
	assert.ErrorIs(t, err, ErrValidation)
}
