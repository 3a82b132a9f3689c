package rearcoded_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
	"github.com/calvinalkan/succinct/pkg/rearcoded"
)

func Test_RearCodedList_Save_Load_Roundtrip(t *testing.T) {
	t.Parallel()

	strs := []string{"absolute", "absolutely", "absorption", "abstract", "abstraction", "abstruse"}
	b := rearcoded.NewBuilder(2)
	b.Extend(strs)
	rc := b.Build()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "rcl.sxf")
	require.NoError(t, rc.Save(real, path))

	got, err := rearcoded.Load(real, path)
	require.NoError(t, err)
	require.Equal(t, rc.Len(), got.Len())
	for i, want := range strs {
		assert.Equal(t, want, got.Get(i), "index %d", i)
	}
	for _, want := range strs {
		assert.True(t, got.Contains(want), "Contains(%q)", want)
	}
	assert.False(t, got.Contains("zzz-not-present"))
	assert.Equal(t, rc.Stats(), got.Stats())
}

func Test_RearCodedList_Save_Load_Roundtrip_Empty(t *testing.T) {
	t.Parallel()

	b := rearcoded.NewBuilder(4)
	rc := b.Build()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "empty.sxf")
	require.NoError(t, rc.Save(real, path))

	got, err := rearcoded.Load(real, path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.False(t, got.Contains("anything"))
}

func Test_RearCodedList_Load_Rejects_Wrong_Kind(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "wrong-kind.sxf")
	require.NoError(t, persist.Save(real, path, persist.Header{Kind: persist.KindEliasFano}, []byte("xyz")))

	_, err := rearcoded.Load(real, path)
	assert.ErrorIs(t, err, persist.ErrIncompatible)
}
