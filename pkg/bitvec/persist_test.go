package bitvec_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/pkg/bitvec"
	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
)

func Test_BitVec_Save_Load_Roundtrip(t *testing.T) {
	t.Parallel()

	b := bitvec.New(200)
	for _, i := range []int{0, 1, 63, 64, 65, 127, 128, 199} {
		b.Set(i, true)
	}

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "bv.sxf")
	require.NoError(t, b.Save(real, path))

	got, err := bitvec.Load(real, path)
	require.NoError(t, err)
	require.Equal(t, b.Len(), got.Len())
	for i := 0; i < b.Len(); i++ {
		assert.Equal(t, b.Get(i), got.Get(i), "bit %d", i)
	}
	assert.Equal(t, b.CountOnes(), got.CountOnes())
}

func Test_BitVec_Save_Load_Roundtrip_Empty(t *testing.T) {
	t.Parallel()

	b := bitvec.New(0)
	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "empty.sxf")
	require.NoError(t, b.Save(real, path))

	got, err := bitvec.Load(real, path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, 0, got.WordsLen())
}

func Test_BitVec_Load_Rejects_Wrong_Kind(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "wrong-kind.sxf")
	require.NoError(t, persist.Save(real, path, persist.Header{Kind: persist.KindCompactArray}, []byte("xyz")))

	_, err := bitvec.Load(real, path)
	assert.ErrorIs(t, err, persist.ErrIncompatible)
}
