package persist_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
)

func Test_Save_Load_Roundtrip(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "image.sxf")

	h := persist.Header{
		Kind:    persist.KindBitVec,
		N:       1000,
		NumOnes: 42,
	}
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}

	require.NoError(t, persist.Save(real, path, h, payload))

	gotHeader, gotPayload, err := persist.Load(real, path)
	require.NoError(t, err)
	assert.Equal(t, persist.KindBitVec, gotHeader.Kind)
	assert.Equal(t, uint64(1000), gotHeader.N)
	assert.Equal(t, uint64(42), gotHeader.NumOnes)
	assert.Equal(t, uint64(len(payload)), gotHeader.PayloadLen)
	assert.Equal(t, payload, gotPayload)
}

func Test_Load_Rejects_Short_File(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "short.sxf")
	require.NoError(t, real.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, _, err := persist.Load(real, path)
	assert.ErrorIs(t, err, persist.ErrShortRead)
}

func Test_Load_Rejects_Corrupted_Header_CRC(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "image.sxf")
	require.NoError(t, persist.Save(real, path, persist.Header{Kind: persist.KindCompactArray}, []byte("hello")))

	data, err := real.ReadFile(path)
	require.NoError(t, err)
	data[10] ^= 0xFF // flip a byte inside the header, before the CRC field
	require.NoError(t, real.WriteFile(path, data, 0o644))

	_, _, err = persist.Load(real, path)
	assert.ErrorIs(t, err, persist.ErrCorrupt)
}

func Test_Load_Rejects_Truncated_Payload(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "image.sxf")
	require.NoError(t, persist.Save(real, path, persist.Header{Kind: persist.KindEliasFano}, []byte("0123456789")))

	data, err := real.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, real.WriteFile(path, data[:len(data)-3], 0o644))

	_, _, err = persist.Load(real, path)
	assert.ErrorIs(t, err, persist.ErrCorrupt)
}

func Test_Load_Rejects_Wrong_Magic(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	path := filepath.Join(t.TempDir(), "not-an-image.sxf")
	require.NoError(t, real.WriteFile(path, make([]byte, persist.HeaderSize+8), 0o644))

	_, _, err := persist.Load(real, path)
	assert.ErrorIs(t, err, persist.ErrIncompatible)
}

func Test_Save_Survives_Simulated_Crash_Before_Sync(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	crash, err := fs.NewCrash(t, real, &fs.CrashConfig{})
	require.NoError(t, err)

	path := "image.sxf"
	h := persist.Header{Kind: persist.KindRearCodedList, N: 7}
	require.NoError(t, persist.Save(crash, path, h, []byte("durable-payload")))

	require.NoError(t, crash.SimulateCrash())

	gotHeader, gotPayload, err := persist.Load(crash, path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), gotHeader.N)
	assert.Equal(t, []byte("durable-payload"), gotPayload)
}

func Test_Save_Reports_Error_From_Chaos_Write_Failures(t *testing.T) {
	t.Parallel()

	real := fs.NewReal()
	chaos := fs.NewChaos(real, 1, &fs.ChaosConfig{WriteFailRate: 1})

	path := filepath.Join(t.TempDir(), "image.sxf")
	err := persist.Save(chaos, path, persist.Header{Kind: persist.KindBitVec}, []byte("x"))
	assert.Error(t, err)
}
