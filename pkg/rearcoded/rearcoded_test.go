package rearcoded_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/succinct/pkg/rearcoded"
)

func Test_Block_Decoding_Matches_Spec_Scenario(t *testing.T) {
	t.Parallel()

	b := rearcoded.NewBuilder(2)
	b.Extend([]string{"absolute", "absolutely", "absorption", "abstract"})
	rcl := b.Build()

	require.Equal(t, 4, rcl.Len())
	assert.Equal(t, "absolute", rcl.Get(0))
	assert.Equal(t, "absolutely", rcl.Get(1))
	assert.Equal(t, "absorption", rcl.Get(2))
	assert.Equal(t, "abstract", rcl.Get(3))
}

func Test_Get_Reproduces_Sorted_Input_For_Varying_Block_Sizes(t *testing.T) {
	t.Parallel()

	strs := []string{
		"apple", "application", "apply", "banana", "band", "bandana",
		"cat", "catalog", "category", "dog", "dogma", "door", "z",
	}
	sort.Strings(strs)

	for _, k := range []int{1, 2, 3, 4, 8, 100} {
		b := rearcoded.NewBuilder(k)
		b.Extend(strs)
		rcl := b.Build()

		require.Equal(t, len(strs), rcl.Len(), "k=%d", k)
		for i, want := range strs {
			assert.Equal(t, want, rcl.Get(i), "k=%d index=%d", k, i)
		}
	}
}

func Test_Contains_Finds_Every_Inserted_String(t *testing.T) {
	t.Parallel()

	strs := []string{
		"alpha", "alphabet", "alphabetical", "beta", "betray",
		"gamma", "gammas", "zebra", "zeta",
	}
	sort.Strings(strs)

	b := rearcoded.NewBuilder(3)
	b.Extend(strs)
	rcl := b.Build()

	for _, s := range strs {
		assert.True(t, rcl.Contains(s), "expected to contain %q", s)
	}
}

func Test_Contains_Rejects_Absent_Strings(t *testing.T) {
	t.Parallel()

	strs := []string{"alpha", "beta", "gamma", "zebra"}
	sort.Strings(strs)

	b := rearcoded.NewBuilder(2)
	b.Extend(strs)
	rcl := b.Build()

	for _, s := range []string{"aardvark", "alp", "betas", "delta", "zz"} {
		assert.False(t, rcl.Contains(s), "expected to not contain %q", s)
	}
}

func Test_Contains_Finds_Strings_Inside_First_Block_Not_Its_Head(t *testing.T) {
	t.Parallel()

	// k=4: the first block holds all four of these strings, but only
	// "absolute" is the block head. A binary-search miss landing before
	// block 0 must still fall through to a linear scan of block 0.
	strs := []string{"absolute", "absolutely", "absorption", "abstract"}
	b := rearcoded.NewBuilder(4)
	b.Extend(strs)
	rcl := b.Build()

	for _, s := range strs {
		assert.True(t, rcl.Contains(s), "expected block-0 member %q to be found", s)
	}
	assert.False(t, rcl.Contains("aaa"))
}

func Test_GetInplace_Reuses_Buffer_Across_Calls(t *testing.T) {
	t.Parallel()

	strs := []string{"short", "shorter", "shortest"}
	b := rearcoded.NewBuilder(2)
	b.Extend(strs)
	rcl := b.Build()

	var buf []byte
	for i, want := range strs {
		buf = rcl.GetInplace(i, buf)
		assert.Equal(t, want, string(buf), "index %d", i)
	}
}

func Test_Iter_Visits_Every_String_In_Order(t *testing.T) {
	t.Parallel()

	strs := []string{"a", "ab", "abc", "abcd", "b", "bc"}
	b := rearcoded.NewBuilder(2)
	b.Extend(strs)
	rcl := b.Build()

	var got []string
	rcl.Iter(func(index int, s string) bool {
		got = append(got, s)
		return true
	})
	if diff := cmp.Diff(strs, got); diff != "" {
		t.Fatalf("Iter() mismatch (-want +got):\n%s", diff)
	}
}

func Test_IterFrom_Skips_Leading_Entries(t *testing.T) {
	t.Parallel()

	strs := []string{"a", "ab", "abc", "abcd", "b", "bc"}
	b := rearcoded.NewBuilder(3)
	b.Extend(strs)
	rcl := b.Build()

	var got []string
	rcl.IterFrom(2, func(index int, s string) bool {
		got = append(got, s)
		return true
	})
	assert.Equal(t, strs[2:], got)
}

func Test_Iter_Stops_Early_When_Yield_Returns_False(t *testing.T) {
	t.Parallel()

	strs := []string{"a", "b", "c", "d", "e"}
	b := rearcoded.NewBuilder(2)
	b.Extend(strs)
	rcl := b.Build()

	visited := 0
	rcl.Iter(func(index int, s string) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func Test_Random_Sorted_Strings_Roundtrip_Get_And_Contains(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	const alphabet = "abcdefghij"
	strs := make([]string, 300)
	for i := range strs {
		n := rng.Intn(12) + 1
		buf := make([]byte, n)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		strs[i] = string(buf)
	}
	sort.Strings(strs)

	b := rearcoded.NewBuilder(7)
	b.Extend(strs)
	rcl := b.Build()

	require.Equal(t, len(strs), rcl.Len())
	for i, want := range strs {
		require.Equal(t, want, rcl.Get(i), "index %d", i)
	}
	for _, s := range strs {
		assert.True(t, rcl.Contains(s))
	}
	assert.False(t, rcl.Contains("zzzzzzzzzzzz"))
}

func Test_Stats_Tracks_Max_And_Sum_String_Length(t *testing.T) {
	t.Parallel()

	b := rearcoded.NewBuilder(2)
	b.Extend([]string{"a", "abc", "ab"})
	rcl := b.Build()

	stats := rcl.Stats()
	assert.Equal(t, 3, stats.MaxStrLen)
	assert.Equal(t, 6, stats.SumStrLen)
}
