// sxbench benchmarks the succinct index structures against synthetic
// inputs: a monotone sequence for EliasFano, a sorted string corpus for
// RearCodedList, or a bit vector of a chosen density for BitVec/Rank9/
// SimpleSelectConst.
//
// Usage:
//
//	sxbench -kind elias-fano -n 1000000 -universe 1000000000
//	sxbench -kind rear-coded -n 200000
//	sxbench -kind bitvec -n 10000000 -density 0.1
//	sxbench -config bench.hujson -out results.json
package main

import (
	"encoding/json"
	"fmt"
	mrand "math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/succinct/pkg/bitvec"
	"github.com/calvinalkan/succinct/pkg/eliasfano"
	"github.com/calvinalkan/succinct/pkg/ranksel"
	"github.com/calvinalkan/succinct/pkg/rearcoded"
)

// config describes one benchmark run. defaultConfig returns the "bitvec,
// 1e6 bits, density 0.5" default; every field may be overridden by a
// hujson config file, and every field but RCLK then again by CLI flags,
// in that order.
type config struct {
	Kind     string  `json:"kind"`
	N        int     `json:"n"`
	Universe int     `json:"universe,omitempty"`
	Density  float64 `json:"density,omitempty"`
	Seed     int64   `json:"seed,omitempty"`
	RCLK     int     `json:"rcl_block_size,omitempty"`
}

func defaultConfig() config {
	return config{Kind: "bitvec", N: 1_000_000, Density: 0.5, Seed: 1, RCLK: 16}
}

// result is one timed operation: Ops repetitions of Name, Elapsed total.
type result struct {
	Name    string        `json:"name"`
	Ops     int           `json:"ops"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

func (r result) String() string {
	perOp := float64(r.Elapsed) / float64(r.Ops)
	return fmt.Sprintf("%-24s %10d ops  %12s total  %8.1f ns/op", r.Name, r.Ops, r.Elapsed.Round(time.Microsecond), perOp)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sxbench: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("sxbench", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a hujson config file (JSON with comments)")
	out := fs.String("out", "", "path to write a JSON results summary (written atomically)")
	kind := fs.String("kind", cfg.Kind, "structure to benchmark: bitvec, elias-fano, rear-coded")
	n := fs.Int("n", cfg.N, "number of elements")
	universe := fs.Int("universe", 0, "universe size for elias-fano (default: 64*n)")
	density := fs.Float64("density", cfg.Density, "fraction of set bits for bitvec")
	seed := fs.Int64("seed", cfg.Seed, "PRNG seed for synthetic input generation")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if fs.Changed("kind") {
		cfg.Kind = *kind
	}
	if fs.Changed("n") {
		cfg.N = *n
	}
	if fs.Changed("universe") {
		cfg.Universe = *universe
	}
	if fs.Changed("density") {
		cfg.Density = *density
	}
	if fs.Changed("seed") {
		cfg.Seed = *seed
	}

	if cfg.N <= 0 {
		return fmt.Errorf("n must be positive, got %d", cfg.N)
	}

	var (
		results []result
		err     error
	)

	switch strings.ToLower(cfg.Kind) {
	case "bitvec":
		results, err = benchBitVec(cfg)
	case "elias-fano", "eliasfano", "ef":
		results, err = benchEliasFano(cfg)
	case "rear-coded", "rearcoded", "rcl":
		results, err = benchRearCoded(cfg)
	default:
		return fmt.Errorf("unknown -kind %q (want bitvec, elias-fano, or rear-coded)", cfg.Kind)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Println(r)
	}

	if *out != "" {
		return writeResults(*out, cfg, results)
	}

	return nil
}

// loadConfig reads a hujson (JSON-with-comments) config file and
// standardizes it to plain JSON before decoding.
func loadConfig(path string) (config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return config{}, err
	}

	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return config{}, fmt.Errorf("parsing hujson: %w", err)
	}

	cfg := defaultConfig()
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return config{}, fmt.Errorf("decoding config: %w", err)
	}

	return cfg, nil
}

// writeResults serializes cfg and results to path via an atomic
// write-temp-then-rename, so a concurrent reader never observes a
// partially written summary.
func writeResults(path string, cfg config, results []result) error {
	summary := struct {
		Config  config   `json:"config"`
		Results []result `json:"results"`
	}{Config: cfg, Results: results}

	buf, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	if err := atomic.WriteFile(path, strings.NewReader(string(buf))); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}

	return nil
}

func timeOp(name string, ops int, fn func()) result {
	start := time.Now()
	fn()
	return result{Name: name, Ops: ops, Elapsed: time.Since(start)}
}

func benchBitVec(cfg config) ([]result, error) {
	rng := mrand.New(mrand.NewSource(cfg.Seed))

	bv := bitvec.New(cfg.N)
	buildResult := timeOp("bitvec.Set (build)", cfg.N, func() {
		for i := 0; i < cfg.N; i++ {
			if rng.Float64() < cfg.Density {
				bv.Set(i, true)
			}
		}
	})

	var r9 *ranksel.Rank9
	rank9Build := timeOp("ranksel.NewRank9", 1, func() {
		r9 = ranksel.NewRank9(bv)
	})

	var sel *ranksel.SimpleSelectConst
	selectBuild := timeOp("ranksel.NewSimpleSelectConst", 1, func() {
		sel = ranksel.NewSimpleSelectConst(bv)
	})

	rankOps := cfg.N
	rankResult := timeOp("Rank9.Rank", rankOps, func() {
		for i := 0; i < rankOps; i++ {
			r9.Rank(i % (cfg.N + 1))
		}
	})

	numOnes := r9.NumOnes()
	selectOps := numOnes
	if selectOps == 0 {
		selectOps = 1
	}
	selectResult := timeOp("SimpleSelectConst.Select", selectOps, func() {
		for i := 0; i < selectOps; i++ {
			sel.Select(i % numOnes)
		}
	})

	return []result{buildResult, rank9Build, selectBuild, rankResult, selectResult}, nil
}

func benchEliasFano(cfg config) ([]result, error) {
	universe := cfg.Universe
	if universe <= 0 {
		universe = cfg.N * 64
	}

	values := monotoneSequence(cfg.N, universe, cfg.Seed)

	var built *eliasfano.Default
	buildResult := timeOp("eliasfano.Builder.Push+Build", cfg.N, func() {
		b := eliasfano.NewBuilder(cfg.N, universe)
		for _, v := range values {
			_ = b.Push(v)
		}
		built = b.Build()
	})

	getResult := timeOp("EliasFano.Get", cfg.N, func() {
		for i := 0; i < cfg.N; i++ {
			built.GetUnchecked(i)
		}
	})

	indexed := eliasfano.WithIndex(built)
	indexedGetResult := timeOp("EliasFano(QuantumIndex).Get", cfg.N, func() {
		for i := 0; i < cfg.N; i++ {
			indexed.GetUnchecked(i)
		}
	})

	estimate := eliasfano.EstimateBits(universe, cfg.N)
	fmt.Printf("estimated size: %d bits (%.2f bits/value)\n", estimate, float64(estimate)/float64(cfg.N))

	return []result{buildResult, getResult, indexedGetResult}, nil
}

func benchRearCoded(cfg config) ([]result, error) {
	strs := sortedStrings(cfg.N, cfg.Seed)

	k := cfg.RCLK
	if k <= 0 {
		k = 16
	}

	var built *rearcoded.RearCodedList
	buildResult := timeOp("rearcoded.Builder.Push+Build", cfg.N, func() {
		b := rearcoded.NewBuilder(k)
		b.Extend(strs)
		built = b.Build()
	})

	buf := make([]byte, 0, 64)
	getResult := timeOp("RearCodedList.GetInplace", cfg.N, func() {
		for i := 0; i < cfg.N; i++ {
			buf = built.GetInplace(i, buf[:0])
		}
	})

	containsOps := cfg.N
	containsResult := timeOp("RearCodedList.Contains", containsOps, func() {
		for i := 0; i < containsOps; i++ {
			built.Contains(strs[i])
		}
	})

	stats := built.Stats()
	fmt.Printf("stats: %+v\n", stats)

	return []result{buildResult, getResult, containsResult}, nil
}

// monotoneSequence generates n sorted values in [0, universe) by sorting
// n random draws, matching the non-decreasing precondition EliasFano's
// builder enforces.
func monotoneSequence(n, universe int, seed int64) []int {
	rng := mrand.New(mrand.NewSource(seed))
	values := make([]int, n)
	for i := range values {
		values[i] = rng.Intn(universe)
	}
	sort.Ints(values)
	return values
}

// sortedStrings generates n unique, lexicographically sorted hex
// strings from the given seed, matching RearCodedList's sorted-input
// precondition.
func sortedStrings(n int, seed int64) []string {
	rng := mrand.New(mrand.NewSource(seed))

	set := make(map[string]struct{}, n)
	for len(set) < n {
		raw := make([]byte, 10)
		_, _ = rng.Read(raw)
		set[fmt.Sprintf("%x", raw)] = struct{}{}
	}

	strs := make([]string, 0, n)
	for s := range set {
		strs = append(strs, s)
	}
	sort.Strings(strs)

	return strs
}
