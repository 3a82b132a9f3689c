// sxinspect opens a persisted succinct-index file and runs rank/select/
// get/contains queries against it interactively.
//
// Usage:
//
//	sxinspect <index-file>
//
// Commands (in REPL):
//
//	get <i>           Return the i-th element
//	rank <p>          (bitvec only) count of set bits before p
//	select <r>        (bitvec only) position of the r-th set bit
//	contains <s>      (rear-coded only) membership test
//	len               Number of elements
//	info              Structural parameters from the file header
//	help              Show this help
//	exit / quit / q   Exit
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/succinct/pkg/bitvec"
	"github.com/calvinalkan/succinct/pkg/compactarray"
	"github.com/calvinalkan/succinct/pkg/eliasfano"
	"github.com/calvinalkan/succinct/pkg/fs"
	"github.com/calvinalkan/succinct/pkg/persist"
	"github.com/calvinalkan/succinct/pkg/ranksel"
	"github.com/calvinalkan/succinct/pkg/rearcoded"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "sxinspect: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: sxinspect <index-file>")
	}

	path := args[0]

	real := fs.NewReal()

	h, _, err := persist.Load(real, path)
	if err != nil {
		return fmt.Errorf("reading header of %q: %w", path, err)
	}

	inspector, err := openInspector(real, path, h)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}

	repl := &REPL{inspector: inspector, path: path, header: h}

	return repl.Run()
}

// inspector is the narrow query surface the REPL needs, implemented
// once per persist.Kind.
type inspector interface {
	Len() int
	Get(i int) (string, error)
	Rank(pos int) (int, bool)
	Select(rank int) (int, bool)
	Contains(s string) (bool, bool)
	Describe() string
}

func openInspector(real fs.FS, path string, h persist.Header) (inspector, error) {
	switch h.Kind {
	case persist.KindBitVec:
		bv, err := bitvec.Load(real, path)
		if err != nil {
			return nil, err
		}
		return &bitvecInspector{bv: bv, rank9: ranksel.NewRank9(bv), sel: ranksel.NewSimpleSelectConst(bv)}, nil

	case persist.KindCompactArray:
		ca, err := compactarray.Load(real, path)
		if err != nil {
			return nil, err
		}
		return &compactArrayInspector{ca: ca}, nil

	case persist.KindEliasFano:
		ef, err := eliasfano.Load(real, path)
		if err != nil {
			return nil, err
		}
		return &eliasFanoInspector{ef: ef}, nil

	case persist.KindRearCodedList:
		rcl, err := rearcoded.Load(real, path)
		if err != nil {
			return nil, err
		}
		return &rearCodedInspector{rcl: rcl}, nil

	default:
		return nil, fmt.Errorf("unsupported kind %v", h.Kind)
	}
}

// errUnsupportedOp is printed by the REPL when an inspector method
// reports that the operation doesn't apply to the structure (e.g. rank
// on a RearCodedList).
var errUnsupportedOp = errors.New("not supported for this structure")

type bitvecInspector struct {
	bv    *bitvec.BitVec
	rank9 *ranksel.Rank9
	sel   *ranksel.SimpleSelectConst
}

func (b *bitvecInspector) Len() int { return b.bv.Len() }

func (b *bitvecInspector) Get(i int) (string, error) {
	if i < 0 || i >= b.bv.Len() {
		return "", fmt.Errorf("index %d out of range [0,%d)", i, b.bv.Len())
	}
	if b.bv.Get(i) {
		return "1", nil
	}
	return "0", nil
}

func (b *bitvecInspector) Rank(pos int) (int, bool) {
	if pos < 0 || pos > b.bv.Len() {
		return 0, false
	}
	return b.rank9.Rank(pos), true
}

func (b *bitvecInspector) Select(rank int) (int, bool) { return b.sel.Select(rank) }

func (b *bitvecInspector) Contains(string) (bool, bool) { return false, false }

func (b *bitvecInspector) Describe() string {
	return fmt.Sprintf("BitVec: len=%d numOnes=%d", b.bv.Len(), b.bv.CountOnes())
}

type compactArrayInspector struct {
	ca *compactarray.CompactArray
}

func (c *compactArrayInspector) Len() int { return c.ca.Len() }

func (c *compactArrayInspector) Get(i int) (string, error) {
	if i < 0 || i >= c.ca.Len() {
		return "", fmt.Errorf("index %d out of range [0,%d)", i, c.ca.Len())
	}
	return strconv.FormatUint(c.ca.Get(i), 10), nil
}

func (c *compactArrayInspector) Rank(int) (int, bool)         { return 0, false }
func (c *compactArrayInspector) Select(int) (int, bool)       { return 0, false }
func (c *compactArrayInspector) Contains(string) (bool, bool) { return false, false }

func (c *compactArrayInspector) Describe() string {
	return fmt.Sprintf("CompactArray: width=%d len=%d", c.ca.Width(), c.ca.Len())
}

type eliasFanoInspector struct {
	ef *eliasfano.Default
}

func (e *eliasFanoInspector) Len() int { return e.ef.Len() }

func (e *eliasFanoInspector) Get(i int) (string, error) {
	v, err := e.ef.Get(i)
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(v, 10), nil
}

func (e *eliasFanoInspector) Rank(int) (int, bool)         { return 0, false }
func (e *eliasFanoInspector) Select(int) (int, bool)       { return 0, false }
func (e *eliasFanoInspector) Contains(string) (bool, bool) { return false, false }

func (e *eliasFanoInspector) Describe() string {
	return fmt.Sprintf("EliasFano: n=%d", e.ef.Len())
}

type rearCodedInspector struct {
	rcl *rearcoded.RearCodedList
}

func (r *rearCodedInspector) Len() int { return r.rcl.Len() }

func (r *rearCodedInspector) Get(i int) (string, error) {
	if i < 0 || i >= r.rcl.Len() {
		return "", fmt.Errorf("index %d out of range [0,%d)", i, r.rcl.Len())
	}
	return r.rcl.Get(i), nil
}

func (r *rearCodedInspector) Rank(int) (int, bool)   { return 0, false }
func (r *rearCodedInspector) Select(int) (int, bool) { return 0, false }

func (r *rearCodedInspector) Contains(s string) (bool, bool) { return r.rcl.Contains(s), true }

func (r *rearCodedInspector) Describe() string {
	stats := r.rcl.Stats()
	return fmt.Sprintf("RearCodedList: len=%d sumStrLen=%d sumLCP=%d", r.rcl.Len(), stats.SumStrLen, stats.SumLCP)
}

// REPL is the interactive command loop over an already-opened inspector.
type REPL struct {
	inspector inspector
	path      string
	header    persist.Header
	liner     *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sxinspect_history")
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("sxinspect - %s\n", r.inspector.Describe())
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("sx> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "get":
			r.cmdGet(args)
		case "rank":
			r.cmdRank(args)
		case "select":
			r.cmdSelect(args)
		case "contains":
			r.cmdContains(args)
		case "len", "count":
			fmt.Println(r.inspector.Len())
		case "info":
			r.cmdInfo()
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{"get", "rank", "select", "contains", "len", "count", "info", "help", "exit", "quit", "q"}
	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  get <i>           Return the i-th element")
	fmt.Println("  rank <p>          (bitvec only) count of set bits before p")
	fmt.Println("  select <r>        (bitvec only) position of the r-th set bit")
	fmt.Println("  contains <s>      (rear-coded only) membership test")
	fmt.Println("  len               Number of elements")
	fmt.Println("  info              Structural parameters from the file header")
	fmt.Println("  help              Show this help")
	fmt.Println("  exit / quit / q   Exit")
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: get <i>")
		return
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error parsing index: %v\n", err)
		return
	}
	v, err := r.inspector.Get(i)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(v)
}

func (r *REPL) cmdRank(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: rank <p>")
		return
	}
	p, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error parsing position: %v\n", err)
		return
	}
	v, ok := r.inspector.Rank(p)
	if !ok {
		fmt.Println(errUnsupportedOp)
		return
	}
	fmt.Println(v)
}

func (r *REPL) cmdSelect(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: select <r>")
		return
	}
	rank, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error parsing rank: %v\n", err)
		return
	}
	v, ok := r.inspector.Select(rank)
	if !ok {
		fmt.Println("(absent)")
		return
	}
	fmt.Println(v)
}

func (r *REPL) cmdContains(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: contains <s>")
		return
	}
	found, supported := r.inspector.Contains(args[0])
	if !supported {
		fmt.Println(errUnsupportedOp)
		return
	}
	fmt.Println(found)
}

func (r *REPL) cmdInfo() {
	fmt.Printf("Path:    %s\n", r.path)
	fmt.Printf("Kind:    %s\n", r.header.Kind)
	fmt.Printf("%s\n", r.inspector.Describe())
}
