// cmd/ouroboros is the CLI driver: lex/check/build/optimize subcommands
// dispatched by hand off os.Args, the way the teacher's cmd/sentra/main.go
// dispatches its own subcommand set with no flag library.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ouroboros/internal/builder"
	"ouroboros/internal/diag"
	"ouroboros/internal/lexer"
	"ouroboros/internal/lsp"
	"ouroboros/internal/optimize"

	"golang.org/x/sync/errgroup"
)

const version = "0.1.0"

// commandAliases mirrors the teacher's short-flag map (cmd/sentra/main.go)
// for the subset of subcommands this front end exposes.
var commandAliases = map[string]string{
	"l": "lex",
	"c": "check",
	"b": "build",
	"o": "optimize",
}

var allCommands = []string{"lex", "check", "build", "optimize", "lsp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a subcommand and returns the process exit code, factored
// out of main so the testscript harness (cmd/ouroboros/main_test.go) can
// register it as an in-process binary instead of forking a compiled one.
func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 1
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	var err error
	switch cmd {
	case "help", "-h", "--help":
		showUsage()
		return 0
	case "version", "-v", "--version":
		fmt.Printf("ouroboros %s\n", version)
		return 0
	case "lex":
		err = runLex(args[1:])
	case "check":
		err = runCheck(args[1:])
	case "build":
		err = runBuild(args[1:])
	case "optimize":
		err = runOptimize(args[1:])
	case "lsp":
		err = runLSP(args[1:])
	default:
		suggestCommand(cmd)
		return 1
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ouroboros: %v\n", err)
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Println(`ouroboros - lexer, type checker, and bytecode pipeline

Usage:
  ouroboros lex <file>                 scan a source file, print its tokens
  ouroboros check <file>...            lex every file concurrently, report diagnostics
  ouroboros build <file> [-level=L]    assemble, finalize, and optimize inline bytecode assembly
  ouroboros optimize <file> [-level=L] same as build, but prints the code size before and after optimization
  ouroboros lsp [-addr=HOST:PORT]      serve the websocket diagnostics endpoint
  ouroboros version                    print the version
  ouroboros help                       show this message

-level accepts debug, release, or aggressive (default release).`)
}

// suggestCommand prints a "did you mean" guess using the same
// Levenshtein-distance search the teacher runs over its own command table
// (cmd/sentra/main.go's findSimilarCommands/levenshteinDistance).
func suggestCommand(cmd string) {
	fmt.Fprintf(os.Stderr, "ouroboros: unknown command %q\n", cmd)
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	for _, c := range allCommands {
		candidates = append(candidates, scored{c, levenshteinDistance(cmd, c)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if len(candidates) > 0 && candidates[0].dist <= 2 {
		fmt.Fprintf(os.Stderr, "did you mean %q?\n", candidates[0].name)
	}
}

func levenshteinDistance(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del, ins, sub := prev[j]+1, curr[j-1]+1, prev[j-1]+cost
			curr[j] = minOf3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func parseLevelFlag(args []string) optimize.Level {
	for _, a := range args {
		switch strings.TrimPrefix(a, "-level=") {
		case "debug":
			return optimize.Debug
		case "aggressive":
			return optimize.Aggressive
		case "release":
			return optimize.Release
		}
	}
	return optimize.Release
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}

func runLex(args []string) error {
	files := positional(args)
	if len(files) != 1 {
		return fmt.Errorf("usage: ouroboros lex <file>")
	}
	source, err := os.ReadFile(files[0])
	if err != nil {
		return err
	}
	sink := diag.NewSink()
	scanner := lexer.NewScanner(string(source), files[0], sink)
	tokens := scanner.ScanTokens()
	for _, tok := range tokens {
		fmt.Printf("%4d:%-3d %-20s %q\n", tok.Line, tok.Column, tok.Kind, tok.Lexeme)
	}
	for _, d := range sink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if sink.HasErrors() {
		return fmt.Errorf("%d lexer error(s) in %s", sink.Len(), files[0])
	}
	return nil
}

// runCheck type-checks (lexically, since the parser that would build an
// AST is an external collaborator per spec.md §1/§6) every file argument
// concurrently via errgroup.Group, the concurrency shape SPEC_FULL.md's
// domain-stack section assigns this subcommand.
func runCheck(args []string) error {
	files := positional(args)
	if len(files) == 0 {
		return fmt.Errorf("usage: ouroboros check <file>...")
	}

	var g errgroup.Group
	for _, file := range files {
		file := file
		g.Go(func() error {
			source, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			sink := diag.NewSink()
			scanner := lexer.NewScanner(string(source), file, sink)
			scanner.ScanTokens()
			for _, d := range sink.Diagnostics() {
				fmt.Fprintln(os.Stderr, d.String())
			}
			if sink.HasErrors() {
				return fmt.Errorf("%s: %d error(s)", file, sink.Len())
			}
			return nil
		})
	}
	return g.Wait()
}

func runBuild(args []string) error {
	files := positional(args)
	if len(files) != 1 {
		return fmt.Errorf("usage: ouroboros build <file> [-level=debug|release|aggressive]")
	}
	level := parseLevelFlag(args)

	source, err := os.ReadFile(files[0])
	if err != nil {
		return err
	}

	b := builder.New()
	warnings := b.Assemble(string(source))
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s:%d: warning: unrecognized mnemonic %q, emitted as NOP\n", files[0], w.Line, w.Mnemonic)
	}

	bc, err := b.Finalize()
	if err != nil {
		return err
	}

	start := time.Now()
	sink := diag.NewSink()
	optimized := optimize.Optimize(bc, level, sink)
	elapsed := time.Since(start)

	for _, d := range sink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}

	fmt.Printf(
		"bytecode: %s, %s functions, optimized in %s\n",
		humanize.Bytes(uint64(len(optimized.Code))),
		humanize.Comma(int64(len(optimized.Functions))),
		elapsed,
	)
	return nil
}

func runOptimize(args []string) error {
	files := positional(args)
	if len(files) != 1 {
		return fmt.Errorf("usage: ouroboros optimize <file> [-level=debug|release|aggressive]")
	}
	level := parseLevelFlag(args)

	source, err := os.ReadFile(files[0])
	if err != nil {
		return err
	}

	b := builder.New()
	b.Assemble(string(source))
	bc, err := b.Finalize()
	if err != nil {
		return err
	}

	sink := diag.NewSink()
	before := len(bc.Code)
	optimized := optimize.Optimize(bc, level, sink)
	for _, d := range sink.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	fmt.Printf("%s -> %s bytes (%s)\n",
		humanize.Bytes(uint64(before)), humanize.Bytes(uint64(len(optimized.Code))), level)
	return nil
}

// runLSP mounts the websocket diagnostics endpoint and blocks serving it,
// replacing the teacher's stdio-framed startLSP (lsp.NewServer(os.Stdin,
// os.Stdout); server.Start(ctx)) with an HTTP upgrade handler since the
// rewritten internal/lsp.Server transports over gorilla/websocket instead
// of stdio, per SPEC_FULL.md's domain-stack section.
func runLSP(args []string) error {
	addr := "localhost:7337"
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "-addr="); ok {
			addr = v
		}
	}

	logger := log.New(os.Stderr, "ouroboros-lsp: ", log.LstdFlags)
	server := lsp.NewServer(logger)

	mux := http.NewServeMux()
	mux.Handle("/lsp", server.Handler())

	logger.Printf("listening on ws://%s/lsp", addr)
	return http.ListenAndServe(addr, mux)
}
