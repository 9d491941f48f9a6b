// Package modlist enumerates the module's resolved dependency graph by
// running go list -m -json all and decoding its output stream.
//
// The go command prints the graph as back-to-back JSON objects with no
// separators between them (not a JSON array). Decode consumes that
// stream one value at a time and resynchronizes byte-by-byte past
// anything it cannot parse, so a corrupted fragment never stalls the
// run or discards the records around it.
package modlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Module is one raw record from go list -m -json.
// Replace, when present, carries the effective source of the module.
type Module struct {
	Path     string  `json:"Path"`
	Version  string  `json:"Version"`
	Time     string  `json:"Time"`
	Main     bool    `json:"Main"`
	Indirect bool    `json:"Indirect"`
	Replace  *Module `json:"Replace"`
}

// Runner executes the listing command and returns its stdout. Split out
// so tests can feed canned streams without a Go toolchain.
type Runner interface {
	Run(ctx context.Context) ([]byte, error)
}

// GoRunner invokes the real go command.
type GoRunner struct {
	// Dir is the module root to list; empty means the current directory.
	Dir string
}

func (r GoRunner) Run(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "go", "list", "-m", "-json", "all")
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("go list -m -json all: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// Lister produces the raw module records.
type Lister struct {
	runner Runner
	log    *zap.Logger
}

// NewLister builds a Lister. A nil logger is replaced with a nop.
func NewLister(runner Runner, log *zap.Logger) *Lister {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lister{runner: runner, log: log}
}

// List runs the command and decodes its stream. A subprocess failure
// aborts the run; decode problems do not.
func (l *Lister) List(ctx context.Context) ([]Module, error) {
	out, err := l.runner.Run(ctx)
	if err != nil {
		return nil, err
	}
	mods := l.Decode(out)
	l.log.Debug("module graph listed",
		zap.Int("bytes", len(out)),
		zap.Int("modules", len(mods)))
	return mods, nil
}

// Decode parses a concatenated-JSON byte stream into module records.
//
// It decodes one value at the current offset; on success it advances by
// the consumed length, on failure by a single byte. Values that are not
// JSON objects (and object fragments inside skipped garbage) are
// dropped silently, matching the forward-progress policy: never fail
// the whole run over one unparsable fragment.
func (l *Lister) Decode(stream []byte) []Module {
	var mods []Module
	pos := int64(0)
	size := int64(len(stream))

	for pos < size {
		dec := json.NewDecoder(bytes.NewReader(stream[pos:]))
		var m Module
		if err := dec.Decode(&m); err != nil {
			pos++
			continue
		}
		pos += dec.InputOffset()
		mods = append(mods, m)
	}

	return mods
}
