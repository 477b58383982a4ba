// Command validate checks sounding files offline. Each file holds either one
// sounding or a JSON array of soundings in the wire form the service consumes.
// For every sounding it prints "Validated!" or one line per failed check, and
// it exits non-zero when any sounding fails or cannot be read.
//
// Usage:
//
//	go run ./cmd/validate data/mock/soundings.json
//	go run ./cmd/validate -json - < sounding.json
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/storm-sounding-validator/internal/domain"
	"github.com/couchcryptid/storm-sounding-validator/internal/pipeline"
	"github.com/couchcryptid/storm-sounding-validator/internal/validate"
)

// phase tracks pass/fail for one input file.
type phase struct {
	name   string
	total  int
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	asJSON := flag.Bool("json", false, "print one validation report per sounding as JSON lines")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: validate [-json] FILE... (use - for stdin)")
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(flag.Args(), *asJSON, os.Stdin, os.Stdout))
}

func run(paths []string, asJSON bool, stdin io.Reader, out io.Writer) int {
	phases := make([]*phase, 0, len(paths))
	for _, path := range paths {
		phases = append(phases, checkFile(path, asJSON, stdin, out))
	}

	if asJSON {
		for _, p := range phases {
			if !p.passed() {
				return 1
			}
		}
		return 0
	}

	// ── Summary ──
	fmt.Fprintln(out, "\n"+strings.Repeat("─", 60))
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Fprintf(out, "  %s  %s (%d soundings, %d failed)\n", status, p.name, p.total, len(p.errors))
	}
	fmt.Fprintln(out, strings.Repeat("─", 60))

	if !allPassed {
		return 1
	}
	return 0
}

// checkFile validates every sounding in one file. A file that cannot be read
// or decoded counts as a single failure.
func checkFile(path string, asJSON bool, stdin io.Reader, out io.Writer) *phase {
	p := &phase{name: path}

	docs, err := loadSoundings(path, stdin)
	if err != nil {
		p.errorf("%v", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return p
	}

	for i, doc := range docs {
		p.total++
		label := fmt.Sprintf("%s[%d]", path, i)

		snd, err := domain.ParseRawSounding(domain.RawEvent{Value: doc})
		if err != nil {
			p.errorf("%s: %v", label, err)
			fmt.Fprintf(os.Stderr, "%s: %v\n", label, err)
			continue
		}

		result := validate.Validate(snd)
		if result != nil {
			p.errorf("%s", label)
		}

		if asJSON {
			report := domain.NewReport(snd, pipeline.Violations(result))
			if err := json.NewEncoder(out).Encode(report); err != nil {
				fmt.Fprintf(os.Stderr, "%s: encode report: %v\n", label, err)
			}
			continue
		}

		fmt.Fprintf(out, "%s %s (%s):\n", label, domain.SoundingID(snd), snd.Station().ID)
		if result == nil {
			fmt.Fprintln(out, "Validated!")
			continue
		}
		fmt.Fprintln(out, result)
	}
	return p
}

// loadSoundings reads a file (or stdin for "-") holding one sounding object or
// an array of them.
func loadSoundings(path string, stdin io.Reader) ([]json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	if trimmed[0] != '[' {
		return []json.RawMessage{trimmed}, nil
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		return nil, fmt.Errorf("decode sounding array: %w", err)
	}

	// Accept genmock fixtures, whose entries wrap the sounding.
	for i, doc := range docs {
		var wrapped struct {
			Sounding json.RawMessage `json:"sounding"`
		}
		if json.Unmarshal(doc, &wrapped) == nil && len(wrapped.Sounding) > 0 {
			docs[i] = wrapped.Sounding
		}
	}
	return docs, nil
}
