// Command validate checks saved nightly recharge payloads offline. It decodes
// each file with the production decoder and reports ordering, duplicate
// dates, status codes outside the known table, and the recommendation the
// service would derive.
//
// Usage:
//
//	go run ./cmd/validate testdata/recharge.json [more.json ...]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/adapter/polar"
	"github.com/couchcryptid/ans-recharge-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s payload.json [payload.json ...]\n", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, flag.Args()); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, paths []string) int {
	fmt.Fprintln(w, "=== Nightly Recharge Payload Validation ===")

	allPassed := true
	for _, path := range paths {
		fmt.Fprintf(w, "\n%s\n", path)
		phases := validateFile(path)
		for _, p := range phases {
			status := "\033[32mPASS\033[0m"
			if !p.passed() {
				status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
				allPassed = false
			}
			fmt.Fprintf(w, "  %-28s %s\n", p.name, status)
			for _, n := range p.notes {
				fmt.Fprintf(w, "      %s\n", n)
			}
			for i, e := range p.errors {
				fmt.Fprintf(w, "      [%d] %s\n", i+1, e)
			}
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// validateFile runs every phase that applies. Later phases need a decoded
// payload and are skipped when decoding fails.
func validateFile(path string) []*phase {
	decode := &phase{name: "Decode"}
	readings, err := loadPayload(path)
	if err != nil {
		decode.errorf("%v", err)
		return []*phase{decode}
	}
	decode.notef("%d readings", len(readings))

	return []*phase{
		decode,
		validateOrdering(readings),
		validateStatusCodes(readings),
		validateAssessment(readings),
	}
}

func loadPayload(path string) ([]domain.RecoveryReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return polar.Decode(f)
}

// validateOrdering flags duplicate dates. Out-of-order payloads are legal
// and only noted, since the latest reading is chosen by date.
func validateOrdering(readings []domain.RecoveryReading) *phase {
	p := &phase{name: "Ordering"}
	seen := make(map[string]int, len(readings))
	for i, r := range readings {
		key := r.Date.Format(time.DateOnly)
		if prev, ok := seen[key]; ok {
			p.errorf("readings %d and %d share date %s", prev, i, key)
		}
		seen[key] = i
		if i > 0 && r.Date.Before(readings[i-1].Date) {
			p.notef("reading %d (%s) precedes reading %d in date", i, key, i-1)
		}
	}
	return p
}

func validateStatusCodes(readings []domain.RecoveryReading) *phase {
	p := &phase{name: "Status codes"}
	for i, r := range readings {
		if !domain.KnownStatus(*r.StatusCode) {
			p.errorf("reading %d (%s): status %d outside the known table",
				i, r.Date.Format(time.DateOnly), *r.StatusCode)
		}
	}
	return p
}

func validateAssessment(readings []domain.RecoveryReading) *phase {
	p := &phase{name: "Assessment"}
	a, err := domain.AssessRecharge(readings)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	p.notef("latest %s: ans_charge=%.1f status=%s -> %s (%s)",
		a.Latest.Date.Format(time.DateOnly), a.Latest.Value, a.Status.Label, a.Recommendation, a.Guidance)
	if a.DeltaText != "" {
		p.notef("change since previous night: %s", a.DeltaText)
	}
	return p
}
