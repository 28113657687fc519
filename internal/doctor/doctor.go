// Package doctor runs environment preflight checks for ttsr.
package doctor

import (
	"fmt"
	"io"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// Check is one named preflight probe. Run returns a short detail for the
// success line or an error describing what is missing.
type Check struct {
	Name string
	// Skip reports why the check does not apply; empty means run it.
	Skip string
	Run  func() (string, error)
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes checks in order and writes one line per check to w, prefixed
// with PassMark or FailMark. A failing check does not stop later ones.
func Run(checks []Check, w io.Writer) Result {
	var res Result

	for _, c := range checks {
		if c.Skip != "" {
			_, _ = fmt.Fprintf(w, "%s %s: skipped (%s)\n", PassMark, c.Name, c.Skip)
			continue
		}

		detail, err := c.Run()
		if err != nil {
			res.fail(fmt.Sprintf("%s: %v", c.Name, err))
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", FailMark, c.Name, err)
			continue
		}

		if detail == "" {
			detail = "ok"
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", PassMark, c.Name, detail)
	}

	return res
}
