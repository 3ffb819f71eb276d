// Package report renders the per-feature trace and the aggregate pass/fail
// summary of a conformance run to a terminal.
//
// Every feature prints exactly one line regardless of outcome; failures
// additionally surface the causing error or an actual-vs-expected diff. The
// displayed ratios exclude comments and skipped entries so only genuinely
// executed assertions are counted.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/packcheck/spec"
	"github.com/google/go-cmp/cmp"
)

// Markers prefixing each feature line in the trace.
const (
	markerPass    = "(+)"
	markerFail    = "(-)"
	markerSkip    = "(#)"
	markerComment = "(i)"
)

// Reporter writes the textual trace of a run. It implements spec.Observer
// and is driven by the executor in feature declaration order.
type Reporter struct {
	w      io.Writer
	styles styleSet
}

// NewReporter creates a reporter writing to w, styled when color is true.
func NewReporter(w io.Writer, color bool) *Reporter {
	return &Reporter{w: w, styles: newStyleSet(color)}
}

// BeginDocument prints the package header before its features execute.
func (r *Reporter) BeginDocument(doc *spec.Document) {
	header := doc.Package
	if !doc.Ready {
		header += " (package not ready)"
	}
	fmt.Fprintln(r.w, r.styles.Header.Render(header))
}

// Outcome prints one feature's trace line. Part of spec.Observer.
func (r *Reporter) Outcome(doc *spec.Document, o spec.Outcome) {
	switch o.Status {
	case spec.StatusComment:
		fmt.Fprintln(r.w, r.styles.Comment.Render(markerComment+" "+o.Feature.Text))
	case spec.StatusSkipped:
		fmt.Fprintln(r.w, r.styles.Skip.Render(markerSkip+" "+o.Feature.Text))
	case spec.StatusPassed:
		fmt.Fprintln(r.w, r.styles.Pass.Render(markerPass+" "+o.Feature.Text))
	case spec.StatusFailed:
		fmt.Fprintln(r.w, r.styles.Fail.Render(markerFail+" "+o.Feature.Text))
		r.failureDetail(o)
	}
}

// failureDetail prints why a feature failed: the causing error when one was
// captured, otherwise an actual-vs-expected diff.
func (r *Reporter) failureDetail(o spec.Outcome) {
	if o.Err != nil {
		fmt.Fprintln(r.w, r.styles.Detail.Render("    error: "+o.Err.Error()))
		return
	}
	diff := cmp.Diff(spec.Plain(o.Expected), spec.Plain(o.Result))
	if diff == "" {
		fmt.Fprintf(r.w, "%s\n", r.styles.Detail.Render(
			"    actual "+spec.Render(o.Result)+" != expected "+spec.Render(o.Expected)))
		return
	}
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		fmt.Fprintln(r.w, r.styles.Detail.Render("    "+line))
	}
}

// EndDocument prints the document's executed-assertion ratio.
func (r *Reporter) EndDocument(doc *spec.Document) {
	passed, total := doc.Stats.Executed()
	line := fmt.Sprintf("%s: %d/%d", doc.Package, passed, total)
	style := r.styles.Pass
	if !doc.Success() {
		style = r.styles.Fail
	}
	fmt.Fprintln(r.w, style.Render(line))
	fmt.Fprintln(r.w)
}

// Summary prints the overall result across all documents.
func (r *Reporter) Summary(docs []*spec.Document) {
	passed := 0
	for _, doc := range docs {
		if doc.Success() {
			passed++
		}
	}
	line := fmt.Sprintf("documents: %d/%d passed", passed, len(docs))
	style := r.styles.Pass
	if passed != len(docs) {
		style = r.styles.Fail
	}
	fmt.Fprintln(r.w, style.Render(line))
}
