package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/c360studio/packcheck/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedFeature(t *testing.T, entry spec.Entry) *spec.Feature {
	t.Helper()
	f, err := spec.ParseEntry(entry, "go")
	require.NoError(t, err)
	return f
}

func TestReporterTrace(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	doc := spec.NewDocument("mathlib")
	doc.Ready = true

	f := parsedFeature(t, spec.Entry{Key: "add()", Value: []any{int64(2), int64(3), int64(5)}})

	r.BeginDocument(doc)
	r.Outcome(doc, spec.Outcome{Feature: f, Status: spec.StatusPassed})
	r.Outcome(doc, spec.Outcome{Feature: f, Status: spec.StatusSkipped})
	r.Outcome(doc, spec.Outcome{
		Feature: parsedFeature(t, spec.Entry{Comment: true, Text: "Arithmetic"}),
		Status:  spec.StatusComment,
	})

	out := buf.String()
	assert.Contains(t, out, "mathlib\n")
	assert.Contains(t, out, "(+) add(2, 3) == 5")
	assert.Contains(t, out, "(#) add(2, 3) == 5")
	assert.Contains(t, out, "(i) Arithmetic")
}

func TestReporterFailureDetail(t *testing.T) {
	t.Run("captured error", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewReporter(&buf, false)
		doc := spec.NewDocument("mathlib")
		f := parsedFeature(t, spec.Entry{Key: "boom()", Value: []any{int64(5)}})

		r.Outcome(doc, spec.Outcome{
			Feature: f, Status: spec.StatusFailed,
			Result: spec.ErrorSentinel, Expected: int64(5),
			Err: errors.New("division by zero"),
		})

		out := buf.String()
		assert.Contains(t, out, "(-) boom() == 5")
		assert.Contains(t, out, "error: division by zero")
	})

	t.Run("value diff", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewReporter(&buf, false)
		doc := spec.NewDocument("mathlib")
		f := parsedFeature(t, spec.Entry{Key: "add()", Value: []any{int64(2), int64(3), int64(5)}})

		r.Outcome(doc, spec.Outcome{
			Feature: f, Status: spec.StatusFailed,
			Result: int64(6), Expected: int64(5),
		})

		out := buf.String()
		assert.Contains(t, out, "(-) add(2, 3) == 5")
		// The diff must show both sides.
		assert.Contains(t, out, "5")
		assert.Contains(t, out, "6")
	})
}

func TestReporterRatios(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, false)

	doc := spec.NewDocument("mathlib")
	doc.Stats = spec.Stats{Features: 4, Comments: 1, Tests: 3, Skipped: 1, Passed: 4, Markers: 1}
	r.EndDocument(doc)
	assert.Contains(t, buf.String(), "mathlib: 1/1")

	buf.Reset()
	failing := spec.NewDocument("strlib")
	failing.Stats = spec.Stats{Features: 3, Tests: 3, Passed: 1, Failed: 2, Markers: 1}
	r.EndDocument(failing)
	assert.Contains(t, buf.String(), "strlib: 0/2")

	buf.Reset()
	r.Summary([]*spec.Document{doc, failing})
	assert.Contains(t, buf.String(), "documents: 1/2 passed")
}

func TestReporterLineDiscipline(t *testing.T) {
	// Every non-failing feature prints exactly one line.
	var buf bytes.Buffer
	r := NewReporter(&buf, false)
	doc := spec.NewDocument("mathlib")
	f := parsedFeature(t, spec.Entry{Key: "VERSION", Value: "1.0"})

	r.Outcome(doc, spec.Outcome{Feature: f, Status: spec.StatusPassed})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 1)
}
