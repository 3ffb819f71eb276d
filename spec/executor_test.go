package spec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	outcomes []Outcome
}

func (r *recorder) Outcome(_ *Document, o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

func buildDoc(t *testing.T, surface map[string]any, entries []Entry) *Document {
	t.Helper()
	features, err := ParseEntries(entries, "go")
	require.NoError(t, err)

	doc := NewDocument("mathlib")
	doc.Ready = len(surface) > 0
	doc.Scope.Seed(surface)
	doc.Scope.Bind(PackageConstant, "mathlib")
	doc.Append("mathlib.yml", features)
	return doc
}

func mathSurface() map[string]any {
	return map[string]any{
		"VERSION":  "1.0",
		"add":      func(a, b int) int { return a + b },
		"identity": func(v any) any { return v },
		"boom":     func() (int, error) { return 0, errors.New("boom") },
		"pair":     func() (int, string) { return 1, "a" },
		"panics":   func() int { panic("unreachable state") },
	}
}

func run(t *testing.T, doc *Document) (*recorder, bool, error) {
	t.Helper()
	rec := &recorder{}
	ok, err := NewExecutor(nil).RunDocument(doc, rec)
	return rec, ok, err
}

func TestRunDocument_ScenarioPassing(t *testing.T) {
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "add()", Value: []any{int64(2), int64(3), int64(5)}},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, rec.outcomes, 2)
	assert.Equal(t, StatusPassed, rec.outcomes[0].Status)
	assert.Equal(t, StatusPassed, rec.outcomes[1].Status)

	passed, total := doc.Stats.Executed()
	assert.Equal(t, 1, passed, "identity marker is excluded from the ratio")
	assert.Equal(t, 1, total)
}

func TestRunDocument_ScenarioRaising(t *testing.T) {
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "boom()", Value: []any{int64(5)}},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.False(t, ok)

	last := rec.outcomes[1]
	assert.Equal(t, StatusFailed, last.Status)
	assert.Equal(t, ErrorSentinel, last.Result)
	require.Error(t, last.Err)
	assert.Contains(t, last.Err.Error(), "boom")

	passed, total := doc.Stats.Executed()
	assert.Equal(t, 0, passed)
	assert.Equal(t, 1, total)
}

func TestRunDocument_ScenarioSkipInheritance(t *testing.T) {
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "x=VERSION", Value: "1.0"},
		{Comment: true, Text: "(!go)Feature note"},
		{Key: "add()", Value: []any{int64(2), int64(3), int64(5)}},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, StatusComment, rec.outcomes[2].Status)
	assert.Equal(t, StatusSkipped, rec.outcomes[3].Status)

	assert.Equal(t, Stats{
		Features: 4, Comments: 1, Tests: 3, Skipped: 1,
		Passed: 4, Failed: 0, Markers: 1,
	}, doc.Stats)

	passed, total := doc.Stats.Executed()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, total)
}

func TestRunDocument_ErrorAndAnyExpectations(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  Status
	}{
		{"raising call expecting ERROR passes", Entry{Key: "boom()", Value: []any{ErrorSentinel}}, StatusPassed},
		{"raising call expecting ANY fails", Entry{Key: "boom()", Value: []any{Any}}, StatusFailed},
		{"raising call expecting value fails", Entry{Key: "boom()", Value: []any{int64(5)}}, StatusFailed},
		{"clean call expecting ANY passes", Entry{Key: "add()", Value: []any{int64(1), int64(2), Any}}, StatusPassed},
		{"clean read expecting ERROR fails", Entry{Key: "VERSION", Value: ErrorSentinel}, StatusFailed},
		{"missing property expecting ERROR passes", Entry{Key: "nonexistent", Value: ErrorSentinel}, StatusPassed},
		{"panicking call collapses to ERROR", Entry{Key: "panics()", Value: []any{ErrorSentinel}}, StatusPassed},
		{"uncallable value collapses to ERROR", Entry{Key: "VERSION()", Value: []any{ErrorSentinel}}, StatusPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buildDoc(t, mathSurface(), []Entry{
				{Key: "PACKAGE", Value: "mathlib"},
				tt.entry,
			})
			rec, _, err := run(t, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.outcomes[1].Status)
		})
	}
}

func TestRunDocument_AssignmentVisibility(t *testing.T) {
	// Later features must observe earlier assignments, and references must
	// resolve at execution time, not parse time.
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "x=identity()", Value: []any{int64(5)}},
		{Key: "add()", Value: []any{refMarker("x"), int64(1), int64(6)}},
		{Key: "x=identity()", Value: []any{int64(10)}},
		{Key: "add()", Value: []any{refMarker("x"), int64(1), int64(11)}},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.True(t, ok)
	for i, o := range rec.outcomes {
		assert.Equal(t, StatusPassed, o.Status, "outcome %d: %s", i, o.Feature.Text)
	}
}

func TestRunDocument_ConstantViolationIsFatal(t *testing.T) {
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "V=identity()", Value: []any{int64(1)}},
		{Key: "V=identity()", Value: []any{int64(2)}},
		{Key: "add()", Value: []any{int64(1), int64(1), int64(2)}},
	})
	rec, ok, err := run(t, doc)

	require.Error(t, err)
	var violation *ConstantViolationError
	assert.True(t, errors.As(err, &violation))
	assert.False(t, ok)
	assert.Len(t, rec.outcomes, 3, "execution stops at the violation")
	assert.Equal(t, StatusFailed, rec.outcomes[2].Status)
}

func TestRunDocument_MultiReturnFlattensToSequence(t *testing.T) {
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "pair()", Value: []any{[]any{int64(1), "a"}}},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.True(t, ok, "got %+v", rec.outcomes[1])
}

func TestRunDocument_KeywordArgumentsReachCallable(t *testing.T) {
	surface := mathSurface()
	surface["greet"] = CallableFunc(func(args []any, kwargs *Map) (any, error) {
		name, ok := kwargs.Get("name")
		if !ok {
			return nil, fmt.Errorf("missing name")
		}
		return "hi " + name.(string), nil
	})
	doc := buildDoc(t, surface, []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "greet()", Value: []any{kwMarker("name", "bob"), "hi bob"}},
	})
	_, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRunDocument_PackageNotReady(t *testing.T) {
	doc := buildDoc(t, nil, []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "VERSION", Value: "1.0"},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.False(t, ok)

	// The identity read is forced to ERROR even though PACKAGE itself is
	// bound, marking the package as unloadable rather than crashing.
	first := rec.outcomes[0]
	assert.Equal(t, StatusFailed, first.Status)
	assert.Equal(t, ErrorSentinel, first.Result)
	require.Error(t, first.Err)

	// Remaining features still run and fail informatively.
	assert.Equal(t, StatusFailed, rec.outcomes[1].Status)
	passed, total := doc.Stats.Executed()
	assert.Equal(t, 0, passed)
	assert.Equal(t, 2, total)
}

func TestRunDocument_AssignmentReadComparesValue(t *testing.T) {
	doc := buildDoc(t, mathSurface(), []Entry{
		{Key: "PACKAGE", Value: "mathlib"},
		{Key: "x=VERSION", Value: "2.0"},
	})
	rec, ok, err := run(t, doc)
	require.NoError(t, err)
	assert.False(t, ok, "VERSION is 1.0, expected 2.0")
	assert.Equal(t, StatusFailed, rec.outcomes[1].Status)

	// The result is still assigned, comparison failure notwithstanding.
	v, bound := doc.Scope.Lookup("x")
	assert.True(t, bound)
	assert.Equal(t, "1.0", v)
}
