package spec

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Status is a feature's terminal state.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusComment
)

// Outcome is the terminal record for one feature: its status, the normalized
// result, and the causing error when execution raised.
type Outcome struct {
	Feature  *Feature
	Status   Status
	Result   any
	Expected any
	Err      error
}

// Observer receives outcomes as the executor walks a document's features, in
// declaration order.
type Observer interface {
	Outcome(doc *Document, o Outcome)
}

// Executor runs a document's features sequentially against its scope.
// Within one document order is load-bearing: later features read bindings
// assigned by earlier ones.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger falls back to slog.Default.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{logger: logger}
}

// RunDocument executes every feature of a document, updating its stats and
// reporting each outcome. It returns the document's success plus a non-nil
// error only for fatal conditions (a constant violation aborts the rest of
// the document's run).
func (x *Executor) RunDocument(doc *Document, obs Observer) (bool, error) {
	for _, f := range doc.Features {
		doc.Stats.Features++

		switch {
		case f.Comment:
			doc.Stats.Comments++
			doc.Stats.Passed++
			obs.Outcome(doc, Outcome{Feature: f, Status: StatusComment})
			continue
		case f.Skip:
			doc.Stats.Tests++
			doc.Stats.Skipped++
			doc.Stats.Passed++
			obs.Outcome(doc, Outcome{Feature: f, Status: StatusSkipped})
			continue
		}

		doc.Stats.Tests++
		o := x.executeFeature(doc, f)
		var violation *ConstantViolationError
		if errors.As(o.Err, &violation) {
			doc.Stats.Failed++
			obs.Outcome(doc, o)
			x.logger.Error("constant violation aborts document",
				slog.String("package", doc.Package),
				slog.String("feature", f.Text),
				slog.String("error", violation.Error()))
			return false, o.Err
		}
		if o.Status == StatusPassed {
			doc.Stats.Passed++
			if f.Property == PackageConstant && !f.Call && f.Target == "" {
				doc.Stats.Markers++
			}
		} else {
			doc.Stats.Failed++
		}
		obs.Outcome(doc, o)
	}
	return doc.Success(), nil
}

// executeFeature runs one feature through dereference, path resolution, call
// or read, normalization, assignment, and comparison. Every recoverable
// failure along the way collapses into the ERROR sentinel; only a constant
// violation surfaces as a fatal error.
func (x *Executor) executeFeature(doc *Document, f *Feature) Outcome {
	expected := any(Any)
	if f.HasExpected {
		var err error
		expected, err = doc.Scope.Dereference(f.Expected)
		if err != nil {
			expected = f.Expected
		}
	}

	result, execErr := x.resolve(doc, f)
	if execErr != nil {
		result = ErrorSentinel
	}
	result = Normalize(result)

	// Package-not-ready: the package-identity read is forced to ERROR when
	// introspection yielded nothing, whatever the read produced.
	if !doc.Ready && f.Property == PackageConstant {
		result = ErrorSentinel
		if execErr == nil {
			execErr = fmt.Errorf("package %q could not be loaded", doc.Package)
		}
	}

	if f.Target != "" {
		if err := doc.Scope.Assign(splitPath(f.Target), result); err != nil {
			var violation *ConstantViolationError
			if errors.As(err, &violation) {
				return Outcome{Feature: f, Status: StatusFailed, Result: result, Expected: expected, Err: err}
			}
			result = ErrorSentinel
			execErr = err
		}
	}

	if success(result, expected) {
		return Outcome{Feature: f, Status: StatusPassed, Result: result, Expected: expected}
	}
	return Outcome{Feature: f, Status: StatusFailed, Result: result, Expected: expected, Err: execErr}
}

// resolve dereferences the feature's inputs, walks the property path, and
// performs the call or plain read. Panics during resolution are recovered
// into errors.
func (x *Executor) resolve(doc *Document, f *Feature) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("resolution panicked: %v", r)
		}
	}()

	args, err := doc.Scope.Dereference(f.Args)
	if err != nil {
		return nil, err
	}
	kwargs, err := doc.Scope.DereferenceMap(f.Kwargs)
	if err != nil {
		return nil, err
	}

	value, err := doc.Scope.Resolve(f.Path)
	if err != nil {
		return nil, err
	}
	if !f.Call {
		return value, nil
	}
	seq, _ := args.([]any)
	return invoke(value, seq, kwargs)
}

// success applies the comparison semantics: ERROR expectations match only
// the ERROR sentinel, ANY matches every non-error result, everything else
// compares by normalized equality.
func success(result, expected any) bool {
	switch {
	case isSentinel(expected, ErrorSentinel):
		return isSentinel(result, ErrorSentinel)
	case isSentinel(expected, Any):
		return !isSentinel(result, ErrorSentinel)
	default:
		return Equal(result, expected)
	}
}

func isSentinel(v any, sentinel string) bool {
	s, ok := v.(string)
	return ok && s == sentinel
}

func splitPath(dotted string) []string {
	return strings.Split(dotted, ".")
}
