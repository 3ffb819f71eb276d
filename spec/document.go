package spec

// Stats aggregates one document's outcomes. Passed counts skipped features
// and comments as trivially passed, matching the overall success rule
// Passed == Features.
type Stats struct {
	Features int
	Comments int
	Tests    int
	Skipped  int
	Passed   int
	Failed   int

	// Markers counts package-identity reads that passed. They establish the
	// document's subject rather than assert behavior, so reports exclude
	// them alongside comments and skips; a failed identity read stays in
	// the displayed ratio.
	Markers int
}

// Executed returns the assertion counts with comments, skipped entries, and
// passed identity markers removed from both sides, which is what reports
// display.
func (s Stats) Executed() (passed, total int) {
	excluded := s.Comments + s.Skipped + s.Markers
	return s.Passed - excluded, s.Features - excluded
}

// Document is one logical package's full feature list plus its scope and
// aggregate stats. Several physical files naming the same package merge into
// one document, their features concatenated in discovery order.
type Document struct {
	Package  string
	Paths    []string
	Features []*Feature
	Scope    *Scope

	// Ready is false when package introspection produced no surface; the
	// package-identity read is then forced to ERROR instead of aborting,
	// so remaining features still run and fail informatively.
	Ready bool

	Stats Stats
}

// NewDocument creates a document for a package with an empty scope.
func NewDocument(pkg string) *Document {
	return &Document{Package: pkg, Scope: NewScope()}
}

// Append adds one file's parsed features to the document.
func (d *Document) Append(path string, features []*Feature) {
	d.Paths = append(d.Paths, path)
	d.Features = append(d.Features, features...)
}

// Success reports whether every feature passed, counting comments and
// skipped features as passed.
func (d *Document) Success() bool {
	return d.Stats.Passed == d.Stats.Features
}
