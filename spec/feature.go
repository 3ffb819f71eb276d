package spec

import (
	"regexp"
	"strings"
)

// PackageConstant is the reserved binding identifying the package under test.
// The first non-comment entry of every document must read it.
const PackageConstant = "PACKAGE"

// Entry is one raw specification entry as decoded by the loader: either a
// bare string (a comment) or a single-key mapping (a feature).
type Entry struct {
	Comment bool
	Text    string
	Key     string
	Value   any
}

// Feature is one parsed specification unit: a comment, a property read, a
// call, or an assignment. Text is the canonical rendering used for reporting.
type Feature struct {
	Comment     bool
	CommentText string

	Target   string
	Property string
	Path     []string
	Call     bool
	Args     []any
	Kwargs   *Map

	Expected    any
	HasExpected bool

	Skip bool
	Text string

	hasFilter  bool
	filterSkip bool
}

var (
	lhsPattern     = regexp.MustCompile(`^(?:\(([^()]*)\))?(?:([A-Za-z0-9_$.]+)=)?([A-Za-z0-9_$.]+)(\(\))?$`)
	commentPattern = regexp.MustCompile(`^\(([^()]*)\)\s*(.*)$`)
)

// ParseEntries parses a document's raw entries into an ordered feature
// sequence for the given host tag. A comment's filter seeds the skip state of
// every following feature until the next comment; a feature's own filter
// clause overrides the inherited state. The first malformed entry aborts the
// whole document.
func ParseEntries(entries []Entry, hostTag string) ([]*Feature, error) {
	features := make([]*Feature, 0, len(entries))
	inherited := false
	for _, entry := range entries {
		f, err := ParseEntry(entry, hostTag)
		if err != nil {
			return nil, err
		}
		if f.Comment {
			if f.hasFilter {
				inherited = f.filterSkip
			} else {
				inherited = false
			}
		} else if !f.hasFilter {
			f.Skip = inherited
		}
		features = append(features, f)
	}
	return features, nil
}

// ParseEntry parses one raw entry into a Feature or comment. The caller is
// responsible for comment skip inheritance (see ParseEntries).
func ParseEntry(entry Entry, hostTag string) (*Feature, error) {
	if entry.Comment {
		return parseComment(entry.Text, hostTag), nil
	}

	m := lhsPattern.FindStringSubmatch(entry.Key)
	if m == nil {
		// A trailing colon in YAML turns a comment line into a single-key
		// mapping with a null value; accept that form as a comment.
		if entry.Value == nil {
			return parseComment(entry.Key, hostTag), nil
		}
		return nil, &MalformedEntryError{Entry: entry.Key, Reason: "key does not match feature grammar"}
	}
	tags, target, property, callMark := m[1], m[2], m[3], m[4]

	f := &Feature{
		Target:   target,
		Property: property,
		Path:     strings.Split(property, "."),
		Call:     callMark != "",
		Kwargs:   NewMap(),
	}
	if tags != "" {
		f.hasFilter = true
		f.filterSkip = skipForTag(tags, hostTag)
		f.Skip = f.filterSkip
	}

	if !f.Call {
		f.Expected = entry.Value
		f.HasExpected = true
		f.Text = f.render()
		return f, nil
	}

	seq, ok := entry.Value.([]any)
	if !ok {
		return nil, &MalformedEntryError{Entry: entry.Key, Reason: "call feature requires a sequence value"}
	}
	if err := f.parseCallSequence(entry.Key, seq); err != nil {
		return nil, err
	}
	f.Text = f.render()
	return f, nil
}

// parseCallSequence splits a call feature's value into positional arguments,
// keyword arguments, and the expected result. The expected result is either
// the final explicit "==" marker or, for non-assignments, the sequence's last
// element.
func (f *Feature) parseCallSequence(key string, seq []any) error {
	rest := seq
	if n := len(rest); n > 0 {
		if k, v, ok := singleKey(rest[n-1]); ok && k == "==" {
			f.Expected = v
			f.HasExpected = true
			rest = rest[:n-1]
		}
	}
	if !f.HasExpected && f.Target == "" {
		if len(rest) == 0 {
			return &MalformedEntryError{Entry: key, Reason: "call feature missing expected result"}
		}
		f.Expected = rest[len(rest)-1]
		f.HasExpected = true
		rest = rest[:len(rest)-1]
	}
	for _, el := range rest {
		if k, v, ok := singleKey(el); ok {
			if k == "==" {
				return &MalformedEntryError{Entry: key, Reason: "expected marker must be the final element"}
			}
			// A key ending in "=" with a non-null value is a keyword
			// argument; a null value is a scope reference and stays
			// positional.
			if strings.HasSuffix(k, "=") && v != nil {
				f.Kwargs.Set(strings.TrimSuffix(k, "="), v)
				continue
			}
		}
		f.Args = append(f.Args, el)
	}
	return nil
}

func parseComment(text, hostTag string) *Feature {
	f := &Feature{Comment: true, CommentText: text}
	if m := commentPattern.FindStringSubmatch(text); m != nil {
		f.hasFilter = true
		f.filterSkip = skipForTag(m[1], hostTag)
		f.CommentText = m[2]
	}
	f.Text = f.CommentText
	return f
}

// skipForTag resolves a filter-tag list against the host tag. A negated tag
// for the host always skips; a purely positive list skips unless the host is
// listed; unknown tags in a list containing any negation stay applicable.
func skipForTag(tags, hostTag string) bool {
	rules := strings.FieldsFunc(tags, func(r rune) bool { return r == ',' || r == '|' })
	negated := false
	listed := false
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "!"+hostTag {
			return true
		}
		if strings.HasPrefix(rule, "!") {
			negated = true
		} else if rule == hostTag {
			listed = true
		}
	}
	return !negated && !listed
}

// singleKey unwraps a one-entry mapping into its key and value.
func singleKey(v any) (string, any, bool) {
	m, ok := v.(*Map)
	if !ok || m.Len() != 1 {
		return "", nil, false
	}
	k := m.keys[0]
	return k, m.vals[k], true
}

// render derives the deterministic human-readable feature text, e.g.
// `target = property(arg, kw=1)` or `property(arg) == 5`.
func (f *Feature) render() string {
	s := f.Property
	if f.Call {
		parts := make([]string, 0, len(f.Args)+f.Kwargs.Len())
		for _, a := range f.Args {
			parts = append(parts, Render(a))
		}
		for _, k := range f.Kwargs.Keys() {
			v, _ := f.Kwargs.Get(k)
			parts = append(parts, k+"="+Render(v))
		}
		s += "(" + strings.Join(parts, ", ") + ")"
	}
	if f.Target != "" {
		return f.Target + " = " + s
	}
	if f.HasExpected {
		s += " == " + Render(f.Expected)
	}
	return s
}
