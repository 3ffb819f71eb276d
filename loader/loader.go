// Package loader discovers specification files, decodes their YAML entries,
// and assembles them into executable documents, one per package identity.
//
// Error policy follows "run everything parseable": a file with a malformed
// entry is dropped with a warning, a file without the package marker is
// skipped silently, and the rest of the run proceeds.
package loader

import (
	"log/slog"
	"sort"

	"github.com/c360studio/packcheck/introspect"
	"github.com/c360studio/packcheck/spec"
)

// DefaultHostTag identifies this implementation in filter tags.
const DefaultHostTag = "go"

// Options configure a Loader. Zero values fall back to the defaults used by
// the CLI.
type Options struct {
	HostTag      string
	Patterns     []string
	Introspector introspect.Introspector
	Hooks        *introspect.HookRegistry
	Logger       *slog.Logger
}

// Loader builds documents from specification files on disk.
type Loader struct {
	hostTag      string
	patterns     []string
	introspector introspect.Introspector
	hooks        *introspect.HookRegistry
	logger       *slog.Logger
}

// NewLoader creates a loader from options.
func NewLoader(opts Options) *Loader {
	l := &Loader{
		hostTag:      opts.HostTag,
		patterns:     opts.Patterns,
		introspector: opts.Introspector,
		hooks:        opts.Hooks,
		logger:       opts.Logger,
	}
	if l.hostTag == "" {
		l.hostTag = DefaultHostTag
	}
	if len(l.patterns) == 0 {
		l.patterns = DefaultPatterns
	}
	if l.introspector == nil {
		l.introspector = introspect.DefaultRegistry
	}
	if l.hooks == nil {
		l.hooks = introspect.DefaultHooks
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load discovers specification files under root and merges them into
// documents keyed by package identity. Files sharing a package concatenate
// their feature lists in discovery order; the scope is seeded once per
// document. Documents are returned sorted by package name.
func (l *Loader) Load(root string) ([]*spec.Document, error) {
	files, err := Discover(root, l.patterns)
	if err != nil {
		return nil, err
	}

	byPackage := make(map[string]*spec.Document)
	for _, path := range files {
		fs, err := ParseFile(path)
		if err != nil {
			l.logger.Warn("Dropping unparseable spec file",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		if fs == nil {
			l.logger.Debug("Skipping non-spec yaml file", slog.String("path", path))
			continue
		}

		features, err := spec.ParseEntries(fs.Entries, l.hostTag)
		if err != nil {
			l.logger.Warn("Dropping spec file with malformed feature",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}

		doc, ok := byPackage[fs.Package]
		if !ok {
			doc = l.newDocument(fs.Package)
			byPackage[fs.Package] = doc
		}
		l.bindHooks(doc, fs.Hooks)
		doc.Append(path, features)
	}

	docs := make([]*spec.Document, 0, len(byPackage))
	for _, doc := range byPackage {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Package < docs[j].Package })
	return docs, nil
}

// newDocument seeds a document's scope from package introspection. An empty
// surface marks the document not ready rather than failing the load.
func (l *Loader) newDocument(pkg string) *spec.Document {
	doc := spec.NewDocument(pkg)
	surface, err := l.introspector.Introspect(pkg)
	if err != nil {
		l.logger.Warn("Package introspection failed",
			slog.String("package", pkg), slog.String("error", err.Error()))
		surface = nil
	}
	doc.Ready = len(surface) > 0
	doc.Scope.Seed(surface)
	doc.Scope.Bind(spec.PackageConstant, pkg)
	if !doc.Ready {
		l.logger.Debug("Package not ready", slog.String("package", pkg))
	}
	return doc
}

// bindHooks injects requested extension hooks into the document scope under
// the hook prefix. Unregistered names are logged and ignored: the block was
// likely authored for a different host.
func (l *Loader) bindHooks(doc *spec.Document, names []string) {
	if len(names) == 0 {
		return
	}
	bound, missing := l.hooks.Resolve(names)
	for name, fn := range bound {
		doc.Scope.Bind(name, fn)
	}
	for _, name := range missing {
		l.logger.Warn("Unknown extension hook",
			slog.String("package", doc.Package), slog.String("hook", name))
	}
}
