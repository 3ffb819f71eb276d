package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/c360studio/packcheck/spec"
	"gopkg.in/yaml.v3"
)

// FileSpec is one specification file's raw content: its package identity,
// ordered entries, and the hook names requested by the optional extension
// block (a second YAML document of the form `hooks: [name, ...]`).
type FileSpec struct {
	Path    string
	Package string
	Entries []spec.Entry
	Hooks   []string
}

// ParseFile reads and decodes one specification file. It returns (nil, nil)
// when the file is valid YAML but not a specification (no package marker);
// such files are silently skipped.
func ParseFile(path string) (*FileSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return ParseBytes(path, data)
}

// ParseBytes decodes a specification from raw YAML. The first document is
// the entry sequence; an optional second document is the extension block.
func ParseBytes(path string, data []byte) (*FileSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	seq := unwrapDocument(&root)
	if seq.Kind != yaml.SequenceNode {
		return nil, nil
	}

	fs := &FileSpec{Path: path}
	for _, item := range seq.Content {
		entry, err := decodeEntry(item)
		if err != nil {
			return nil, err
		}
		fs.Entries = append(fs.Entries, entry)
	}

	pkg, ok := packageIdentity(fs.Entries)
	if !ok {
		return nil, nil
	}
	fs.Package = pkg

	var ext yaml.Node
	if err := dec.Decode(&ext); err == nil {
		hooks, err := decodeExtension(&ext)
		if err != nil {
			return nil, err
		}
		fs.Hooks = hooks
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode extension block: %w", err)
	}
	return fs, nil
}

// packageIdentity checks that the first non-comment entry is the PACKAGE
// read and returns the package name.
func packageIdentity(entries []spec.Entry) (string, bool) {
	for _, e := range entries {
		if e.Comment {
			continue
		}
		name, ok := e.Value.(string)
		if !ok || e.Key != spec.PackageConstant {
			return "", false
		}
		return name, true
	}
	return "", false
}

func unwrapDocument(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return n.Content[0]
	}
	return n
}

// decodeEntry turns one sequence item into a raw entry: a scalar string is a
// comment, a single-key mapping is a feature.
func decodeEntry(n *yaml.Node) (spec.Entry, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!str" {
			return spec.Entry{}, &spec.MalformedEntryError{Entry: n.Value, Reason: "scalar entry must be a string"}
		}
		return spec.Entry{Comment: true, Text: n.Value}, nil
	case yaml.MappingNode:
		if len(n.Content) != 2 {
			return spec.Entry{}, &spec.MalformedEntryError{Entry: renderNode(n), Reason: "feature entry must have exactly one key"}
		}
		key := resolveAlias(n.Content[0])
		if key.Kind != yaml.ScalarNode {
			return spec.Entry{}, &spec.MalformedEntryError{Entry: renderNode(n), Reason: "feature key must be a string"}
		}
		value, err := decodeValue(n.Content[1])
		if err != nil {
			return spec.Entry{}, err
		}
		return spec.Entry{Key: key.Value, Value: value}, nil
	}
	return spec.Entry{}, &spec.MalformedEntryError{Entry: renderNode(n), Reason: "entry must be a string or a single-key mapping"}
}

// decodeValue maps a YAML node into the value domain, preserving mapping
// insertion order.
func decodeValue(n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode scalar %q: %w", n.Value, err)
		}
		if i, ok := v.(int); ok {
			return int64(i), nil
		}
		return v, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := spec.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := resolveAlias(n.Content[i])
			if key.Kind != yaml.ScalarNode {
				return nil, &spec.MalformedEntryError{Entry: renderNode(n), Reason: "mapping keys must be strings"}
			}
			v, err := decodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out.Set(key.Value, v)
		}
		return out, nil
	}
	return nil, &spec.MalformedEntryError{Entry: renderNode(n), Reason: "unsupported value node"}
}

// decodeExtension reads the `hooks: [name, ...]` block.
func decodeExtension(n *yaml.Node) ([]string, error) {
	var block struct {
		Hooks []string `yaml:"hooks"`
	}
	if err := n.Decode(&block); err != nil {
		return nil, fmt.Errorf("decode extension block: %w", err)
	}
	return block.Hooks, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func renderNode(n *yaml.Node) string {
	out, err := yaml.Marshal(n)
	if err != nil {
		return fmt.Sprintf("line %d", n.Line)
	}
	return string(bytes.TrimSpace(out))
}
