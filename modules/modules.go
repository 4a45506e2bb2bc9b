// Package modules loads the table of statically known module exports the
// extractor may read values from.
//
// The table is a YAML (or JSON) mapping of module specifier to its exports:
//
//	./theme.js:
//	  spacing: 8
//	  colors: { primary: "#0af" }
//	"@acme/tokens":
//	  default: { radius: 4 }
//
// Relative specifiers are resolved against the directory of the table file,
// bare specifiers are kept as written. Key order of mappings is preserved.
package modules

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jsxstyle/jsxstyle-sub000/scope"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

// ErrFormat is returned when the table is not a mapping of specifiers.
var ErrFormat = errors.New("bad modules table")

// Load reads the table at path. An empty path yields an empty table.
func Load(path string) (scope.Modules, error) {
	if path == "" {
		return scope.Modules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modules table: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve modules table path: %w", err)
	}
	return Parse(data, filepath.Dir(abs))
}

// Parse decodes a table, resolving relative specifiers against dir.
func Parse(data []byte, dir string) (scope.Modules, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse modules table: %w", err)
	}

	mods := scope.Modules{}
	if doc.Kind == 0 {
		// empty document
		return mods, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", ErrFormat, root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, node := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, fmt.Errorf("%w: line %d: module specifier must be a non-empty string", ErrFormat, key.Line)
		}
		v, err := decode(node)
		if err != nil {
			return nil, err
		}
		mods[specifier(key.Value, dir)] = v
	}
	return mods, nil
}

func specifier(name, dir string) string {
	switch {
	case strings.HasPrefix(name, "./"), strings.HasPrefix(name, "../"), name == ".", name == "..":
		return filepath.Join(dir, filepath.FromSlash(name))
	case filepath.IsAbs(name):
		return filepath.Clean(name)
	default:
		return name
	}
}

func decode(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decode(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return value.Undefined, nil
		}
		return decode(n.Content[0])
	case yaml.SequenceNode:
		arr := make(value.Array, 0, len(n.Content))
		for _, ch := range n.Content {
			v, err := decode(ch)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := value.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: object keys must be scalars", ErrFormat, k.Line)
			}
			if k.ShortTag() == "!!merge" {
				if err := merge(obj, n.Content[i+1]); err != nil {
					return nil, err
				}
				continue
			}
			v, err := decode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(k.Value, v)
		}
		return obj, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("%w: line %d: unsupported node", ErrFormat, n.Line)
}

func merge(obj *value.Object, n *yaml.Node) error {
	v, err := decode(n)
	if err != nil {
		return err
	}
	src, ok := v.(*value.Object)
	if !ok {
		return fmt.Errorf("%w: line %d: merge source must be a mapping", ErrFormat, n.Line)
	}
	// keys set explicitly win over merged ones
	for _, k := range src.Keys() {
		if !obj.Has(k) {
			sv, _ := src.Get(k)
			obj.Set(k, sv)
		}
	}
	return nil
}

func scalar(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrFormat, n.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrFormat, n.Line, err)
		}
		return float64(i), nil
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".nan":
			return math.NaN(), nil
		case ".inf", "+.inf":
			return math.Inf(1), nil
		case "-.inf":
			return math.Inf(-1), nil
		}
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrFormat, n.Line, err)
		}
		return f, nil
	case "!!str":
		if n.Value == "undefined" && n.Style == 0 {
			return value.Undefined, nil
		}
		return n.Value, nil
	}
	return nil, fmt.Errorf("%w: line %d: unsupported tag %s", ErrFormat, n.Line, n.Tag)
}
