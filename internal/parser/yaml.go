package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/foldline/internal/outline"
	"gopkg.in/yaml.v3"
)

// YAMLParser handles YAML outlines. Mapping keys and sequence entries
// become lines indented by their nesting depth; a scalar mapping value is
// kept on its key's line.
type YAMLParser struct{}

// maxYAMLLinesPerByte bounds how many lines alias expansion may produce
// relative to the input size.
const maxYAMLLinesPerByte = 8

var (
	errRecursiveAlias = errors.New("recursive alias")
	errAliasExpansion = errors.New("alias expansion exceeds line limit")
)

func (p *YAMLParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	doc := &outline.Document{Title: titleFromFilename(filename)}

	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(src)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	maxLines := max(len(src)*maxYAMLLinesPerByte, 1024)
	emit := func(depth int, s string) error {
		if s = collapseSpace(s); s != "" {
			if len(doc.Lines) >= maxLines {
				return errAliasExpansion
			}
			doc.Lines = append(doc.Lines, outline.NewLine(depth, s))
		}
		return nil
	}

	// expanding holds the alias targets on the current path.
	expanding := make(map[*yaml.Node]bool)

	var walk func(n *yaml.Node, depth int) error
	walk = func(n *yaml.Node, depth int) error {
		switch n.Kind {
		case yaml.DocumentNode, yaml.SequenceNode:
			for _, c := range n.Content {
				if err := walk(c, depth); err != nil {
					return err
				}
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(n.Content); i += 2 {
				key, val := n.Content[i], n.Content[i+1]
				if val.Kind == yaml.ScalarNode {
					line := key.Value
					if val.Value != "" {
						line += ": " + val.Value
					}
					if err := emit(depth, line); err != nil {
						return err
					}
					continue
				}
				if err := emit(depth, key.Value); err != nil {
					return err
				}
				if err := walk(val, depth+1); err != nil {
					return err
				}
			}
		case yaml.ScalarNode:
			return emit(depth, n.Value)
		case yaml.AliasNode:
			if n.Alias == nil {
				return nil
			}
			if expanding[n.Alias] {
				return errRecursiveAlias
			}
			expanding[n.Alias] = true
			err := walk(n.Alias, depth)
			delete(expanding, n.Alias)
			return err
		}
		return nil
	}
	if err := walk(&root, 0); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return doc, nil
}
