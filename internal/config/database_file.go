package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-password/password"
	"gopkg.in/yaml.v3"
)

// ErrSectionExists is returned by WriteSection when the environment is
// already present and overwriting was not requested.
var ErrSectionExists = errors.New("section already exists")

// GeneratePassword returns a random password safe to embed in a URL, a YAML
// scalar and a single-quoted SQL literal.
func GeneratePassword() (string, error) {
	return password.Generate(24, 6, 0, false, true)
}

// WriteSection stores s under env in the fallback file at path. Other
// sections, comments and anchors in an existing file are kept. A file holding
// only comments keeps its text ahead of the new section.
func WriteSection(path, env string, s Section, force bool) error {
	if s.Adapter == "" {
		s.Adapter = Adapter
	}

	var (
		doc    yaml.Node
		header []byte
	)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		// No document yet, so whatever the file holds is comments or blank lines.
		header = bytes.TrimRight(data, " \t\r\n")
		if len(header) > 0 {
			header = append(header, '\n', '\n')
		}
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level is not a mapping", path)
	}

	var value yaml.Node
	if err := value.Encode(&s); err != nil {
		return fmt.Errorf("failed to encode %q section: %w", env, err)
	}

	replaced := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != env {
			continue
		}
		if !force {
			return fmt.Errorf("%s: %q: %w", path, env, ErrSectionExists)
		}
		root.Content[i+1] = &value
		replaced = true
		break
	}
	if !replaced {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: env},
			&value,
		)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	out = append(header, out...)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
