package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// NodeSpec is the file representation of a node and its subtree.
type NodeSpec struct {
	ID       string     `mapstructure:"id"`
	Name     string     `mapstructure:"name"`
	Type     string     `mapstructure:"type"`
	Hidden   bool       `mapstructure:"hidden"`
	Children []NodeSpec `mapstructure:"children"`
}

// DocumentSpec is the file representation of a whole tree:
//
//	id: doc
//	name: Landing
//	current: home
//	pages:
//	  - id: home
//	    name: Home
//	    children:
//	      - {id: title, type: text, name: Title}
//	      - {id: hero, type: frame, hidden: true, children: [...]}
type DocumentSpec struct {
	ID      string     `mapstructure:"id"`
	Name    string     `mapstructure:"name"`
	Current string     `mapstructure:"current"`
	Pages   []NodeSpec `mapstructure:"pages"`
}

// LoadTree reads a document from a YAML or JSON file.
func LoadTree(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}

	var raw map[string]any
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}
	return DecodeTree(raw)
}

// DecodeTree builds a tree from a generic map, as produced by a YAML or JSON
// decoder. Scalar values are converted where possible (an id of 7 is "7").
// Nodes without an id get a random one.
func DecodeTree(raw map[string]any) (*Tree, error) {
	var spec DocumentSpec
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid tree definition: %w", err)
	}
	return Build(spec)
}

// Build creates a tree from its declared form.
func Build(spec DocumentSpec) (*Tree, error) {
	id := spec.ID
	if id == "" {
		id = "document"
	}
	tree := NewTree(domain.NodeRef(id), spec.Name)

	for _, page := range spec.Pages {
		if page.Type == "" {
			page.Type = TypePage
		}
		if page.Type != TypePage {
			return nil, fmt.Errorf("page %q has type %q", page.ID, page.Type)
		}
		if err := tree.addSpec(tree.root, page); err != nil {
			return nil, err
		}
	}
	if spec.Current != "" {
		if err := tree.SetCurrentPage(domain.NodeRef(spec.Current)); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (t *Tree) addSpec(parent domain.NodeRef, spec NodeSpec) error {
	ref := spec.ID
	if ref == "" {
		ref = uuid.NewString()
	}
	if err := t.Add(parent, Node{
		Ref:    domain.NodeRef(ref),
		Name:   spec.Name,
		Type:   spec.Type,
		Hidden: spec.Hidden,
	}); err != nil {
		return err
	}
	for _, c := range spec.Children {
		if err := t.addSpec(domain.NodeRef(ref), c); err != nil {
			return err
		}
	}
	return nil
}
