// Package catalog extracts the user-toggleable services from a rendered
// compose descriptor.
package catalog

import (
	"errors"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Annotation keys read from each service definition.
const (
	DescriptionKey = "x-devdock-description"
	SettingKey     = "x-devdock-setting-name"
)

// ErrMalformedDescriptor is returned when the descriptor has no services mapping.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

// Service is a toggleable service found in the descriptor.
type Service struct {
	Name        string
	Description string
	// Setting is the render setting that disables the service. Empty when
	// the service carries no setting annotation.
	Setting string
}

// Extract parses descriptor YAML and returns the annotated services in
// declaration order.
func Extract(data []byte) ([]Service, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDescriptor, err)
	}
	return ExtractNode(&doc)
}

// ExtractNode is Extract for an already parsed document.
func ExtractNode(doc *yaml.Node) ([]Service, error) {
	root := resolve(doc)
	if root != nil && root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformedDescriptor)
	}

	services := lookup(root, "services")
	if services == nil || services.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: missing services mapping", ErrMalformedDescriptor)
	}

	var result []Service
	for i := 0; i+1 < len(services.Content); i += 2 {
		name := services.Content[i].Value
		attrs := resolve(services.Content[i+1])
		if attrs == nil || attrs.Kind != yaml.MappingNode {
			continue
		}
		desc := lookup(attrs, DescriptionKey)
		if desc == nil {
			continue
		}
		svc := Service{Name: name, Description: scalar(desc)}
		if setting := lookup(attrs, SettingKey); setting != nil {
			svc.Setting = scalar(setting)
		}
		result = append(result, svc)
	}
	return result, nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// scalar returns the text of a scalar node. Null values read as "".
func scalar(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}
