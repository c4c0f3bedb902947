package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"
)

// Factory constructs a provider from its class-specific configuration node.
// The raw node is the provider's own schema; factories must reject unknown
// keys so misconfiguration fails at startup rather than at request time.
type Factory func(config json.RawMessage) (Provider, error)

var factories = map[string]Factory{}

// Register adds a provider factory under its class name. Called from
// provider package init functions.
func Register(class string, factory Factory) {
	factories[class] = factory
}

// configDocument is the provider configuration file schema.
type configDocument struct {
	// Class names the registered provider implementation.
	Class string `json:"class"`

	// Config is the class-specific configuration node.
	Config json.RawMessage `json:"config,omitempty"`
}

// Load reads the provider configuration document, instantiates the named
// provider, and initializes it. Every failure here is fatal to the process:
// running without an explicitly chosen provider would mean an accidentally
// unauthenticated deployment.
func Load(ctx context.Context, path string) (Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("auth provider configuration path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading auth provider configuration: %w", err)
	}

	var doc configDocument
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing auth provider configuration: %w", err)
	}
	if doc.Class == "" {
		return nil, fmt.Errorf("auth provider configuration is missing 'class'")
	}

	factory, ok := factories[doc.Class]
	if !ok {
		return nil, fmt.Errorf("unknown auth provider class %q (registered: %v)", doc.Class, registered())
	}

	provider, err := factory(doc.Config)
	if err != nil {
		return nil, fmt.Errorf("constructing auth provider %q: %w", doc.Class, err)
	}

	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing auth provider %q: %w", doc.Class, err)
	}

	return provider, nil
}

func registered() []string {
	classes := make([]string, 0, len(factories))
	for class := range factories {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
