// ABOUTME: Platform engine boundary: staged build hooks implemented by concrete backends.
// ABOUTME: Engines are registered explicitly by name; no automatic discovery.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/HPENetworking/topology-sub000/graph"
)

// Stage identifies a step of the build lifecycle, passed to Rollback so an
// engine knows how far the build got before failing.
type Stage string

const (
	StagePreBuild  Stage = "pre_build"
	StageAddNode   Stage = "add_node"
	StageAddPort   Stage = "add_port"
	StageAddLink   Stage = "add_link"
	StagePostBuild Stage = "post_build"
)

// Platform is implemented by topology engines. The manager drives the hooks
// in a fixed order: PreBuild once, AddNode per node, AddPort per port,
// AddLink per link, PostBuild once. Destroy tears the built topology down.
// Rollback is called when any build hook fails, with the stage that failed.
type Platform interface {
	PreBuild(ctx context.Context, g *graph.TopologyGraph) error
	AddNode(ctx context.Context, node *graph.Node) error
	AddPort(ctx context.Context, port *graph.Port) error
	AddLink(ctx context.Context, link *graph.Link) error
	PostBuild(ctx context.Context) error
	Destroy(ctx context.Context) error
	Rollback(ctx context.Context, stage Stage, cause error) error
}

// Options carries engine-specific settings from the caller to the factory.
type Options map[string]any

// Factory builds a platform instance for one topology run.
type Factory func(logger *slog.Logger, options Options) (Platform, error)

// Registry maps engine names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a name. Registering the same name twice is
// an error.
func (r *Registry) Register(name string, factory Factory) error {
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("platform %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q (available: %v)", name, r.Names())
	}
	return factory, nil
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName is the engine used when the caller does not pick one.
const DefaultName = "debug"

// DefaultRegistry returns a registry with the built-in engines.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(DefaultName, NewDebug)
	return r
}
