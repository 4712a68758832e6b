// ABOUTME: TopologyManager: parse or load a topology, then drive a platform engine through
// ABOUTME: the staged build lifecycle with rollback on failure and explicit teardown.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/HPENetworking/topology-sub000/graph"
	"github.com/HPENetworking/topology-sub000/injection"
	"github.com/HPENetworking/topology-sub000/platform"
	"github.com/HPENetworking/topology-sub000/szn"
)

// ErrNotLoaded is returned by Build when no topology has been loaded.
var ErrNotLoaded = errors.New("no topology loaded")

// ErrAlreadyBuilt is returned by Build when the topology is already built.
var ErrAlreadyBuilt = errors.New("topology already built")

// ErrNotBuilt is returned by Destroy when there is nothing to tear down.
var ErrNotBuilt = errors.New("topology not built")

// Manager owns one topology's lifecycle: load, build against a platform
// engine, destroy. Each successful Build gets a fresh sortable identifier.
type Manager struct {
	engine   string
	registry *platform.Registry
	options  platform.Options
	logger   *slog.Logger

	graph   *graph.TopologyGraph
	plat    platform.Platform
	buildID string
	built   bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithEngine selects the platform engine by registry name.
func WithEngine(name string) Option {
	return func(m *Manager) { m.engine = name }
}

// WithRegistry replaces the engine registry.
func WithRegistry(r *platform.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithOptions sets engine-specific options passed to the factory.
func WithOptions(options platform.Options) Option {
	return func(m *Manager) { m.options = options }
}

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// New returns a manager using the debug engine and default registry unless
// configured otherwise.
func New(opts ...Option) *Manager {
	m := &Manager{
		engine:   platform.DefaultName,
		registry: platform.DefaultRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Parse parses SZN text, optionally overlays a resolved injection, and loads
// the result.
func (m *Manager) Parse(text string, inject *injection.FileInjection) error {
	topo, err := szn.Parse(text)
	if err != nil {
		return err
	}
	return m.Load(topo, inject)
}

// Load overlays a resolved injection (when given) onto a parsed topology and
// builds the object graph. A built topology must be destroyed first.
func (m *Manager) Load(topo *szn.Topology, inject *injection.FileInjection) error {
	if m.built {
		return ErrAlreadyBuilt
	}
	if inject != nil {
		injection.ApplyWith(m.logger, topo, inject)
	}
	g, err := graph.FromTopology(topo)
	if err != nil {
		return err
	}
	m.graph = g
	return nil
}

// Graph returns the loaded object graph, or nil before Load.
func (m *Manager) Graph() *graph.TopologyGraph {
	return m.graph
}

// BuildID returns the identifier of the current build, empty before the
// first Build.
func (m *Manager) BuildID() string {
	return m.buildID
}

// IsBuilt reports whether the topology is currently built.
func (m *Manager) IsBuilt() bool {
	return m.built
}

// Build drives the platform through the staged lifecycle: PreBuild, then
// AddNode for every node in declaration order, AddPort, AddLink, PostBuild.
// When a stage fails the platform's Rollback hook runs with the failing
// stage and the original error is returned.
func (m *Manager) Build(ctx context.Context) error {
	if m.graph == nil {
		return ErrNotLoaded
	}
	if m.built {
		return ErrAlreadyBuilt
	}

	factory, err := m.registry.Get(m.engine)
	if err != nil {
		return err
	}
	plat, err := factory(m.logger, m.options)
	if err != nil {
		return fmt.Errorf("creating %s platform: %w", m.engine, err)
	}

	buildID := ulid.Make().String()
	m.logger.Info("building topology", "engine", m.engine, "build_id", buildID)

	if err := m.runStages(ctx, plat); err != nil {
		return err
	}

	m.plat = plat
	m.buildID = buildID
	m.built = true
	m.logger.Info("topology built", "build_id", buildID)
	return nil
}

func (m *Manager) runStages(ctx context.Context, plat platform.Platform) error {
	if err := plat.PreBuild(ctx, m.graph); err != nil {
		return m.rollback(ctx, plat, platform.StagePreBuild, err)
	}
	for _, node := range m.graph.Nodes() {
		if err := plat.AddNode(ctx, node); err != nil {
			return m.rollback(ctx, plat, platform.StageAddNode, err)
		}
	}
	for _, port := range m.graph.Ports() {
		if err := plat.AddPort(ctx, port); err != nil {
			return m.rollback(ctx, plat, platform.StageAddPort, err)
		}
	}
	for _, link := range m.graph.Links() {
		if err := plat.AddLink(ctx, link); err != nil {
			return m.rollback(ctx, plat, platform.StageAddLink, err)
		}
	}
	if err := plat.PostBuild(ctx); err != nil {
		return m.rollback(ctx, plat, platform.StagePostBuild, err)
	}
	return nil
}

// rollback runs the platform's rollback hook and returns the build error.
// A rollback failure is logged, not returned: the build error is the one
// the caller needs.
func (m *Manager) rollback(ctx context.Context, plat platform.Platform, stage platform.Stage, cause error) error {
	m.logger.Error("build stage failed, rolling back", "stage", string(stage), "error", cause)
	if err := plat.Rollback(ctx, stage, cause); err != nil {
		m.logger.Error("rollback failed", "stage", string(stage), "error", err)
	}
	return fmt.Errorf("build failed at %s: %w", stage, cause)
}

// Destroy tears down the built topology.
func (m *Manager) Destroy(ctx context.Context) error {
	if !m.built {
		return ErrNotBuilt
	}
	if err := m.plat.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying topology: %w", err)
	}
	m.logger.Info("topology destroyed", "build_id", m.buildID)
	m.built = false
	m.plat = nil
	return nil
}
