// ABOUTME: Debug platform engine: logs every build hook and records the call sequence.
// ABOUTME: Builds nothing real; used as the default engine and in manager tests.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/HPENetworking/topology-sub000/graph"
)

// Debug is a no-op engine that logs each hook with a per-run session
// identifier and records the sequence of calls it received.
type Debug struct {
	logger  *slog.Logger
	session string

	// failAt, when set via the "fail_at" option, makes the hook for that
	// stage return an error. Used to exercise rollback paths.
	failAt Stage

	mu    sync.Mutex
	calls []string
}

// NewDebug builds a debug engine. Recognized options: "fail_at" (string
// stage name) to force a failure at that stage.
func NewDebug(logger *slog.Logger, options Options) (Platform, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Debug{
		logger:  logger,
		session: uuid.NewString(),
	}
	if v, ok := options["fail_at"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("debug platform: %q option must be a string", "fail_at")
		}
		d.failAt = Stage(s)
	}
	return d, nil
}

// Session returns the engine's run identifier.
func (d *Debug) Session() string {
	return d.session
}

// Calls returns the recorded hook invocations in order.
func (d *Debug) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

func (d *Debug) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *Debug) hook(stage Stage, call string, attrs ...any) error {
	d.record(call)
	attrs = append([]any{"session", d.session, "call", call}, attrs...)
	d.logger.Debug("debug platform hook", attrs...)
	if stage != "" && stage == d.failAt {
		return fmt.Errorf("debug platform: forced failure at %s", stage)
	}
	return nil
}

func (d *Debug) PreBuild(ctx context.Context, g *graph.TopologyGraph) error {
	return d.hook(StagePreBuild, "pre_build",
		"nodes", len(g.Nodes()), "ports", len(g.Ports()), "links", len(g.Links()))
}

func (d *Debug) AddNode(ctx context.Context, node *graph.Node) error {
	return d.hook(StageAddNode, "add_node "+node.ID)
}

func (d *Debug) AddPort(ctx context.Context, port *graph.Port) error {
	return d.hook(StageAddPort, "add_port "+port.ID)
}

func (d *Debug) AddLink(ctx context.Context, link *graph.Link) error {
	return d.hook(StageAddLink, "add_link "+link.ID)
}

func (d *Debug) PostBuild(ctx context.Context) error {
	return d.hook(StagePostBuild, "post_build")
}

func (d *Debug) Destroy(ctx context.Context) error {
	return d.hook("", "destroy")
}

func (d *Debug) Rollback(ctx context.Context, stage Stage, cause error) error {
	return d.hook("", fmt.Sprintf("rollback %s", stage), "cause", cause)
}
