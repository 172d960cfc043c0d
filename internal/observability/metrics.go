package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the OpenTelemetry instruments every memory component
// touches, grounded on the teacher's internal/observability/otel.go
// (same otel.SetMeterProvider + named-instrument wiring), narrowed to the
// counters/histogram SPEC_FULL §4.R names: nodes added/pruned/evicted,
// proposals accepted/rejected, reflections run, and reflection duration.
// Telemetry is an external sink (spec §1 Non-goals exclude an observability
// *design*) but the instruments are always created. All except NodesEvicted
// are called; NodesEvicted has no call site.
type Metrics struct {
	NodesAdded         metric.Int64Counter
	NodesPruned        metric.Int64Counter
	NodesEvicted       metric.Int64Counter
	ProposalsAccepted  metric.Int64Counter
	ProposalsRejected  metric.Int64Counter
	ReflectionsRun     metric.Int64Counter
	ReflectionDuration metric.Float64Histogram
}

// InitMetrics installs a process-wide MeterProvider and returns the bound
// instruments. Call once at process start; per-agent code just calls the
// returned Metrics' Add/Record methods with an agent_id attribute.
func InitMetrics() (*Metrics, func(context.Context) error, error) {
	mp := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(mp)

	meter := mp.Meter("cogmem")

	nodesAdded, err := meter.Int64Counter("cogmem_knowledge_graph_nodes_added_total")
	if err != nil {
		return nil, nil, err
	}
	nodesPruned, err := meter.Int64Counter("cogmem_knowledge_graph_nodes_pruned_total")
	if err != nil {
		return nil, nil, err
	}
	nodesEvicted, err := meter.Int64Counter("cogmem_knowledge_graph_nodes_evicted_total")
	if err != nil {
		return nil, nil, err
	}
	proposalsAccepted, err := meter.Int64Counter("cogmem_proposals_accepted_total")
	if err != nil {
		return nil, nil, err
	}
	proposalsRejected, err := meter.Int64Counter("cogmem_proposals_rejected_total")
	if err != nil {
		return nil, nil, err
	}
	reflectionsRun, err := meter.Int64Counter("cogmem_reflections_run_total")
	if err != nil {
		return nil, nil, err
	}
	reflectionDuration, err := meter.Float64Histogram("cogmem_reflection_duration_ms")
	if err != nil {
		return nil, nil, err
	}

	return &Metrics{
		NodesAdded:         nodesAdded,
		NodesPruned:        nodesPruned,
		NodesEvicted:       nodesEvicted,
		ProposalsAccepted:  proposalsAccepted,
		ProposalsRejected:  proposalsRejected,
		ReflectionsRun:     reflectionsRun,
		ReflectionDuration: reflectionDuration,
	}, mp.Shutdown, nil
}
