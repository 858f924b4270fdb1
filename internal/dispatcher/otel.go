package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/geohunt/arcoin/internal/dispatcher"

// instruments holds per-dispatcher OTel metrics. The global meter
// provider is used, which yields no-op instruments when telemetry is
// not configured, so recording is always safe.
type instruments struct {
	queueDepth metric.Int64ObservableGauge
	processed  metric.Int64Counter
	dropped    metric.Int64Counter
}

// newInstruments creates the dispatcher instruments. The observe
// callback is invoked on every metric collection cycle and should
// report the current depth of each command queue.
func newInstruments(observe func(report func(command string, depth int64))) (*instruments, error) {
	m := otel.Meter(instrumentationName)
	ins := &instruments{}

	var err error

	ins.queueDepth, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of commands in queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			observe(func(command string, depth int64) {
				o.ObserveInt64(ins.queueDepth, depth,
					metric.WithAttributes(attribute.String("command", command)))
			})
			return nil
		},
		ins.queueDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	ins.processed, err = m.Int64Counter(
		"dispatcher.commands.processed",
		metric.WithDescription("Total commands processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	ins.dropped, err = m.Int64Counter(
		"dispatcher.commands.dropped",
		metric.WithDescription("Total commands dropped due to full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return ins, nil
}

func (i *instruments) commandProcessed(command string) {
	i.processed.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("command", command)))
}

func (i *instruments) commandDropped(command string) {
	i.dropped.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("command", command)))
}
