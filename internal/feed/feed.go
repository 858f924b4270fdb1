// Package feed turns external sensor sources into observer update commands
// for the dispatcher. Feeds never touch the engine directly: they only emit
// gpsFix/sensorUpdate commands, and the worker folds those into the
// observer state between ticks.
package feed

import (
	"context"
	"strconv"

	"github.com/geohunt/arcoin/internal/dispatcher"
)

// Sink receives the commands a feed produces. *dispatcher.Dispatcher
// satisfies it.
type Sink interface {
	Dispatch(dispatcher.Command) (any, error)
}

// Feed is a blocking observer update source.
type Feed interface {
	// Run blocks until the source is exhausted or the context is done.
	Run(ctx context.Context) error
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
