package battlescape

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Battlescape/internal/battlescape"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are the scheduler's counters. They go to the global OTel
// provider and are no-ops unless the host installs one.
type instruments struct {
	ticks    metric.Int64Counter
	pushed   metric.Int64Counter
	rejected metric.Int64Counter
}

func newInstruments() (instruments, error) {
	m := meter()
	var (
		in  instruments
		err error
	)
	in.ticks, err = m.Int64Counter(
		"battlescape.ticks",
		metric.WithDescription("Scheduler ticks executed"),
	)
	if err != nil {
		return in, fmt.Errorf("creating ticks counter: %w", err)
	}
	in.pushed, err = m.Int64Counter(
		"battlescape.actions.pushed",
		metric.WithDescription("Actions pushed onto the scheduler stack"),
	)
	if err != nil {
		return in, fmt.Errorf("creating pushed counter: %w", err)
	}
	in.rejected, err = m.Int64Counter(
		"battlescape.commands.rejected",
		metric.WithDescription("Commands rejected by validation"),
	)
	if err != nil {
		return in, fmt.Errorf("creating rejected counter: %w", err)
	}
	return in, nil
}

func (in instruments) tick() {
	in.ticks.Add(context.Background(), 1)
}

func (in instruments) push(k ActionKind) {
	in.pushed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", k.String())))
}

func (in instruments) reject(r Reason) {
	in.rejected.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", string(r))))
}
