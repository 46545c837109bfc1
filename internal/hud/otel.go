package hud

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"connector-align/internal/logging"
)

const instrumentationName = "connector-align/internal/hud"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are the per-run metrics. An instrument that failed to
// register stays nil and is skipped.
type instruments struct {
	runs     metric.Int64Counter
	pairs    metric.Int64Counter
	distance metric.Float64Histogram
}

func newInstruments(m metric.Meter, log logging.Logger) instruments {
	if m == nil {
		m = meter()
	}
	var (
		in  instruments
		err error
	)
	in.runs, err = m.Int64Counter("hud.runs",
		metric.WithDescription("HUD evaluations"))
	if err != nil {
		log.Warn("hud: register hud.runs", "error", err)
	}
	in.pairs, err = m.Int64Counter("hud.pairs.found",
		metric.WithDescription("HUD evaluations that found a connector pair"))
	if err != nil {
		log.Warn("hud: register hud.pairs.found", "error", err)
	}
	in.distance, err = m.Float64Histogram("hud.pair.distance",
		metric.WithDescription("Distance between the selected connectors"),
		metric.WithUnit("m"))
	if err != nil {
		log.Warn("hud: register hud.pair.distance", "error", err)
	}
	return in
}

func (in instruments) record(ctx context.Context, paired bool, distance float64) {
	if in.runs != nil {
		in.runs.Add(ctx, 1)
	}
	if !paired {
		return
	}
	if in.pairs != nil {
		in.pairs.Add(ctx, 1)
	}
	if in.distance != nil {
		in.distance.Record(ctx, distance)
	}
}
