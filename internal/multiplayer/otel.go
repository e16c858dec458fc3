package multiplayer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/vovakirdan/warzone/internal/multiplayer"

// meter falls back to the global provider, a no-op unless one is installed.
func meter(mp metric.MeterProvider) metric.Meter {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	return mp.Meter(instrumentationName)
}

// metrics holds the controller instruments.
type metrics struct {
	ticks        metric.Int64Counter
	intents      metric.Int64Counter
	spawns       metric.Int64Counter
	finished     metric.Int64Counter
	tickDuration metric.Float64Histogram
	sessions     metric.Int64ObservableGauge
}

func newMetrics(mp metric.MeterProvider, registry *SessionRegistry) (*metrics, error) {
	m := meter(mp)
	var (
		mt  metrics
		err error
	)

	mt.ticks, err = m.Int64Counter(
		"warzone.ticks",
		metric.WithDescription("Simulation ticks executed while playing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.intents, err = m.Int64Counter(
		"warzone.intents",
		metric.WithDescription("Client intents drained from the queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating intents counter: %w", err)
	}

	mt.spawns, err = m.Int64Counter(
		"warzone.spawns",
		metric.WithDescription("Spawn requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spawns counter: %w", err)
	}

	mt.finished, err = m.Int64Counter(
		"warzone.matches.finished",
		metric.WithDescription("Matches finished by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating finished counter: %w", err)
	}

	mt.tickDuration, err = m.Float64Histogram(
		"warzone.tick.duration",
		metric.WithDescription("Wall time spent in one controller tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	mt.sessions, err = m.Int64ObservableGauge(
		"warzone.sessions",
		metric.WithDescription("Connected sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions gauge: %w", err)
	}
	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.sessions, int64(registry.Count()))
			return nil
		},
		mt.sessions,
	)
	if err != nil {
		return nil, fmt.Errorf("registering sessions callback: %w", err)
	}

	return &mt, nil
}

func (m *metrics) recordTick(ctx context.Context, simulated bool, intents int, took time.Duration) {
	if simulated {
		m.ticks.Add(ctx, 1)
	}
	if intents > 0 {
		m.intents.Add(ctx, int64(intents))
	}
	m.tickDuration.Record(ctx, float64(took.Microseconds())/1000)
}

func (m *metrics) recordSpawn(ctx context.Context, result string) {
	m.spawns.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *metrics) recordFinish(ctx context.Context, reason string) {
	m.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
