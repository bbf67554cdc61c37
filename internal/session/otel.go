package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "git.lost.host/meutraa/handbeat/internal/session"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	ticks      metric.Int64Counter
	judgements metric.Int64Counter
	results    metric.Int64Counter
	active     metric.Int64ObservableGauge

	registration metric.Registration
}

// newMetrics uses the global meter, a no-op unless a provider is installed.
// observe is called from the collecting goroutine.
func newMetrics(observe func() int64) (*metrics, error) {
	m := meter()
	ms := &metrics{}

	var err error
	ms.ticks, err = m.Int64Counter(
		"session.ticks",
		metric.WithDescription("Update ticks processed"),
	)
	if nil != err {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	ms.judgements, err = m.Int64Counter(
		"session.judgements",
		metric.WithDescription("Notes resolved, by judgement"),
	)
	if nil != err {
		return nil, fmt.Errorf("creating judgement counter: %w", err)
	}

	ms.results, err = m.Int64Counter(
		"session.results",
		metric.WithDescription("Sessions that reached a result"),
	)
	if nil != err {
		return nil, fmt.Errorf("creating result counter: %w", err)
	}

	ms.active, err = m.Int64ObservableGauge(
		"session.notes.active",
		metric.WithDescription("Notes currently awaiting judgement"),
	)
	if nil != err {
		return nil, fmt.Errorf("creating active notes gauge: %w", err)
	}

	ms.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(ms.active, observe())
			return nil
		},
		ms.active,
	)
	if nil != err {
		return nil, fmt.Errorf("registering active notes callback: %w", err)
	}

	return ms, nil
}

func (m *metrics) judged(ctx context.Context, chart, judgement string) {
	m.judgements.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chart", chart),
		attribute.String("judgement", judgement),
	))
}

func (m *metrics) close() error {
	return m.registration.Unregister()
}
