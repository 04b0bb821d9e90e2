// Package metrics exports store events to Prometheus.
package metrics

import (
	"errors"
	"fmt"

	perfsync "github.com/goliatone/go-perfsync"
	promclient "github.com/prometheus/client_golang/prometheus"
)

const DefaultNamespace = "perfsync"

// Outcome label values.
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
	OutcomeOK      = "ok"
	OutcomeRefused = "refused"
	OutcomeError   = "error"
)

// Observer is a perfsync.Logger that counts fetch, action, normalization,
// activity and policy events.
type Observer struct {
	fetches        *promclient.CounterVec
	actions        *promclient.CounterVec
	remoteDuration *promclient.HistogramVec
	dropped        *promclient.CounterVec
	activityErrors *promclient.CounterVec
	policy         *promclient.CounterVec
}

// NewObserver registers the collectors on reg, or on the default registerer
// when reg is nil. Collectors already registered under the same names are
// reused.
func NewObserver(namespace string, reg promclient.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	o := &Observer{
		fetches: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "List fetches by collection and outcome.",
		}, []string{"collection", "outcome"}),
		actions: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Store actions by name and outcome.",
		}, []string{"action", "outcome"}),
		remoteDuration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_duration_seconds",
			Help:      "Latency of remote calls issued by the stores.",
			Buckets:   promclient.DefBuckets,
		}, []string{"action"}),
		dropped: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_dropped_total",
			Help:      "List elements dropped while normalizing responses.",
		}, []string{"collection"}),
		activityErrors: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "activity_errors_total",
			Help:      "Activity emissions that failed.",
		}, []string{"action"}),
		policy: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "policy_evaluations_total",
			Help:      "Policy rule evaluations by action and outcome.",
		}, []string{"action", "outcome"}),
	}

	var err error
	if o.fetches, err = register(reg, o.fetches); err != nil {
		return nil, err
	}
	if o.actions, err = register(reg, o.actions); err != nil {
		return nil, err
	}
	if o.remoteDuration, err = register(reg, o.remoteDuration); err != nil {
		return nil, err
	}
	if o.dropped, err = register(reg, o.dropped); err != nil {
		return nil, err
	}
	if o.activityErrors, err = register(reg, o.activityErrors); err != nil {
		return nil, err
	}
	if o.policy, err = register(reg, o.policy); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}
	var are promclient.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return collector, fmt.Errorf("metrics: register collector: %w", err)
}

// Log implements perfsync.Logger.
func (o *Observer) Log(event perfsync.LogEvent) {
	if o == nil {
		return
	}
	action := string(event.Action)
	switch event.Kind {
	case perfsync.LogFetch:
		o.fetches.WithLabelValues(event.Collection, fetchOutcome(event)).Inc()
		o.remoteDuration.WithLabelValues(action).Observe(event.Duration.Seconds())
	case perfsync.LogAction:
		o.actions.WithLabelValues(action, actionOutcome(event)).Inc()
		if !event.Refused {
			o.remoteDuration.WithLabelValues(action).Observe(event.Duration.Seconds())
		}
	case perfsync.LogNormalize:
		o.dropped.WithLabelValues(event.Collection).Inc()
	case perfsync.LogActivity:
		if event.Err != nil {
			o.activityErrors.WithLabelValues(action).Inc()
		}
	case perfsync.LogPolicy:
		outcome := OutcomeOK
		if event.Err != nil {
			outcome = OutcomeError
		}
		o.policy.WithLabelValues(action, outcome).Inc()
	}
}

func fetchOutcome(event perfsync.LogEvent) string {
	switch {
	case event.Stale:
		return OutcomeStale
	case event.Err != nil:
		return OutcomeFailed
	default:
		return OutcomeApplied
	}
}

func actionOutcome(event perfsync.LogEvent) string {
	switch {
	case event.Refused:
		return OutcomeRefused
	case event.Err != nil:
		return OutcomeFailed
	default:
		return OutcomeOK
	}
}

var _ perfsync.Logger = (*Observer)(nil)
