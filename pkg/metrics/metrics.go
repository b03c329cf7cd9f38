// Package metrics holds the Prometheus collectors shared by the coordinator,
// actors and stores. A nil *Metrics is valid and records nothing, so
// components can take it as an optional dependency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kitchensink"

// Metrics groups every collector exported by the toolkit.
type Metrics struct {
	messagesHandled *prometheus.CounterVec
	messagesDropped *prometheus.CounterVec
	actorShutdowns  *prometheus.CounterVec
	tasksFinished   *prometheus.CounterVec
	tasksRunning    prometheus.Gauge
	storeWrites     *prometheus.CounterVec
	storeRefreshes  *prometheus.CounterVec
	refreshDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
// Passing a dedicated registry (rather than the default one) keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "messages_handled_total",
			Help:      "Messages consumed by an actor.",
		}, []string{"actor"}),
		messagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "messages_dropped_total",
			Help:      "Messages dropped because the actor was gone or the sender gave up.",
		}, []string{"actor"}),
		actorShutdowns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "actor",
			Name:      "shutdowns_total",
			Help:      "Graceful shutdown routines run, by outcome.",
		}, []string{"actor", "result"}),
		tasksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coordinator",
			Name:      "tasks_finished_total",
			Help:      "Registered tasks that finished, by outcome.",
		}, []string{"result"}),
		tasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "coordinator",
			Name:      "tasks_running",
			Help:      "Registered tasks that have not finished yet.",
		}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Store writes, by outcome.",
		}, []string{"path", "result"}),
		storeRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "refreshes_total",
			Help:      "Scheduled refresh attempts, by outcome.",
		}, []string{"path", "result"}),
		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a scheduled refresh (fetch and write).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.messagesHandled,
			m.messagesDropped,
			m.actorShutdowns,
			m.tasksFinished,
			m.tasksRunning,
			m.storeWrites,
			m.storeRefreshes,
			m.refreshDuration,
		)
	}
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// MessageHandled counts a message consumed by the named actor.
func (m *Metrics) MessageHandled(actor string) {
	if m == nil {
		return
	}
	m.messagesHandled.WithLabelValues(actor).Inc()
}

// MessageDropped counts a message that never reached the named actor.
func (m *Metrics) MessageDropped(actor string) {
	if m == nil {
		return
	}
	m.messagesDropped.WithLabelValues(actor).Inc()
}

// ActorShutdown records the outcome of an actor's shutdown routine.
func (m *Metrics) ActorShutdown(actor string, err error) {
	if m == nil {
		return
	}
	m.actorShutdowns.WithLabelValues(actor, result(err)).Inc()
}

// TaskStarted tracks a newly registered task.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.tasksRunning.Inc()
}

// TaskFinished records a registered task's outcome.
func (m *Metrics) TaskFinished(err error) {
	if m == nil {
		return
	}
	m.tasksRunning.Dec()
	m.tasksFinished.WithLabelValues(result(err)).Inc()
}

// StoreWrite records a store write.
func (m *Metrics) StoreWrite(path string, err error) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(path, result(err)).Inc()
}

// StoreRefresh records one scheduled refresh attempt.
func (m *Metrics) StoreRefresh(path string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeRefreshes.WithLabelValues(path, result(err)).Inc()
	m.refreshDuration.WithLabelValues(path).Observe(took.Seconds())
}
