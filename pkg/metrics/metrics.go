// Package metrics exposes Prometheus instrumentation for the command
// pipeline. A nil *Recorder is valid and records nothing, so callers never
// need to guard instrumentation sites.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the pipeline's collectors.
type Recorder struct {
	commandsTotal     *prometheus.CounterVec
	stepsTotal        *prometheus.CounterVec
	synthesisFailures prometheus.Counter
	stepDuration      *prometheus.HistogramVec
}

// NewRecorder builds a recorder and registers its collectors on reg.
// Passing nil registers on the default registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opennova_commands_total",
			Help: "Commands processed, labeled by how they were routed.",
		}, []string{"route"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opennova_plan_steps_total",
			Help: "Plan steps executed, labeled by action kind and outcome.",
		}, []string{"kind", "outcome"}),
		synthesisFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opennova_plan_synthesis_failures_total",
			Help: "Plan synthesis attempts that produced no usable plan.",
		}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opennova_plan_step_duration_seconds",
			Help:    "Wall-clock duration of individual plan steps.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"kind"}),
	}

	reg.MustRegister(r.commandsTotal, r.stepsTotal, r.synthesisFailures, r.stepDuration)
	return r
}

// CountCommand records a processed command and the route that handled it
// (skill name, "plan", "confirmation", "error").
func (r *Recorder) CountCommand(route string) {
	if r == nil {
		return
	}
	r.commandsTotal.WithLabelValues(route).Inc()
}

// ObserveStep records one executed plan step.
func (r *Recorder) ObserveStep(kind string, succeeded bool, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "failure"
	if succeeded {
		outcome = "success"
	}
	r.stepsTotal.WithLabelValues(kind, outcome).Inc()
	r.stepDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// CountSynthesisFailure records a planner call that yielded no valid plan.
func (r *Recorder) CountSynthesisFailure() {
	if r == nil {
		return
	}
	r.synthesisFailures.Inc()
}
