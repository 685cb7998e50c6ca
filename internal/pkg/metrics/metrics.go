package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alumni"

// Registry is the process-wide registry served on /metrics.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information",
	},
	[]string{"version", "driver"},
)

// Workflow metrics. The outcome label is apperrors.Kind of the operation result.
var (
	RegistrationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_registrations_total",
			Help:      "Event registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	RegistrationCancellationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_registration_cancellations_total",
			Help:      "Registration cancellations by outcome",
		},
		[]string{"outcome"},
	)

	ApplicationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_applications_total",
			Help:      "Job application attempts by outcome",
		},
		[]string{"outcome"},
	)

	DonationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_total",
			Help:      "Donation submissions and decisions",
		},
		[]string{"action", "outcome"}, // action: create|verify|reject
	)

	VerifiedAmountTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_verified_amount_total",
			Help:      "Sum of verified donation amounts credited to campaigns",
		},
	)

	TogglesTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toggles_total",
			Help:      "Like and save toggles by target kind and resulting state",
		},
		[]string{"kind", "state"}, // kind: post|comment|job, state: on|off
	)

	ModerationActionsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_actions_total",
			Help:      "Admin moderation actions by action type",
		},
		[]string{"action"},
	)

	LifecycleTransitionsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Time-driven status transitions applied by the lifecycle job",
		},
		[]string{"entity", "to"},
	)

	LifecycleRunErrors = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_run_errors_total",
			Help:      "Lifecycle job runs that failed",
		},
	)
)

// Init registers runtime collectors and sets build information.
func Init(version, driver string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, driver).Set(1)
}
