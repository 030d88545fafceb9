package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InvitationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "setlist",
		Name:      "invitation_transitions_total",
		Help:      "Invitation lifecycle transitions by invitation type.",
	}, []string{"type", "transition"})

	EmailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "setlist",
		Name:      "email_deliveries_total",
		Help:      "Outgoing emails by kind and result.",
	}, []string{"kind", "result"})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "setlist",
		Name:      "notifications_created_total",
		Help:      "In-app notifications written, by notification type.",
	}, []string{"type"})

	EventsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "setlist",
		Name:      "events_created_total",
		Help:      "Event rows written, by origin (base or expanded).",
	}, []string{"origin"})
)

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
