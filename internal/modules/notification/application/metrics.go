package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Notifications persisted, by category",
	}, []string{"category"})

	notificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_deliveries_total",
		Help: "Real-time publish attempts, by event and result",
	}, []string{"event", "result"})

	fanOutRecipients = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_fanout_recipients_total",
		Help: "Recipients processed by group fan-out, by result",
	}, []string{"result"})
)
