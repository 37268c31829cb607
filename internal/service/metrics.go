package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goshare_files_delivered_total",
		Help: "Total number of files delivered to users.",
	})

	deliveriesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goshare_deliveries_failed_total",
		Help: "Total number of failed delivery attempts.",
	})

	gateChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goshare_gate_checks_total",
		Help: "Total number of subscription gate evaluations.",
	})

	gateDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goshare_gate_denied_total",
		Help: "Total number of gate evaluations that denied access.",
	})

	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goshare_sweep_runs_total",
		Help: "Total number of delete-queue sweep runs.",
	})

	messagesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goshare_messages_deleted_total",
		Help: "Total number of delivered messages removed by auto-delete.",
	})
)
