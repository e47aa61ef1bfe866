// Package metrics defines the custom Prometheus metrics for the incident
// report API. It is the single source of truth for metric names, labels, and
// help strings; HTTP-level metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incident_report"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "throttled", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RotationsTotal counts refresh-token rotations. An "invalid_token" result
// covers replayed, revoked, expired, and unknown tokens alike.
var RotationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rotations_total",
		Help:      "Total number of refresh token rotation attempts, by result.",
	},
	[]string{"result"},
)

// RevocationsTotal counts explicit refresh-token revocations.
// Label:
//   - result: "success", "invalid_token", "forbidden", or "error"
var RevocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_revocations_total",
		Help:      "Total number of explicit refresh token revocations, by result.",
	},
	[]string{"result"},
)

// GateRejectionsTotal counts requests rejected by the authorization gate.
// Label:
//   - reason: "missing_header", "bad_header", "token_expired", "bad_signature",
//     "malformed", "principal_missing", "principal_inactive", "role_forbidden"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected by the authorization gate, by reason.",
	},
	[]string{"reason"},
)
