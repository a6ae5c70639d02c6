package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitsphere_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unitsphere_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	agreementDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitsphere_agreement_decisions_total",
		Help: "Count of agreement lifecycle decisions",
	}, []string{"decision"})

	couponValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitsphere_coupon_validations_total",
		Help: "Count of coupon validation requests by outcome",
	}, []string{"result"})

	paymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unitsphere_payments_recorded_total",
		Help: "Count of recorded payments",
	})

	paymentIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitsphere_payment_intents_total",
		Help: "Count of payment gateway intent creations by result",
	}, []string{"result"})

	couponSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "unitsphere_coupon_sweeps_total",
		Help: "Count of coupon expiry sweeper runs by result",
	}, []string{"result"})

	bookedApartments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "unitsphere_booked_apartments",
		Help: "Number of apartments currently booked",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAgreementDecision counts an accept or reject.
func ObserveAgreementDecision(decision string) {
	agreementDecisions.WithLabelValues(decision).Inc()
}

// ObserveCouponValidation counts a validation outcome (valid or invalid).
func ObserveCouponValidation(result string) {
	couponValidations.WithLabelValues(result).Inc()
}

// ObservePaymentRecorded counts a recorded payment.
func ObservePaymentRecorded() {
	paymentsRecorded.Inc()
}

// ObservePaymentIntent counts a gateway intent attempt with a result label.
func ObservePaymentIntent(result string) {
	paymentIntents.WithLabelValues(result).Inc()
}

// ObserveCouponSweep counts a sweeper run.
func ObserveCouponSweep(result string) {
	couponSweeps.WithLabelValues(result).Inc()
}

// IncrementBooked increments the booked apartment gauge.
func IncrementBooked() {
	bookedApartments.Inc()
}
