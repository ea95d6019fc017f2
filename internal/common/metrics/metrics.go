package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "referral"

// Metrics собирает счетчики доменных событий и HTTP-запросов в собственный реестр.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec

	usersCreated   *prometheus.CounterVec
	referralBonus  prometheus.Counter
	taskClaims     *prometheus.CounterVec
	payoutRequests prometheus.Counter
	paymentIDs     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests segmented by route, method and status.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		usersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Users created on first contact, split by whether an inviter was linked.",
		}, []string{"linked"}),
		referralBonus: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referral_bonus_points_total",
			Help:      "Points credited to inviters for successful referrals.",
		}),
		taskClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_claims_total",
			Help:      "Task claim attempts segmented by task and outcome.",
		}, []string{"task", "outcome"}),
		payoutRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_requests_total",
			Help:      "Recorded payout requests.",
		}),
		paymentIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_identifiers_saved_total",
			Help:      "Saved payment identifiers.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.durations,
		m.usersCreated, m.referralBonus, m.taskClaims, m.payoutRequests, m.paymentIDs,
	)
	return m
}

// Registry открыт для тестов и для подключения дополнительных коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware учитывает запросы по шаблону маршрута, а не по фактическому пути.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.durations.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Методы ниже безопасно вызывать на nil, чтобы сервисы работали без метрик.

func (m *Metrics) UserCreated(linked bool, bonus int64) {
	if m == nil {
		return
	}
	m.usersCreated.WithLabelValues(strconv.FormatBool(linked)).Inc()
	if linked {
		m.referralBonus.Add(float64(bonus))
	}
}

func (m *Metrics) TaskClaim(taskID, outcome string) {
	if m == nil {
		return
	}
	m.taskClaims.WithLabelValues(taskID, outcome).Inc()
}

func (m *Metrics) PayoutRequested() {
	if m == nil {
		return
	}
	m.payoutRequests.Inc()
}

func (m *Metrics) PaymentIdentifierSaved() {
	if m == nil {
		return
	}
	m.paymentIDs.Inc()
}
