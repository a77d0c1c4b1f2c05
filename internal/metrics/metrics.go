// Package metrics объявляет счётчики Prometheus бота.
// Все метрики регистрируются в собственном Registry, который
// отдаёт keep-alive сервер по /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry — реестр метрик бота.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Purchases — покупки по результату: ok, out_of_stock, insufficient_funds, not_found, error.
	Purchases = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vending",
		Name:      "purchases_total",
		Help:      "Покупки в автомате по результату.",
	}, []string{"result"})

	// CoinsSpent — сколько монет списано за покупки.
	CoinsSpent = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "vending",
		Name:      "coins_spent_total",
		Help:      "Монеты, списанные за покупки.",
	})

	// NotifyFailures — ошибки доставки чека и обновления витрины.
	NotifyFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vending",
		Name:      "notify_failures_total",
		Help:      "Ошибки уведомлений после покупки.",
	}, []string{"kind"})

	// Updates — обработанные апдейты Telegram по типу.
	Updates = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bot",
		Name:      "updates_total",
		Help:      "Обработанные апдейты Telegram.",
	}, []string{"kind"})

	// RateLimited — сообщения, отброшенные лимитером.
	RateLimited = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "bot",
		Name:      "rate_limited_total",
		Help:      "Сообщения, отброшенные rate limiter.",
	})

	// OpenTickets — открытые тикеты поддержки.
	OpenTickets = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "tickets",
		Name:      "open",
		Help:      "Открытые тикеты поддержки.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
