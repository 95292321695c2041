package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ComposerMetrics содержит метрики жизненного цикла сборки заказов.
type ComposerMetrics struct {
	// Счётчики операций
	composersOpened    prometheus.Counter
	ordersSubmitted    prometheus.Counter
	ordersSoftSuccess  prometheus.Counter
	ordersFailed       prometheus.Counter
	composersCanceled  prometheus.Counter
	stockCheckRejected prometheus.Counter

	// Мутации корзины по типу операции
	cartMutations *prometheus.CounterVec

	// Гистограмма времени отправки заказа
	submitDuration prometheus.Histogram

	// Gauge для открытых composer-сессий
	activeComposers prometheus.Gauge
}

// NewComposerMetrics создаёт метрики в глобальном registry.
func NewComposerMetrics() *ComposerMetrics {
	return newComposerMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newComposerMetricsWithRegisterer(registerer prometheus.Registerer) *ComposerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ComposerMetrics{
		composersOpened: registerCounter(registerer, prometheus.CounterOpts{
			Name: "waterdesk_composers_opened_total",
			Help: "Total number of order composer sessions opened",
		}),
		ordersSubmitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "waterdesk_orders_submitted_total",
			Help: "Total number of orders submitted successfully",
		}),
		ordersSoftSuccess: registerCounter(registerer, prometheus.CounterOpts{
			Name: "waterdesk_orders_soft_success_total",
			Help: "Total number of orders accepted despite a partial backend failure",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "waterdesk_orders_failed_total",
			Help: "Total number of order submissions that failed",
		}),
		composersCanceled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "waterdesk_composers_canceled_total",
			Help: "Total number of composer sessions canceled",
		}),
		stockCheckRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "waterdesk_stock_check_rejected_total",
			Help: "Total number of submissions blocked by the local stock check",
		}),
		cartMutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "waterdesk_cart_mutations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"op"}),
		submitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "waterdesk_order_submit_duration_seconds",
			Help:    "Duration of order submission round trips in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		activeComposers: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "waterdesk_active_composers",
			Help: "Number of currently open composer sessions",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordComposerOpened фиксирует открытие composer-сессии.
func (m *ComposerMetrics) RecordComposerOpened() {
	m.composersOpened.Inc()
	m.activeComposers.Inc()
}

// RecordComposerFinalized фиксирует завершение composer-сессии.
func (m *ComposerMetrics) RecordComposerFinalized() {
	m.activeComposers.Dec()
}

// RecordCartMutation фиксирует мутацию корзины по типу операции.
func (m *ComposerMetrics) RecordCartMutation(op string) {
	m.cartMutations.WithLabelValues(op).Inc()
}

// RecordOrderSubmitted фиксирует успешно отправленный заказ.
func (m *ComposerMetrics) RecordOrderSubmitted() {
	m.ordersSubmitted.Inc()
}

// RecordOrderSoftSuccess фиксирует заказ, принятый с частичным сбоем backend.
func (m *ComposerMetrics) RecordOrderSoftSuccess() {
	m.ordersSoftSuccess.Inc()
}

// RecordOrderFailed фиксирует неудачную отправку заказа.
func (m *ComposerMetrics) RecordOrderFailed() {
	m.ordersFailed.Inc()
}

// RecordComposerCanceled фиксирует отменённую composer-сессию.
func (m *ComposerMetrics) RecordComposerCanceled() {
	m.composersCanceled.Inc()
}

// RecordStockCheckRejected фиксирует отправку, заблокированную локальной проверкой остатков.
func (m *ComposerMetrics) RecordStockCheckRejected() {
	m.stockCheckRejected.Inc()
}

// RecordSubmitDuration записывает длительность отправки заказа.
func (m *ComposerMetrics) RecordSubmitDuration(duration time.Duration) {
	m.submitDuration.Observe(duration.Seconds())
}
