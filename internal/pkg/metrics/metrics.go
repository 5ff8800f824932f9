package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder — интерфейс записи метрик для сервисного слоя
type Recorder interface {
	RecordJobRun(job, outcome string)
	RecordSyncOperation(outcome string)
	RecordOutboxDepth(pending, abandoned int64)
	RecordTeamSyncChanges(team string, added, removed int)
}

// Collector собирает метрики Prometheus
type Collector struct {
	jobRuns         *prometheus.CounterVec
	syncOperations  *prometheus.CounterVec
	outboxPending   prometheus.Gauge
	outboxAbandoned prometheus.Gauge
	teamSyncChanges *prometheus.CounterVec
}

// NewCollector создает коллектор и регистрирует метрики в указанном реестре
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_job_runs_total",
			Help: "Запуски фоновых заданий по исходу",
		}, []string{"job", "outcome"}),
		syncOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_groupware_sync_total",
			Help: "Операции синхронизации с groupware по исходу",
		}, []string{"outcome"}),
		outboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "membership_outbox_pending",
			Help: "Число необработанных событий в outbox",
		}),
		outboxAbandoned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "membership_outbox_abandoned",
			Help: "Число событий, исчерпавших попытки",
		}),
		teamSyncChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_team_sync_changes_total",
			Help: "Изменения состава системных команд",
		}, []string{"team", "direction"}),
	}

	reg.MustRegister(
		c.jobRuns,
		c.syncOperations,
		c.outboxPending,
		c.outboxAbandoned,
		c.teamSyncChanges,
	)

	return c
}

// RecordJobRun фиксирует запуск задания с исходом success/failure/cancelled
func (c *Collector) RecordJobRun(job, outcome string) {
	c.jobRuns.WithLabelValues(job, outcome).Inc()
}

// RecordSyncOperation фиксирует одну операцию синхронизации
func (c *Collector) RecordSyncOperation(outcome string) {
	c.syncOperations.WithLabelValues(outcome).Inc()
}

// RecordOutboxDepth обновляет глубину очереди
func (c *Collector) RecordOutboxDepth(pending, abandoned int64) {
	c.outboxPending.Set(float64(pending))
	c.outboxAbandoned.Set(float64(abandoned))
}

// RecordTeamSyncChanges фиксирует добавления и удаления участников
func (c *Collector) RecordTeamSyncChanges(team string, added, removed int) {
	if added > 0 {
		c.teamSyncChanges.WithLabelValues(team, "added").Add(float64(added))
	}
	if removed > 0 {
		c.teamSyncChanges.WithLabelValues(team, "removed").Add(float64(removed))
	}
}

// Handler возвращает HTTP-обработчик для /metrics
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Noop — коллектор-заглушка для тестов
type Noop struct{}

func (Noop) RecordJobRun(job, outcome string)                      {}
func (Noop) RecordSyncOperation(outcome string)                    {}
func (Noop) RecordOutboxDepth(pending, abandoned int64)            {}
func (Noop) RecordTeamSyncChanges(team string, added, removed int) {}
