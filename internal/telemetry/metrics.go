package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "content_import"

var (
	// jobResults — результаты выполнения jobs.
	jobResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_total",
		Help:      "Import job executions by job and result.",
	}, []string{"job", "result"})

	// itemsProcessed — обработанные строки источника.
	itemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_processed_total",
		Help:      "Source rows processed by import jobs.",
	}, []string{"job"})

	// batchesFinished — завершённые batches по статусу.
	batchesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Finished import batches by final status.",
	}, []string{"status"})

	// batchDuration — длительность batch.
	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of import batches.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	// batchSteps — число шагов (вызовов оркестратора) на batch.
	batchSteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_steps",
		Help:      "Orchestrator invocations per import batch.",
		Buckets:   prometheus.LinearBuckets(1, 2, 10),
	})
)

// ObserveResult учитывает результат выполнения job.
func ObserveResult(jobID, result string, processed int) {
	jobResults.WithLabelValues(jobID, result).Inc()
	if processed > 0 {
		itemsProcessed.WithLabelValues(jobID).Add(float64(processed))
	}
}

// ObserveBatch учитывает завершённый batch.
func ObserveBatch(status string, steps int, duration time.Duration) {
	batchesFinished.WithLabelValues(status).Inc()
	batchSteps.Observe(float64(steps))
	if duration > 0 {
		batchDuration.Observe(duration.Seconds())
	}
}
