package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the application metrics.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis
	AnalysesTotal      CounterVec
	AnalysisDuration   HistogramVec
	StageDuration      HistogramVec
	ReadabilityScore   HistogramVec
	ClausesDetected    HistogramVec
	ExtractionFailures CounterVec

	// Infrastructure
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	QueueMessagesTotal   CounterVec
	QueueProcessDuration HistogramVec
	ErrorsTotal          CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultStageDurationBuckets    = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5}
	ReadabilityBuckets             = []float64{0, 30, 50, 70, 90}
	ClauseCountBuckets             = []float64{0, 1, 2, 3, 5, 8, 10}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.AnalysesTotal = collector.RegisterCounter("analyses_total", "Document analyses", "source", "status")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "End-to-end analysis duration", DefaultAnalysisDurationBuckets, "source")
	m.StageDuration = collector.RegisterHistogram("simplification_stage_duration_seconds", "Simplification stage duration", DefaultStageDurationBuckets, "stage")
	m.ReadabilityScore = collector.RegisterHistogram("readability_score", "Readability score distribution", ReadabilityBuckets, "phase")
	m.ClausesDetected = collector.RegisterHistogram("clauses_detected", "Clauses detected per document", ClauseCountBuckets)
	m.ExtractionFailures = collector.RegisterCounter("extraction_failures_total", "Text extraction failures", "file_type", "code")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.QueueMessagesTotal = collector.RegisterCounter("mq_messages_total", "Queue messages processed", "topic", "status")
	m.QueueProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Queue message processing duration", DefaultAnalysisDurationBuckets, "topic")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// NewNoopAppMetrics returns metrics that record nothing.
func NewNoopAppMetrics() *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal:    noopCounterVec{},
		HTTPRequestDuration:  noopHistogramVec{},
		HTTPActiveRequests:   noopGaugeVec{},
		AnalysesTotal:        noopCounterVec{},
		AnalysisDuration:     noopHistogramVec{},
		StageDuration:        noopHistogramVec{},
		ReadabilityScore:     noopHistogramVec{},
		ClausesDetected:      noopHistogramVec{},
		ExtractionFailures:   noopCounterVec{},
		CacheHitsTotal:       noopCounterVec{},
		CacheMissesTotal:     noopCounterVec{},
		QueueMessagesTotal:   noopCounterVec{},
		QueueProcessDuration: noopHistogramVec{},
		ErrorsTotal:          noopCounterVec{},
	}
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAnalysis records a finished analysis.
func (m *AppMetrics) RecordAnalysis(source string, ok bool, duration time.Duration, before, after, clauses int) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.AnalysesTotal.WithLabelValues(source, status).Inc()
	m.AnalysisDuration.WithLabelValues(source).Observe(duration.Seconds())
	if ok {
		m.ReadabilityScore.WithLabelValues("before").Observe(float64(before))
		m.ReadabilityScore.WithLabelValues("after").Observe(float64(after))
		m.ClausesDetected.WithLabelValues().Observe(float64(clauses))
	}
}

// RecordStage records the duration of one simplification stage.
func (m *AppMetrics) RecordStage(stage string, duration time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordExtractionFailure counts a failed extraction.
func (m *AppMetrics) RecordExtractionFailure(fileType, code string) {
	m.ExtractionFailures.WithLabelValues(fileType, code).Inc()
}

// RecordCacheAccess counts a cache hit or miss.
func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordQueueMessage records one consumed message.
func (m *AppMetrics) RecordQueueMessage(topic string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.QueueMessagesTotal.WithLabelValues(topic, status).Inc()
	m.QueueProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordError counts an error by component and error code.
func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
