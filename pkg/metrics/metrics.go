package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ResumesParsed        *prometheus.CounterVec
	LLMRequests          *prometheus.CounterVec
	DocumentRequestsSent prometheus.Counter
	DocumentsSubmitted   prometheus.Counter
	DocumentsReviewed    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ResumesParsed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "candidateverify_resumes_parsed_total",
			Help: "Resumes parsed, labelled by resulting candidate status",
		}, []string{"status"}),
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "candidateverify_llm_requests_total",
			Help: "LLM calls made, labelled by outcome (ok or error)",
		}, []string{"outcome"}),
		DocumentRequestsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "candidateverify_document_requests_sent_total",
			Help: "Document request e-mails sent to candidates",
		}),
		DocumentsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "candidateverify_documents_submitted_total",
			Help: "Completed document submissions from the public portal",
		}),
		DocumentsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "candidateverify_documents_reviewed_total",
			Help: "Reviewed identity documents, labelled by verdict",
		}, []string{"verdict"}),
	}
}

// Recording helpers tolerate a nil receiver so tests can skip metrics wiring.

func (m *Metrics) RecordResumeParsed(status string) {
	if m == nil {
		return
	}
	m.ResumesParsed.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLLMRequest(outcome string) {
	if m == nil {
		return
	}
	m.LLMRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordDocumentRequestSent() {
	if m == nil {
		return
	}
	m.DocumentRequestsSent.Inc()
}

func (m *Metrics) RecordDocumentsSubmitted() {
	if m == nil {
		return
	}
	m.DocumentsSubmitted.Inc()
}

func (m *Metrics) RecordDocumentReviewed(verdict string) {
	if m == nil {
		return
	}
	m.DocumentsReviewed.WithLabelValues(verdict).Inc()
}
