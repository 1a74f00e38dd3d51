package ocr

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus counters for OCR activity.
type Metrics struct {
	runs  *prometheus.CounterVec
	pages *prometheus.CounterVec
}

// NewMetrics registers the OCR counters on the given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_document_runs_total",
				Help: "Total number of document OCR runs.",
			},
			[]string{"status"},
		),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ocr_pages_total",
				Help: "Total number of per-page OCR calls.",
			},
			[]string{"status"},
		),
	}

	if err := reg.Register(m.runs); err != nil {
		return nil, err
	}
	if err := reg.Register(m.pages); err != nil {
		return nil, err
	}
	return m, nil
}

// The client works without metrics attached, so the helpers are nil-safe.

func (m *Metrics) runFinished(ok bool) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(statusLabel(ok)).Inc()
}

func (m *Metrics) pageFinished(ok bool) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(statusLabel(ok)).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
