package gvnc

import "github.com/prometheus/client_golang/prometheus"

// metricsSet is the Prometheus instrumentation wired into the engine,
// registered against a host-supplied Registerer rather than the global
// default registry, so an embedding application controls whether and
// where these are exposed.
type metricsSet struct {
	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter
	rectangles   *prometheus.CounterVec
	reconnects   prometheus.Counter
	connState    prometheus.Gauge
}

func newMetricsSet(reg prometheus.Registerer, connID string) *metricsSet {
	labels := prometheus.Labels{"conn_id": connID}
	m := &metricsSet{
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gvnc_bytes_read_total",
			Help:        "Total bytes read from the RFB server.",
			ConstLabels: labels,
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gvnc_bytes_written_total",
			Help:        "Total bytes written to the RFB server.",
			ConstLabels: labels,
		}),
		rectangles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gvnc_rectangles_decoded_total",
			Help:        "Framebuffer-update rectangles decoded, by encoding.",
			ConstLabels: labels,
		}, []string{"encoding"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gvnc_reconnects_total",
			Help:        "Number of times this client has reopened its connection.",
			ConstLabels: labels,
		}),
		connState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gvnc_connection_state",
			Help:        "Current RFB state-machine state, as a small integer.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.bytesRead, m.bytesWritten, m.rectangles, m.reconnects, m.connState)
	}
	return m
}

func (m *metricsSet) addRead(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesRead.Add(float64(n))
}

func (m *metricsSet) addWritten(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesWritten.Add(float64(n))
}

func (m *metricsSet) incRectangle(enc Encoding) {
	if m == nil {
		return
	}
	m.rectangles.WithLabelValues(encodingLabel(enc)).Inc()
}

func (m *metricsSet) setState(s state) {
	if m == nil {
		return
	}
	m.connState.Set(float64(s))
}

func encodingLabel(e Encoding) string {
	switch e {
	case EncodingRaw:
		return "raw"
	case EncodingCopyRect:
		return "copyrect"
	case EncodingRRE:
		return "rre"
	case EncodingHextile:
		return "hextile"
	case EncodingZRLE:
		return "zrle"
	case EncodingTight:
		return "tight"
	default:
		if e >= EncodingTightJPEG0 && e <= EncodingTightJPEG9 {
			return "tight-jpeg"
		}
		return "pseudo"
	}
}
