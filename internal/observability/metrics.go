package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "rx",
			Name:      "frames_processed_total",
			Help:      "Complete frames decoded and dispatched.",
		},
		[]string{"protocol"},
	)
	framesInvalid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "rx",
			Name:      "frames_invalid_total",
			Help:      "Framing failures that dropped the buffered backlog.",
		},
		[]string{"reason"},
	)
	unknownProtocols = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "rx",
			Name:      "unknown_protocol_total",
			Help:      "Frames consumed without a registered handler.",
		},
		[]string{"protocol"},
	)
	bytesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "rx",
			Name:      "bytes_total",
			Help:      "Raw bytes read from the transport.",
		},
	)
	rxBufferUsed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "framelink",
			Subsystem: "rx",
			Name:      "buffer_used_bytes",
			Help:      "Reassembly buffer bytes awaiting a complete frame.",
		},
	)
	framesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "tx",
			Name:      "frames_total",
			Help:      "Frames encoded and written to the transport.",
		},
	)
	bytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "framelink",
			Subsystem: "tx",
			Name:      "bytes_total",
			Help:      "Raw bytes written to the transport.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesProcessed, framesInvalid, unknownProtocols,
			bytesRead, rxBufferUsed, framesSent, bytesWritten,
		)
	})
}

func RecordFrameProcessed(protocol uint16) {
	framesProcessed.WithLabelValues(protocolLabel(protocol)).Inc()
}

func RecordFrameInvalid(reason string) {
	framesInvalid.WithLabelValues(reason).Inc()
}

func RecordUnknownProtocol(protocol uint16) {
	unknownProtocols.WithLabelValues(protocolLabel(protocol)).Inc()
}

func RecordBytesRead(n int) {
	bytesRead.Add(float64(n))
}

func RecordBytesWritten(n int) {
	bytesWritten.Add(float64(n))
}

func RecordFrameSent() {
	framesSent.Inc()
}

func SetRxBufferUsed(n int) {
	rxBufferUsed.Set(float64(n))
}

func protocolLabel(protocol uint16) string {
	return "0x" + strconv.FormatUint(uint64(protocol), 16)
}
