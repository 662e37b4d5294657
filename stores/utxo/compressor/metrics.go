package compressor

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusScriptsCompressed *prometheus.CounterVec
	prometheusScriptsP2PKH      prometheus.Counter
	prometheusScriptsP2SH       prometheus.Counter
	prometheusScriptsP2PK       prometheus.Counter
	prometheusScriptsRaw        prometheus.Counter
	prometheusOversizedScripts  prometheus.Counter

	// only init the metrics once
	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusScriptsCompressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "utxo",
			Subsystem: "compressor",
			Name:      "scripts_compressed",
			Help:      "Number of scripts compressed, by detected script type",
		},
		[]string{
			"type", // p2pkh, p2sh, p2pk or raw
		},
	)
	prometheusScriptsP2PKH = prometheusScriptsCompressed.WithLabelValues("p2pkh")
	prometheusScriptsP2SH = prometheusScriptsCompressed.WithLabelValues("p2sh")
	prometheusScriptsP2PK = prometheusScriptsCompressed.WithLabelValues("p2pk")
	prometheusScriptsRaw = prometheusScriptsCompressed.WithLabelValues("raw")

	prometheusOversizedScripts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "utxo",
			Subsystem: "compressor",
			Name:      "oversized_scripts",
			Help:      "Number of decoded scripts over the maximum script size that were replaced with nulldata",
		},
	)
}
