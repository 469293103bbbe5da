// Package metrics expõe contadores Prometheus do serviço.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector agrupa os instrumentos em um registry próprio.
type Collector struct {
	registry *prometheus.Registry

	// ImagesProduced conta requisições de geração por resultado.
	ImagesProduced *prometheus.CounterVec
	// ImagesServed conta downloads por resultado.
	ImagesServed *prometheus.CounterVec
	// CompressedBytes observa o tamanho final dos JPEGs gerados.
	CompressedBytes prometheus.Histogram

	SweeperRuns prometheus.Counter
	SweptFiles  prometheus.Counter
}

// NewCollector cria e registra os instrumentos do serviço.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		ImagesProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_produced_total",
			Help:      "Total de requisições de geração de imagem por resultado",
		}, []string{"status"}),
		ImagesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_served_total",
			Help:      "Total de downloads de imagem por resultado",
		}, []string{"status"}),
		CompressedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compressed_image_bytes",
			Help:      "Tamanho em bytes dos JPEGs após compressão",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 12),
		}),
		SweeperRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_runs_total",
			Help:      "Total de varreduras de retenção executadas",
		}),
		SweptFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_deleted_files_total",
			Help:      "Total de arquivos expirados removidos pelo sweeper",
		}),
	}

	reg.MustRegister(
		c.ImagesProduced,
		c.ImagesServed,
		c.CompressedBytes,
		c.SweeperRuns,
		c.SweptFiles,
		collectors.NewGoCollector(),
	)

	return c
}

// Handler devolve o handler HTTP de exposição no formato Prometheus.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
