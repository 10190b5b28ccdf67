package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the collector's registry. Scrapes of the handler itself are
// counted in promhttp_metric_handler_requests_total on the same registry.
// A failing collector does not fail the scrape; the remaining series are
// still written.
func (c *Collector) Handler() http.Handler {
	serve := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
		Registry:          c.registry,
	})
	return promhttp.InstrumentMetricHandler(c.registry, serve)
}
