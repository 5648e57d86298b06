package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

// Register registers the engine's collectors plus Go and process metrics.
func Register(logger *logrus.Logger) {
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	registerIfNotExists(quoteCyclesTotal, "swap_quote_cycles_total", logger)
	registerIfNotExists(quoteRouteTotal, "swap_quote_route_total", logger)
	registerIfNotExists(sourceErrorsTotal, "swap_source_errors_total", logger)
	registerIfNotExists(quoteDuration, "swap_quote_duration_seconds", logger)
	registerIfNotExists(staleResultsTotal, "swap_stale_results_total", logger)
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, logger *logrus.Logger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			// This is expected on restart/reload - just debug log
			logger.Debugf("%s already registered", name)
		} else {
			// This is a real problem (descriptor mismatch, etc.) - fatal error
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}
