package metrics

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log"
	"net/http"
)

// StartMetricsServer serves the default Prometheus registry on addr in the
// background. An empty addr disables the endpoint.
func StartMetricsServer(addr string) {
	if addr == "" {
		log.Println("metrics address is not set, metrics endpoint disabled")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics server running on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("failed to start metrics server: %v", err)
		}
	}()
}
