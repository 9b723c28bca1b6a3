package handlers

import (
	"net/http"
	"strconv"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
)

// formatRouteMetrics converts duration fields to milliseconds for JSON serialization
func formatRouteMetrics(routes []api.RouteMetrics) []map[string]interface{} {
	result := make([]map[string]interface{}, len(routes))
	for i, route := range routes {
		result[i] = map[string]interface{}{
			"method":      route.Method,
			"path":        route.Path,
			"count":       route.Count,
			"errorCount":  route.ErrorCount,
			"avgTime":     route.AvgTime.Milliseconds(),
			"minTime":     route.MinTime.Milliseconds(),
			"maxTime":     route.MaxTime.Milliseconds(),
			"p50Time":     route.P50Time.Milliseconds(),
			"p95Time":     route.P95Time.Milliseconds(),
			"lastRequest": route.LastRequest,
		}
	}
	return result
}

// MetricsSummaryHandler returns request totals since startup
func MetricsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.GetMetrics().GetSummary())
}

// MetricsRoutesHandler returns per route timings, slowest first. ?traces=N also returns the
// N most recent requests.
func MetricsRoutesHandler(w http.ResponseWriter, r *http.Request) {
	routes := api.GetMetrics().GetRouteMetrics()
	resp := map[string]interface{}{
		"routes": formatRouteMetrics(routes),
		"total":  len(routes),
	}
	if v := r.URL.Query().Get("traces"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			config.ErrorStatus("traces must be a non-negative integer", http.StatusBadRequest, w, err)
			return
		}
		resp["traces"] = api.GetMetrics().GetTraces(limit)
	}
	writeJSON(w, http.StatusOK, resp)
}
