package api

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// RequestTrace records a single handled request
type RequestTrace struct {
	RequestID     string        `json:"requestId"`
	Method        string        `json:"method"`
	Path          string        `json:"path"`
	Route         string        `json:"route"`
	Status        int           `json:"status"`
	StartTime     time.Time     `json:"startTime"`
	TotalDuration time.Duration `json:"totalDuration"`
	Admin         string        `json:"admin,omitempty"`
}

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	P50Time     time.Duration `json:"p50Time"`
	P95Time     time.Duration `json:"p95Time"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector collects and aggregates request metrics
type MetricsCollector struct {
	mu            sync.RWMutex
	traces        []RequestTrace
	maxTraces     int
	routeMetrics  map[string]*RouteMetrics
	windowStart   time.Time
	totalRequests int64
	totalErrors   int64
	traceChan     chan RequestTrace
	stopChan      chan struct{}
	stopOnce      sync.Once
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// NewMetricsCollector starts a collector keeping at most maxTraces recent traces. Traces are
// queued on a buffered channel and dropped when it is full, so recording never blocks.
func NewMetricsCollector(maxTraces int) *MetricsCollector {
	mc := &MetricsCollector{
		traces:       make([]RequestTrace, 0, maxTraces),
		maxTraces:    maxTraces,
		routeMetrics: make(map[string]*RouteMetrics),
		windowStart:  time.Now(),
		traceChan:    make(chan RequestTrace, 1000),
		stopChan:     make(chan struct{}),
	}
	go mc.processTraces()
	return mc
}

// GetMetrics returns the global metrics collector
func GetMetrics() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector(10000)
	})
	return globalMetrics
}

// RecordTrace queues a trace, dropping it if the queue is full
func (mc *MetricsCollector) RecordTrace(trace RequestTrace) {
	select {
	case mc.traceChan <- trace:
	default:
	}
}

// Stop ends background processing
func (mc *MetricsCollector) Stop() {
	mc.stopOnce.Do(func() { close(mc.stopChan) })
}

func (mc *MetricsCollector) processTraces() {
	for {
		select {
		case trace := <-mc.traceChan:
			mc.processTrace(trace)
		case <-mc.stopChan:
			return
		}
	}
}

func (mc *MetricsCollector) processTrace(trace RequestTrace) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.traces) >= mc.maxTraces {
		mc.traces = mc.traces[1:]
	}
	mc.traces = append(mc.traces, trace)

	route := trace.Route
	if route == "" {
		route = normalizeRoutePath(trace.Path)
	}
	routeKey := trace.Method + " " + route

	metrics, exists := mc.routeMetrics[routeKey]
	if !exists {
		metrics = &RouteMetrics{
			Method:  trace.Method,
			Path:    route,
			MinTime: trace.TotalDuration,
		}
		mc.routeMetrics[routeKey] = metrics
	}

	metrics.Count++
	metrics.TotalTime += trace.TotalDuration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = trace.StartTime
	if trace.TotalDuration < metrics.MinTime {
		metrics.MinTime = trace.TotalDuration
	}
	if trace.TotalDuration > metrics.MaxTime {
		metrics.MaxTime = trace.TotalDuration
	}
	if trace.Status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}
	mc.totalRequests++

	if metrics.Count%20 == 1 {
		mc.calculatePercentiles(routeKey)
	}
}

// GetRouteMetrics returns a copy of the per route aggregates, slowest first
func (mc *MetricsCollector) GetRouteMetrics() []RouteMetrics {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	routes := make([]RouteMetrics, 0, len(mc.routeMetrics))
	for k, v := range mc.routeMetrics {
		mc.calculatePercentiles(k)
		routes = append(routes, *v)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].AvgTime != routes[j].AvgTime {
			return routes[i].AvgTime > routes[j].AvgTime
		}
		return routes[i].Method+routes[i].Path < routes[j].Method+routes[j].Path
	})
	return routes
}

// GetTraces returns up to limit of the most recent traces, oldest first
func (mc *MetricsCollector) GetTraces(limit int) []RequestTrace {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	start := len(mc.traces) - limit
	if start < 0 {
		start = 0
	}
	out := make([]RequestTrace, len(mc.traces)-start)
	copy(out, mc.traces[start:])
	return out
}

// GetSummary returns overall summary metrics
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	elapsed := time.Since(mc.windowStart)
	var tps float64
	if elapsed.Seconds() > 0 {
		tps = float64(mc.totalRequests) / elapsed.Seconds()
	}
	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"tps":           tps,
		"windowStart":   mc.windowStart,
		"routeCount":    len(mc.routeMetrics),
		"traceCount":    len(mc.traces),
	}
}

// calculatePercentiles must be called with mc.mu held
func (mc *MetricsCollector) calculatePercentiles(routeKey string) {
	metrics := mc.routeMetrics[routeKey]
	if metrics == nil {
		return
	}

	var durations []time.Duration
	for _, trace := range mc.traces {
		route := trace.Route
		if route == "" {
			route = normalizeRoutePath(trace.Path)
		}
		if trace.Method+" "+route == routeKey {
			durations = append(durations, trace.TotalDuration)
		}
	}
	if len(durations) == 0 {
		return
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	metrics.P50Time = durations[int(float64(len(durations))*0.50)]
	p95 := int(float64(len(durations)) * 0.95)
	if p95 >= len(durations) {
		p95 = len(durations) - 1
	}
	metrics.P95Time = durations[p95]
}

var (
	caseIDPattern   = regexp.MustCompile(`/CASE-\d+-[0-9A-Z]+`)
	objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)
	uuidPattern     = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
)

// normalizeRoutePath replaces dynamic segments with placeholders when no route template is
// known, e.g. /api/v1/case/CASE-1700000000000-AB12CD34E -> /api/v1/case/{id}
func normalizeRoutePath(path string) string {
	path = caseIDPattern.ReplaceAllString(path, "/{id}")
	path = objectIDPattern.ReplaceAllString(path, "/{id}$1")
	path = uuidPattern.ReplaceAllString(path, "/{id}$1")
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
