package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Ingest metrics
	ActivitiesReceivedTotal  int64
	ActivitiesProcessedTotal int64
	IngestErrorsTotal        int64
	RosterEntriesTotal       int64

	// WebSocket metrics
	WebSocketConnectionsTotal    int64
	WebSocketDisconnectionsTotal int64
	WebSocketMessagesTotal       int64
	WebSocketErrorsTotal         int64
	activeConnections            int64

	// Report metrics
	ReportsComputedTotal int64
	SnapshotsPublished   int64
	ReportErrorsTotal    int64
	lastComputeDuration  time.Duration
	lastReportActivities int

	// Rollup metrics
	RollupRunsTotal   int64
	RollupErrorsTotal int64

	// Store refresh metrics
	RefreshRunsTotal   int64
	RefreshErrorsTotal int64

	// HTTP metrics
	httpRequestsTotal    map[string]map[int]int64 // endpoint -> status -> count
	httpRequestDurations map[string][]float64     // endpoint -> durations

	// Timing
	startTime time.Time
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			httpRequestsTotal:    make(map[string]map[int]int64),
			httpRequestDurations: make(map[string][]float64),
			startTime:            time.Now(),
		}
	})
	return instance
}

// RecordActivityReceived increments the received counter
func (m *Metrics) RecordActivityReceived() {
	m.mu.Lock()
	m.ActivitiesReceivedTotal++
	m.mu.Unlock()
}

// RecordActivityProcessed increments the processed counter
func (m *Metrics) RecordActivityProcessed() {
	m.mu.Lock()
	m.ActivitiesProcessedTotal++
	m.mu.Unlock()
}

// RecordIngestError increments the ingest error counter
func (m *Metrics) RecordIngestError() {
	m.mu.Lock()
	m.IngestErrorsTotal++
	m.mu.Unlock()
}

// RecordRosterEntry increments the roster entry counter
func (m *Metrics) RecordRosterEntry() {
	m.mu.Lock()
	m.RosterEntriesTotal++
	m.mu.Unlock()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.WebSocketConnectionsTotal++
	m.activeConnections++
	m.mu.Unlock()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.WebSocketDisconnectionsTotal++
	m.activeConnections--
	m.mu.Unlock()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.mu.Lock()
	m.WebSocketMessagesTotal++
	m.mu.Unlock()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.mu.Lock()
	m.WebSocketErrorsTotal++
	m.mu.Unlock()
}

// RecordReportComputed records one engine run over the given activity count
func (m *Metrics) RecordReportComputed(duration time.Duration, activityCount int) {
	m.mu.Lock()
	m.ReportsComputedTotal++
	m.lastComputeDuration = duration
	m.lastReportActivities = activityCount
	m.mu.Unlock()
}

// RecordSnapshotPublished counts snapshots broadcast to dashboard clients
func (m *Metrics) RecordSnapshotPublished() {
	m.mu.Lock()
	m.SnapshotsPublished++
	m.mu.Unlock()
}

// RecordReportError increments the report error counter
func (m *Metrics) RecordReportError() {
	m.mu.Lock()
	m.ReportErrorsTotal++
	m.mu.Unlock()
}

// RecordRollupRun counts one nightly rollup execution
func (m *Metrics) RecordRollupRun(err error) {
	m.mu.Lock()
	m.RollupRunsTotal++
	if err != nil {
		m.RollupErrorsTotal++
	}
	m.mu.Unlock()
}

// RecordRefreshRun counts one store-to-cache refresh
func (m *Metrics) RecordRefreshRun(err error) {
	m.mu.Lock()
	m.RefreshRunsTotal++
	if err != nil {
		m.RefreshErrorsTotal++
	}
	m.mu.Unlock()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.httpRequestsTotal[endpoint] == nil {
		m.httpRequestsTotal[endpoint] = make(map[int]int64)
	}
	m.httpRequestsTotal[endpoint][statusCode]++

	// Keep last 100 durations for percentile calculation
	if len(m.httpRequestDurations[endpoint]) >= 100 {
		m.httpRequestDurations[endpoint] = m.httpRequestDurations[endpoint][1:]
	}
	m.httpRequestDurations[endpoint] = append(m.httpRequestDurations[endpoint], duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeConnections
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		// Helper to write metric
		write := func(name string, value interface{}, labels ...string) {
			labelStr := ""
			if len(labels) > 0 {
				labelStr = "{"
				for i := 0; i < len(labels); i += 2 {
					if i > 0 {
						labelStr += ","
					}
					labelStr += labels[i] + "=\"" + labels[i+1] + "\""
				}
				labelStr += "}"
			}

			switch v := value.(type) {
			case int:
				w.Write([]byte(name + labelStr + " " + strconv.Itoa(v) + "\n"))
			case int64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatInt(v, 10) + "\n"))
			case float64:
				w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(v, 'f', 6, 64) + "\n"))
			}
		}

		// System metrics
		write("salesdesk_uptime_seconds", time.Since(m.startTime).Seconds())

		// Ingest metrics
		write("salesdesk_activities_received_total", m.ActivitiesReceivedTotal)
		write("salesdesk_activities_processed_total", m.ActivitiesProcessedTotal)
		write("salesdesk_ingest_errors_total", m.IngestErrorsTotal)
		write("salesdesk_roster_entries_total", m.RosterEntriesTotal)

		// WebSocket metrics
		write("salesdesk_websocket_connections_total", m.WebSocketConnectionsTotal)
		write("salesdesk_websocket_disconnections_total", m.WebSocketDisconnectionsTotal)
		write("salesdesk_websocket_active_connections", m.activeConnections)
		write("salesdesk_websocket_messages_total", m.WebSocketMessagesTotal)
		write("salesdesk_websocket_errors_total", m.WebSocketErrorsTotal)

		// Report metrics
		write("salesdesk_reports_computed_total", m.ReportsComputedTotal)
		write("salesdesk_snapshots_published_total", m.SnapshotsPublished)
		write("salesdesk_report_errors_total", m.ReportErrorsTotal)
		write("salesdesk_report_compute_duration_seconds", m.lastComputeDuration.Seconds())
		write("salesdesk_report_activity_count", m.lastReportActivities)

		// Rollup and refresh metrics
		write("salesdesk_rollup_runs_total", m.RollupRunsTotal)
		write("salesdesk_rollup_errors_total", m.RollupErrorsTotal)
		write("salesdesk_refresh_runs_total", m.RefreshRunsTotal)
		write("salesdesk_refresh_errors_total", m.RefreshErrorsTotal)

		// HTTP metrics
		for endpoint, statusCodes := range m.httpRequestsTotal {
			for status, count := range statusCodes {
				write("salesdesk_http_requests_total", count, "endpoint", endpoint, "status", strconv.Itoa(status))
			}
		}
		for endpoint, durations := range m.httpRequestDurations {
			if len(durations) == 0 {
				continue
			}
			if p95, err := stats.Percentile(durations, 95); err == nil {
				write("salesdesk_http_request_duration_p95_seconds", p95, "endpoint", endpoint)
			}
		}
	}
}
