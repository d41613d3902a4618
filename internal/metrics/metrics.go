package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// Calls to the note service by operation and outcome
	NoteServiceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "note_service_requests_total",
			Help: "Requests issued to the note service",
		},
		[]string{"operation", "outcome"},
	)

	NoteServiceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "note_service_request_duration_seconds",
			Help:    "Note service response time in seconds",
			Buckets: prometheus.LinearBuckets(0.05, 0.05, 10),
		},
		[]string{"operation"},
	)

	// Messages delivered to chats, note chunks included
	RepliesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_replies_sent_total",
			Help: "Replies delivered to chats",
		},
	)

	ReplySendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_reply_send_failures_total",
			Help: "Replies that could not be delivered",
		},
	)

	JournalEventsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_events_stored_total",
			Help: "Activity events persisted by the journal",
		},
		[]string{"kind"},
	)
)

// InitBridge registers the collectors used by the bridge process.
func InitBridge() {
	prometheus.MustRegister(NoteServiceRequests)
	prometheus.MustRegister(NoteServiceDuration)
	prometheus.MustRegister(RepliesSent)
	prometheus.MustRegister(ReplySendFailures)
}

// InitJournal registers the collectors used by the journal process.
func InitJournal() {
	prometheus.MustRegister(JournalEventsStored)
}

func ObserveRequest(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	NoteServiceRequests.WithLabelValues(operation, outcome).Inc()
	NoteServiceDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
