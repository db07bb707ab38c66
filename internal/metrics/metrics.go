// Package metrics provides lightweight, lock-free counters for
// tracking runtime statistics of a shout server or client.
//
// All methods are safe for concurrent use. A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for the exchange.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	sessionsActive   atomic.Int64
	sessionsTotal    atomic.Int64
	sessionsRejected atomic.Int64
	messagesIn       atomic.Int64
	messagesOut      atomic.Int64
	bytesIn          atomic.Int64
	bytesOut         atomic.Int64
	errorsTotal      atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionOpened increments both the active and total counters.
func (c *Collector) SessionOpened() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(1)
	c.sessionsTotal.Add(1)
}

// SessionClosed decrements the active session counter.
func (c *Collector) SessionClosed() {
	if c == nil {
		return
	}
	c.sessionsActive.Add(-1)
}

// SessionRejected records a connection turned away at the admission
// limit.
func (c *Collector) SessionRejected() {
	if c == nil {
		return
	}
	c.sessionsRejected.Add(1)
}

// ActiveSessions returns the current number of open sessions.
func (c *Collector) ActiveSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsActive.Load()
}

// TotalSessions returns the lifetime session count.
func (c *Collector) TotalSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsTotal.Load()
}

// RejectedSessions returns the lifetime rejection count.
func (c *Collector) RejectedSessions() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsRejected.Load()
}

// ── Message and byte metrics ─────────────────────────────────────────

// MessageReceived records one decoded frame of n payload bytes.
func (c *Collector) MessageReceived(n int) {
	if c == nil {
		return
	}
	c.messagesIn.Add(1)
	c.bytesIn.Add(int64(n))
}

// MessageSent records one encoded frame of n payload bytes.
func (c *Collector) MessageSent(n int) {
	if c == nil {
		return
	}
	c.messagesOut.Add(1)
	c.bytesOut.Add(int64(n))
}

// MessagesIn returns the number of frames received.
func (c *Collector) MessagesIn() int64 {
	if c == nil {
		return 0
	}
	return c.messagesIn.Load()
}

// MessagesOut returns the number of frames sent.
func (c *Collector) MessagesOut() int64 {
	if c == nil {
		return 0
	}
	return c.messagesOut.Load()
}

// TotalBytesIn returns total payload bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total payload bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	SessionsActive   int64  `json:"sessions_active"`
	SessionsTotal    int64  `json:"sessions_total"`
	SessionsRejected int64  `json:"sessions_rejected"`
	MessagesIn       int64  `json:"messages_in"`
	MessagesOut      int64  `json:"messages_out"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:           time.Since(c.startTime).Truncate(time.Second).String(),
		SessionsActive:   c.sessionsActive.Load(),
		SessionsTotal:    c.sessionsTotal.Load(),
		SessionsRejected: c.sessionsRejected.Load(),
		MessagesIn:       c.messagesIn.Load(),
		MessagesOut:      c.messagesOut.Load(),
		BytesIn:          c.bytesIn.Load(),
		BytesOut:         c.bytesOut.Load(),
		ErrorsTotal:      c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
