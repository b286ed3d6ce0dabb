package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/stockroom-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 5 * time.Second
)

// PGHandler is an slog.Handler that batches ERROR+ logs into system_logs.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
}

// pgSink is the buffer shared by a PGHandler and every handler derived from
// it through WithAttrs.
type pgSink struct {
	db        *gorm.DB
	batchSize int
	mu        sync.Mutex
	buffer    []models.SystemLog
	ticker    *time.Ticker
	done      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(db, defaultBatchSize, defaultFlushInterval)
}

func newPGHandler(db *gorm.DB, batchSize int, interval time.Duration) *PGHandler {
	s := &pgSink{
		db:        db,
		batchSize: batchSize,
		buffer:    make([]models.SystemLog, 0, batchSize),
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go s.flushLoop()
	return &PGHandler{sink: s}
}

func (s *pgSink) flushLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, s.batchSize)
	s.mu.Unlock()

	if err := s.db.CreateInBatches(batch, s.batchSize).Error; err != nil {
		// Level WARN keeps this record out of the handler that just failed.
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and waits for the flush loop to exit.
func (h *PGHandler) Stop() {
	h.sink.stopOnce.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	<-h.sink.stopped
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := logEntry{models.SystemLog{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}}

	extra := make(map[string]any)
	apply := func(a slog.Attr) bool {
		entry.assign(a, extra)
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	s := h.sink
	s.mu.Lock()
	s.buffer = append(s.buffer, entry.SystemLog)
	needFlush := len(s.buffer) >= s.batchSize
	s.mu.Unlock()

	if needFlush {
		go s.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged}
}

// WithGroup is ignored; system_logs columns are flat.
func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}

type logEntry struct {
	models.SystemLog
}

func (e *logEntry) assign(a slog.Attr, extra map[string]any) {
	v := a.Value.Resolve()
	switch a.Key {
	case "op":
		e.Op = v.String()
	case "shop_email":
		e.ShopEmail = v.String()
	case "shop_id":
		s := v.String()
		e.ShopID = &s
	case "product_id":
		s := v.String()
		e.ProductID = &s
	case "request_id":
		e.RequestID = v.String()
	case "error":
		e.Error = v.String()
	case "latency_ms":
		switch v.Kind() {
		case slog.KindInt64:
			e.LatencyMs = int(v.Int64())
		case slog.KindFloat64:
			e.LatencyMs = int(math.Round(v.Float64()))
		case slog.KindDuration:
			e.LatencyMs = int(v.Duration().Milliseconds())
		}
	default:
		if err, ok := v.Any().(error); ok {
			extra[a.Key] = err.Error()
			return
		}
		extra[a.Key] = v.Any()
	}
}
