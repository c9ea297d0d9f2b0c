package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/repository"
	"github.com/aureliov/medicall/lib/logger/sl"
)

const auditWriteTimeout = 5 * time.Second

// AuditRecorder persists call lifecycle events off the caller's path.
// Record never blocks, never returns an error and never lets a store
// failure or panic reach the connection task.
type AuditRecorder struct {
	events repository.CallEventRepository
	log    *slog.Logger
	wg     sync.WaitGroup
}

func NewAuditRecorder(events repository.CallEventRepository, log *slog.Logger) *AuditRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &AuditRecorder{events: events, log: log}
}

func (r *AuditRecorder) Record(event *domain.CallEvent) {
	if event == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("audit write panicked", slog.Any("panic", rec))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := r.events.Create(ctx, event); err != nil {
			r.log.Warn("audit write failed",
				slog.String("appointment_id", event.AppointmentID),
				slog.String("event_type", string(event.EventType)),
				sl.Err(err),
			)
		}
	}()
}

// Wait blocks until in-flight writes settle. Used by tests and shutdown.
func (r *AuditRecorder) Wait() {
	r.wg.Wait()
}
