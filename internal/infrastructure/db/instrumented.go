package db

import (
	"context"
	"errors"
	"time"

	"github.com/99minutos/client-console/internal/api/metrics"
	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
)

// instrumented records Prometheus metrics around every repository call.
type instrumented struct {
	next    ports.ClientRepository
	backend string
}

// Instrument wraps repo so each call is counted and timed under backend.
func Instrument(repo ports.ClientRepository, backend string) ports.ClientRepository {
	return &instrumented{next: repo, backend: backend}
}

func (r *instrumented) observe(op string, start time.Time, err error) {
	metrics.RepositoryOperationDuration.WithLabelValues(r.backend, op).Observe(time.Since(start).Seconds())
	metrics.RepositoryOperationsTotal.WithLabelValues(r.backend, op, resultLabel(err)).Inc()
}

func (r *instrumented) Create(ctx context.Context, c *domain.Client) error {
	start := time.Now()
	err := r.next.Create(ctx, c)
	r.observe("create", start, err)
	return err
}

func (r *instrumented) Get(ctx context.Context, username string) (*domain.Client, error) {
	start := time.Now()
	c, err := r.next.Get(ctx, username)
	r.observe("get", start, err)
	return c, err
}

func (r *instrumented) List(ctx context.Context) ([]*domain.Client, error) {
	start := time.Now()
	out, err := r.next.List(ctx)
	r.observe("list", start, err)
	if err == nil {
		metrics.ClientsStored.WithLabelValues(r.backend).Set(float64(len(out)))
	}
	return out, err
}

func (r *instrumented) Update(ctx context.Context, c *domain.Client) error {
	start := time.Now()
	err := r.next.Update(ctx, c)
	r.observe("update", start, err)
	return err
}

func (r *instrumented) Delete(ctx context.Context, username string) error {
	start := time.Now()
	err := r.next.Delete(ctx, username)
	r.observe("delete", start, err)
	return err
}

func (r *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := r.next.Ping(ctx)
	r.observe("ping", start, err)
	return err
}

func (r *instrumented) Close(ctx context.Context) error {
	return r.next.Close(ctx)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrClientExists):
		return "exists"
	case errors.Is(err, domain.ErrClientNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	}
	return "error"
}
