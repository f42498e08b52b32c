// Package logging builds the process-wide slog logger. Records carry
// service identity and module attributes; on GCP builds they additionally
// carry Cloud Logging trace correlation fields.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Environment selects the log output format.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module labels the subsystem a log record originates from.
type Module string

// ServiceInfo identifies the running service.
type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

// Options configures NewLogger.
type Options struct {
	Level        slog.Leveler
	Service      ServiceInfo
	Environment  Environment
	Module       Module
	GCPProjectID string
	Writer       io.Writer
}

// NewLogger returns a logger that decorates every record with service and
// module attributes. Dev environments log human-readable text, everything
// else logs JSON.
func NewLogger(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var inner slog.Handler
	if opts.Environment == EnvDev {
		inner = slog.NewTextHandler(w, handlerOpts)
	} else {
		inner = slog.NewJSONHandler(w, handlerOpts)
	}

	return slog.New(&decoratedHandler{
		inner:     inner,
		service:   opts.Service,
		module:    opts.Module,
		projectID: opts.GCPProjectID,
	})
}

type decoratedHandler struct {
	inner     slog.Handler
	service   ServiceInfo
	module    Module
	projectID string
}

func (h *decoratedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *decoratedHandler) Handle(ctx context.Context, rec slog.Record) error {
	rec = rec.Clone()

	if h.service.Name != "" {
		rec.AddAttrs(slog.String("service", h.service.Name))
	}
	if h.service.Version != "" {
		rec.AddAttrs(slog.String("version", h.service.Version))
	}
	if h.service.Revision != "" {
		rec.AddAttrs(slog.String("revision", h.service.Revision))
	}
	if h.module != "" {
		rec.AddAttrs(slog.String("module", string(h.module)))
	}
	if attrs := gcpTraceAttrs(ctx, h.projectID); len(attrs) > 0 {
		rec.AddAttrs(attrs...)
	}

	return h.inner.Handle(ctx, rec)
}

func (h *decoratedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithAttrs(attrs)
	return &clone
}

func (h *decoratedHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	return &clone
}
