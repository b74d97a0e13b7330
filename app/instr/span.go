// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package instr provides lightweight span timing around engine operations,
// exported as a prometheus histogram and logged with parent/child span ids.
package instr

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	spanOnce sync.Once

	functionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "function_execution_seconds",
			Help:    "Time taken for a function execution",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"function_name", "error"},
	)
)

// Span times one named operation. End observes the duration once; further
// calls are no-ops.
type Span struct {
	ctx      context.Context
	id       string
	parentID string
	name     string
	start    time.Time
	err      error
	ended    bool
}

// StartSpan starts a span registered against the default prometheus registry.
func StartSpan(ctx context.Context, name string) *Span {
	spanOnce.Do(func() {
		prometheus.MustRegister(functionDuration)
	})

	return &Span{
		ctx:      ctx,
		id:       uuid.NewString(),
		parentID: getParentID(ctx),
		name:     name,
		start:    time.Now(),
	}
}

// RunSpan wraps fn in a span, recording its error and ending the span when fn
// returns. fn's context carries the span id so nested spans chain up.
func RunSpan(ctx context.Context, name string, fn func(ctx context.Context, span *Span) error) error {
	span := StartSpan(ctx, name)
	defer span.End()

	ctxWithSpan := context.WithValue(ctx, spanIDKey, span.id)
	return span.Error(fn(ctxWithSpan, span))
}

// Error observes an error and passes it through to the caller.
func (s *Span) Error(err error) error {
	s.err = err
	return err
}

// Duration returns the elapsed time of the span so far.
func (s *Span) Duration() time.Duration {
	return time.Since(s.start)
}

// End records the span's duration and writes a trace log line.
func (s *Span) End() {
	if s.ended {
		return
	}
	s.ended = true

	elapsed := time.Since(s.start)
	result := "false"
	if s.err != nil {
		result = "true"
	}
	functionDuration.WithLabelValues(s.name, result).Observe(elapsed.Seconds())

	event := log.Ctx(s.ctx).Trace().
		Str("span_id", s.id).
		Str("span_name", s.name).
		Dur("span_elapsed_ms", elapsed)
	if s.parentID != "" {
		event = event.Str("span_parent_id", s.parentID)
	}
	if s.err != nil {
		event = event.Err(s.err)
	}
	event.Msg("span ended")
}

// Logger returns a logger annotated with the span's ids, for use inside the
// spanned operation.
func (s *Span) Logger() *zerolog.Logger {
	logger := log.Ctx(s.ctx).With().
		Str("span_id", s.id).
		Str("span_name", s.name).
		Logger()
	return &logger
}
