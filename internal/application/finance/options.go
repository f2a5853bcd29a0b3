package finance

import (
	"time"

	"github.com/garage/backend/internal/infrastructure/telemetry"
)

// Option configures the finance services
type Option func(*options)

type options struct {
	now            func() time.Time
	loc            *time.Location
	metrics        *telemetry.GarageMetrics
	idempotencyTTL time.Duration
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the location "today" is computed in
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithMetrics records business metrics
func WithMetrics(m *telemetry.GarageMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithIdempotencyTTL sets how long an Idempotency-Key is remembered
func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.idempotencyTTL = ttl
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.Local, idempotencyTTL: 24 * time.Hour}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// clock returns the current time in the configured location
func (o options) clock() time.Time {
	return o.now().In(o.loc)
}

// today returns midnight of the current day in the configured location
func (o options) today() time.Time {
	t := o.clock()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, o.loc)
}
