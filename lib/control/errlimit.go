package control

import (
	"log/slog"
	"time"
)

const errInterval = 5 * time.Second

// errLimiter logs a repeating failure at most once per errInterval, with
// the number of failures since the last report.
type errLimiter struct {
	now    func() time.Time
	last   time.Time
	missed int
}

func (e *errLimiter) report(log *slog.Logger, msg string, err error) bool {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	t := now()
	if !e.last.IsZero() && t.Sub(e.last) < errInterval {
		e.missed++
		return false
	}
	log.Warn(msg, "error", err, "suppressed", e.missed)
	e.last = t
	e.missed = 0
	return true
}
