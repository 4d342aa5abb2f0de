package ratelimit

import (
	"sync"
	"time"
)

// window tracks admissions for one source within the current rolling window.
type window struct {
	start  time.Time
	count  int
	limit  int
	length time.Duration
}

// SourceLimit fixes one source's admission budget at construction.
type SourceLimit struct {
	Limit  int
	Window time.Duration
}

// Limiter bounds outbound calls per upstream source per rolling window.
// Admit never blocks; callers wait or fail fast on denial.
type Limiter struct {
	mu     sync.Mutex
	m      map[string]*window
	limits map[string]SourceLimit
	def    SourceLimit
	now    func() time.Time
}

// New creates a limiter with per-source limits. Sources without an explicit
// entry fall back to def.
func New(limits map[string]SourceLimit, def SourceLimit) *Limiter {
	if def.Limit <= 0 {
		def = SourceLimit{Limit: 25, Window: time.Minute}
	}
	return &Limiter{
		m:      make(map[string]*window),
		limits: limits,
		def:    def,
		now:    time.Now,
	}
}

// Admit reports whether a call for source may proceed now. When denied,
// retryAfter is the minimum wait before the window resets.
func (l *Limiter) Admit(source string) (allowed bool, retryAfter time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.m[source]
	if !ok {
		lim := l.def
		if sl, ok := l.limits[source]; ok && sl.Limit > 0 {
			lim = sl
		}
		w = &window{start: now, limit: lim.Limit, length: lim.Window}
		l.m[source] = w
	}

	if now.Sub(w.start) >= w.length {
		w.start = now
		w.count = 0
	}

	if w.count < w.limit {
		w.count++
		return true, 0
	}
	return false, w.start.Add(w.length).Sub(now)
}

// Remaining reports how many admissions are left in the current window.
func (l *Limiter) Remaining(source string) int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.m[source]
	if !ok {
		lim := l.def
		if sl, ok := l.limits[source]; ok && sl.Limit > 0 {
			lim = sl
		}
		return lim.Limit
	}
	if now.Sub(w.start) >= w.length {
		return w.limit
	}
	return w.limit - w.count
}
