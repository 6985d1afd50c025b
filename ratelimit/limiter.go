package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of one quota check.
type Result struct {
	Allowed bool
	// Unlimited is set for admins, whose quota is never tracked.
	Unlimited bool
	Remaining int
	// ResetAt is when the moderator's current window expires. Zero for admins.
	ResetAt time.Time
}

type quota struct {
	count   int
	resetAt time.Time
}

// Limiter enforces a fixed-window verification quota per moderator. Entries are
// never swept; a stale window is reset the next time its moderator shows up.
type Limiter struct {
	mu     sync.Mutex
	quotas map[string]*quota

	limit  int
	window time.Duration
	admins map[string]struct{}
	now    func() time.Time
}

// NewLimiter creates a limiter allowing limit verifications per window. Admins
// are matched by account ID or tag and always pass.
func NewLimiter(limit int, window time.Duration, admins []string) *Limiter {
	adminSet := make(map[string]struct{}, len(admins))
	for _, id := range admins {
		adminSet[id] = struct{}{}
	}
	return &Limiter{
		quotas: make(map[string]*quota),
		limit:  limit,
		window: window,
		admins: adminSet,
		now:    time.Now,
	}
}

// CheckAndConsume atomically checks the moderator's quota and, when allowed,
// consumes one unit of it. A denied call does not touch the counter.
func (l *Limiter) CheckAndConsume(moderatorID, moderatorTag string) Result {
	if l.isAdmin(moderatorID) || l.isAdmin(moderatorTag) {
		return Result{Allowed: true, Unlimited: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	q, ok := l.quotas[moderatorID]
	if !ok || !now.Before(q.resetAt) {
		q = &quota{count: 1, resetAt: now.Add(l.window)}
		l.quotas[moderatorID] = q
		return Result{Allowed: true, Remaining: l.limit - 1, ResetAt: q.resetAt}
	}

	if q.count >= l.limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: q.resetAt}
	}

	q.count++
	return Result{Allowed: true, Remaining: l.limit - q.count, ResetAt: q.resetAt}
}

// Limit returns the configured per-window limit.
func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) isAdmin(identity string) bool {
	_, ok := l.admins[identity]
	return ok
}
