package suspicion

import (
	"regexp"
	"strings"
	"time"

	"sentry-bot/models"
)

// Reason strings attached to a verdict, in the order the rules run.
const (
	ReasonYoungAccount    = "account younger than 7 days"
	ReasonGenericUsername = "generic username pattern"
	ReasonNoAvatar        = "no custom avatar"
	ReasonMaliciousBot    = "malicious bot detected"
)

const minAccountAge = 7 * 24 * time.Hour

// Usernames like "User12345": letters followed by digits, nothing else.
var genericUsernamePattern = regexp.MustCompile(`(?i)^[a-z]+[0-9]+$`)

var maliciousBotKeywords = []string{"nitro", "generator", "free", "gift", "discord", "bot"}

// Verdict is the result of evaluating one account snapshot. Reasons keep the
// rule order and are never reordered.
type Verdict struct {
	Reasons []string
}

// IsSuspicious reports whether any rule matched.
func (v Verdict) IsSuspicious() bool {
	return len(v.Reasons) > 0
}

// HasReason reports whether the verdict contains the given reason.
func (v Verdict) HasReason(reason string) bool {
	for _, r := range v.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// Evaluator applies the suspicion heuristics to account snapshots. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	authorizedBots map[string]struct{}
	now            func() time.Time
}

// NewEvaluator creates an evaluator. authorizedBots lists bot tags
// (username#discriminator) that are exempt from the malicious-bot rule.
func NewEvaluator(authorizedBots []string) *Evaluator {
	allow := make(map[string]struct{}, len(authorizedBots))
	for _, tag := range authorizedBots {
		allow[tag] = struct{}{}
	}
	return &Evaluator{
		authorizedBots: allow,
		now:            time.Now,
	}
}

// Evaluate runs every rule against the snapshot and returns the verdict.
// All rules run; an account can accumulate up to four reasons.
func (e *Evaluator) Evaluate(account models.AccountSnapshot) Verdict {
	var reasons []string

	if e.now().Sub(account.CreatedAt) < minAccountAge {
		reasons = append(reasons, ReasonYoungAccount)
	}

	if genericUsernamePattern.MatchString(account.Username) {
		reasons = append(reasons, ReasonGenericUsername)
	}

	if !account.HasAvatar {
		reasons = append(reasons, ReasonNoAvatar)
	}

	if account.IsBot {
		if _, authorized := e.authorizedBots[account.Tag()]; !authorized {
			username := strings.ToLower(account.Username)
			for _, keyword := range maliciousBotKeywords {
				if strings.Contains(username, keyword) {
					reasons = append(reasons, ReasonMaliciousBot)
					break
				}
			}
		}
	}

	return Verdict{Reasons: reasons}
}
