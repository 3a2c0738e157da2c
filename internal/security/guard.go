package security

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Kind classifies a guard rejection.
type Kind string

const (
	KindBlockedRequest Kind = "blocked_request"
	KindRateLimited    Kind = "rate_limited"
	KindSuspicious     Kind = "suspicious"
)

// Verdict is the guard's decision for one request.
type Verdict struct {
	Allowed    bool
	Kind       Kind
	Detail     string
	RetryAfter time.Duration
	// NewlyBlocked is set when this request put the IP on the block list.
	NewlyBlocked bool
	// Report is set when the rejection should be recorded as a security event.
	Report bool
}

// Guard combines the block list, the fixed-window limiter and the content filter.
type Guard struct {
	limiter  *RateLimiter
	filter   *ContentFilter
	blocked  *BlockList
	reported *cache.Cache
	now      func() time.Time
}

// NewGuard wires the three checks together.
func NewGuard(limiter *RateLimiter, filter *ContentFilter, blocked *BlockList) *Guard {
	return &Guard{
		limiter:  limiter,
		filter:   filter,
		blocked:  blocked,
		reported: cache.New(limiter.size, 0),
		now:      time.Now,
	}
}

// BlockList exposes the guard's block list.
func (g *Guard) BlockList() *BlockList { return g.blocked }

// Admit runs the checks that need no body: block list, then rate limit.
// Blocked and rate-limited rejections are reported once per limiter window
// (per ip for blocks, per ip and key for limits); repeats inside the window
// come back with Report unset.
func (g *Guard) Admit(ip, key string) Verdict {
	if g.blocked.IsBlocked(ip) {
		return Verdict{Kind: KindBlockedRequest, Detail: "ip is blocked", Report: g.firstReport("blocked|" + ip)}
	}

	if ok, retry := g.limiter.Check(ip, key); !ok {
		return Verdict{
			Kind:       KindRateLimited,
			Detail:     "limit exceeded for " + key,
			RetryAfter: retry,
			Report:     g.firstReport("limited|" + ip + "|" + key),
		}
	}
	return Verdict{Allowed: true}
}

func (g *Guard) firstReport(id string) bool {
	return g.reported.Add(id, struct{}{}, cache.DefaultExpiration) == nil
}

// Scan checks a request body whatever the method. A suspicious body blocks
// the ip for the rest of the process lifetime.
func (g *Guard) Scan(ip string, body []byte) Verdict {
	if len(body) == 0 {
		return Verdict{Allowed: true}
	}
	if pattern, hit := g.filter.Match(body); hit {
		newly := g.blocked.Block(ip, "suspicious content: "+pattern, g.now())
		return Verdict{Kind: KindSuspicious, Detail: pattern, NewlyBlocked: newly, Report: true}
	}
	return Verdict{Allowed: true}
}
