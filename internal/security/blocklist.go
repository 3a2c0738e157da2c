package security

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// BlockList is the runtime-only set of blocked IPs. Entries never expire;
// the set is emptied only by a process restart.
type BlockList struct {
	ips *cache.Cache
}

// NewBlockList creates an empty block list.
func NewBlockList() *BlockList {
	return &BlockList{ips: cache.New(cache.NoExpiration, 0)}
}

// Block adds ip. It reports whether the ip was newly added.
func (b *BlockList) Block(ip, reason string, at time.Time) bool {
	return b.ips.Add(ip, BlockedIP{IP: ip, Reason: reason, At: at}, cache.NoExpiration) == nil
}

// IsBlocked reports whether ip is blocked.
func (b *BlockList) IsBlocked(ip string) bool {
	_, found := b.ips.Get(ip)
	return found
}

// BlockedIP is one block list entry.
type BlockedIP struct {
	IP     string    `json:"ip"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// List returns every blocked IP.
func (b *BlockList) List() []BlockedIP {
	items := b.ips.Items()
	out := make([]BlockedIP, 0, len(items))
	for _, item := range items {
		out = append(out, item.Object.(BlockedIP))
	}
	return out
}
