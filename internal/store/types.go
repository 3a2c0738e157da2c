package store

const (
	DefaultEventLimit = 100
	MaxEventLimit     = 500
)

// SecurityEventFilter narrows ListSecurityEvents. Empty fields match all.
type SecurityEventFilter struct {
	IP    string
	Kind  string
	Limit int
}

func (f SecurityEventFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultEventLimit
	case f.Limit > MaxEventLimit:
		return MaxEventLimit
	default:
		return f.Limit
	}
}
