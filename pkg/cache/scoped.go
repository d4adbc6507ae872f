package cache

// ScopedKeyer prefixes every key of an inner keyer. The HTTP server uses it
// to keep its entries apart from the CLI's when both share a backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] if inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ScheduleKey implements [Keyer].
func (k *ScopedKeyer) ScheduleKey(graphHash string, opts ScheduleKeyOpts) string {
	return k.prefix + k.inner.ScheduleKey(graphHash, opts)
}
