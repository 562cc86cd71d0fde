package security

import (
	"sync"
	"time"
)

// TokenBlacklist remembers revoked tokens until their natural expiry. Lookups
// lazily drop expired entries; every insert sweeps the whole map so the
// population is bounded by token turnover without a background task. Entries
// live in a sync.Map, so lookups of distinct tokens never contend and the
// sweep walks live entries without a global lock.
type TokenBlacklist struct {
	entries sync.Map // token -> expiry unix milli
	clock   Clock
}

func NewTokenBlacklist(clock Clock) *TokenBlacklist {
	if clock == nil {
		clock = SystemClock()
	}
	return &TokenBlacklist{clock: clock}
}

func (b *TokenBlacklist) IsBlacklisted(token string) bool {
	val, ok := b.entries.Load(token)
	if !ok {
		return false
	}
	if val.(int64) <= b.clock.Now().UnixMilli() {
		b.entries.Delete(token)
		return false
	}
	return true
}

func (b *TokenBlacklist) Blacklist(token string, expiresAt time.Time) {
	b.entries.Store(token, expiresAt.UnixMilli())

	now := b.clock.Now().UnixMilli()
	b.entries.Range(func(key, val any) bool {
		if val.(int64) <= now {
			b.entries.Delete(key)
		}
		return true
	})
}

func (b *TokenBlacklist) Size() int {
	size := 0
	b.entries.Range(func(_, _ any) bool {
		size++
		return true
	})
	return size
}
