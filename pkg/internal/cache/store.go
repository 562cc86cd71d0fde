package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
)

var C *cache.Cache[string]

func NewStore() error {
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     10 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return err
	}

	C = cache.New[string](ristrettostore.NewRistretto(inner))
	return nil
}

func Get(ctx context.Context, key string) (string, bool) {
	val, err := C.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return val, true
}

func Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = C.Set(ctx, key, value, store.WithExpiration(ttl), store.WithCost(int64(len(value))))
}
