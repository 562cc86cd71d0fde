package security

import (
	"fmt"
	"testing"
	"time"
)

func TestBlacklistUnknownToken(t *testing.T) {
	blacklist := NewTokenBlacklist(newFakeClock())
	if blacklist.IsBlacklisted("nope") {
		t.Fatalf("unknown token should not be blacklisted")
	}
}

func TestBlacklistActiveToken(t *testing.T) {
	clock := newFakeClock()
	blacklist := NewTokenBlacklist(clock)

	blacklist.Blacklist("tok", clock.Now().Add(time.Hour))
	if !blacklist.IsBlacklisted("tok") {
		t.Fatalf("token should be blacklisted until expiry")
	}
}

func TestBlacklistExpiredTokenIsEvictedLazily(t *testing.T) {
	clock := newFakeClock()
	blacklist := NewTokenBlacklist(clock)

	blacklist.Blacklist("tok", clock.Now().Add(time.Minute))
	clock.Advance(2 * time.Minute)

	if blacklist.IsBlacklisted("tok") {
		t.Fatalf("expired token should not be blacklisted")
	}
	if blacklist.Size() != 0 {
		t.Fatalf("expired token should have been evicted, size=%d", blacklist.Size())
	}
}

func TestBlacklistInsertSweepsExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	blacklist := NewTokenBlacklist(clock)

	for i := 0; i < 10; i++ {
		blacklist.Blacklist(fmt.Sprintf("old-%d", i), clock.Now().Add(time.Minute))
	}
	clock.Advance(2 * time.Minute)

	blacklist.Blacklist("fresh", clock.Now().Add(time.Hour))
	if blacklist.Size() != 1 {
		t.Fatalf("insert should have swept expired entries, size=%d", blacklist.Size())
	}
	if !blacklist.IsBlacklisted("fresh") {
		t.Fatalf("fresh token should remain blacklisted")
	}
}
