package middleware

import (
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestNewIPRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(1, 5, 10, 20)
	if rl == nil {
		t.Fatal("Expected IPRateLimiter to be created, got nil")
	}
	if rl.normalRate != 1 {
		t.Errorf("Expected normal rate limit to be 1, got %v", rl.normalRate)
	}
	if rl.normalBurst != 5 {
		t.Errorf("Expected normal burst limit to be 5, got %v", rl.normalBurst)
	}
	if rl.cachedRate != 10 {
		t.Errorf("Expected cached rate limit to be 10, got %v", rl.cachedRate)
	}
	if rl.cachedBurst != 20 {
		t.Errorf("Expected cached burst limit to be 20, got %v", rl.cachedBurst)
	}
}

func TestGetLimiter_CreatesOnFirstSight(t *testing.T) {
	rl := NewIPRateLimiter(1, 5, 10, 20)
	ip := "192.168.1.1"

	limiterPair := rl.GetLimiter(ip)
	if limiterPair == nil {
		t.Fatal("Expected limiter pair to be returned, got nil")
	}
	if limiterPair.Normal == nil || limiterPair.Cached == nil {
		t.Error("Expected both tier limiters to be created")
	}
	if _, exists := rl.ips[ip]; !exists {
		t.Error("Expected IP to be in ips map")
	}

	// Second lookup returns the same pair.
	if rl.GetLimiter(ip) != limiterPair {
		t.Error("Expected repeated lookups to return the same pair")
	}
}

func TestGetLimiter_Concurrent(t *testing.T) {
	rl := NewIPRateLimiter(1, 5, 10, 20)

	var wg sync.WaitGroup
	pairs := make([]*LimiterPair, 20)
	for i := range pairs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pairs[i] = rl.GetLimiter("10.0.0.1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(pairs); i++ {
		if pairs[i] != pairs[0] {
			t.Fatal("Concurrent lookups for one IP must share a single pair")
		}
	}
}

func TestRateLimiting(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(1), 1, rate.Limit(5), 5)
	limiterPair := rl.GetLimiter("192.168.1.1")

	if !limiterPair.Normal.Allow() {
		t.Error("Expected first request to be allowed on normal tier")
	}
	if limiterPair.Normal.Allow() {
		t.Error("Expected second request to be denied on normal tier")
	}

	// Cached tier has its own budget.
	if !limiterPair.Cached.Allow() {
		t.Error("Expected request to be allowed on cached tier")
	}

	time.Sleep(1 * time.Second)
	if !limiterPair.Normal.Allow() {
		t.Error("Expected request to be allowed on normal tier after refill")
	}
}

func TestTwoTierRateLimiting(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(1), 1, rate.Limit(2), 2)
	limiterPair := rl.GetLimiter("192.168.1.2")

	if !limiterPair.Normal.Allow() {
		t.Error("Expected first normal request to be allowed")
	}
	if limiterPair.Normal.Allow() {
		t.Error("Expected second normal request to be denied")
	}

	if !limiterPair.Cached.Allow() {
		t.Error("Expected first cached request to be allowed")
	}
	if !limiterPair.Cached.Allow() {
		t.Error("Expected second cached request to be allowed")
	}

	if limiterPair.Normal.Allow() || limiterPair.Cached.Allow() {
		t.Error("Expected both tiers to be exhausted")
	}
}

func TestLimiterPairTokens(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(10), 10, rate.Limit(20), 20)
	limiterPair := rl.GetLimiter("192.168.1.3")

	if got := limiterPair.GetNormalTokens(); got != 10 {
		t.Errorf("Expected 10 normal tokens initially, got %d", got)
	}
	if got := limiterPair.GetCachedTokens(); got != 20 {
		t.Errorf("Expected 20 cached tokens initially, got %d", got)
	}

	limiterPair.Normal.Allow()
	if got := limiterPair.GetNormalTokens(); got != 9 {
		t.Errorf("Expected 9 normal tokens after one request, got %d", got)
	}
}

func TestGetLimits(t *testing.T) {
	rl := NewIPRateLimiter(rate.Limit(2), 5, rate.Limit(10), 20)

	if got := rl.GetNormalLimit(); got != 5 {
		t.Errorf("Expected normal limit to be 5, got %d", got)
	}
	if got := rl.GetCachedLimit(); got != 20 {
		t.Errorf("Expected cached limit to be 20, got %d", got)
	}
}
