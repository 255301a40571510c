package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Take(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	for i := 0; i < 10; i++ {
		if allowed, _, _ := bucket.take(); !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	allowed, remaining, resetTime := bucket.take()
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining tokens, got %d", remaining)
	}
	if !resetTime.After(time.Now()) {
		t.Error("Reset time should be in the future")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		bucket.take()
	}

	time.Sleep(1100 * time.Millisecond)

	if allowed, _, _ := bucket.take(); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
	if allowed, _, _ := bucket.take(); allowed {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/layouts", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/layouts", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}

	if allowed, _ := limiter.Allow("127.0.0.2", "/layouts", "GET"); !allowed {
		t.Error("Expected another client to have its own budget")
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/render", "POST")
		if !allowed {
			t.Errorf("Expected whitelisted request %d to be allowed", i+1)
		}
		if info.Limit != 0 {
			t.Errorf("Expected limit 0 for whitelisted, got %d", info.Limit)
		}
	}

	if allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET"); allowed {
		t.Error("Expected blacklisted request to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/render", "POST"); !allowed {
			t.Errorf("Expected request %d to be allowed when disabled", i+1)
		}
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/health", "GET"); !allowed {
			t.Fatalf("Expected health check %d to be allowed", i+1)
		}
	}
	if n := limiter.Buckets(); n != 0 {
		t.Errorf("Expected no buckets for unlimited routes, got %d", n)
	}
}

func TestLimiter_DraftRoutesShareBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/drafts/", Method: "PUT", Limit: 3, Window: time.Hour, Burst: 3},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		path := fmt.Sprintf("/drafts/%d", i)
		if allowed, _ := limiter.Allow("127.0.0.1", path, "PUT"); !allowed {
			t.Errorf("Expected update of %s to be allowed", path)
		}
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/drafts/other", "PUT"); allowed {
		t.Error("Expected a different draft to draw from the same budget")
	}

	allowed, info := limiter.Allow("127.0.0.1", "/drafts/other", "GET")
	if !allowed || info.Limit != 1000 {
		t.Errorf("Expected reads to use the default limit, got allowed=%v limit=%d", allowed, info.Limit)
	}
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/render", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/render", "POST"); !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/render", "POST"); allowed {
		t.Error("Expected request after burst to be denied")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/layouts", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/layouts", "GET")
	}
	if n := limiter.Buckets(); n != 5 {
		t.Fatalf("Expected 5 buckets, got %d", n)
	}

	limiter.cleanupBuckets(time.Now().Add(-time.Hour))
	if n := limiter.Buckets(); n != 5 {
		t.Errorf("Expected recent buckets to survive, got %d", n)
	}

	limiter.cleanupBuckets(time.Now().Add(time.Second))
	if n := limiter.Buckets(); n != 0 {
		t.Errorf("Expected stale buckets to be removed, got %d", n)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, CleanupInterval: 10 * time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/layouts", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if info.Limit != 120 {
		t.Errorf("Expected default limit 120, got %d", info.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs(60)

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{"/render", "POST", "/render", false},
		{"/render/text", "POST", "/render/text", false},
		{"/drafts", "POST", "/drafts", false},
		{"/drafts/abc", "PUT", "/drafts/", false},
		{"/drafts/abc", "DELETE", "/drafts/", false},
		{"/drafts/abc", "GET", "", true},
		{"/layouts", "GET", "", true},
		{"/health", "GET", "/health", false},
	}
	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		if tt.wantNil {
			if got != nil {
				t.Errorf("%s %s: expected no match, got %s", tt.method, tt.path, got.Path)
			}
			continue
		}
		if got == nil || got.Path != tt.wantPath {
			t.Errorf("%s %s: expected %s, got %+v", tt.method, tt.path, tt.wantPath, got)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvWhitelist, "10.0.0.1, 10.0.0.2")
	cfg := LoadConfig(60)
	if !cfg.Enabled || cfg.DefaultLimit != 60 {
		t.Errorf("Expected enabled config with limit 60, got %+v", cfg)
	}
	if !cfg.Whitelist["10.0.0.2"] {
		t.Error("Expected whitelist to be parsed")
	}

	t.Setenv(EnvEnabled, "false")
	if LoadConfig(60).Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}
