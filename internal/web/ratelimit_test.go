package web

import (
	"testing"
	"time"
)

func TestMemoryRateLimiterBlocksAtCeiling(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	for i := 1; i <= 3; i++ {
		d := rl.Allow("ip:203.0.113.9:/contact-us", 3, time.Minute)
		if !d.allowed {
			t.Fatalf("request %d unexpectedly blocked", i)
		}
		if d.count != i {
			t.Fatalf("request %d counted as %d", i, d.count)
		}
	}
	d := rl.Allow("ip:203.0.113.9:/contact-us", 3, time.Minute)
	if d.allowed {
		t.Fatalf("expected fourth request blocked")
	}
	if d.count != 3 {
		t.Fatalf("blocked decision should report the ceiling, got %d", d.count)
	}
}

func TestMemoryRateLimiterIsolatesKeys(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	if d := rl.Allow("ip:a:/contact-us", 1, time.Minute); !d.allowed {
		t.Fatalf("first key blocked")
	}
	if d := rl.Allow("ip:a:/contact-us", 1, time.Minute); d.allowed {
		t.Fatalf("first key should be exhausted")
	}
	if d := rl.Allow("ip:b:/contact-us", 1, time.Minute); !d.allowed {
		t.Fatalf("second key must not share the first key's budget")
	}
}

func TestMemoryRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewMemoryRateLimiter()
	defer rl.Close()

	if d := rl.Allow("ip:c:/login-signup", 1, time.Millisecond); !d.allowed {
		t.Fatalf("first request blocked")
	}
	time.Sleep(5 * time.Millisecond)
	if d := rl.Allow("ip:c:/login-signup", 1, time.Millisecond); !d.allowed {
		t.Fatalf("new window should reset the count")
	}
}

func TestRouteLimitDefaults(t *testing.T) {
	if got := routeLimit("/contact-us"); got != rateLimitContact {
		t.Fatalf("contact limit = %d, want %d", got, rateLimitContact)
	}
	if got := routeLimit("/login-signup"); got != rateLimitAuth {
		t.Fatalf("auth limit = %d, want %d", got, rateLimitAuth)
	}
	// Unknown routes carry no ceiling; withRateLimit treats zero as off.
	if got := routeLimit("/themes"); got != 0 {
		t.Fatalf("unlisted route should be unlimited, got %d", got)
	}
}
