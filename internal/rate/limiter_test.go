package rate

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/socialgate/internal/cache"
)

func TestFixedWindow_AllowsUpToMax(t *testing.T) {
	l := NewFixedWindow(cache.NewMemory(""), "test", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Remaining != int64(3-i-1) {
			t.Fatalf("remaining after %d hits: got %d", i+1, res.Remaining)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("fourth request should be blocked")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("retry after out of range: %v", res.RetryAfter)
	}
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	l := NewFixedWindow(cache.NewMemory(""), "test", 1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "1.1.1.1"); !res.Allowed {
		t.Fatal("first ip should pass")
	}
	if res, _ := l.Allow(ctx, "1.1.1.1"); res.Allowed {
		t.Fatal("first ip should now be blocked")
	}
	if res, _ := l.Allow(ctx, "2.2.2.2"); !res.Allowed {
		t.Fatal("second ip must not share the first ip's window")
	}
}

func TestNewFixedWindow_Defaults(t *testing.T) {
	l := NewFixedWindow(cache.NewMemory(""), "", 10, 0)
	if l.Prefix != "rl" {
		t.Fatalf("prefix: %q", l.Prefix)
	}
	if l.Window != time.Minute {
		t.Fatalf("window: %v", l.Window)
	}
}
