package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestInMemoryLimiterStore(t *testing.T) {
	store := NewInMemoryLimiterStore(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow(ctx, "booking:create:cust-1")
		if err != nil || !allowed {
			t.Fatalf("request %d: allowed=%v err=%v, want allowed", i+1, allowed, err)
		}
	}
	if allowed, _ := store.Allow(ctx, "booking:create:cust-1"); allowed {
		t.Error("4th request allowed past a budget of 3")
	}
}

func TestInMemoryLimiterStoreKeysIndependent(t *testing.T) {
	store := NewInMemoryLimiterStore(1)
	ctx := context.Background()

	if allowed, _ := store.Allow(ctx, "booking:create:cust-1"); !allowed {
		t.Fatal("first actor's first request denied")
	}
	if allowed, _ := store.Allow(ctx, "booking:create:cust-2"); !allowed {
		t.Error("second actor throttled by the first actor's budget")
	}
	if allowed, _ := store.Allow(ctx, "booking:cancel:cust-1"); !allowed {
		t.Error("a different action shares the first action's budget")
	}
}

func TestInMemoryLimiterStoreClampsRate(t *testing.T) {
	store := NewInMemoryLimiterStore(0)
	if allowed, err := store.Allow(context.Background(), "booking:create:cust-1"); err != nil || !allowed {
		t.Fatalf("allowed=%v err=%v, want the first request allowed", allowed, err)
	}
}

// limitedRouter wires the limiter the way the routes do: nothing runs before
// it, so the actor key has to come from the request itself.
func limitedRouter(store LimiterStore, action string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", RateLimit(store, action), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r *gin.Engine, actorID string) int {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	r := limitedRouter(NewInMemoryLimiterStore(2), "booking:create")

	if code := do(r, "cust-1"); code != http.StatusOK {
		t.Fatalf("request 1: %d", code)
	}
	if code := do(r, "cust-1"); code != http.StatusOK {
		t.Fatalf("request 2: %d", code)
	}
	if code := do(r, "cust-1"); code != http.StatusTooManyRequests {
		t.Errorf("request 3: got %d, want 429", code)
	}
	// Another actor still has their own budget.
	if code := do(r, "cust-2"); code != http.StatusOK {
		t.Errorf("second actor: got %d, want 200", code)
	}
}

func TestRateLimitAnonymousKeyedByIP(t *testing.T) {
	r := limitedRouter(NewInMemoryLimiterStore(1), "booking:create")

	if code := do(r, ""); code != http.StatusOK {
		t.Fatalf("first anonymous request: %d", code)
	}
	// Same source address, no actor header: shares one budget.
	if code := do(r, ""); code != http.StatusTooManyRequests {
		t.Errorf("second anonymous request: got %d, want 429", code)
	}
	// An identified actor from the same address is keyed separately.
	if code := do(r, "cust-1"); code != http.StatusOK {
		t.Errorf("identified actor: got %d, want 200", code)
	}
}

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string) (bool, error) {
	return false, context.DeadlineExceeded
}

func TestRateLimitStoreErrorFailsOpen(t *testing.T) {
	r := limitedRouter(brokenStore{}, "booking:create")

	if code := do(r, "cust-1"); code != http.StatusOK {
		t.Errorf("store error should fail open, got %d", code)
	}
}
