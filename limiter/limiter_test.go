package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/vendorly/secgate/limiter"
	"github.com/vendorly/secgate/limiter/store"
)

func TestCheck_Scenario(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	l := limiter.New(st)
	cfg := limiter.Config{Window: time.Minute, MaxRequests: 3}
	ctx := context.Background()

	want := []struct {
		allowed   bool
		remaining int64
	}{
		{true, 2},
		{true, 1},
		{true, 0},
		{false, 0},
	}

	for i, w := range want {
		res, err := l.Check(ctx, "ip-A", cfg)
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if res.Allowed != w.allowed || res.Remaining != w.remaining {
			t.Errorf("call %d: got (%v, %d), want (%v, %d)",
				i+1, res.Allowed, res.Remaining, w.allowed, w.remaining)
		}
	}
}

func TestCheck_KeyFunc(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	l := limiter.New(st)
	cfg := limiter.Config{
		Window:      time.Minute,
		MaxRequests: 1,
		KeyFunc: func(id string) string {
			return "tenant:" + id
		},
	}
	ctx := context.Background()

	if res, _ := l.Check(ctx, "a", cfg); !res.Allowed {
		t.Fatal("first request for key a should pass")
	}
	if res, _ := l.Check(ctx, "a", cfg); res.Allowed {
		t.Error("second request for key a should be blocked")
	}

	// The raw identifier must not collide with the derived key.
	count, _ := st.Get(ctx, "a")
	if count != 0 {
		t.Errorf("raw identifier key has count %d, want 0", count)
	}
	count, _ = st.Get(ctx, "tenant:a")
	if count != 1 {
		t.Errorf("derived key has count %d, want 1", count)
	}
}

func TestCheck_IndependentIdentifiers(t *testing.T) {
	st := store.NewMemory()
	defer st.Close()

	l := limiter.New(st)
	cfg := limiter.Config{Window: time.Minute, MaxRequests: 1}
	ctx := context.Background()

	if res, _ := l.Check(ctx, "ip-A", cfg); !res.Allowed {
		t.Fatal("ip-A should pass")
	}
	if res, _ := l.Check(ctx, "ip-A", cfg); res.Allowed {
		t.Error("ip-A should now be blocked")
	}
	if res, _ := l.Check(ctx, "ip-B", cfg); !res.Allowed {
		t.Error("ip-B must not be affected by ip-A's block")
	}
}
