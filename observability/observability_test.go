package observability

import (
	"context"
	"errors"
	"testing"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("component", "lump"))
	l.Debug("msg")
	l.Info("msg", Int("count", 3))
	l.Warn("msg", Int64("offset", 384))
	l.Error("msg", Error("err", errors.New("boom")))
}

func TestFields(t *testing.T) {
	cases := []struct {
		f       Field
		wantKey string
		wantVal interface{}
	}{
		{String("a", "b"), "a", "b"},
		{Int("a", 1), "a", 1},
		{Int64("a", int64(2)), "a", int64(2)},
		{Float64("a", 1.5), "a", 1.5},
	}
	for _, c := range cases {
		if c.f.Key() != c.wantKey {
			t.Errorf("Key() = %q, want %q", c.f.Key(), c.wantKey)
		}
		if c.f.Value() != c.wantVal {
			t.Errorf("Value() = %v, want %v", c.f.Value(), c.wantVal)
		}
	}
}
