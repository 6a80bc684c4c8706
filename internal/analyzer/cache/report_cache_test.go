package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

type sample struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestReportKey(t *testing.T) {
	got := ReportKey("report", "BSC", "0xAbC")
	if got != "risk:report:BSC:0xAbC" {
		t.Errorf("key = %s", got)
	}
}

func TestReportCacheLocalOnly(t *testing.T) {
	// redis 为 nil 时纯本地缓存工作
	c := NewReportCache(zap.NewNop(), nil, time.Minute)
	ctx := context.Background()

	if _, found := c.Get(ctx, "missing"); found {
		t.Error("empty cache reported a hit")
	}

	c.Put(ctx, "k", []byte(`{"name":"x","score":42}`), time.Minute)
	data, found := c.Get(ctx, "k")
	if !found {
		t.Fatal("stored key not found")
	}
	if string(data) != `{"name":"x","score":42}` {
		t.Errorf("data = %s", data)
	}
}

func TestTypedRoundTrip(t *testing.T) {
	c := NewReportCache(zap.NewNop(), nil, time.Minute)
	ctx := context.Background()
	tl := zap.NewNop()

	in := &sample{Name: "token", Score: 87}
	PutTyped(ctx, c, tl, "typed", in, time.Minute)

	out, found := GetTyped[sample](ctx, c, "typed")
	if !found {
		t.Fatal("typed value not found")
	}
	if out.Name != in.Name || out.Score != in.Score {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestTypedCorruptedValue(t *testing.T) {
	c := NewReportCache(zap.NewNop(), nil, time.Minute)
	ctx := context.Background()

	c.Put(ctx, "bad", []byte("not json"), time.Minute)
	if _, found := GetTyped[sample](ctx, c, "bad"); found {
		t.Error("corrupted value must behave like a miss")
	}
}
