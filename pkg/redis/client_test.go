package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oaklinehq/insights-backend/pkg/config"
)

type fakeStore struct {
	values map[string]string
}

func (f *fakeStore) Ping(ctx context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value.(string)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *goredis.StringCmd {
	if v, ok := f.values[key]; ok {
		return goredis.NewStringResult(v, nil)
	}
	return goredis.NewStringResult("", goredis.Nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestGetMapsMissToSentinel(t *testing.T) {
	client := &Client{store: &fakeStore{}}

	_, err := client.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestSetGetDelRoundTrip(t *testing.T) {
	client := &Client{store: &fakeStore{}}
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("Del error: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("post-delete err = %v, want miss", err)
	}
}

func TestReportKeyLayout(t *testing.T) {
	client := &Client{}
	got := client.ReportKey("exec", "7d", "2026-03-01T00:00:00Z")
	want := "insights:report:exec:7d:2026-03-01T00:00:00Z"
	if got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("nil client Ping must error")
	}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatal("nil client Get must error")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client Close = %v, want nil", err)
	}
}

func TestOptionsFromConfigRequiresEndpoint(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("empty config must error")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 5})
	if err != nil {
		t.Fatalf("optionsFromConfig error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 5 {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache.internal:6380/3"})
	if err != nil {
		t.Fatalf("optionsFromConfig error: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 3 || opts.Password != "secret" {
		t.Fatalf("opts = %+v", opts)
	}
}
