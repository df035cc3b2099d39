package clients

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/redis"
	redistest "github.com/kbukum/eventstream/redis/testutil"
	gktest "github.com/kbukum/eventstream/testutil"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "debug", "clients-test")
}

func startRedis(t *testing.T) *redistest.Component {
	t.Helper()
	rc := redistest.NewComponent()
	gktest.T(t).Setup(rc)
	return rc
}

// backends returns each Registry implementation, freshly initialized.
func backends(t *testing.T) map[string]Registry {
	t.Helper()
	rc := startRedis(t)
	shared := NewShared(rc.Client(), "test-clients")
	if err := shared.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return map[string]Registry{
		"local":  NewLocal(),
		"shared": shared,
	}
}

func TestRegistry_SetGetRemove(t *testing.T) {
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{"timestamp": int64(1700000000123), "user": "ana", "admin": false, "score": 1.5}

			if err := reg.SetOne(ctx, "42", rec); err != nil {
				t.Fatalf("SetOne failed: %v", err)
			}
			got, found, err := reg.GetOne(ctx, "42")
			if err != nil || !found {
				t.Fatalf("GetOne = %v, %v, %v", got, found, err)
			}
			for k, want := range rec {
				if got[k] != want {
					t.Errorf("field %s = %#v (%T), want %#v (%T)", k, got[k], got[k], want, want)
				}
			}

			if err := reg.RemoveOne(ctx, "42"); err != nil {
				t.Fatalf("RemoveOne failed: %v", err)
			}
			if _, found, _ := reg.GetOne(ctx, "42"); found {
				t.Error("expected record to be gone after RemoveOne")
			}
			if err := reg.RemoveOne(ctx, "42"); err != nil {
				t.Errorf("RemoveOne of absent id should be a no-op, got %v", err)
			}
		})
	}
}

func TestRegistry_GetOneMissing(t *testing.T) {
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec, found, err := reg.GetOne(context.Background(), "nope")
			if err != nil || found || rec != nil {
				t.Errorf("GetOne missing = %v, %v, %v", rec, found, err)
			}
		})
	}
}

func TestRegistry_GetAllAndPurge(t *testing.T) {
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 3; i++ {
				_ = reg.SetOne(ctx, fmt.Sprint(i), Record{"timestamp": int64(i)})
			}
			all, err := reg.GetAll(ctx)
			if err != nil {
				t.Fatalf("GetAll failed: %v", err)
			}
			if len(all) != 3 || all["2"]["timestamp"] != int64(2) {
				t.Errorf("unexpected GetAll result %v", all)
			}

			if err := reg.PurgeAll(ctx); err != nil {
				t.Fatalf("PurgeAll failed: %v", err)
			}
			all, err = reg.GetAll(ctx)
			if err != nil || len(all) != 0 {
				t.Errorf("expected empty registry after purge, got %v, %v", all, err)
			}
		})
	}
}

func TestRegistry_SetOneCopies(t *testing.T) {
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{"timestamp": int64(1)}
			_ = reg.SetOne(ctx, "a", rec)
			rec["timestamp"] = int64(2)

			got, _, _ := reg.GetOne(ctx, "a")
			if got["timestamp"] != int64(1) {
				t.Errorf("registry observed caller mutation: %v", got)
			}
			got["timestamp"] = int64(3)
			again, _, _ := reg.GetOne(ctx, "a")
			if again["timestamp"] != int64(1) {
				t.Errorf("registry observed mutation of returned record: %v", again)
			}
		})
	}
}

func TestRegistry_NormalizedRoundTrip(t *testing.T) {
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := Record{
				"n":     5,
				"ratio": float32(0.25),
				"tags":  []any{"a", 2},
				"meta":  map[string]any{"depth": uint8(3), "inner": Record{"x": 1.0}},
			}
			want := Record{
				"n":     int64(5),
				"ratio": 0.25,
				"tags":  []any{"a", int64(2)},
				"meta":  map[string]any{"depth": int64(3), "inner": map[string]any{"x": int64(1)}},
			}
			if got := normalize(rec); !reflect.DeepEqual(got, want) {
				t.Fatalf("normalize = %#v, want %#v", got, want)
			}

			if err := reg.SetOne(ctx, "n", rec); err != nil {
				t.Fatalf("SetOne failed: %v", err)
			}
			got, _, _ := reg.GetOne(ctx, "n")
			if !reflect.DeepEqual(got, want) {
				t.Errorf("GetOne = %#v, want %#v", got, want)
			}

			rec["meta"].(map[string]any)["depth"] = 9
			got["meta"].(map[string]any)["depth"] = int64(10)
			got["tags"].([]any)[0] = "changed"
			again, _, _ := reg.GetOne(ctx, "n")
			if !reflect.DeepEqual(again, want) {
				t.Errorf("nested mutation leaked into the registry: %#v", again)
			}
		})
	}
}

func TestRegistry_ConcurrentSetRemove(t *testing.T) {
	for name, reg := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const n = 10
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					if err := reg.SetOne(ctx, id, Record{"timestamp": int64(1)}); err != nil {
						t.Errorf("SetOne(%s) failed: %v", id, err)
					}
				}(fmt.Sprint(i))
			}
			wg.Wait()

			all, _ := reg.GetAll(ctx)
			if len(all) != n {
				t.Fatalf("expected %d records after concurrent sets, got %d", n, len(all))
			}

			for i := 0; i < n; i += 2 {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					_ = reg.RemoveOne(ctx, id)
				}(fmt.Sprint(i))
			}
			wg.Wait()

			all, _ = reg.GetAll(ctx)
			if len(all) != n/2 {
				t.Errorf("expected %d records after concurrent removes, got %d", n/2, len(all))
			}
		})
	}
}

func TestRegistry_SharedFlag(t *testing.T) {
	b := backends(t)
	if b["local"].Shared() {
		t.Error("local backend should not be shared")
	}
	if !b["shared"].Shared() {
		t.Error("redis backend should be shared")
	}
}

func TestShared_InitializeIdempotent(t *testing.T) {
	rc := startRedis(t)
	reg := NewShared(rc.Client(), "")
	ctx := context.Background()

	if reg.Key() != DefaultRedisKey {
		t.Errorf("expected default key, got %q", reg.Key())
	}
	if err := reg.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	_ = reg.SetOne(ctx, "1", Record{"timestamp": int64(5)})
	if err := reg.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if _, found, _ := reg.GetOne(ctx, "1"); !found {
		t.Error("second Initialize must not clear existing records")
	}
}

func TestShared_WireFormat(t *testing.T) {
	rc := startRedis(t)
	reg := NewShared(rc.Client(), "k")
	ctx := context.Background()
	_ = reg.Initialize(ctx)

	raw, _ := rc.Server().Get("k")
	if raw != "{}" {
		t.Errorf("expected empty object after Initialize, got %q", raw)
	}

	_ = reg.SetOne(ctx, "7", Record{"timestamp": int64(1700000000000)})
	raw, _ = rc.Server().Get("k")
	if raw != `{"7":{"timestamp":1700000000000}}` {
		t.Errorf("unexpected stored document %q", raw)
	}

	// Records written by another process in the same layout are readable.
	_ = rc.Server().Set("k", `{"x":{"timestamp":12,"name":"n","ok":true}}`)
	got, found, err := reg.GetOne(ctx, "x")
	if err != nil || !found {
		t.Fatalf("GetOne = %v, %v", found, err)
	}
	if got["timestamp"] != int64(12) || got["name"] != "n" || got["ok"] != true {
		t.Errorf("unexpected record %#v", got)
	}
}

func TestShared_StoreUnavailable(t *testing.T) {
	rc := redistest.NewComponent()
	ctx := context.Background()
	if err := rc.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	reg := NewShared(rc.Client(), "k")
	rc.Server().Close()
	defer func() { _ = rc.Stop(ctx) }()

	checks := map[string]error{
		"Initialize": reg.Initialize(ctx),
		"SetOne":     reg.SetOne(ctx, "1", Record{}),
		"RemoveOne":  reg.RemoveOne(ctx, "1"),
		"PurgeAll":   reg.PurgeAll(ctx),
	}
	_, err := reg.GetAll(ctx)
	checks["GetAll"] = err
	_, _, err = reg.GetOne(ctx, "1")
	checks["GetOne"] = err

	for op, err := range checks {
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeStoreUnavailable {
			t.Errorf("%s: expected E_NO_REDIS, got %v", op, err)
		}
		if ok && appErr.HTTPStatus != 500 {
			t.Errorf("%s: expected status 500, got %d", op, appErr.HTTPStatus)
		}
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	rc := startRedis(t)

	reg, err := New(Config{}, nil, testLogger())
	if err != nil || reg.Shared() {
		t.Fatalf("expected local registry, got %v, %v", reg, err)
	}

	reg, err = New(Config{Redis: true, RedisKey: "x"}, rc.Client(), testLogger())
	if err != nil || !reg.Shared() {
		t.Fatalf("expected shared registry, got %v, %v", reg, err)
	}
	if reg.(*Shared).Key() != "x" {
		t.Errorf("expected key x, got %q", reg.(*Shared).Key())
	}
}

func TestNew_SharedWithoutClient(t *testing.T) {
	var client *redis.Client
	_, err := New(Config{Redis: true}, client, testLogger())
	if !errors.Is(err, errors.StoreUnavailable(nil)) {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{3, int64(3)},
		{int32(4), int64(4)},
		{uint8(5), int64(5)},
		{2.0, int64(2)},
		{2.5, 2.5},
		{float32(0.5), 0.5},
		{"s", "s"},
		{true, true},
	}
	for _, tc := range tests {
		if got := normalizeValue(tc.in); got != tc.want {
			t.Errorf("normalizeValue(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
