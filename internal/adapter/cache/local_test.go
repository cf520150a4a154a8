package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/ports"
)

func TestLocalCache_SetGetDelete(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	// Act
	if err := c.Set(ctx, "pending:s1", "batch", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, "pending:s1")

	// Assert
	if err != nil || got != "batch" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	if err := c.Delete(ctx, "pending:s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "pending:s1"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestLocalCache_GetDelHandsOutOnce(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()
	ctx := context.Background()
	if err := c.Set(ctx, "pending:s1", "batch", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Act
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		takes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := c.GetDel(ctx, "pending:s1"); err == nil && v == "batch" {
				mu.Lock()
				takes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Assert
	if takes != 1 {
		t.Errorf("expected exactly one GetDel to win, got %d", takes)
	}
	if _, err := c.Get(ctx, "pending:s1"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after GetDel, got %v", err)
	}
}

func TestLocalCache_Expiry(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	_ = c.Set(ctx, "weather:paris", "{}", 10*time.Minute)
	_ = c.Set(ctx, "forever", "x", 0)

	// Act
	now = now.Add(10 * time.Minute)
	_, err := c.Get(ctx, "weather:paris")

	// Assert
	if !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if _, err := c.Get(ctx, "forever"); err != nil {
		t.Errorf("entry without expiration should stay, got %v", err)
	}
	c.cleanup()
	if c.Len() != 1 {
		t.Errorf("expected cleanup to drop the expired entry, %d left", c.Len())
	}
}

func TestLocalCache_EncodesStructsAsJSON(t *testing.T) {
	c := NewLocalCache(time.Hour, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	_ = c.Set(ctx, "k", struct {
		City string `json:"city"`
	}{"Lisbon"}, 0)
	got, _ := c.Get(ctx, "k")

	if got != `{"city":"Lisbon"}` {
		t.Errorf("unexpected encoding %q", got)
	}
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewLocalCache(time.Hour, zap.NewNop())
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}
