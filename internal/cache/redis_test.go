package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"leaderboard"},
		},
		{
			name:  "multiple parts",
			parts: []string{"leaderboard", "grid-2026-10-15", "50"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}

	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("HashKey() should keep part boundaries")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "display_name:u1",
			expected: "boxboxd:display_name:u1",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "boxboxd:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCache_Disabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Get() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("SetJSON() error = %v, want ErrCacheDisabled", err)
	}
	if _, err := c.SetNX(ctx, "k", 1, time.Minute); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("SetNX() error = %v, want ErrCacheDisabled", err)
	}
	var dest map[string]int
	if err := c.GetJSON(ctx, "k", &dest); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("GetJSON() error = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil cache should not error: %v", err)
	}
}
