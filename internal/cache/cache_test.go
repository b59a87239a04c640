package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	doc := []byte("policy document bytes")

	k1 := Key(doc, "hail roof")
	k2 := Key(doc, "hail roof")
	if k1 != k2 {
		t.Error("Expected identical inputs to produce identical keys")
	}
	if !strings.HasPrefix(k1, "policyscan:v1:") {
		t.Errorf("Expected versioned key prefix, got %q", k1)
	}
}

func TestKey_HintChangesKey(t *testing.T) {
	doc := []byte("policy document bytes")

	if Key(doc, "hail roof") == Key(doc, "water") {
		t.Error("Expected different hints to produce different keys")
	}
	if Key(doc, "") == Key(doc, "hail roof") {
		t.Error("Expected empty hint to differ from a set hint")
	}
	if Key([]byte("other document"), "hail roof") == Key(doc, "hail roof") {
		t.Error("Expected different documents to produce different keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for absent key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("Expected hit with value v, got %q found=%v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for absent key")
	}

	if err := c.Set("k", []byte("analysis result"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh instance over the same directory sees the entry
	c2 := NewDiskCache(dir, time.Minute)
	val, found := c2.Get("k")
	if !found || string(val) != "analysis result" {
		t.Errorf("Expected persisted value, got %q found=%v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry discarded")
	}
}

func TestDiskCache_DefaultTTL(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	// Zero TTL falls back to the cache default
	_ = c.Set("k", []byte("v"), 0)
	if _, found := c.Get("k"); !found {
		t.Error("Expected entry stored with the default TTL")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Drop the memory layer; the disk layer still holds the value
	_ = c.memory.Clear()

	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("Expected disk hit, got %q found=%v", val, found)
	}

	// The hit was promoted into memory
	if _, found := c.memory.Get("k"); !found {
		t.Error("Expected disk hit promoted to the memory layer")
	}
}

func TestLayeredCache_Clear(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Minute)

	_ = c.Set("k", []byte("v"), time.Minute)
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after clear")
	}
}
