package cache

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dSess/lib/store"
	"github.com/ValentinKolb/dSess/lib/testutil"
	"github.com/ValentinKolb/dSess/lib/util"
	"github.com/ValentinKolb/dSess/rpc/serializer"
	"golang.org/x/sync/errgroup"
	"testing"
	"time"
)

// TestAtomicCreateScenario tests that the first payload wins and stays untouched
func TestAtomicCreateScenario(t *testing.T) {
	st, srv := testutil.NewMiniredisStore(t)
	ctx := context.Background()

	got, err := AtomicCreate(ctx, st, "k", []byte("v1"), 5000*time.Millisecond)
	if err != nil || string(got) != "v1" {
		t.Fatalf("AtomicCreate(v1) = (%q, %v), want (v1, nil)", got, err)
	}
	if v, _ := srv.Get("k"); v != "v1" {
		t.Errorf("stored value = %q, want v1", v)
	}
	if ttl := srv.TTL("k"); ttl != 5*time.Second {
		t.Errorf("TTL() = %v, want 5s", ttl)
	}

	got, err = AtomicCreate(ctx, st, "k", []byte("v2"), 5000*time.Millisecond)
	if err != nil || string(got) != "v1" {
		t.Fatalf("AtomicCreate(v2) = (%q, %v), want (v1, nil)", got, err)
	}
	if v, _ := srv.Get("k"); v != "v1" {
		t.Errorf("stored value = %q, want v1", v)
	}
}

// TestAtomicCreateConcurrent tests that all concurrent creators observe the same payload
func TestAtomicCreateConcurrent(t *testing.T) {
	st, srv := testutil.NewMiniredisStore(t)
	ctx := context.Background()

	const creators = 32
	results := make([]string, creators)
	var g errgroup.Group
	for i := 0; i < creators; i++ {
		g.Go(func() error {
			got, err := AtomicCreate(ctx, st, "race", []byte(fmt.Sprintf("payload-%d", i)), time.Minute)
			results[i] = string(got)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("AtomicCreate() error = %v", err)
	}

	stored, _ := srv.Get("race")
	for i, r := range results {
		if r != stored {
			t.Errorf("creator %d observed %q, store holds %q", i, r, stored)
		}
	}
}

func TestAtomicCreateRejectsShortExpiry(t *testing.T) {
	st, _ := testutil.NewMiniredisStore(t)

	for _, ttl := range []time.Duration{0, -time.Second, 500 * time.Microsecond} {
		if _, err := AtomicCreate(context.Background(), st, "k", []byte("v"), ttl); !store.IsInvalidOperation(err) {
			t.Errorf("AtomicCreate(ttl=%v) error = %v, want invalid operation", ttl, err)
		}
	}
}

func newTestCache(t *testing.T) (ICache, *util.ManualClock) {
	t.Helper()
	st, _ := testutil.NewMiniredisStore(t)
	clock := util.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewCache(st, store.NewKeyNamespacer("app"), serializer.NewBinarySerializer(), WithClock(clock)), clock
}

func TestCacheAdd(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()
	expiry := clock.Now().Add(time.Minute)

	got, err := c.Add(ctx, "page", "first", expiry)
	if err != nil || got != "first" {
		t.Fatalf("Add(first) = (%v, %v), want (first, nil)", got, err)
	}
	got, err = c.Add(ctx, "page", "second", expiry)
	if err != nil || got != "first" {
		t.Fatalf("Add(second) = (%v, %v), want (first, nil)", got, err)
	}

	if _, err := c.Add(ctx, "late", "x", clock.Now().Add(-time.Second)); !store.IsInvalidOperation(err) {
		t.Errorf("Add() with a past expiry error = %v, want invalid operation", err)
	}
}

func TestCacheSetGetRemove(t *testing.T) {
	c, clock := newTestCache(t)
	ctx := context.Background()

	if _, found, err := c.Get(ctx, "page"); err != nil || found {
		t.Fatalf("Get() = (_, %v, %v), want (_, false, nil)", found, err)
	}

	// zero expiry means no expiration
	if err := c.Set(ctx, "page", int64(42), time.Time{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, found, err := c.Get(ctx, "page")
	if err != nil || !found || v != int64(42) {
		t.Fatalf("Get() = (%v, %v, %v), want (42, true, nil)", v, found, err)
	}

	// an expiry in the past removes the entry
	if err := c.Set(ctx, "page", int64(43), clock.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "page"); found {
		t.Error("Get() found an entry that was set with a past expiry")
	}

	if err := c.Set(ctx, "page", "v", clock.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Remove(ctx, "page"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, found, _ := c.Get(ctx, "page"); found {
		t.Error("Get() found a removed entry")
	}
}

func TestCacheKeysAreNamespaced(t *testing.T) {
	st, srv := testutil.NewMiniredisStore(t)
	ctx := context.Background()

	a := NewCache(st, store.NewKeyNamespacer("a"), serializer.NewBinarySerializer())
	b := NewCache(st, store.NewKeyNamespacer("b"), serializer.NewBinarySerializer())

	if err := a.Set(ctx, "page", "from a", time.Time{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, found, _ := b.Get(ctx, "page"); found {
		t.Error("application b sees the entry of application a")
	}
	if !srv.Exists("a_page") {
		t.Error("entry not stored under a_page")
	}
}

func TestAsyncCache(t *testing.T) {
	c, clock := newTestCache(t)
	ac := NewAsyncCache(c)
	ctx := context.Background()

	got, err := ac.Add(ctx, "page", "first", clock.Now().Add(time.Minute)).Wait()
	if err != nil || got != "first" {
		t.Fatalf("Add() = (%v, %v), want (first, nil)", got, err)
	}
	res, err := ac.Get(ctx, "page").Wait()
	if err != nil || !res.Found || res.Value != "first" {
		t.Errorf("Get() = (%+v, %v), want found first", res, err)
	}
	if _, err := ac.Remove(ctx, "page").Wait(); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if _, err := ac.Set(ctx, "page", "x", time.Time{}).Wait(); err != nil {
		t.Errorf("Set() error = %v", err)
	}
}
