package store_test

import (
	"context"
	"testing"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store/storetest"
)

func TestEventsQueueAndTombstone(t *testing.T) {
	ctx := context.Background()
	events := storetest.New(t).Events

	err := events.Append(ctx,
		&store.Event{CharacterID: "20118", EventType: "_RefreshModel", Timestamp: 300},
		&store.Event{CharacterID: "20118", EventType: "addCondition", Timestamp: 100, Data: `{"id":"c1"}`},
		&store.Event{CharacterID: "7", EventType: "_RefreshModel", Timestamp: 50},
	)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	queued, err := events.Queued(ctx, "20118")
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) != 2 {
		t.Fatalf("queued = %+v", queued)
	}
	if queued[0].Timestamp != 100 || queued[1].Timestamp != 300 {
		t.Errorf("not ordered by timestamp: %+v", queued)
	}
	if queued[0].ID == "" || queued[0].Data != `{"id":"c1"}` || queued[1].Data != "{}" {
		t.Errorf("stored = %+v", queued)
	}

	if ts, ok, err := events.LastTimestamp(ctx, "20118"); err != nil || !ok || ts != 300 {
		t.Errorf("LastTimestamp = %d, %v, %v", ts, ok, err)
	}

	n, err := events.Tombstone(ctx, "20118")
	if err != nil || n != 2 {
		t.Fatalf("Tombstone = %d, %v", n, err)
	}
	if queued, _ = events.Queued(ctx, "20118"); len(queued) != 0 {
		t.Errorf("still queued: %+v", queued)
	}
	if other, _ := events.Queued(ctx, "7"); len(other) != 1 {
		t.Errorf("other character touched: %+v", other)
	}
	if ts, ok, err := events.LastTimestamp(ctx, "20118"); err != nil || ok || ts != 0 {
		t.Errorf("LastTimestamp after tombstone = %d, %v, %v", ts, ok, err)
	}
	if n, err := events.Tombstone(ctx, "20118"); n != 0 || err != nil {
		t.Errorf("repeated tombstone = %d, %v", n, err)
	}
}

func TestEventsLastTimestampBeyondListing(t *testing.T) {
	ctx := context.Background()
	events := storetest.New(t).Events

	const n = 10001
	batch := make([]*store.Event, 0, n)
	for i := 1; i <= n; i++ {
		batch = append(batch, &store.Event{CharacterID: "20118", EventType: "addCondition", Timestamp: int64(i)})
	}
	if err := events.Append(ctx, batch...); err != nil {
		t.Fatal(err)
	}

	queued, err := events.Queued(ctx, "20118")
	if err != nil {
		t.Fatal(err)
	}
	if len(queued) >= n {
		t.Fatalf("listing not capped: %d", len(queued))
	}
	if ts, ok, err := events.LastTimestamp(ctx, "20118"); err != nil || !ok || ts != n {
		t.Errorf("LastTimestamp = %d, %v, %v, want %d", ts, ok, err, n)
	}
	if cleared, err := events.Tombstone(ctx, "20118"); err != nil || cleared != n {
		t.Errorf("Tombstone = %d, %v, want %d", cleared, err, n)
	}
}
