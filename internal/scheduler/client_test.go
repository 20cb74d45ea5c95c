package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()}),
		queue:  "risk",
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func pendingCount(t *testing.T, mr *miniredis.Miniredis, queue string) int {
	t.Helper()
	key := "asynq:{" + queue + "}:pending"
	if !mr.Exists(key) {
		return 0
	}
	items, err := mr.List(key)
	if err != nil {
		t.Fatalf("read pending list: %v", err)
	}
	return len(items)
}

func TestEnqueueRiskRecalculationAbsorbsDuplicates(t *testing.T) {
	c, mr := newTestClient(t)
	id := uuid.New()

	if err := c.EnqueueRiskRecalculation(context.Background(), id); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := c.EnqueueRiskRecalculation(context.Background(), id); err != nil {
		t.Fatalf("expected a deduplicated enqueue to succeed, got %v", err)
	}

	if got := pendingCount(t, mr, "risk"); got != 1 {
		t.Fatalf("expected 1 pending task, got %d", got)
	}
}

func TestEnqueueRiskRecalculationKeepsTransactionsApart(t *testing.T) {
	c, mr := newTestClient(t)

	for _, id := range []uuid.UUID{uuid.New(), uuid.New()} {
		if err := c.EnqueueRiskRecalculation(context.Background(), id); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	if got := pendingCount(t, mr, "risk"); got != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", got)
	}
}

func TestEnqueueRiskRecalculationNilClientIsNoop(t *testing.T) {
	var c *Client
	if err := c.EnqueueRiskRecalculation(context.Background(), uuid.New()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
