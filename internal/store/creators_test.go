package store

import (
	"context"
	"errors"
	"testing"
)

func TestMessageQueue_ClaimOrder(t *testing.T) {
	s, ctx := setupTenant(t)

	creator, err := s.CreateCreator(ctx, "Jamie", "jamie@example.com", "tiktok", "@jamie")
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}

	first, err := s.EnqueueMessage(ctx, creator.ID, "Hello", "First body")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	second, err := s.EnqueueMessage(ctx, creator.ID, "Hello again", "Second body")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	claimed, err := s.NextQueuedMessage(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.ID != first.ID {
		t.Errorf("claimed %s, want oldest %s", claimed.ID, first.ID)
	}
	if claimed.Status != MessageSending {
		t.Errorf("claimed status = %s, want sending", claimed.Status)
	}

	claimed2, err := s.NextQueuedMessage(context.Background())
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed2.ID != second.ID {
		t.Errorf("claimed %s, want %s", claimed2.ID, second.ID)
	}

	// Queue drained.
	if _, err := s.NextQueuedMessage(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on empty queue, got %v", err)
	}
}

func TestMessageQueue_Transitions(t *testing.T) {
	s, ctx := setupTenant(t)

	creator, err := s.CreateCreator(ctx, "Riley", "riley@example.com", "", "")
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}

	sent, _ := s.EnqueueMessage(ctx, creator.ID, "s", "b")
	failed, _ := s.EnqueueMessage(ctx, creator.ID, "s", "b")

	if err := s.MarkMessageSent(ctx, sent.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := s.MarkMessageFailed(ctx, failed.ID, "smtp timeout"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	sentList, err := s.ListMessages(ctx, MessageSent)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sentList) != 1 || sentList[0].ID != sent.ID {
		t.Errorf("sent filter returned %d messages", len(sentList))
	}
	if sentList[0].SentAt == nil {
		t.Error("sent message missing sent_at")
	}

	failedList, err := s.ListMessages(ctx, MessageFailed)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(failedList) != 1 || failedList[0].Error != "smtp timeout" {
		t.Errorf("failed message error = %q", failedList[0].Error)
	}

	all, err := s.ListMessages(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered list returned %d, want 2", len(all))
	}
}

func TestNextQueuedMessage_CrossesTenants(t *testing.T) {
	s := setupStore(t)
	base := context.Background()

	t1, _ := s.CreateTenant(base, "One", "one")
	t2, _ := s.CreateTenant(base, "Two", "two")

	c1, err := s.CreateCreator(WithTenant(base, t1.ID), "A", "a@example.com", "", "")
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}
	c2, err := s.CreateCreator(WithTenant(base, t2.ID), "B", "b@example.com", "", "")
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}

	if _, err := s.EnqueueMessage(WithTenant(base, t1.ID), c1.ID, "s", "b"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := s.EnqueueMessage(WithTenant(base, t2.ID), c2.ID, "s", "b"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// The drain worker claims from every tenant; each claim carries the
	// owning tenant id.
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		m, err := s.NextQueuedMessage(base)
		if err != nil {
			t.Fatalf("claim %d: %v", i, err)
		}
		seen[m.TenantID] = true
	}
	if !seen[t1.ID] || !seen[t2.ID] {
		t.Errorf("claims did not cover both tenants: %v", seen)
	}
}
