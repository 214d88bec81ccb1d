package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		CallTimeout:         time.Second,
		BreakerEnabled:      false,
	})
}

func TestPublishRecordFiledRetriesThroughExecutor(t *testing.T) {
	attempts := 0
	n := &Notifier{
		subject:  "records.filed",
		executor: testExecutor(),
		publish: func(subject string, data []byte) error {
			attempts++
			if subject != "records.filed" {
				t.Fatalf("unexpected subject %q", subject)
			}
			if string(data) != "rec-1" {
				t.Fatalf("unexpected payload %q", data)
			}
			if attempts < 3 {
				return nats.ErrConnectionClosed
			}
			return nil
		},
	}

	if err := n.PublishRecordFiled(context.Background(), "rec-1"); err != nil {
		t.Fatalf("expected publish to succeed after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestPublishRecordFiledExhaustedRetriesAreTemporary(t *testing.T) {
	attempts := 0
	n := &Notifier{
		subject:  "records.filed",
		executor: testExecutor(),
		publish: func(string, []byte) error {
			attempts++
			return nats.ErrNoServers
		},
	}

	err := n.PublishRecordFiled(context.Background(), "rec-2")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error kind, got %v", err)
	}
	if !errors.Is(err, nats.ErrNoServers) {
		t.Fatalf("expected no-servers cause preserved, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected exhausted retries, got %d attempts", attempts)
	}
}

func TestPublishRecordFiledWithoutExecutorDoesNotRetry(t *testing.T) {
	attempts := 0
	n := &Notifier{
		subject: "records.filed",
		publish: func(string, []byte) error {
			attempts++
			return nats.ErrConnectionClosed
		},
	}

	err := n.PublishRecordFiled(context.Background(), "rec-3")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error kind, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt without executor, got %d", attempts)
	}
}
