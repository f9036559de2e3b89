//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
)

func TestAPIKeyRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewAPIKeyRepo(testPool)

	t.Run("should find by digest until revoked", func(t *testing.T) {
		cleanup(t)
		profile, _, device := seedOwner(t)
		raw, key, err := model.GenerateAPIKey(uuid.NewString(), profile.ID, device.ID, "", time.Now().UTC())
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(ctx, nil, key); err != nil {
			t.Fatalf("save: %v", err)
		}

		found, err := repo.FindActiveByHash(ctx, nil, model.HashAPIKey(raw))
		if err != nil || found.DeviceID != device.ID {
			t.Fatalf("expected key for device, got %+v (%v)", found, err)
		}
		if err := repo.TouchLastUsed(ctx, nil, key.ID, time.Now().UTC()); err != nil {
			t.Fatalf("touch: %v", err)
		}
		if err := repo.Revoke(ctx, nil, key.ID); err != nil {
			t.Fatalf("revoke: %v", err)
		}

		_, err = repo.FindActiveByHash(ctx, nil, model.HashAPIKey(raw))
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected revoked key to be invisible, got %v", err)
		}
	})

	t.Run("should report unknown key on revoke", func(t *testing.T) {
		cleanup(t)
		if err := repo.Revoke(ctx, nil, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestWebhookLogRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewWebhookLogRepo(testPool)

	t.Run("should page and aggregate only the owner's logs", func(t *testing.T) {
		cleanup(t)
		profile, _, device := seedOwner(t)
		_, _, otherDevice := seedOwner(t)

		now := time.Now().UTC()
		save := func(deviceID, userID string, ok bool, ms int64, at time.Time) {
			t.Helper()
			l := &model.WebhookLog{
				ID: uuid.NewString(), DeviceID: deviceID, UserID: userID, WebhookURL: "https://h",
				EventType: "message.received", StatusCode: 200, ResponseTimeMs: ms, Success: ok, CreatedAt: at,
			}
			if !ok {
				l.StatusCode = 500
			}
			if err := repo.Save(ctx, nil, l); err != nil {
				t.Fatalf("save log: %v", err)
			}
		}
		save(device.ID, profile.ID, true, 10, now.Add(-3*time.Minute))
		save(device.ID, profile.ID, true, 20, now.Add(-2*time.Minute))
		save(device.ID, profile.ID, false, 30, now.Add(-time.Minute))
		save(otherDevice.ID, profile.ID, true, 99, now) // denormalised user_id lies; ownership comes from devices

		filter := model.WebhookLogFilter{UserID: profile.ID, Limit: 2}
		page, total, err := repo.List(ctx, nil, filter)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 3 || len(page) != 2 || page[0].Success {
			t.Errorf("expected newest-first page of 2 out of 3, got %d/%d", len(page), total)
		}

		stats, err := repo.Stats(ctx, nil, filter)
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.TotalCalls != 3 || stats.SuccessfulCalls != 2 || stats.AvgResponseTimeMs != 20 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})
}
