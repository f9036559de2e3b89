//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"apivro/internal/domain"
	"apivro/internal/domain/model"
	"apivro/internal/usecase"
)

func newAPIKeyFixture(status model.DeviceStatus) (*MockAPIKeyRepo, *MockDeviceRepo, *MockTaskRunner) {
	device := &model.Device{ID: "dev-1", UserID: "user-1", Name: "Sales", SessionID: "sess-1", Status: status}
	return NewMockAPIKeyRepo(), NewMockDeviceRepo(device), &MockTaskRunner{}
}

func TestAPIKeyUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("should resolve a valid key and touch last-used", func(t *testing.T) {
		keys, devices, tasks := newAPIKeyFixture(model.DeviceStatusConnected)
		uc := usecase.NewAPIKeyUseCase(keys, devices, tasks, newTestLogger())
		raw, key, err := uc.Issue(ctx, "user-1", "dev-1", "ci")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		auth, err := uc.Authenticate(ctx, raw)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if auth.UserID != "user-1" || auth.DeviceID != "dev-1" || auth.APIKeyID != key.ID {
			t.Errorf("unexpected auth context: %+v", auth)
		}
		if _, ok := keys.touched[key.ID]; !ok {
			t.Error("expected last-used to be touched")
		}
		if len(tasks.Names) != 1 || tasks.Names[0] != "api_key.touch" {
			t.Errorf("expected one touch task, got %v", tasks.Names)
		}
	})

	cases := []struct {
		name   string
		raw    string
		status model.DeviceStatus
		want   error
	}{
		{"should require a key", "   ", model.DeviceStatusConnected, domain.ErrAPIKeyRequired},
		{"should reject a key without the prefix", "sk_live_123", model.DeviceStatusConnected, domain.ErrInvalidAPIKeyFormat},
		{"should reject an unknown key", model.APIKeyPrefix + "deadbeef", model.DeviceStatusConnected, domain.ErrInvalidAPIKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keys, devices, tasks := newAPIKeyFixture(tc.status)
			uc := usecase.NewAPIKeyUseCase(keys, devices, tasks, newTestLogger())

			_, err := uc.Authenticate(ctx, tc.raw)

			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("should reject a key whose device is not connected", func(t *testing.T) {
		keys, devices, tasks := newAPIKeyFixture(model.DeviceStatusDisconnected)
		uc := usecase.NewAPIKeyUseCase(keys, devices, tasks, newTestLogger())
		raw, _, _ := uc.Issue(ctx, "user-1", "dev-1", "")

		_, err := uc.Authenticate(ctx, raw)

		if !errors.Is(err, domain.ErrDeviceNotConnected) {
			t.Errorf("expected ErrDeviceNotConnected, got %v", err)
		}
		if len(tasks.Names) != 0 {
			t.Error("expected no touch for a rejected key")
		}
	})

	t.Run("should reject a revoked key", func(t *testing.T) {
		keys, devices, tasks := newAPIKeyFixture(model.DeviceStatusConnected)
		uc := usecase.NewAPIKeyUseCase(keys, devices, tasks, newTestLogger())
		raw, key, _ := uc.Issue(ctx, "user-1", "dev-1", "")
		if err := uc.Revoke(ctx, key.ID); err != nil {
			t.Fatalf("revoke: %v", err)
		}

		_, err := uc.Authenticate(ctx, raw)

		if !errors.Is(err, domain.ErrInvalidAPIKey) {
			t.Errorf("expected ErrInvalidAPIKey, got %v", err)
		}
	})
}

func TestAPIKeyUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("should store only the digest of the raw key", func(t *testing.T) {
		keys, devices, tasks := newAPIKeyFixture(model.DeviceStatusConnected)
		uc := usecase.NewAPIKeyUseCase(keys, devices, tasks, newTestLogger())

		raw, key, err := uc.Issue(ctx, "user-1", "dev-1", "")

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !model.HasAPIKeyFormat(raw) {
			t.Errorf("raw key %q lacks the prefix", raw)
		}
		if key.KeyHash != model.HashAPIKey(raw) || key.KeyHash == raw {
			t.Error("expected the stored hash to be the digest of the raw key")
		}
		if key.Name != "default" {
			t.Errorf("expected default name, got %q", key.Name)
		}
	})

	t.Run("should refuse a device owned by someone else", func(t *testing.T) {
		keys, devices, tasks := newAPIKeyFixture(model.DeviceStatusConnected)
		uc := usecase.NewAPIKeyUseCase(keys, devices, tasks, newTestLogger())

		_, _, err := uc.Issue(ctx, "intruder", "dev-1", "")

		if !errors.Is(err, domain.ErrDeviceNotFound) {
			t.Errorf("expected ErrDeviceNotFound, got %v", err)
		}
	})
}
