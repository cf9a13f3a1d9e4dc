package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
)

type fakePoster struct {
	resp      *manifold.Response
	err       error
	cancelled []string
}

func (f *fakePoster) CreateBet(_ context.Context, _ *manifold.PlaceBet) (*manifold.Response, error) {
	return f.resp, f.err
}

func (f *fakePoster) CancelBet(_ context.Context, id string) (*manifold.Response, error) {
	f.cancelled = append(f.cancelled, id)
	return f.resp, f.err
}

type fakeBetStore struct {
	created []domain.PlacedBet
	updates []domain.BetStatus
}

func (f *fakeBetStore) Create(_ context.Context, b domain.PlacedBet) error {
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBetStore) UpdateStatus(_ context.Context, recordID string, status domain.BetStatus, betID string, statusCode int) error {
	for i := range f.created {
		if f.created[i].RecordID == recordID {
			f.created[i].Status = status
			f.created[i].BetID = betID
			f.created[i].StatusCode = statusCode
			f.updates = append(f.updates, status)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeBetStore) GetByRecordID(_ context.Context, recordID string) (domain.PlacedBet, error) {
	for _, b := range f.created {
		if b.RecordID == recordID {
			return b, nil
		}
	}
	return domain.PlacedBet{}, domain.ErrNotFound
}

func (f *fakeBetStore) ListByContract(_ context.Context, _ string, _ domain.ListOpts) ([]domain.PlacedBet, error) {
	return nil, nil
}

func (f *fakeBetStore) ListRecent(_ context.Context, _ int) ([]domain.PlacedBet, error) {
	return nil, nil
}

type fakeLimiter struct {
	allowed bool
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return f.allowed, nil
}

func (f *fakeLimiter) Wait(_ context.Context, _ string) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okBetResponse() *manifold.Response {
	return &manifold.Response{
		StatusCode: 200,
		Body:       []byte(`{"id":"bet-1","contractId":"c1","outcome":"YES","amount":50,"shares":98.2,"probBefore":0.4,"probAfter":0.45,"createdTime":1756100000000}`),
	}
}

func TestPlaceBetRecordsLifecycle(t *testing.T) {
	poster := &fakePoster{resp: okBetResponse()}
	store := &fakeBetStore{}

	svc := NewBetService(poster, store, testLogger())

	record, err := svc.PlaceBet(context.Background(), 50, "c1", nil)
	if err != nil {
		t.Fatalf("PlaceBet() error: %v", err)
	}

	if record.Status != domain.BetStatusPlaced {
		t.Errorf("status = %s, want placed", record.Status)
	}
	if record.BetID != "bet-1" {
		t.Errorf("bet id = %q, want bet-1", record.BetID)
	}
	if record.Outcome != "YES" {
		t.Errorf("outcome = %q, want default YES", record.Outcome)
	}
	if record.Shares != 98.2 || record.ProbAfter != 0.45 {
		t.Errorf("fill not captured: shares=%v probAfter=%v", record.Shares, record.ProbAfter)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d records, want 1", len(store.created))
	}
	if len(store.updates) != 1 || store.updates[0] != domain.BetStatusPlaced {
		t.Errorf("status updates = %v, want [placed]", store.updates)
	}
}

func TestPlaceBetRejectionIsNotAnError(t *testing.T) {
	poster := &fakePoster{resp: &manifold.Response{
		StatusCode: 403,
		Body:       []byte(`{"message":"Insufficient balance"}`),
	}}
	store := &fakeBetStore{}

	svc := NewBetService(poster, store, testLogger())

	record, err := svc.PlaceBet(context.Background(), 50, "c1", nil)
	if err != nil {
		t.Fatalf("PlaceBet() error: %v", err)
	}
	if record.Status != domain.BetStatusRejected {
		t.Errorf("status = %s, want rejected", record.Status)
	}
	if record.StatusCode != 403 {
		t.Errorf("status code = %d, want 403", record.StatusCode)
	}
}

func TestPlaceBetValidationFailsBeforePersisting(t *testing.T) {
	poster := &fakePoster{resp: okBetResponse()}
	store := &fakeBetStore{}

	svc := NewBetService(poster, store, testLogger())

	_, err := svc.PlaceBet(context.Background(), 0, "c1", nil)
	if err == nil {
		t.Fatal("expected validation error for zero amount")
	}
	if !errors.Is(err, manifold.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d records, want 0", len(store.created))
	}
}

func TestPlaceBetRateLimited(t *testing.T) {
	poster := &fakePoster{resp: okBetResponse()}
	store := &fakeBetStore{}

	svc := NewBetService(poster, store, testLogger()).
		WithRateLimiter(&fakeLimiter{allowed: false})

	_, err := svc.PlaceBet(context.Background(), 50, "c1", nil)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d records, want 0", len(store.created))
	}
}

func TestCancelBetUpdatesRecord(t *testing.T) {
	poster := &fakePoster{resp: &manifold.Response{StatusCode: 200, Body: []byte(`{}`)}}
	store := &fakeBetStore{created: []domain.PlacedBet{{
		RecordID: "r1",
		BetID:    "bet-1",
		Status:   domain.BetStatusPlaced,
	}}}

	svc := NewBetService(poster, store, testLogger())

	if err := svc.CancelBet(context.Background(), "r1"); err != nil {
		t.Fatalf("CancelBet() error: %v", err)
	}
	if len(poster.cancelled) != 1 || poster.cancelled[0] != "bet-1" {
		t.Errorf("cancelled = %v, want [bet-1]", poster.cancelled)
	}
	if store.created[0].Status != domain.BetStatusCancelled {
		t.Errorf("status = %s, want cancelled", store.created[0].Status)
	}
}

func TestCancelBetWithoutAPIBetID(t *testing.T) {
	poster := &fakePoster{}
	store := &fakeBetStore{created: []domain.PlacedBet{{
		RecordID: "r1",
		Status:   domain.BetStatusPending,
	}}}

	svc := NewBetService(poster, store, testLogger())

	err := svc.CancelBet(context.Background(), "r1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if len(poster.cancelled) != 0 {
		t.Errorf("cancelled = %v, want none", poster.cancelled)
	}
}
