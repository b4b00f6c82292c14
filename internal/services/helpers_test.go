package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-quote-backend/internal/domain"
	"github.com/tbourn/go-quote-backend/internal/repo"
)

var (
	// testNow sits five days before testDeadline.
	testNow      = time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	testDeadline = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
)

// fixture wires every service against one temp-file SQLite database with
// foreign keys enforced and a movable clock.
type fixture struct {
	db  *gorm.DB
	now time.Time

	notifier  *recordingNotifier
	requests  *QuoteRequestService
	invites   *InvitationService
	responses *ResponseService
	summaries *SummaryService
	reports   *ReportService
	suppliers *SupplierService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repo.Open(repo.Options{
		Path:   filepath.Join(t.TempDir(), "quotes.db"),
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	f := &fixture{db: db, now: testNow, notifier: &recordingNotifier{}}
	clock := Clock(func() time.Time { return f.now })
	f.requests = &QuoteRequestService{DB: db, Notifier: f.notifier, Now: clock}
	f.invites = &InvitationService{DB: db, Notifier: f.notifier, Now: clock}
	f.responses = &ResponseService{DB: db, Now: clock}
	f.summaries = &SummaryService{DB: db}
	f.reports = &ReportService{DB: db, Now: clock}
	f.suppliers = &SupplierService{DB: db}

	ctx := context.Background()
	agency, sol := "GSA", "SOL-42"
	if err := repo.UpsertOpportunity(ctx, db, &domain.Opportunity{ID: "opp-1", Title: "Office furniture", Agency: &agency, SolicitationNumber: &sol}); err != nil {
		t.Fatalf("seed opportunity: %v", err)
	}
	for id, name := range map[string]string{"A": "Acme", "B": "Bolt", "C": "Crate", "D": "Dock"} {
		if err := repo.CreateSupplier(ctx, db, &domain.Supplier{ID: id, Name: name}); err != nil {
			t.Fatalf("seed supplier %s: %v", id, err)
		}
	}
	return f
}

// draft creates a draft owned by "owner" with testDeadline.
func (f *fixture) draft(t *testing.T) *domain.QuoteRequest {
	t.Helper()
	q, err := f.requests.Create(context.Background(), "owner", CreateInput{
		OpportunityID: "opp-1",
		Title:         "Office chairs",
		Deadline:      testDeadline,
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return q
}

// sent creates a request, invites suppliers and sends it.
func (f *fixture) sent(t *testing.T, suppliers ...string) *domain.QuoteRequest {
	t.Helper()
	ctx := context.Background()
	q := f.draft(t)
	for _, s := range suppliers {
		if _, err := f.invites.Invite(ctx, "owner", q.ID, s); err != nil {
			t.Fatalf("invite %s: %v", s, err)
		}
	}
	out, err := f.requests.Send(ctx, "owner", q.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	return out
}

func (f *fixture) persistedStatus(t *testing.T, id string) domain.Status {
	t.Helper()
	q, err := repo.GetQuoteRequest(context.Background(), f.db, id)
	if err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return q.Status
}

// validPayload returns a payload whose arithmetic checks out to 150000 cents.
func validPayload() domain.ResponsePayload {
	return domain.ResponsePayload{
		LineItems: []domain.LineItem{
			{Description: "Chair", Quantity: 40, UnitPriceCents: 3500, TotalCents: 140000},
			{Description: "Delivery", Quantity: 1, UnitPriceCents: 10000, TotalCents: 10000},
		},
		TotalPriceCents:  150000,
		DeliveryTimeDays: 10,
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (n *recordingNotifier) Channel() string { return "email" }

func (n *recordingNotifier) Notify(_ context.Context, inv domain.Invitation, _ domain.QuoteRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[inv.SupplierID] {
		return errors.New("mailbox unavailable")
	}
	n.calls = append(n.calls, inv.SupplierID)
	return nil
}

func (n *recordingNotifier) notified() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}
