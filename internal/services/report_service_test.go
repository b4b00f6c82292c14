package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-quote-backend/internal/export"
)

// partialDirectory only knows some suppliers.
type partialDirectory map[string]string

func (d partialDirectory) SupplierName(_ context.Context, id string) (string, bool) {
	n, ok := d[id]
	return n, ok
}

func TestReport_InvalidSelectors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.sent(t, "A")

	for _, req := range []ExportRequest{
		{Type: "invoice", Format: "structured"},
		{Type: "responses", Format: "pdf"},
	} {
		if _, err := f.reports.Export(ctx, "owner", q.ID, req); !errors.Is(err, ErrInvalidReport) {
			t.Fatalf("%+v: expected ErrInvalidReport, got %v", req, err)
		}
	}
	if _, err := f.reports.Export(ctx, "intruder", q.ID, ExportRequest{Type: "responses"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestReport_AnalysisNeedsSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.sent(t, "A", "B")
	if _, err := f.responses.Decline(ctx, q.ID, "B", nil); err != nil {
		t.Fatalf("decline: %v", err)
	}
	_, err := f.reports.Export(ctx, "owner", q.ID, ExportRequest{Type: "analysis"})
	if !errors.Is(err, ErrNoSubmittedResponses) {
		t.Fatalf("expected ErrNoSubmittedResponses, got %v", err)
	}
}

func TestReport_ResponsesDelimited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.sent(t, "A", "B", "D")

	if _, err := f.responses.Submit(ctx, q.ID, "A", validPayload()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.now = f.now.Add(time.Minute)
	if _, err := f.responses.Decline(ctx, q.ID, "B", nil); err != nil {
		t.Fatalf("decline: %v", err)
	}

	f.reports.Directory = partialDirectory{"A": "Acme"}
	rep, err := f.reports.Export(ctx, "owner", q.ID, ExportRequest{Type: "responses", Format: "delimited-text", IncludeLineItems: true})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rep.Kind != export.KindResponses || rep.Format != export.FormatDelimited {
		t.Fatalf("unexpected selectors: %+v", rep)
	}
	wantName := "responses-" + q.ID + "-20250105.csv"
	if rep.Filename != wantName {
		t.Fatalf("filename = %q, want %q", rep.Filename, wantName)
	}
	if len(rep.Table.Rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rep.Table.Rows))
	}
	if got := rep.Table.Rows[0][1]; got != "Acme" {
		t.Fatalf("resolved name = %q", got)
	}
	if got := rep.Table.Rows[1][1]; got != "Unknown" {
		t.Fatalf("unresolved supplier should render Unknown, got %q", got)
	}
	if got := rep.Table.Rows[0][len(rep.Table.Headers)-1]; got != "Chair (40x $35.00); Delivery (1x $100.00)" {
		t.Fatalf("line items column = %q", got)
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, rep.Table, rep.Format); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "ID,Supplier,Status,") {
		t.Fatalf("unexpected header line: %q", buf.String())
	}
}

func TestReport_QuoteRequestUsesSupplierTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.sent(t, "A")
	if _, err := f.responses.Submit(ctx, q.ID, "A", validPayload()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rep, err := f.reports.Export(ctx, "owner", q.ID, ExportRequest{Type: "responses"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if rep.Format != export.FormatStructured || !strings.HasSuffix(rep.Filename, ".json") {
		t.Fatalf("default format should be structured: %+v", rep)
	}
	if got := rep.Table.Rows[0][1]; got != "Acme" {
		t.Fatalf("name from suppliers table = %q", got)
	}

	rep, err = f.reports.Export(ctx, "owner", q.ID, ExportRequest{Type: "quote-request"})
	if err != nil || len(rep.Table.Rows) == 0 {
		t.Fatalf("quote-request report: %+v err=%v", rep, err)
	}
}

func TestSummary_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.sent(t, "A")

	if _, err := f.summaries.Summarize(ctx, "intruder", q.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	sum, err := f.summaries.Summarize(ctx, "owner", q.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.TotalInvited != 1 || sum.TotalResponses != 0 || sum.LowestPrice != nil || sum.ResponseRate != 0 {
		t.Fatalf("unexpected empty summary: %+v", sum)
	}
}

func TestSupplier_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	email := " ops@example.com "
	s, err := f.suppliers.Create(ctx, "supp-9", "  Nine   Nails ", &email)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.Name != "Nine Nails" || s.Email == nil || *s.Email != "ops@example.com" {
		t.Fatalf("unexpected supplier: %+v", s)
	}
	if _, err := f.suppliers.Create(ctx, "supp-9", "Again", nil); !errors.Is(err, ErrDuplicateSupplier) {
		t.Fatalf("expected ErrDuplicateSupplier, got %v", err)
	}
	for _, id := range []string{"", "has space", strings.Repeat("x", 65)} {
		if _, err := f.suppliers.Create(ctx, id, "n", nil); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("id %q: expected ErrInvalidInput, got %v", id, err)
		}
	}
	if _, err := f.suppliers.Create(ctx, "ok", " ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.suppliers.Get(ctx, "nobody"); !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestInvite_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.draft(t)

	if _, err := f.invites.Invite(ctx, "owner", q.ID, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.invites.Invite(ctx, "intruder", q.ID, "A"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.invites.Invite(ctx, "owner", q.ID, "ghost"); !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}
	if _, err := f.invites.Invite(ctx, "owner", q.ID, "A"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := f.invites.Invite(ctx, "owner", q.ID, "A"); !errors.Is(err, ErrDuplicateInvitation) {
		t.Fatalf("expected ErrDuplicateInvitation, got %v", err)
	}
	if len(f.notifier.notified()) != 0 {
		t.Fatalf("draft invitations must not notify")
	}
}

func TestInvite_SameInstantKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	want := []string{"D", "C", "B", "A"}

	q := f.sent(t, want...)

	got, err := f.invites.ListInvitees(ctx, q.ID)
	if err != nil {
		t.Fatalf("ListInvitees: %v", err)
	}
	notified := f.notifier.notified()
	if len(got) != len(want) || len(notified) != len(want) {
		t.Fatalf("invitees=%v notified=%v want %v", got, notified, want)
	}
	for i := range want {
		if got[i] != want[i] || notified[i] != want[i] {
			t.Fatalf("invitees=%v notified=%v want %v", got, notified, want)
		}
	}
}

func TestInvite_AfterSendNotifiesImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.sent(t, "A")

	f.now = f.now.Add(time.Minute)
	inv, err := f.invites.Invite(ctx, "owner", q.ID, "B")
	if err != nil {
		t.Fatalf("invite after send: %v", err)
	}
	if got := f.notifier.notified(); len(got) != 2 || got[1] != "B" {
		t.Fatalf("expected B notified after A, got %v", got)
	}
	invs, err := f.invites.List(ctx, "owner", q.ID)
	if err != nil || len(invs) != 2 || invs[1].ID != inv.ID || !invs[1].NotificationSent {
		t.Fatalf("unexpected listing: %+v err=%v", invs, err)
	}
	ids, err := f.invites.ListInvitees(ctx, q.ID)
	if err != nil || len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Fatalf("ListInvitees = %v err=%v", ids, err)
	}
}
