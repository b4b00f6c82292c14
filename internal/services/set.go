package services

import (
	"time"

	"gorm.io/gorm"
)

// Options configures New.
type Options struct {
	// Notifier delivers invitations; a LogNotifier on the default channel
	// when nil.
	Notifier Notifier
	// Location renders report dates; UTC when nil.
	Location *time.Location
	// Now is shared by every service; time.Now when nil.
	Now Clock
}

// Set is the full application service graph over one database handle.
type Set struct {
	QuoteRequests *QuoteRequestService
	Invitations   *InvitationService
	Responses     *ResponseService
	Summaries     *SummaryService
	Reports       *ReportService
	Suppliers     *SupplierService
}

// New wires every service to db.
func New(db *gorm.DB, opts Options) *Set {
	n := opts.Notifier
	if n == nil {
		n = LogNotifier{}
	}
	return &Set{
		QuoteRequests: &QuoteRequestService{DB: db, Notifier: n, Now: opts.Now},
		Invitations:   &InvitationService{DB: db, Notifier: n, Now: opts.Now},
		Responses:     &ResponseService{DB: db, Now: opts.Now},
		Summaries:     &SummaryService{DB: db},
		Reports:       &ReportService{DB: db, Location: opts.Location, Now: opts.Now},
		Suppliers:     &SupplierService{DB: db},
	}
}
