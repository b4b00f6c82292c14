package export

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-quote-backend/internal/domain"
)

const (
	notAvailable = "N/A"
	notSubmitted = "Not submitted"
	unknownName  = "Unknown"

	dateLayout = "Jan 2, 2006"
)

// amountPrinter groups thousands the en-US way ("1,500").
var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCents renders integer cents as "$X.XX" with grouped dollars.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + amountPrinter.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
}

// FormatDeliveryTime renders a delivery time in days:
//   - below a week: "1 day", "6 days"
//   - one to four weeks: "1 week", "2 weeks", "1w 3d"
//   - a month (30 days) and beyond: "1 month", "2 months", "1m 15d"
func FormatDeliveryTime(days int) string {
	switch {
	case days < 7:
		return plural(days, "day")
	case days < 30:
		w, d := days/7, days%7
		if d == 0 {
			return plural(w, "week")
		}
		return fmt.Sprintf("%dw %dd", w, d)
	default:
		m, d := days/30, days%30
		if d == 0 {
			return plural(m, "month")
		}
		return fmt.Sprintf("%dm %dd", m, d)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatDate renders t as a localized calendar date in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// StatusLabel returns the human-readable label of a request status.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusDraft:
		return "Draft"
	case domain.StatusSent:
		return "Sent"
	case domain.StatusExpired:
		return "Expired"
	case domain.StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// ResponseStatusLabel returns the human-readable label of a response status.
func ResponseStatusLabel(s domain.ResponseStatus) string {
	switch s {
	case domain.ResponsePending:
		return "Pending"
	case domain.ResponseSubmitted:
		return "Submitted"
	case domain.ResponseDeclined:
		return "Declined"
	case domain.ResponseExpired:
		return "Expired"
	}
	return string(s)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func deref(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
