// Package export renders quote requests, their responses and the derived
// analysis into a generic tabular shape, and serializes that shape into one
// of the supported encodings.
package export

import (
	"errors"
	"strings"
	"time"
)

// Kind selects which report is built.
type Kind string

const (
	KindQuoteRequest Kind = "quote-request"
	KindResponses    Kind = "responses"
	KindAnalysis     Kind = "analysis"
)

// Format selects the output encoding.
type Format string

const (
	FormatStructured Format = "structured"
	FormatDelimited  Format = "delimited-text"
)

var (
	// ErrUnknownKind is returned for an unsupported report type selector.
	ErrUnknownKind = errors.New("unknown report type")
	// ErrUnknownFormat is returned for an unsupported format selector.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrNoSubmittedResponses is returned when an analysis is requested but
	// no supplier has submitted a quote yet.
	ErrNoSubmittedResponses = errors.New("no submitted responses to analyze")
)

// Table is the generic report shape shared by every report type. Every row
// has exactly len(Headers) values.
type Table struct {
	Title       string     `json:"title,omitempty"`
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// ParseKind validates a report type selector.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindQuoteRequest, KindResponses, KindAnalysis:
		return k, nil
	}
	return "", ErrUnknownKind
}

// ParseFormat validates a format selector. An empty selector means
// structured output.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatStructured, nil
	case FormatStructured, FormatDelimited:
		return f, nil
	}
	return "", ErrUnknownFormat
}
