package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys shared by the service layer.
const (
	KeyQuoteRequestID = attribute.Key("quote_request.id")
	KeySupplierID     = attribute.Key("supplier.id")
	KeyOpportunityID  = attribute.Key("opportunity.id")
	KeyUserID         = attribute.Key("user.id")
)

const instrumentationPrefix = "github.com/tbourn/go-quote-backend/internal/"

// Tracer returns the tracer for a component path such as
// "services/ResponseService". It resolves against the global provider at
// call time, so it follows whatever SetupOTel installed.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}
