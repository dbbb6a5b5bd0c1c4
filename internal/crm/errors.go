// Package crm implements the customer data layer: a TTL cache over the
// backend's customer and contact listings, quotation enrichment, the
// filter/sort/paginate pipeline, and the background refresh controller.
// This file centralizes the error values the layer reports so callers can
// branch on them with errors.Is.
package crm

import "errors"

var (
	// ErrBulkUnavailable is returned by a gateway when the combined
	// contact listing endpoint does not exist on the backend. The loader
	// reacts by fetching contacts per customer in batches.
	ErrBulkUnavailable = errors.New("bulk contact listing unavailable")

	// ErrGatewayUnavailable indicates the backend could not be reached
	// at the transport level.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrDecode indicates the backend answered with a payload that could
	// not be decoded.
	ErrDecode = errors.New("gateway response could not be decoded")
)
