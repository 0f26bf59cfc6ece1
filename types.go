package storefront

import (
	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/pkg/model"
)

// Aliases so SDK consumers only need the root import for the common types.
type (
	// UserInfo is the cached user record.
	UserInfo = model.UserInfo
	// TokenPair is the access/refresh credential pair.
	TokenPair = model.TokenPair
	// Region is a storefront partition.
	Region = model.Region
	// APIError is the normalized backend error shape.
	APIError = model.APIError
	// Envelope is the backend response wrapper.
	Envelope = model.Envelope

	// AuditEvent is a single audit record handed to the sink.
	AuditEvent = audit.Event
	// AuditSink receives audit events.
	AuditSink = audit.Sink
	// NoOpSink discards audit events.
	NoOpSink = audit.NoOpSink
)

var (
	// RegionOman is the Omani storefront.
	RegionOman = model.RegionOman
	// RegionKSA is the Saudi storefront.
	RegionKSA = model.RegionKSA
)

// Regions returns the storefronts in display order.
func Regions() []Region {
	return model.Regions()
}
