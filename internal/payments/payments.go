package payments

import (
	"bookbid/utils"
)

//go:generate mockgen -source=payments.go -destination=mock_gateway.go -package=payments

// Gateway is the payment collaborator boundary. The escrow record id is
// the idempotency token: replays with the same id must be safe on the
// processor side. Capture results come back asynchronously through the
// escrow callback route.
type Gateway interface {
	CreateAuthorization(escrowID string, amount int64, buyerID string, metadata map[string]string) error
}

// LogGateway is a stand-in gateway that only logs the authorization
// request. Used by main until a real processor integration is wired.
type LogGateway struct{}

// NewLogGateway creates a LogGateway.
func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

// CreateAuthorization logs the request and reports success.
func (g *LogGateway) CreateAuthorization(escrowID string, amount int64, buyerID string, metadata map[string]string) error {
	utils.Info("payment authorization requested", map[string]any{
		"escrow_id": escrowID,
		"amount":    amount,
		"buyer_id":  buyerID,
		"metadata":  metadata,
	})
	return nil
}
