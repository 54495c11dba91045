package service

// Event types pushed to an owner's dashboard connections
const (
	EventAuditCreated = "audit_created"
	EventAuditDeleted = "audit_deleted"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToOwner(ownerID string, msgType string, payload interface{})
}
