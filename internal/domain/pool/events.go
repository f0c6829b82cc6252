package pool

import "context"

// ChangeEvent summarizes what one committed pool operation did to an owner.
type ChangeEvent struct {
	OwnerID             string   `json:"owner_id"`
	Operation           string   `json:"operation"`
	CreatedPools        []string `json:"created_pools,omitempty"`
	UpdatedPools        []string `json:"updated_pools,omitempty"`
	DeletedPools        []string `json:"deleted_pools,omitempty"`
	CreatedEntitlements []string `json:"created_entitlements,omitempty"`
	RevokedEntitlements []string `json:"revoked_entitlements,omitempty"`
	AffectedConsumers   []string `json:"affected_consumers,omitempty"`
	Timestamp           int64    `json:"timestamp"`
}

// IsEmpty reports whether the operation changed nothing.
func (e ChangeEvent) IsEmpty() bool {
	return len(e.CreatedPools) == 0 && len(e.UpdatedPools) == 0 && len(e.DeletedPools) == 0 &&
		len(e.CreatedEntitlements) == 0 && len(e.RevokedEntitlements) == 0
}

// EventPublisher delivers change events after the transaction that produced them commits.
type EventPublisher interface {
	PublishPoolChange(ctx context.Context, event ChangeEvent) error
}
