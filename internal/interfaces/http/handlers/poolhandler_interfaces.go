package handlers

import (
	"context"

	poolapp "github.com/orris-inc/poolkeeper/internal/application/pool"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
)

// Engine surfaces used by the pool, entitlement and consumer handlers

type poolQueries interface {
	ListOwnerPools(ctx context.Context, ownerKey string) ([]*pool.Pool, error)
	ListConsumerPools(ctx context.Context, consumerUUID string) ([]*pool.Pool, error)
	GetPool(ctx context.Context, poolID string) (*pool.Pool, error)
}

type entitlementService interface {
	Bind(ctx context.Context, consumerUUID, poolID string, quantity int64) (*entitlement.Entitlement, error)
	AutoAttach(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error)
	Unbind(ctx context.Context, entitlementID string) (*poolapp.Report, error)
	ListEntitlements(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error)
}

type consumerService interface {
	RegisterConsumer(ctx context.Context, cmd poolapp.RegisterConsumerCommand) (*consumer.Consumer, error)
	UpdateConsumer(ctx context.Context, consumerUUID string, cmd poolapp.UpdateConsumerCommand) (*consumer.Consumer, error)
	GetConsumer(ctx context.Context, consumerUUID string) (*consumer.Consumer, error)
	ListConsumers(ctx context.Context, ownerKey string) ([]*consumer.Consumer, error)
	ListGuests(ctx context.Context, hostUUID string) ([]*consumer.Consumer, error)
}
