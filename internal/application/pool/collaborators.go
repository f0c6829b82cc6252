package pool

import (
	"context"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
)

// SubscriptionSource lists the subscriptions a reconcile pass mirrors into pools.
type SubscriptionSource interface {
	ListSubscriptions(ctx context.Context, ownerID string) ([]*catalog.Subscription, error)
}

// ProductCatalog resolves product attributes such as virt_limit and expires_after.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

// Topology answers host to guest and installed product questions.
type Topology interface {
	GetGuestIDs(ctx context.Context, hostUUID string) ([]string, error)
	GetInstalledProducts(ctx context.Context, consumerUUID string) ([]string, error)
}
