package catalog

import "context"

// OwnerRepository persists owners.
type OwnerRepository interface {
	Create(ctx context.Context, o *Owner) error
	// GetByKey returns ErrOwnerNotFound for an unknown key.
	GetByKey(ctx context.Context, key string) (*Owner, error)
	GetByID(ctx context.Context, ownerID string) (*Owner, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	// Save inserts or replaces a product.
	Save(ctx context.Context, p *Product) error
	// GetProduct returns ErrProductNotFound for an unknown id.
	GetProduct(ctx context.Context, productID string) (*Product, error)
}

// SubscriptionRepository persists subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *Subscription) error
	Update(ctx context.Context, s *Subscription) error
	Delete(ctx context.Context, subscriptionID string) error
	GetByID(ctx context.Context, subscriptionID string) (*Subscription, error)
	// ListSubscriptions returns all subscriptions of an owner ordered by id.
	ListSubscriptions(ctx context.Context, ownerID string) ([]*Subscription, error)
}
