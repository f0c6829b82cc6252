// Package seeds loads catalog fixtures (products, owners, subscriptions) from YAML.
package seeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

type Fixtures struct {
	Products []ProductFixture `yaml:"products" json:"products" validate:"dive"`
	Owners   []OwnerFixture   `yaml:"owners" json:"owners" validate:"dive"`
}

type ProductFixture struct {
	ID               string            `yaml:"id" json:"id" validate:"required"`
	Name             string            `yaml:"name" json:"name" validate:"required"`
	Attributes       map[string]string `yaml:"attributes" json:"attributes"`
	ProvidedProducts []string          `yaml:"provided_products" json:"provided_products"`
}

type OwnerFixture struct {
	Key           string                `yaml:"key" json:"key" validate:"required"`
	DisplayName   string                `yaml:"display_name" json:"display_name"`
	Subscriptions []SubscriptionFixture `yaml:"subscriptions" json:"subscriptions" validate:"dive"`
}

// SubscriptionFixture is upserted by ID when one is given; otherwise a new
// subscription is created on every run.
type SubscriptionFixture struct {
	ID        string    `yaml:"id" json:"id"`
	ProductID string    `yaml:"product_id" json:"product_id" validate:"required"`
	Quantity  int64     `yaml:"quantity" json:"quantity" validate:"gte=-1"`
	StartDate time.Time `yaml:"start_date" json:"start_date" validate:"required"`
	EndDate   time.Time `yaml:"end_date" json:"end_date" validate:"required,gtfield=StartDate"`
}

// Target is where fixtures are written.
type Target struct {
	Owners        catalog.OwnerRepository
	Products      catalog.ProductRepository
	Subscriptions catalog.SubscriptionRepository
}

// Summary counts what Apply wrote.
type Summary struct {
	Products      int
	OwnersCreated int
	Subscriptions int
	OwnerKeys     []string
}

// Load decodes and validates a fixture document.
func Load(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	if err := utils.ValidateStruct(f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply writes fixtures. Products are replaced, owners are created once and
// subscriptions with an ID are updated in place.
func Apply(ctx context.Context, t Target, f *Fixtures, log logger.Interface) (*Summary, error) {
	summary := &Summary{}

	for _, pf := range f.Products {
		p, err := catalog.NewProduct(pf.ID, pf.Name, pf.Attributes, pf.ProvidedProducts)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", pf.ID, err)
		}
		if err := t.Products.Save(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to save product %s: %w", pf.ID, err)
		}
		summary.Products++
	}

	for _, of := range f.Owners {
		owner, created, err := ensureOwner(ctx, t.Owners, of)
		if err != nil {
			return nil, err
		}
		if created {
			summary.OwnersCreated++
		}
		summary.OwnerKeys = append(summary.OwnerKeys, owner.Key())

		for _, sf := range of.Subscriptions {
			if err := upsertSubscription(ctx, t.Subscriptions, owner, sf); err != nil {
				return nil, fmt.Errorf("owner %s: %w", of.Key, err)
			}
			summary.Subscriptions++
		}
	}

	log.Infow("fixtures applied",
		"products", summary.Products,
		"owners_created", summary.OwnersCreated,
		"subscriptions", summary.Subscriptions,
	)
	return summary, nil
}

func ensureOwner(ctx context.Context, repo catalog.OwnerRepository, of OwnerFixture) (*catalog.Owner, bool, error) {
	owner, err := repo.GetByKey(ctx, of.Key)
	if err == nil {
		return owner, false, nil
	}
	if !errors.Is(err, catalog.ErrOwnerNotFound) {
		return nil, false, fmt.Errorf("failed to load owner %s: %w", of.Key, err)
	}

	owner, err = catalog.NewOwner(of.Key, of.DisplayName)
	if err != nil {
		return nil, false, err
	}
	if err := repo.Create(ctx, owner); err != nil {
		return nil, false, fmt.Errorf("failed to create owner %s: %w", of.Key, err)
	}
	return owner, true, nil
}

func upsertSubscription(ctx context.Context, repo catalog.SubscriptionRepository, owner *catalog.Owner, sf SubscriptionFixture) error {
	if sf.ID != "" {
		existing, err := repo.GetByID(ctx, sf.ID)
		switch {
		case err == nil:
			if existing.OwnerID() != owner.ID() {
				return fmt.Errorf("subscription %s belongs to another owner", sf.ID)
			}
			if err := existing.SetQuantity(sf.Quantity); err != nil {
				return err
			}
			if err := existing.SetWindow(sf.StartDate, sf.EndDate); err != nil {
				return err
			}
			return repo.Update(ctx, existing)
		case !errors.Is(err, catalog.ErrSubscriptionNotFound):
			return fmt.Errorf("failed to load subscription %s: %w", sf.ID, err)
		}
	}

	sub, err := catalog.NewSubscription(owner.ID(), sf.ProductID, sf.Quantity, sf.StartDate, sf.EndDate)
	if err != nil {
		return fmt.Errorf("subscription for %s: %w", sf.ProductID, err)
	}
	if sf.ID != "" {
		sub = catalog.ReconstructSubscription(sf.ID, owner.ID(), sf.ProductID, sf.Quantity, sub.StartDate(), sub.EndDate())
	}
	if err := repo.Create(ctx, sub); err != nil {
		return fmt.Errorf("failed to create subscription for %s: %w", sf.ProductID, err)
	}
	return nil
}
