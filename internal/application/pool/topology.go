package pool

import (
	"context"
	"fmt"

	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
)

const (
	OperationRegisterConsumer = "register_consumer"
	OperationUpdateConsumer   = "update_consumer"
)

// RegisterConsumerCommand registers a consumer under an owner.
type RegisterConsumerCommand struct {
	OwnerKey          string
	Name              string
	Type              consumer.Type
	Facts             map[string]string
	InstalledProducts []string
	GuestIDs          []string
}

// UpdateConsumerCommand changes the fields that are set.
type UpdateConsumerCommand struct {
	GuestIDs          *[]string
	InstalledProducts *[]string
	Facts             map[string]string
}

func (e *Engine) RegisterConsumer(ctx context.Context, cmd RegisterConsumerCommand) (*consumer.Consumer, error) {
	if cmd.OwnerKey == "" {
		return nil, sharedErrors.NewInvalidArgumentError("owner key is required")
	}
	owner, err := e.ownerByKey(ctx, cmd.OwnerKey)
	if err != nil {
		return nil, translateError(err)
	}
	c, err := consumer.NewConsumer(owner.ID(), cmd.Name, cmd.Type, cmd.Facts, cmd.InstalledProducts)
	if err != nil {
		return nil, translateError(err)
	}
	added, _ := c.SetGuestIDs(cmd.GuestIDs)

	_, err = e.withOwner(ctx, owner.ID(), OperationRegisterConsumer, func(ctx context.Context, u *unitOfWork) error {
		if err := e.consumers.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
		return e.migrateGuests(ctx, u, c, added)
	})
	if err != nil {
		return nil, translateError(err)
	}
	e.logger.Infow("consumer registered",
		"consumer_uuid", c.UUID(),
		"owner_key", cmd.OwnerKey,
		"type", c.Type(),
	)
	return c, nil
}

// UpdateConsumer applies a check-in. A changed guest list is stored as a
// mapping diff; newly reported guests migrate to this host's derived pools.
// Dropped guests keep their entitlements.
func (e *Engine) UpdateConsumer(ctx context.Context, consumerUUID string, cmd UpdateConsumerCommand) (*consumer.Consumer, error) {
	c, err := e.consumers.GetConsumer(ctx, consumerUUID)
	if err != nil {
		return nil, translateError(err)
	}

	var updated *consumer.Consumer
	_, err = e.withOwner(ctx, c.OwnerID(), OperationUpdateConsumer, func(ctx context.Context, u *unitOfWork) error {
		c, err := e.consumers.GetConsumer(ctx, consumerUUID)
		if err != nil {
			return err
		}
		if cmd.Facts != nil {
			c.SetFacts(cmd.Facts)
		}
		if cmd.InstalledProducts != nil {
			c.SetInstalledProducts(*cmd.InstalledProducts)
		}
		var added, removed []string
		if cmd.GuestIDs != nil {
			added, removed = c.SetGuestIDs(*cmd.GuestIDs)
		}
		if err := e.consumers.Update(ctx, c, added, removed, e.now()); err != nil {
			return fmt.Errorf("failed to update consumer: %w", err)
		}
		if len(added) > 0 || len(removed) > 0 {
			e.logger.Infow("guest list changed",
				"host_uuid", c.UUID(),
				"added", added,
				"removed", removed,
			)
		}
		updated = c
		return e.migrateGuests(ctx, u, c, added)
	})
	if err != nil {
		return nil, translateError(err)
	}
	return updated, nil
}

func (e *Engine) GetConsumer(ctx context.Context, consumerUUID string) (*consumer.Consumer, error) {
	c, err := e.consumers.GetConsumer(ctx, consumerUUID)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (e *Engine) ListConsumers(ctx context.Context, ownerKey string) ([]*consumer.Consumer, error) {
	if ownerKey == "" {
		return nil, sharedErrors.NewInvalidArgumentError("owner key is required")
	}
	owner, err := e.ownerByKey(ctx, ownerKey)
	if err != nil {
		return nil, translateError(err)
	}
	return e.consumers.ListByOwner(ctx, owner.ID())
}

// ListGuests returns the registered consumers the host currently reports.
func (e *Engine) ListGuests(ctx context.Context, hostUUID string) ([]*consumer.Consumer, error) {
	host, err := e.consumers.GetConsumer(ctx, hostUUID)
	if err != nil {
		return nil, translateError(err)
	}
	guests := []*consumer.Consumer{}
	for _, guestID := range host.GuestIDs() {
		found, err := e.consumers.FindByVirtUUID(ctx, host.OwnerID(), guestID)
		if err != nil {
			return nil, err
		}
		guests = append(guests, found...)
	}
	return guests, nil
}
