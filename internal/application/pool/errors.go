package pool

import (
	"errors"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
)

var (
	notFoundErrors = []error{
		pool.ErrPoolNotFound,
		entitlement.ErrEntitlementNotFound,
		consumer.ErrConsumerNotFound,
		catalog.ErrOwnerNotFound,
		catalog.ErrProductNotFound,
	}
	forbiddenErrors = []error{
		pool.ErrHostRestricted,
		pool.ErrConsumerRestricted,
		pool.ErrPoolExhausted,
		pool.ErrPoolInactive,
	}
	conflictErrors = []error{
		pool.ErrVersionConflict,
		consumer.ErrVersionConflict,
	}
	invalidErrors = []error{
		pool.ErrInvalidQuantity,
		entitlement.ErrInvalidQuantity,
		consumer.ErrNameRequired,
		consumer.ErrInvalidType,
		catalog.ErrOwnerKeyRequired,
	}
)

// translateError maps domain sentinels onto the AppError taxonomy. Errors that
// already are AppErrors, and unknown errors, pass through.
func translateError(err error) error {
	if err == nil || sharedErrors.IsAppError(err) {
		return err
	}
	switch {
	case isAny(err, notFoundErrors):
		return sharedErrors.NewNotFoundError(err.Error())
	case isAny(err, forbiddenErrors):
		return sharedErrors.NewForbiddenError(err.Error())
	case isAny(err, conflictErrors):
		return sharedErrors.NewConflictError(err.Error())
	case isAny(err, invalidErrors):
		return sharedErrors.NewInvalidArgumentError(err.Error())
	}
	return err
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
