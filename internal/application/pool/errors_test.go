package pool

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/poolkeeper/internal/domain/catalog"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.True(t, sharedErrors.IsNotFoundError(translateError(fmt.Errorf("load: %w", catalog.ErrOwnerNotFound))))
	assert.True(t, sharedErrors.IsForbiddenError(translateError(pool.ErrHostRestricted)))
	assert.True(t, sharedErrors.IsConflictError(translateError(consumer.ErrVersionConflict)))
	assert.True(t, sharedErrors.IsInvalidArgumentError(translateError(consumer.ErrNameRequired)))

	appErr := sharedErrors.NewConflictError("busy")
	assert.Same(t, appErr, translateError(appErr))

	plain := errors.New("disk full")
	assert.Equal(t, plain, translateError(plain))
}
