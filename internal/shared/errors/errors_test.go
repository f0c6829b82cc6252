package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_StatusFollowsType(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewInvalidArgumentError("owner key is required").Code)
	assert.Equal(t, http.StatusForbidden, NewForbiddenError("guest of another host").Code)
	assert.Equal(t, http.StatusUnauthorized, New(ErrorTypeUnauthorized, "no principal").Code)

	unknown := New(ErrorType("teapot"), "odd")
	assert.Equal(t, ErrorTypeInternal, unknown.Type)
	assert.Equal(t, http.StatusInternalServerError, unknown.Code)
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("cancel job: %w", NewConflictError("job is running", "job_abc"))

	assert.True(t, IsConflictError(err))
	assert.False(t, IsNotFoundError(err))
	assert.Equal(t, "conflict: job is running (job_abc)", GetAppError(err).Error())
	assert.False(t, IsAppError(fmt.Errorf("plain")))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(fmt.Errorf("Error 1062: Duplicate entry 'acme' for key 'idx_owner_key'")))
	assert.True(t, IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: owners.key")))
	assert.False(t, IsDuplicateError(fmt.Errorf("database is locked")))
	assert.False(t, IsDuplicateError(nil))
}
