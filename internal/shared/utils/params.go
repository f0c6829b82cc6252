package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/id"
)

// ParseSIDParam reads a prefixed id such as "pool_xxx" from a path parameter.
func ParseSIDParam(c *gin.Context, paramName, prefix, entityName string) (string, error) {
	sid := c.Param(paramName)
	if sid == "" {
		return "", errors.NewInvalidArgumentError(entityName + " ID is required")
	}
	if err := id.ValidatePrefix(sid, prefix); err != nil {
		return "", errors.NewInvalidArgumentError(
			fmt.Sprintf("invalid %s ID format, expected %s_xxxxx", entityName, prefix),
		)
	}
	return sid, nil
}

// RequiredParam reads a free-form path parameter such as an owner key or consumer uuid.
func RequiredParam(c *gin.Context, paramName, entityName string) (string, error) {
	v := c.Param(paramName)
	if v == "" {
		return "", errors.NewInvalidArgumentError(entityName + " is required")
	}
	return v, nil
}
