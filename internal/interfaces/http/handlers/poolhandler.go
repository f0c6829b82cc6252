package handlers

import (
	"github.com/gin-gonic/gin"

	pooldto "github.com/orris-inc/poolkeeper/internal/application/pool/dto"
	"github.com/orris-inc/poolkeeper/internal/shared/id"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

type PoolHandler struct {
	pools  poolQueries
	logger logger.Interface
}

func NewPoolHandler(pools poolQueries, logger logger.Interface) *PoolHandler {
	return &PoolHandler{pools: pools, logger: logger}
}

// ListOwnerPools handles GET /owners/:owner_key/pools
func (h *PoolHandler) ListOwnerPools(c *gin.Context) {
	ownerKey, err := utils.RequiredParam(c, "owner_key", "owner key")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	pools, err := h.pools.ListOwnerPools(c.Request.Context(), ownerKey)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToPoolDTOs(pools))
}

// ListConsumerPools handles GET /consumers/:consumer_uuid/pools
func (h *PoolHandler) ListConsumerPools(c *gin.Context) {
	consumerUUID, err := utils.RequiredParam(c, "consumer_uuid", "consumer uuid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	pools, err := h.pools.ListConsumerPools(c.Request.Context(), consumerUUID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToPoolDTOs(pools))
}

// GetPool handles GET /pools/:pool_id
func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID, err := utils.ParseSIDParam(c, "pool_id", id.PrefixPool, "pool")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p, err := h.pools.GetPool(c.Request.Context(), poolID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToPoolDTO(p))
}
