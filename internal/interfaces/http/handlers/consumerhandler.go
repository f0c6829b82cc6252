package handlers

import (
	"github.com/gin-gonic/gin"

	poolapp "github.com/orris-inc/poolkeeper/internal/application/pool"
	pooldto "github.com/orris-inc/poolkeeper/internal/application/pool/dto"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

// ConsumerHandler registers consumers and applies host topology updates
type ConsumerHandler struct {
	consumers consumerService
	logger    logger.Interface
}

func NewConsumerHandler(consumers consumerService, logger logger.Interface) *ConsumerHandler {
	return &ConsumerHandler{consumers: consumers, logger: logger}
}

type RegisterConsumerRequest struct {
	Name              string            `json:"name" validate:"required,max=255"`
	Type              string            `json:"type" validate:"omitempty,oneof=system hypervisor person domain"`
	Facts             map[string]string `json:"facts"`
	InstalledProducts []string          `json:"installed_products"`
	GuestIDs          []string          `json:"guest_ids" validate:"dive,required"`
}

// UpdateConsumerRequest replaces only the fields present in the body.
type UpdateConsumerRequest struct {
	Facts             map[string]string `json:"facts"`
	InstalledProducts *[]string         `json:"installed_products"`
	GuestIDs          *[]string         `json:"guest_ids"`
}

// RegisterConsumer handles POST /owners/:owner_key/consumers
func (h *ConsumerHandler) RegisterConsumer(c *gin.Context) {
	ownerKey, err := utils.RequiredParam(c, "owner_key", "owner key")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RegisterConsumerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for register consumer", "error", err)
		utils.ErrorResponseWithError(c, errors.NewInvalidArgumentError("invalid request body", err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cons, err := h.consumers.RegisterConsumer(c.Request.Context(), poolapp.RegisterConsumerCommand{
		OwnerKey:          ownerKey,
		Name:              req.Name,
		Type:              consumer.Type(req.Type),
		Facts:             req.Facts,
		InstalledProducts: req.InstalledProducts,
		GuestIDs:          req.GuestIDs,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, pooldto.ToConsumerDTO(cons), "consumer registered")
}

// ListConsumers handles GET /owners/:owner_key/consumers
func (h *ConsumerHandler) ListConsumers(c *gin.Context) {
	ownerKey, err := utils.RequiredParam(c, "owner_key", "owner key")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	consumers, err := h.consumers.ListConsumers(c.Request.Context(), ownerKey)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToConsumerDTOs(consumers))
}

// GetConsumer handles GET /consumers/:consumer_uuid
func (h *ConsumerHandler) GetConsumer(c *gin.Context) {
	consumerUUID, err := utils.RequiredParam(c, "consumer_uuid", "consumer uuid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cons, err := h.consumers.GetConsumer(c.Request.Context(), consumerUUID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToConsumerDTO(cons))
}

// UpdateConsumer handles PUT /consumers/:consumer_uuid. A changed guest list
// migrates guest entitlements to this host.
func (h *ConsumerHandler) UpdateConsumer(c *gin.Context) {
	consumerUUID, err := utils.RequiredParam(c, "consumer_uuid", "consumer uuid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateConsumerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for update consumer", "error", err)
		utils.ErrorResponseWithError(c, errors.NewInvalidArgumentError("invalid request body", err.Error()))
		return
	}

	cons, err := h.consumers.UpdateConsumer(c.Request.Context(), consumerUUID, poolapp.UpdateConsumerCommand{
		GuestIDs:          req.GuestIDs,
		InstalledProducts: req.InstalledProducts,
		Facts:             req.Facts,
	})
	if err != nil {
		h.logger.Warnw("failed to update consumer", "consumer_uuid", consumerUUID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToConsumerDTO(cons))
}

// ListGuests handles GET /consumers/:consumer_uuid/guests
func (h *ConsumerHandler) ListGuests(c *gin.Context) {
	hostUUID, err := utils.RequiredParam(c, "consumer_uuid", "consumer uuid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	guests, err := h.consumers.ListGuests(c.Request.Context(), hostUUID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToConsumerDTOs(guests))
}
