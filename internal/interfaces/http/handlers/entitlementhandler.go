package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	pooldto "github.com/orris-inc/poolkeeper/internal/application/pool/dto"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	"github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/id"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

// EntitlementHandler binds, auto-attaches and unbinds entitlements
type EntitlementHandler struct {
	entitlements  entitlementService
	submitUseCase submitJobUseCase
	logger        logger.Interface
}

func NewEntitlementHandler(
	entitlements entitlementService,
	submitUC submitJobUseCase,
	logger logger.Interface,
) *EntitlementHandler {
	return &EntitlementHandler{
		entitlements:  entitlements,
		submitUseCase: submitUC,
		logger:        logger,
	}
}

// ListEntitlements handles GET /consumers/:consumer_uuid/entitlements
func (h *EntitlementHandler) ListEntitlements(c *gin.Context) {
	consumerUUID, err := utils.RequiredParam(c, "consumer_uuid", "consumer uuid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	ents, err := h.entitlements.ListEntitlements(c.Request.Context(), consumerUUID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToEntitlementDTOs(ents))
}

// Consume handles POST /consumers/:consumer_uuid/entitlements.
// With ?pool it binds that pool directly; otherwise it auto-attaches,
// inline or as a consume_product job when ?async=true.
func (h *EntitlementHandler) Consume(c *gin.Context) {
	consumerUUID, err := utils.RequiredParam(c, "consumer_uuid", "consumer uuid")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if poolID := c.Query("pool"); poolID != "" {
		h.bind(c, consumerUUID, poolID)
		return
	}

	async, err := parseBoolQuery(c, "async")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if async {
		h.submitAutoAttach(c, consumerUUID)
		return
	}

	ents, err := h.entitlements.AutoAttach(c.Request.Context(), consumerUUID)
	if err != nil {
		h.logger.Warnw("auto-attach failed", "consumer_uuid", consumerUUID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, pooldto.ToEntitlementDTOs(ents))
}

func (h *EntitlementHandler) bind(c *gin.Context, consumerUUID, poolID string) {
	if err := id.ValidatePrefix(poolID, id.PrefixPool); err != nil {
		utils.ErrorResponseWithError(c, errors.NewInvalidArgumentError("invalid pool ID format, expected pool_xxxxx"))
		return
	}

	quantity := int64(1)
	if raw := c.Query("quantity"); raw != "" {
		q, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || q < 1 {
			utils.ErrorResponseWithError(c, errors.NewInvalidArgumentError("quantity must be a positive integer"))
			return
		}
		quantity = q
	}

	ent, err := h.entitlements.Bind(c.Request.Context(), consumerUUID, poolID, quantity)
	if err != nil {
		h.logger.Warnw("bind failed",
			"consumer_uuid", consumerUUID,
			"pool_id", poolID,
			"quantity", quantity,
			"error", err,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, pooldto.ToEntitlementDTO(ent), "entitlement created")
}

func (h *EntitlementHandler) submitAutoAttach(c *gin.Context, consumerUUID string) {
	result, err := h.submitUseCase.Execute(c.Request.Context(), usecases.SubmitJobCommand{
		OwnerKey:  c.Query("owner"),
		Type:      job.TypeConsumeProduct,
		Principal: c.GetString(constants.ContextKeyPrincipal),
		TargetID:  consumerUUID,
	})
	if err != nil {
		h.logger.Warnw("failed to submit auto-attach job", "consumer_uuid", consumerUUID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.AcceptedResponse(c, result, "auto-attach job queued")
}

// Unbind handles DELETE /entitlements/:entitlement_id
func (h *EntitlementHandler) Unbind(c *gin.Context) {
	entitlementID, err := utils.ParseSIDParam(c, "entitlement_id", id.PrefixEntitlement, "entitlement")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	report, err := h.entitlements.Unbind(c.Request.Context(), entitlementID)
	if err != nil {
		h.logger.Warnw("unbind failed", "entitlement_id", entitlementID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, report)
}
