package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	"github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/id"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

// JobHandler handles job submission, inspection and the scheduler switch
type JobHandler struct {
	submitUseCase    submitJobUseCase
	listUseCase      listJobsUseCase
	getUseCase       getJobUseCase
	cancelUseCase    cancelJobUseCase
	schedulerUseCase schedulerStatusUseCase
	logger           logger.Interface
}

func NewJobHandler(
	submitUC submitJobUseCase,
	listUC listJobsUseCase,
	getUC getJobUseCase,
	cancelUC cancelJobUseCase,
	schedulerUC schedulerStatusUseCase,
	logger logger.Interface,
) *JobHandler {
	return &JobHandler{
		submitUseCase:    submitUC,
		listUseCase:      listUC,
		getUseCase:       getUC,
		cancelUseCase:    cancelUC,
		schedulerUseCase: schedulerUC,
		logger:           logger,
	}
}

// SetSchedulerRequest pauses or resumes job dispatch
type SetSchedulerRequest struct {
	Running *bool `json:"running" validate:"required"`
}

// RefreshPools handles POST /owners/:owner_key/refresh
func (h *JobHandler) RefreshPools(c *gin.Context) {
	ownerKey, err := utils.RequiredParam(c, "owner_key", "owner key")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	lazy, err := parseBoolQuery(c, "lazy")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.submitUseCase.Execute(c.Request.Context(), usecases.SubmitJobCommand{
		OwnerKey:  ownerKey,
		Type:      job.TypeRefreshPools,
		Principal: c.GetString(constants.ContextKeyPrincipal),
		Lazy:      lazy,
	})
	if err != nil {
		h.logger.Warnw("failed to submit refresh job", "owner_key", ownerKey, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.AcceptedResponse(c, result, "refresh job queued")
}

// ListJobs handles GET /jobs?owner=KEY
func (h *JobHandler) ListJobs(c *gin.Context) {
	result, err := h.listUseCase.Execute(c.Request.Context(), c.Query("owner"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, result)
}

// GetJob handles GET /jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := utils.ParseSIDParam(c, "job_id", id.PrefixJob, "job")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getUseCase.Execute(c.Request.Context(), jobID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, result)
}

// CancelJob handles POST /jobs/:job_id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID, err := utils.ParseSIDParam(c, "job_id", id.PrefixJob, "job")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), jobID)
	if err != nil {
		h.logger.Warnw("failed to cancel job", "job_id", jobID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, result)
}

// GetScheduler handles GET /jobs/scheduler
func (h *JobHandler) GetScheduler(c *gin.Context) {
	result, err := h.schedulerUseCase.Get(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.OKResponse(c, result)
}

// SetScheduler handles POST /jobs/scheduler
func (h *JobHandler) SetScheduler(c *gin.Context) {
	var req SetSchedulerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for set scheduler", "error", err)
		utils.ErrorResponseWithError(c, errors.NewInvalidArgumentError("invalid request body", err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.schedulerUseCase.Set(c.Request.Context(), *req.Running)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("scheduler state changed",
		"running", *req.Running,
		"principal", c.GetString(constants.ContextKeyPrincipal),
	)
	utils.OKResponse(c, result)
}

func parseBoolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewInvalidArgumentError(name + " must be a boolean")
	}
	return v, nil
}
