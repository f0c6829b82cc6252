package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobdto "github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/poolkeeper/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockSubmitJobUC struct {
	result *jobdto.JobDTO
	err    error
	got    usecases.SubmitJobCommand
}

func (m *mockSubmitJobUC) Execute(ctx context.Context, cmd usecases.SubmitJobCommand) (*jobdto.JobDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockListJobsUC struct {
	result []*jobdto.JobDTO
	err    error
}

func (m *mockListJobsUC) Execute(ctx context.Context, ownerKey string) ([]*jobdto.JobDTO, error) {
	if ownerKey == "" {
		return nil, errors.NewInvalidArgumentError("owner key is required")
	}
	return m.result, m.err
}

type mockGetJobUC struct {
	result *jobdto.JobDTO
	err    error
}

func (m *mockGetJobUC) Execute(ctx context.Context, jobID string) (*jobdto.JobDTO, error) {
	return m.result, m.err
}

type mockSchedulerUC struct {
	enabled bool
}

func (m *mockSchedulerUC) Get(ctx context.Context) (*jobdto.SchedulerStatusDTO, error) {
	return &jobdto.SchedulerStatusDTO{Enabled: m.enabled}, nil
}

func (m *mockSchedulerUC) Set(ctx context.Context, enabled bool) (*jobdto.SchedulerStatusDTO, error) {
	m.enabled = enabled
	return &jobdto.SchedulerStatusDTO{Enabled: enabled}, nil
}

type jobHandlerMocks struct {
	submit    *mockSubmitJobUC
	list      *mockListJobsUC
	get       *mockGetJobUC
	cancel    *mockGetJobUC
	scheduler *mockSchedulerUC
}

func newTestJobHandler() (*JobHandler, *jobHandlerMocks) {
	m := &jobHandlerMocks{
		submit:    &mockSubmitJobUC{},
		list:      &mockListJobsUC{},
		get:       &mockGetJobUC{},
		cancel:    &mockGetJobUC{},
		scheduler: &mockSchedulerUC{enabled: true},
	}
	h := NewJobHandler(m.submit, m.list, m.get, m.cancel, m.scheduler, testutil.NewMockLogger())
	return h, m
}

func sampleJob(state job.State) *jobdto.JobDTO {
	return &jobdto.JobDTO{
		ID:       "job_abc123",
		OwnerKey: "acme",
		Type:     string(job.TypeRefreshPools),
		State:    string(state),
	}
}

// =====================================================================
// Tests
// =====================================================================

func TestJobHandler_RefreshPools(t *testing.T) {
	h, m := newTestJobHandler()
	m.submit.result = sampleJob(job.StateCreated)

	c, w := testutil.NewTestContext(http.MethodPost, "/owners/acme/refresh?lazy=true", nil)
	testutil.SetURLParam(c, "owner_key", "acme")
	testutil.SetPrincipal(c, "alice", "operator")

	h.RefreshPools(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, usecases.SubmitJobCommand{
		OwnerKey:  "acme",
		Type:      job.TypeRefreshPools,
		Principal: "alice",
		Lazy:      true,
	}, m.submit.got)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
	var got jobdto.JobDTO
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, "job_abc123", got.ID)
	assert.Equal(t, string(job.StateCreated), got.State)
}

func TestJobHandler_RefreshPools_Errors(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		submitErr error
		want      int
	}{
		{"bad lazy flag", "?lazy=maybe", nil, http.StatusBadRequest},
		{"unknown owner", "", errors.NewNotFoundError("owner not found"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newTestJobHandler()
			m.submit.err = tt.submitErr

			c, w := testutil.NewTestContext(http.MethodPost, "/owners/ghost/refresh"+tt.query, nil)
			testutil.SetURLParam(c, "owner_key", "ghost")
			h.RefreshPools(c)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestJobHandler_ListJobs(t *testing.T) {
	h, m := newTestJobHandler()
	m.list.result = []*jobdto.JobDTO{}

	c, w := testutil.NewTestContext(http.MethodGet, "/jobs", nil)
	h.ListJobs(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = testutil.NewTestContext(http.MethodGet, "/jobs", nil)
	testutil.SetQueryParams(c, map[string]string{"owner": "nobody"})
	h.ListJobs(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestJobHandler_GetJob(t *testing.T) {
	h, m := newTestJobHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/jobs/pool_x", nil)
	testutil.SetURLParam(c, "job_id", "pool_x")
	h.GetJob(c)
	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong id prefix")

	m.get.err = errors.NewNotFoundError("job not found")
	c, w = testutil.NewTestContext(http.MethodGet, "/jobs/job_missing", nil)
	testutil.SetURLParam(c, "job_id", "job_missing")
	h.GetJob(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	m.get.err = nil
	m.get.result = sampleJob(job.StateFinished)
	c, w = testutil.NewTestContext(http.MethodGet, "/jobs/job_abc123", nil)
	testutil.SetURLParam(c, "job_id", "job_abc123")
	h.GetJob(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJobHandler_CancelJob(t *testing.T) {
	h, m := newTestJobHandler()
	m.cancel.result = sampleJob(job.StateCancelled)

	c, w := testutil.NewTestContext(http.MethodPost, "/jobs/job_abc123/cancel", nil)
	testutil.SetURLParam(c, "job_id", "job_abc123")
	h.CancelJob(c)
	assert.Equal(t, http.StatusOK, w.Code)

	m.cancel.err = errors.NewConflictError("job is running")
	c, w = testutil.NewTestContext(http.MethodPost, "/jobs/job_abc123/cancel", nil)
	testutil.SetURLParam(c, "job_id", "job_abc123")
	h.CancelJob(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestJobHandler_Scheduler(t *testing.T) {
	h, m := newTestJobHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/jobs/scheduler", map[string]any{})
	h.SetScheduler(c)
	assert.Equal(t, http.StatusBadRequest, w.Code, "running is required")

	c, w = testutil.NewTestContext(http.MethodPost, "/jobs/scheduler", map[string]any{"running": false})
	h.SetScheduler(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, m.scheduler.enabled)

	c, w = testutil.NewTestContext(http.MethodGet, "/jobs/scheduler", nil)
	h.GetScheduler(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.JSONEq(t, `{"enabled":false}`, string(resp.Data))
}
