package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobdto "github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/application/job/usecases"
	poolapp "github.com/orris-inc/poolkeeper/internal/application/pool"
	pooldto "github.com/orris-inc/poolkeeper/internal/application/pool/dto"
	"github.com/orris-inc/poolkeeper/internal/domain/consumer"
	"github.com/orris-inc/poolkeeper/internal/domain/entitlement"
	"github.com/orris-inc/poolkeeper/internal/domain/job"
	"github.com/orris-inc/poolkeeper/internal/domain/pool"
	"github.com/orris-inc/poolkeeper/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/poolkeeper/internal/shared/errors"
)

// =====================================================================
// Mock engine
// =====================================================================

type mockEngine struct {
	pools     []*pool.Pool
	pool      *pool.Pool
	ent       *entitlement.Entitlement
	ents      []*entitlement.Entitlement
	consumer  *consumer.Consumer
	consumers []*consumer.Consumer
	report    *poolapp.Report
	err       error

	boundPool     string
	boundQuantity int64
	autoAttached  string
	registered    poolapp.RegisterConsumerCommand
	updated       poolapp.UpdateConsumerCommand
}

func (m *mockEngine) ListOwnerPools(ctx context.Context, ownerKey string) ([]*pool.Pool, error) {
	return m.pools, m.err
}

func (m *mockEngine) ListConsumerPools(ctx context.Context, consumerUUID string) ([]*pool.Pool, error) {
	return m.pools, m.err
}

func (m *mockEngine) GetPool(ctx context.Context, poolID string) (*pool.Pool, error) {
	return m.pool, m.err
}

func (m *mockEngine) Bind(ctx context.Context, consumerUUID, poolID string, quantity int64) (*entitlement.Entitlement, error) {
	m.boundPool, m.boundQuantity = poolID, quantity
	return m.ent, m.err
}

func (m *mockEngine) AutoAttach(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error) {
	m.autoAttached = consumerUUID
	return m.ents, m.err
}

func (m *mockEngine) Unbind(ctx context.Context, entitlementID string) (*poolapp.Report, error) {
	return m.report, m.err
}

func (m *mockEngine) ListEntitlements(ctx context.Context, consumerUUID string) ([]*entitlement.Entitlement, error) {
	return m.ents, m.err
}

func (m *mockEngine) RegisterConsumer(ctx context.Context, cmd poolapp.RegisterConsumerCommand) (*consumer.Consumer, error) {
	m.registered = cmd
	return m.consumer, m.err
}

func (m *mockEngine) UpdateConsumer(ctx context.Context, consumerUUID string, cmd poolapp.UpdateConsumerCommand) (*consumer.Consumer, error) {
	m.updated = cmd
	return m.consumer, m.err
}

func (m *mockEngine) GetConsumer(ctx context.Context, consumerUUID string) (*consumer.Consumer, error) {
	return m.consumer, m.err
}

func (m *mockEngine) ListConsumers(ctx context.Context, ownerKey string) ([]*consumer.Consumer, error) {
	return m.consumers, m.err
}

func (m *mockEngine) ListGuests(ctx context.Context, hostUUID string) ([]*consumer.Consumer, error) {
	return m.consumers, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

func createTestPool(t *testing.T) *pool.Pool {
	t.Helper()
	now := time.Now().UTC()
	p, err := pool.NewPool("own_acme", "RH00001", pool.TypeNormal, 10, []string{"rhel"}, nil, now, now.AddDate(1, 0, 0))
	require.NoError(t, err)
	return p
}

func createTestConsumer(t *testing.T) *consumer.Consumer {
	t.Helper()
	c, err := consumer.NewConsumer("own_acme", "hyper-1", consumer.TypeHypervisor, nil, nil)
	require.NoError(t, err)
	return c
}

func decodeData(t *testing.T, w interface{ Bytes() []byte }, target any) {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, json.Unmarshal(w.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal(resp.Data, target))
}

// =====================================================================
// Tests
// =====================================================================

func TestPoolHandler_ListOwnerPools(t *testing.T) {
	p := createTestPool(t)
	h := NewPoolHandler(&mockEngine{pools: []*pool.Pool{p}}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/owners/acme/pools", nil)
	testutil.SetURLParam(c, "owner_key", "acme")
	h.ListOwnerPools(c)

	require.Equal(t, http.StatusOK, w.Code)
	var got []*pooldto.PoolDTO
	decodeData(t, w.Body, &got)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID(), got[0].ID)
	assert.Equal(t, "NORMAL", got[0].Type)
	assert.Equal(t, int64(10), got[0].Quantity)
}

func TestPoolHandler_GetPool(t *testing.T) {
	engine := &mockEngine{err: errors.NewNotFoundError("pool not found")}
	h := NewPoolHandler(engine, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/pools/pool_missing", nil)
	testutil.SetURLParam(c, "pool_id", "pool_missing")
	h.GetPool(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = testutil.NewTestContext(http.MethodGet, "/pools/ent_123", nil)
	testutil.SetURLParam(c, "pool_id", "ent_123")
	h.GetPool(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPoolHandler_ListConsumerPools_Empty(t *testing.T) {
	h := NewPoolHandler(&mockEngine{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/consumers/x/pools", nil)
	testutil.SetURLParam(c, "consumer_uuid", "x")
	h.ListConsumerPools(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestEntitlementHandler_Bind(t *testing.T) {
	p := createTestPool(t)
	ent, err := entitlement.NewEntitlement("own_acme", "c-1", p.ID(), 2)
	require.NoError(t, err)
	engine := &mockEngine{ent: ent}
	h := NewEntitlementHandler(engine, &mockSubmitJobUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/consumers/c-1/entitlements", nil)
	testutil.SetURLParam(c, "consumer_uuid", "c-1")
	testutil.SetQueryParams(c, map[string]string{"pool": p.ID(), "quantity": "2"})
	h.Consume(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, p.ID(), engine.boundPool)
	assert.Equal(t, int64(2), engine.boundQuantity)
	var got pooldto.EntitlementDTO
	decodeData(t, w.Body, &got)
	assert.Equal(t, ent.ID(), got.ID)
}

func TestEntitlementHandler_Bind_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query map[string]string
		err   error
		want  int
	}{
		{"zero quantity", map[string]string{"pool": "pool_a", "quantity": "0"}, nil, http.StatusBadRequest},
		{"bad pool id", map[string]string{"pool": "sub_a"}, nil, http.StatusBadRequest},
		{"exhausted", map[string]string{"pool": "pool_a"}, errors.NewForbiddenError("pool exhausted"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewEntitlementHandler(&mockEngine{err: tt.err}, &mockSubmitJobUC{}, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/consumers/c-1/entitlements", nil)
			testutil.SetURLParam(c, "consumer_uuid", "c-1")
			testutil.SetQueryParams(c, tt.query)
			h.Consume(c)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestEntitlementHandler_AutoAttach(t *testing.T) {
	engine := &mockEngine{ents: []*entitlement.Entitlement{}}
	submit := &mockSubmitJobUC{result: &jobdto.JobDTO{ID: "job_1", Type: string(job.TypeConsumeProduct)}}
	h := NewEntitlementHandler(engine, submit, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/consumers/c-1/entitlements", nil)
	testutil.SetURLParam(c, "consumer_uuid", "c-1")
	h.Consume(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c-1", engine.autoAttached)

	c, w = testutil.NewTestContext(http.MethodPost, "/consumers/c-2/entitlements", nil)
	testutil.SetURLParam(c, "consumer_uuid", "c-2")
	testutil.SetQueryParams(c, map[string]string{"async": "true"})
	testutil.SetPrincipal(c, "agent", "system")
	h.Consume(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, usecases.SubmitJobCommand{
		Type:      job.TypeConsumeProduct,
		Principal: "agent",
		TargetID:  "c-2",
	}, submit.got)
	assert.Equal(t, "c-1", engine.autoAttached, "async path does not attach inline")
}

func TestEntitlementHandler_Unbind(t *testing.T) {
	engine := &mockEngine{report: &poolapp.Report{OwnerID: "own_acme", RevokedEntitlements: []string{"ent_1"}}}
	h := NewEntitlementHandler(engine, &mockSubmitJobUC{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodDelete, "/entitlements/ent_1", nil)
	testutil.SetURLParam(c, "entitlement_id", "ent_1")
	h.Unbind(c)
	require.Equal(t, http.StatusOK, w.Code)

	var got poolapp.Report
	decodeData(t, w.Body, &got)
	assert.Equal(t, []string{"ent_1"}, got.RevokedEntitlements)
}

func TestConsumerHandler_RegisterConsumer(t *testing.T) {
	cons := createTestConsumer(t)
	engine := &mockEngine{consumer: cons}
	h := NewConsumerHandler(engine, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/owners/acme/consumers", map[string]any{"type": "hypervisor"})
	testutil.SetURLParam(c, "owner_key", "acme")
	h.RegisterConsumer(c)
	assert.Equal(t, http.StatusBadRequest, w.Code, "name is required")

	c, w = testutil.NewTestContext(http.MethodPost, "/owners/acme/consumers", map[string]any{
		"name":      "hyper-1",
		"type":      "hypervisor",
		"guest_ids": []string{"g-1", "g-2"},
	})
	testutil.SetURLParam(c, "owner_key", "acme")
	h.RegisterConsumer(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "acme", engine.registered.OwnerKey)
	assert.Equal(t, consumer.TypeHypervisor, engine.registered.Type)
	assert.Equal(t, []string{"g-1", "g-2"}, engine.registered.GuestIDs)
	var got pooldto.ConsumerDTO
	decodeData(t, w.Body, &got)
	assert.Equal(t, cons.UUID(), got.UUID)
}

func TestConsumerHandler_UpdateConsumer(t *testing.T) {
	engine := &mockEngine{consumer: createTestConsumer(t)}
	h := NewConsumerHandler(engine, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPut, "/consumers/c-1", map[string]any{"guest_ids": []string{"g-9"}})
	testutil.SetURLParam(c, "consumer_uuid", "c-1")
	h.UpdateConsumer(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, engine.updated.GuestIDs)
	assert.Equal(t, []string{"g-9"}, *engine.updated.GuestIDs)
	assert.Nil(t, engine.updated.InstalledProducts, "absent fields stay untouched")
}

func TestConsumerHandler_GetConsumer_NotFound(t *testing.T) {
	h := NewConsumerHandler(&mockEngine{err: errors.NewNotFoundError("consumer not found")}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/consumers/nope", nil)
	testutil.SetURLParam(c, "consumer_uuid", "nope")
	h.GetConsumer(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
