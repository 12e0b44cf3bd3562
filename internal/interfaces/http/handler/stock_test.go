package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	inventoryapp "github.com/retailcore/backend/internal/application/inventory"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stockTestEnv wires a StockHandler against an in-memory transaction scope
type stockTestEnv struct {
	engine   *gin.Engine
	ledger   *inventoryapp.LedgerService
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newStockTestEnv(t *testing.T) *stockTestEnv {
	t.Helper()

	scope := inventoryapp.NewMemoryTransactionScope()
	ledger := inventoryapp.NewLedgerService(scope, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewStockHandler(ledger).RegisterRoutes(api)

	return &stockTestEnv{
		engine:   engine,
		ledger:   ledger,
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}
}

func (env *stockTestEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", env.tenantID.String())
	req.Header.Set("X-User-ID", env.userID.String())

	recorder := httptest.NewRecorder()
	env.engine.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp
}

func TestStockHandler_GetQuantity(t *testing.T) {
	t.Run("missing ledger row reads as zero", func(t *testing.T) {
		env := newStockTestEnv(t)

		path := "/api/v1/stock/quantity?product_id=" + uuid.NewString() +
			"&location_type=BRANCH&location_id=" + uuid.NewString()
		recorder := env.do(t, http.MethodGet, path, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		resp := decodeResponse(t, recorder)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, float64(0), data["quantity"])
	})

	t.Run("returns the stored quantity", func(t *testing.T) {
		env := newStockTestEnv(t)
		productID := uuid.New()
		branchID := uuid.New()

		_, err := env.ledger.AdjustQuantity(context.Background(), env.tenantID, productID,
			inventory.BranchRef(branchID), decimal.NewFromInt(7), env.userID)
		require.NoError(t, err)

		path := "/api/v1/stock/quantity?product_id=" + productID.String() +
			"&location_type=BRANCH&location_id=" + branchID.String()
		recorder := env.do(t, http.MethodGet, path, nil)

		require.Equal(t, http.StatusOK, recorder.Code)
		data := decodeResponse(t, recorder).Data.(map[string]interface{})
		assert.Equal(t, float64(7), data["quantity"])
	})

	t.Run("rejects a request without tenant header", func(t *testing.T) {
		env := newStockTestEnv(t)

		path := "/api/v1/stock/quantity?product_id=" + uuid.NewString() +
			"&location_type=BRANCH&location_id=" + uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()
		env.engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects an unknown location type", func(t *testing.T) {
		env := newStockTestEnv(t)

		path := "/api/v1/stock/quantity?product_id=" + uuid.NewString() +
			"&location_type=TRUCK&location_id=" + uuid.NewString()
		recorder := env.do(t, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestStockHandler_AdjustQuantity(t *testing.T) {
	t.Run("applies a positive delta", func(t *testing.T) {
		env := newStockTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/v1/stock/adjust", gin.H{
			"product_id":    uuid.NewString(),
			"location_type": "WAREHOUSE",
			"location_id":   uuid.NewString(),
			"delta":         25.0,
		})

		require.Equal(t, http.StatusOK, recorder.Code)
		data := decodeResponse(t, recorder).Data.(map[string]interface{})
		assert.Equal(t, float64(25), data["quantity"])
	})

	t.Run("over-draining stock returns 422 with the stock error code", func(t *testing.T) {
		env := newStockTestEnv(t)
		productID := uuid.New()
		branchID := uuid.New()

		_, err := env.ledger.AdjustQuantity(context.Background(), env.tenantID, productID,
			inventory.BranchRef(branchID), decimal.NewFromInt(3), env.userID)
		require.NoError(t, err)

		recorder := env.do(t, http.MethodPost, "/api/v1/stock/adjust", gin.H{
			"product_id":    productID.String(),
			"location_type": "BRANCH",
			"location_id":   branchID.String(),
			"delta":         -10.0,
		})

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		resp := decodeResponse(t, recorder)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
	})

	t.Run("rejects a request without a body", func(t *testing.T) {
		env := newStockTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/v1/stock/adjust", nil)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestStockHandler_SetQuantity(t *testing.T) {
	env := newStockTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()

	recorder := env.do(t, http.MethodPut, "/api/v1/stock/quantity", gin.H{
		"product_id":    productID.String(),
		"location_type": "WAREHOUSE",
		"location_id":   warehouseID.String(),
		"quantity":      40.0,
	})

	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeResponse(t, recorder).Data.(map[string]interface{})
	assert.Equal(t, float64(40), data["quantity"])

	quantity, err := env.ledger.GetQuantity(context.Background(), env.tenantID, productID,
		inventory.WarehouseRef(warehouseID))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(quantity))
}

func TestStockHandler_TotalQuantity(t *testing.T) {
	env := newStockTestEnv(t)
	productID := uuid.New()

	_, err := env.ledger.AdjustQuantity(context.Background(), env.tenantID, productID,
		inventory.BranchRef(uuid.New()), decimal.NewFromInt(10), env.userID)
	require.NoError(t, err)
	_, err = env.ledger.AdjustQuantity(context.Background(), env.tenantID, productID,
		inventory.WarehouseRef(uuid.New()), decimal.NewFromInt(15), env.userID)
	require.NoError(t, err)

	recorder := env.do(t, http.MethodGet, "/api/v1/stock/products/"+productID.String()+"/total", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	data := decodeResponse(t, recorder).Data.(map[string]interface{})
	assert.Equal(t, float64(25), data["total"])
}
