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

type salesTestEnv struct {
	engine   *gin.Engine
	ledger   *inventoryapp.LedgerService
	tenantID uuid.UUID
	userID   uuid.UUID
}

func newSalesTestEnv(t *testing.T) *salesTestEnv {
	t.Helper()

	scope := inventoryapp.NewMemoryTransactionScope()
	logger := zap.NewNop()
	ledger := inventoryapp.NewLedgerService(scope, logger)
	sales := inventoryapp.NewSalesService(scope, logger)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewSalesHandler(sales).RegisterRoutes(api)

	return &salesTestEnv{
		engine:   engine,
		ledger:   ledger,
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}
}

func (env *salesTestEnv) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", env.tenantID.String())
	req.Header.Set("X-User-ID", env.userID.String())

	recorder := httptest.NewRecorder()
	env.engine.ServeHTTP(recorder, req)
	return recorder
}

func (env *salesTestEnv) seed(t *testing.T, productID, branchID uuid.UUID, quantity int64) {
	t.Helper()
	_, err := env.ledger.AdjustQuantity(context.Background(), env.tenantID, productID,
		inventory.BranchRef(branchID), decimal.NewFromInt(quantity), env.userID)
	require.NoError(t, err)
}

func (env *salesTestEnv) quantity(t *testing.T, productID, branchID uuid.UUID) decimal.Decimal {
	t.Helper()
	quantity, err := env.ledger.GetQuantity(context.Background(), env.tenantID, productID,
		inventory.BranchRef(branchID))
	require.NoError(t, err)
	return quantity
}

func TestSalesHandler_RecordSale(t *testing.T) {
	t.Run("decrements stock for every line", func(t *testing.T) {
		env := newSalesTestEnv(t)
		branchID := uuid.New()
		productA := uuid.New()
		productB := uuid.New()
		env.seed(t, productA, branchID, 10)
		env.seed(t, productB, branchID, 5)

		recorder := env.post(t, "/api/v1/sales", gin.H{
			"branch_id":   branchID.String(),
			"document_id": "SALE-2026-0001",
			"lines": []gin.H{
				{"product_id": productA.String(), "quantity": 3.0},
				{"product_id": productB.String(), "quantity": 5.0},
			},
		})

		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.True(t, decimal.NewFromInt(7).Equal(env.quantity(t, productA, branchID)))
		assert.True(t, decimal.Zero.Equal(env.quantity(t, productB, branchID)))
	})

	t.Run("one short line rejects the whole document", func(t *testing.T) {
		env := newSalesTestEnv(t)
		branchID := uuid.New()
		productA := uuid.New()
		productB := uuid.New()
		env.seed(t, productA, branchID, 10)
		env.seed(t, productB, branchID, 1)

		recorder := env.post(t, "/api/v1/sales", gin.H{
			"branch_id":   branchID.String(),
			"document_id": "SALE-2026-0002",
			"lines": []gin.H{
				{"product_id": productA.String(), "quantity": 3.0},
				{"product_id": productB.String(), "quantity": 2.0},
			},
		})

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		resp := decodeResponse(t, recorder)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)

		// Nothing moved
		assert.True(t, decimal.NewFromInt(10).Equal(env.quantity(t, productA, branchID)))
		assert.True(t, decimal.NewFromInt(1).Equal(env.quantity(t, productB, branchID)))
	})

	t.Run("duplicate product lines are rejected", func(t *testing.T) {
		env := newSalesTestEnv(t)
		branchID := uuid.New()
		productID := uuid.New()
		env.seed(t, productID, branchID, 10)

		recorder := env.post(t, "/api/v1/sales", gin.H{
			"branch_id":   branchID.String(),
			"document_id": "SALE-2026-0003",
			"lines": []gin.H{
				{"product_id": productID.String(), "quantity": 1.0},
				{"product_id": productID.String(), "quantity": 2.0},
			},
		})

		require.Equal(t, http.StatusBadRequest, recorder.Code)
		resp := decodeResponse(t, recorder)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("rejects an empty line list at binding", func(t *testing.T) {
		env := newSalesTestEnv(t)

		recorder := env.post(t, "/api/v1/sales", gin.H{
			"branch_id":   uuid.NewString(),
			"document_id": "SALE-2026-0004",
			"lines":       []gin.H{},
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestSalesHandler_RecordReturn(t *testing.T) {
	t.Run("increments stock even for a product never sold at the branch", func(t *testing.T) {
		env := newSalesTestEnv(t)
		branchID := uuid.New()
		productID := uuid.New()

		recorder := env.post(t, "/api/v1/sales/returns", gin.H{
			"branch_id":   branchID.String(),
			"document_id": "RET-2026-0001",
			"lines": []gin.H{
				{"product_id": productID.String(), "quantity": 4.0},
			},
		})

		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.True(t, decimal.NewFromInt(4).Equal(env.quantity(t, productID, branchID)))
	})
}
