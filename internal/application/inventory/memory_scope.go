package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryTransactionScope is an in-memory TransactionScope for tests and local
// development. Execute serializes on a single mutex, which models the
// serializable end of what row locks give the real implementation, and
// restores a snapshot of the store when the function fails, which models
// rollback. Atomicity and isolation therefore hold exactly, just with less
// concurrency than Postgres.
type MemoryTransactionScope struct {
	mu    sync.Mutex
	store *memoryStore
}

// NewMemoryTransactionScope creates an empty in-memory scope
func NewMemoryTransactionScope() *MemoryTransactionScope {
	return &MemoryTransactionScope{store: newMemoryStore()}
}

// Execute runs fn atomically against the in-memory store
func (s *MemoryTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.store.clone()
	repos := &memoryRepositories{store: s.store}
	if err := fn(repos); err != nil {
		*s.store = *snapshot
		return err
	}
	return nil
}

var _ TransactionScope = (*MemoryTransactionScope)(nil)

type memoryStore struct {
	entries   map[string]*inventory.LedgerEntry
	transfers map[string]*inventory.Transfer
	movements []*inventory.StockMovement
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries:   make(map[string]*inventory.LedgerEntry),
		transfers: make(map[string]*inventory.Transfer),
	}
}

func ledgerKey(tenantID, productID uuid.UUID, location inventory.LocationRef) string {
	return tenantID.String() + "|" + inventory.LockKey(productID, location)
}

func transferKey(tenantID, transferID uuid.UUID) string {
	return tenantID.String() + "|" + transferID.String()
}

func (s *memoryStore) clone() *memoryStore {
	clone := &memoryStore{
		entries:   make(map[string]*inventory.LedgerEntry, len(s.entries)),
		transfers: make(map[string]*inventory.Transfer, len(s.transfers)),
		movements: append([]*inventory.StockMovement(nil), s.movements...),
	}
	for key, entry := range s.entries {
		copied := *entry
		clone.entries[key] = &copied
	}
	for key, transfer := range s.transfers {
		copied := *transfer
		copied.Items = append([]inventory.TransferItem(nil), transfer.Items...)
		clone.transfers[key] = &copied
	}
	return clone
}

type memoryRepositories struct {
	store *memoryStore
}

func (r *memoryRepositories) Ledger() inventory.LedgerRepository {
	return &memoryLedgerRepository{store: r.store}
}

func (r *memoryRepositories) Transfers() inventory.TransferRepository {
	return &memoryTransferRepository{store: r.store}
}

func (r *memoryRepositories) Movements() inventory.StockMovementRepository {
	return &memoryMovementRepository{store: r.store}
}

var _ TransactionalRepositories = (*memoryRepositories)(nil)

type memoryLedgerRepository struct {
	store *memoryStore
}

var _ inventory.LedgerRepository = (*memoryLedgerRepository)(nil)

func (r *memoryLedgerRepository) Create(_ context.Context, entry *inventory.LedgerEntry) error {
	key := ledgerKey(entry.TenantID, entry.ProductID, entry.Location())
	if _, exists := r.store.entries[key]; exists {
		return shared.ErrDuplicateLedger
	}
	r.store.entries[key] = entry
	return nil
}

func (r *memoryLedgerRepository) GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (*inventory.LedgerEntry, error) {
	key := ledgerKey(tenantID, productID, location)
	if entry, exists := r.store.entries[key]; exists {
		return entry, nil
	}
	entry, err := inventory.NewLedgerEntry(tenantID, productID, location)
	if err != nil {
		return nil, err
	}
	r.store.entries[key] = entry
	return entry, nil
}

func (r *memoryLedgerRepository) FindByKey(_ context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (*inventory.LedgerEntry, error) {
	entry, exists := r.store.entries[ledgerKey(tenantID, productID, location)]
	if !exists {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}

func (r *memoryLedgerRepository) FindByKeyForUpdate(ctx context.Context, tenantID, productID uuid.UUID, location inventory.LocationRef) (*inventory.LedgerEntry, error) {
	// The scope mutex already serializes whole transactions
	return r.FindByKey(ctx, tenantID, productID, location)
}

func (r *memoryLedgerRepository) FindByLocation(_ context.Context, tenantID uuid.UUID, location inventory.LocationRef, _ shared.Filter) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.Location().Equals(location) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.Compare(entries[i].LockKey(), entries[j].LockKey()) < 0
	})
	return entries, nil
}

func (r *memoryLedgerRepository) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]*inventory.LedgerEntry, error) {
	var entries []*inventory.LedgerEntry
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.ProductID == productID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (r *memoryLedgerRepository) Save(_ context.Context, entry *inventory.LedgerEntry) error {
	key := ledgerKey(entry.TenantID, entry.ProductID, entry.Location())
	if _, exists := r.store.entries[key]; !exists {
		return shared.ErrNotFound
	}
	r.store.entries[key] = entry
	return nil
}

func (r *memoryLedgerRepository) SaveWithVersion(_ context.Context, entry *inventory.LedgerEntry, expectedVersion int) error {
	key := ledgerKey(entry.TenantID, entry.ProductID, entry.Location())
	stored, exists := r.store.entries[key]
	if !exists {
		return shared.ErrNotFound
	}
	if stored != entry && stored.GetVersion() != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	r.store.entries[key] = entry
	return nil
}

func (r *memoryLedgerRepository) CountByLocation(_ context.Context, tenantID uuid.UUID, location inventory.LocationRef) (int64, error) {
	var count int64
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.Location().Equals(location) {
			count++
		}
	}
	return count, nil
}

func (r *memoryLedgerRepository) SumByProduct(_ context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.ProductID == productID {
			total = total.Add(entry.Quantity)
		}
	}
	return total, nil
}

type memoryTransferRepository struct {
	store *memoryStore
}

var _ inventory.TransferRepository = (*memoryTransferRepository)(nil)

func (r *memoryTransferRepository) Create(_ context.Context, transfer *inventory.Transfer) error {
	key := transferKey(transfer.TenantID, transfer.ID)
	if _, exists := r.store.transfers[key]; exists {
		return shared.ErrAlreadyExists
	}
	r.store.transfers[key] = transfer
	return nil
}

func (r *memoryTransferRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	transfer, exists := r.store.transfers[transferKey(tenantID, id)]
	if !exists {
		return nil, shared.ErrNotFound
	}
	return transfer, nil
}

func (r *memoryTransferRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Transfer, error) {
	return r.FindByID(ctx, tenantID, id)
}

func (r *memoryTransferRepository) FindByStatus(_ context.Context, tenantID uuid.UUID, status inventory.TransferStatus, filter shared.Filter) ([]*inventory.Transfer, int64, error) {
	return r.list(tenantID, filter, func(t *inventory.Transfer) bool {
		return t.Status == status
	})
}

func (r *memoryTransferRepository) FindByLocation(_ context.Context, tenantID uuid.UUID, location inventory.LocationRef, filter shared.Filter) ([]*inventory.Transfer, int64, error) {
	return r.list(tenantID, filter, func(t *inventory.Transfer) bool {
		return t.Source().Equals(location) || t.Destination().Equals(location)
	})
}

func (r *memoryTransferRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.Transfer, int64, error) {
	return r.list(tenantID, filter, func(*inventory.Transfer) bool { return true })
}

func (r *memoryTransferRepository) list(tenantID uuid.UUID, filter shared.Filter, match func(*inventory.Transfer) bool) ([]*inventory.Transfer, int64, error) {
	var transfers []*inventory.Transfer
	for _, transfer := range r.store.transfers {
		if transfer.TenantID == tenantID && match(transfer) {
			transfers = append(transfers, transfer)
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
	})
	total := int64(len(transfers))

	start := (filter.Page - 1) * filter.PageSize
	if start < 0 || start >= len(transfers) {
		return []*inventory.Transfer{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(transfers) {
		end = len(transfers)
	}
	return transfers[start:end], total, nil
}

func (r *memoryTransferRepository) Save(_ context.Context, transfer *inventory.Transfer) error {
	key := transferKey(transfer.TenantID, transfer.ID)
	if _, exists := r.store.transfers[key]; !exists {
		return shared.ErrNotFound
	}
	r.store.transfers[key] = transfer
	return nil
}

type memoryMovementRepository struct {
	store *memoryStore
}

var _ inventory.StockMovementRepository = (*memoryMovementRepository)(nil)

func (r *memoryMovementRepository) Create(_ context.Context, movement *inventory.StockMovement) error {
	r.store.movements = append(r.store.movements, movement)
	return nil
}

func (r *memoryMovementRepository) CreateBatch(_ context.Context, movements []*inventory.StockMovement) error {
	r.store.movements = append(r.store.movements, movements...)
	return nil
}

func (r *memoryMovementRepository) FindByLedgerEntry(_ context.Context, tenantID, ledgerEntryID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	return r.list(tenantID, filter, func(m *inventory.StockMovement) bool {
		return m.LedgerEntryID == ledgerEntryID
	})
}

func (r *memoryMovementRepository) FindBySource(_ context.Context, tenantID uuid.UUID, sourceType inventory.SourceType, sourceID string) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	for _, movement := range r.store.movements {
		if movement.TenantID == tenantID && movement.SourceType == sourceType && movement.SourceID == sourceID {
			movements = append(movements, movement)
		}
	}
	return movements, nil
}

func (r *memoryMovementRepository) List(_ context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*inventory.StockMovement, int64, error) {
	return r.list(tenantID, filter, func(*inventory.StockMovement) bool { return true })
}

func (r *memoryMovementRepository) list(tenantID uuid.UUID, filter shared.Filter, match func(*inventory.StockMovement) bool) ([]*inventory.StockMovement, int64, error) {
	var movements []*inventory.StockMovement
	for _, movement := range r.store.movements {
		if movement.TenantID == tenantID && match(movement) {
			movements = append(movements, movement)
		}
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].OccurredAt.After(movements[j].OccurredAt)
	})
	total := int64(len(movements))

	start := (filter.Page - 1) * filter.PageSize
	if start < 0 || start >= len(movements) {
		return []*inventory.StockMovement{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(movements) {
		end = len(movements)
	}
	return movements[start:end], total, nil
}
