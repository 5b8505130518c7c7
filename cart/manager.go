// Package cart owns the authoritative local view of the shopping cart and
// keeps it consistent with the remote cart gateway. Products behind cart
// lines can disappear or change at any time; every snapshot that enters
// this package passes the validity filter, and totals are always derived
// from the filtered item list, never patched incrementally.
package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/auth"
	"github.com/mmaaza/surgical-mart-sub001/gateway"
	"github.com/mmaaza/surgical-mart-sub001/models"
	"github.com/mmaaza/surgical-mart-sub001/pricing"
)

// State is the cart lifecycle state. Remote failures never introduce an
// error state; the last good state is retained and the failure is reported
// through the operation's result.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
)

// Manager holds cart contents, reconciles them against the cart gateway,
// filters out lines whose backing product became invalid, and exposes the
// mutation API. It is safe for concurrent use.
type Manager struct {
	gw      gateway.CartGateway
	session *auth.Session
	cache   SnapshotCache // optional
	logger  *zap.Logger

	mu       sync.Mutex
	state    State
	items    []models.CartItem
	rawCount int
}

// NewManager creates a cart manager. cache may be nil.
func NewManager(gw gateway.CartGateway, session *auth.Session, cache SnapshotCache, logger *zap.Logger) *Manager {
	m := &Manager{
		gw:      gw,
		session: session,
		cache:   cache,
		logger:  logger,
		state:   StateUninitialized,
	}
	return m
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Items returns a copy of the valid cart lines in display order.
func (m *Manager) Items() []models.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// ItemCount returns the sum of quantities across valid lines.
func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, item := range m.items {
		if item.IsValid() {
			count += item.Quantity
		}
	}
	return count
}

// TotalValue returns the sum of valid line subtotals, recomputed from the
// authoritative filtered list on every call.
func (m *Manager) TotalValue() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0.0
	for _, item := range m.items {
		total += pricing.LineSubtotal(item)
	}
	return total
}

// IsInCart reports whether any valid line references the product.
func (m *Manager) IsInCart(productID string) bool {
	return m.GetLine(productID) != nil
}

// GetLine returns the valid line referencing the product, or nil.
func (m *Manager) GetLine(productID string) *models.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.IsValid() && item.Product.ID == productID {
			line := item
			return &line
		}
	}
	return nil
}

// HasInvalidItems reports whether the last fetched raw snapshot carried
// more lines than survived the validity filter.
func (m *Manager) HasInvalidItems() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rawCount > len(m.items)
}

// Fetch loads the cart from the gateway, filters invalid lines, and when
// lines were dropped issues a best-effort server-side cleanup with only
// the valid items. A cleanup failure is logged, never fatal.
func (m *Manager) Fetch(ctx context.Context) error {
	if err := m.requireAuth(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.state == StateUninitialized {
		m.state = StateLoading
	}
	m.mu.Unlock()

	snapshot, err := m.gw.FetchCart(ctx)
	if err != nil {
		m.mu.Lock()
		if m.state == StateLoading {
			m.state = StateUninitialized
		}
		m.mu.Unlock()
		return err
	}

	dropped := m.applySnapshot(ctx, snapshot)
	if dropped > 0 {
		m.logger.Warn("cart fetch dropped invalid lines",
			zap.Int("dropped", dropped),
		)
		if err := m.gw.CleanupCart(ctx, m.Items()); err != nil {
			m.logger.Warn("server-side cart cleanup failed", zap.Error(err))
		}
	}
	return nil
}

// Add puts a product in the cart. Requires an authenticated session. On
// success local state is replaced with the gateway's returned snapshot;
// on failure the error is reported and state is left unchanged.
func (m *Manager) Add(ctx context.Context, productID string, quantity int, attributes map[string]string) error {
	if err := m.requireAuth(); err != nil {
		return err
	}
	if quantity < 1 {
		return apperrors.Validation("invalid quantity", apperrors.FieldViolation{
			Field: "quantity", Rule: "min", Message: "quantity must be at least 1",
		})
	}

	snapshot, err := m.gw.AddItem(ctx, productID, quantity, attributes)
	if err != nil {
		return err
	}
	m.applySnapshot(ctx, snapshot)
	return nil
}

// UpdateQuantity changes a line's quantity. Quantities below 1 are rejected
// locally without a network call.
func (m *Manager) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if err := m.requireAuth(); err != nil {
		return err
	}
	if quantity < 1 {
		return apperrors.Validation("invalid quantity", apperrors.FieldViolation{
			Field: "quantity", Rule: "min", Message: "quantity must be at least 1",
		})
	}

	snapshot, err := m.gw.UpdateItem(ctx, lineID, quantity)
	if err != nil {
		return err
	}
	m.applySnapshot(ctx, snapshot)
	return nil
}

// Remove deletes a line. Removing an already-absent line is a no-op
// success and makes no network call.
func (m *Manager) Remove(ctx context.Context, lineID string) error {
	if err := m.requireAuth(); err != nil {
		return err
	}

	if !m.hasLine(lineID) {
		return nil
	}

	snapshot, err := m.gw.RemoveItem(ctx, lineID)
	if err != nil {
		return err
	}
	m.applySnapshot(ctx, snapshot)
	return nil
}

// Clear empties the cart locally and remotely.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.requireAuth(); err != nil {
		return err
	}

	if err := m.gw.ClearCart(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.items = nil
	m.rawCount = 0
	m.state = StateReady
	m.mu.Unlock()
	m.dropCachedSnapshot(ctx)
	return nil
}

// CleanupInvalidItems removes invalid lines locally first, then attempts
// the remote cleanup. A remote failure still reports local success: the
// user-facing goal, not seeing broken items, is already met.
func (m *Manager) CleanupInvalidItems(ctx context.Context) error {
	if err := m.requireAuth(); err != nil {
		return err
	}

	m.mu.Lock()
	m.rawCount = len(m.items)
	valid := make([]models.CartItem, len(m.items))
	copy(valid, m.items)
	m.mu.Unlock()

	if err := m.gw.CleanupCart(ctx, valid); err != nil {
		m.logger.Warn("remote invalid-item cleanup failed", zap.Error(err))
	}
	return nil
}

// RestoreSnapshot seeds local state from the snapshot cache without a
// gateway round-trip. Used on startup; a later Fetch reconciles.
func (m *Manager) RestoreSnapshot(ctx context.Context) bool {
	if m.cache == nil {
		return false
	}
	user := m.session.CurrentUser()
	if user == nil {
		return false
	}

	snapshot, err := m.cache.Get(ctx, user.ID)
	if err != nil {
		if err != ErrCacheMiss {
			m.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
		return false
	}

	m.applyLocal(snapshot)
	return true
}

// applySnapshot filters the snapshot through the validity filter, replaces
// local state wholesale, and persists the filtered result to the snapshot
// cache. Returns how many lines the filter dropped.
func (m *Manager) applySnapshot(ctx context.Context, snapshot *models.Cart) int {
	dropped := m.applyLocal(snapshot)
	m.storeCachedSnapshot(ctx)
	return dropped
}

func (m *Manager) applyLocal(snapshot *models.Cart) int {
	var raw []models.CartItem
	if snapshot != nil {
		raw = snapshot.Items
	}

	valid := make([]models.CartItem, 0, len(raw))
	for _, item := range raw {
		if item.IsValid() {
			valid = append(valid, item)
		}
	}

	m.mu.Lock()
	m.items = valid
	m.rawCount = len(raw)
	m.state = StateReady
	m.mu.Unlock()
	return len(raw) - len(valid)
}

func (m *Manager) hasLine(lineID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == lineID {
			return true
		}
	}
	return false
}

func (m *Manager) requireAuth() error {
	if !m.session.IsAuthenticated() {
		return apperrors.Auth("sign in to use the cart")
	}
	return nil
}

func (m *Manager) storeCachedSnapshot(ctx context.Context) {
	if m.cache == nil {
		return
	}
	user := m.session.CurrentUser()
	if user == nil {
		return
	}
	cartCopy := &models.Cart{UserID: user.ID, Items: m.Items()}
	if err := m.cache.Set(ctx, user.ID, cartCopy); err != nil {
		m.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
}

func (m *Manager) dropCachedSnapshot(ctx context.Context) {
	if m.cache == nil {
		return
	}
	user := m.session.CurrentUser()
	if user == nil {
		return
	}
	if err := m.cache.Delete(ctx, user.ID); err != nil {
		m.logger.Warn("snapshot cache delete failed", zap.Error(err))
	}
}
