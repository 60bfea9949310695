package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EngineState is the sync engine lifecycle state
type EngineState string

const (
	StateUninitialized      EngineState = "uninitialized"
	StateLoading            EngineState = "loading"
	StateReadyGuest         EngineState = "ready_guest"
	StateReadyAuthenticated EngineState = "ready_authenticated"
	StateMerging            EngineState = "merging"
)

// AuthStatus describes which backend the engine should sync against
type AuthStatus struct {
	Authenticated bool
	UserID        uuid.UUID
}

// Guest returns the unauthenticated status
func Guest() AuthStatus {
	return AuthStatus{}
}

// Authenticated returns the status for a signed-in user
func Authenticated(userID uuid.UUID) AuthStatus {
	return AuthStatus{Authenticated: true, UserID: userID}
}

// AddItemInput describes a line to add. Name, UnitPrice and ImageURL are
// the display snapshot used in guest mode; in authenticated mode the
// remote store resolves the canonical snapshot from the catalog and the
// provided values are ignored.
type AddItemInput struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
	Quantity  int
	Size      cart.PosterSize
	Frame     cart.FrameStyle
}

// MergeReport summarizes a guest-to-authenticated merge run
type MergeReport struct {
	Planned   int
	Succeeded int
	Failed    int
}

// FullyMerged reports whether every planned line landed in the remote cart
func (r MergeReport) FullyMerged() bool {
	return r.Failed == 0
}

// EngineConfig tunes the sync engine
type EngineConfig struct {
	// RemoteTimeout bounds every remote store call. A request that never
	// resolves must not leave the loading flag stuck.
	RemoteTimeout time.Duration
	// ClearGuestStoreOnSignOut also wipes the device-local guest cart
	// when the user signs out, instead of restoring it into view
	ClearGuestStoreOnSignOut bool
}

// DefaultEngineConfig returns the engine defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RemoteTimeout: 15 * time.Second,
	}
}

// Engine reconciles the cart container with whichever backend is active
// and performs the one-time guest-to-authenticated merge on sign-in.
//
// Mutations are guarded by a single-slot lock: a second mutation issued
// while one is in flight fails fast with SYNC_BUSY rather than racing.
// State is mutated only after the backend confirms, so a failed
// operation leaves the container exactly as it was.
type Engine struct {
	container *Container
	local     cart.LocalStore
	remote    cart.RemoteStore
	events    shared.EventPublisher
	logger    *zap.Logger
	cfg       EngineConfig

	mu     sync.Mutex
	state  EngineState
	userID uuid.UUID

	busy atomic.Bool
}

// NewEngine creates a sync engine over the given stores. The event
// publisher may be nil when no subscriber cares about cart changes.
func NewEngine(container *Container, local cart.LocalStore, remote cart.RemoteStore, events shared.EventPublisher, logger *zap.Logger, cfg EngineConfig) *Engine {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = DefaultEngineConfig().RemoteTimeout
	}
	return &Engine{
		container: container,
		local:     local,
		remote:    remote,
		events:    events,
		logger:    logger,
		cfg:       cfg,
		state:     StateUninitialized,
	}
}

// State returns the current lifecycle state
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Snapshot returns the current cart state
func (e *Engine) Snapshot() cart.Cart {
	return e.container.Snapshot()
}

// Initialize loads the cart from the backend matching the auth status.
// On a remote failure the container stays empty and the loading flag is
// cleared; the caller may retry.
func (e *Engine) Initialize(ctx context.Context, status AuthStatus) error {
	if !e.busy.CompareAndSwap(false, true) {
		return shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	e.setState(StateLoading)
	e.container.SetLoading(true)
	defer e.container.SetLoading(false)

	if !status.Authenticated {
		items, err := e.local.ReadAll()
		if err != nil {
			e.logger.Warn("guest cart unreadable, starting empty", zap.Error(err))
			items = nil
		}
		e.container.ApplyReplace(items)
		e.setReady(Guest())
		return nil
	}

	items, err := e.listRemote(ctx, status.UserID)
	if err != nil {
		e.setState(StateUninitialized)
		return err
	}
	e.container.ApplyReplace(items)
	e.setReady(status)
	return nil
}

// AddItem adds a product variant to the cart. Guest mode applies the
// change locally and persists it synchronously; authenticated mode asks
// the remote store first and projects only the confirmed record.
func (e *Engine) AddItem(ctx context.Context, input AddItemInput) error {
	if !e.busy.CompareAndSwap(false, true) {
		return shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	status, err := e.readyStatus()
	if err != nil {
		return err
	}

	e.container.SetLoading(true)
	defer e.container.SetLoading(false)

	if !status.Authenticated {
		item, err := cart.NewLineItem(input.ProductID, input.Name, input.UnitPrice, input.ImageURL, input.Quantity, input.Size, input.Frame)
		if err != nil {
			return err
		}
		item.ClearDomainEvents()
		return e.guestMutate(func() {
			e.container.ApplyAdd(*item)
		})
	}

	key := cart.VariantKey{ProductID: input.ProductID, Size: input.Size, Frame: input.Frame}

	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	existing, err := e.remote.FindByVariant(rctx, status.UserID, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return translateRemoteErr(err)
	}

	var confirmed *cart.LineItem
	if existing != nil {
		quantity := existing.Quantity + input.Quantity
		confirmed, err = e.remote.UpdateItem(rctx, existing.ID, status.UserID, cart.UpdateParams{Quantity: &quantity})
	} else {
		confirmed, err = e.remote.InsertItem(rctx, status.UserID, cart.InsertParams{
			ProductID: input.ProductID,
			Quantity:  input.Quantity,
			Size:      input.Size,
			Frame:     input.Frame,
		})
	}
	if err != nil {
		return translateRemoteErr(err)
	}

	e.container.ApplyCanonical(*confirmed)
	e.publish(ctx, cart.NewItemAddedEvent(confirmed))
	return nil
}

// UpdateItem sets a line's quantity. Quantities below 1 are rejected;
// callers wanting to drop the line use RemoveItem.
func (e *Engine) UpdateItem(ctx context.Context, lineID uuid.UUID, quantity int) error {
	if !e.busy.CompareAndSwap(false, true) {
		return shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	if quantity < 1 {
		return shared.ErrInvalidQuantity
	}

	status, err := e.readyStatus()
	if err != nil {
		return err
	}

	e.container.SetLoading(true)
	defer e.container.SetLoading(false)

	if !status.Authenticated {
		if err := e.container.ApplyUpdateQuantity(lineID, quantity); err != nil {
			return err
		}
		return e.persistGuest()
	}

	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	confirmed, err := e.remote.UpdateItem(rctx, lineID, status.UserID, cart.UpdateParams{Quantity: &quantity})
	if err != nil {
		return translateRemoteErr(err)
	}

	e.container.ApplyCanonical(*confirmed)
	e.publish(ctx, cart.NewItemUpdatedEvent(confirmed))
	return nil
}

// RemoveItem deletes a line. Removing an absent line succeeds silently
// in both modes.
func (e *Engine) RemoveItem(ctx context.Context, lineID uuid.UUID) error {
	if !e.busy.CompareAndSwap(false, true) {
		return shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	status, err := e.readyStatus()
	if err != nil {
		return err
	}

	e.container.SetLoading(true)
	defer e.container.SetLoading(false)

	if !status.Authenticated {
		return e.guestMutate(func() {
			e.container.ApplyRemove(lineID)
		})
	}

	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	if err := e.remote.DeleteItem(rctx, lineID, status.UserID); err != nil {
		return translateRemoteErr(err)
	}

	e.container.ApplyRemove(lineID)
	e.publish(ctx, cart.NewItemRemovedEvent(lineID, status.UserID))
	return nil
}

// ClearCart empties the cart and its backing store
func (e *Engine) ClearCart(ctx context.Context) error {
	if !e.busy.CompareAndSwap(false, true) {
		return shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	status, err := e.readyStatus()
	if err != nil {
		return err
	}

	e.container.SetLoading(true)
	defer e.container.SetLoading(false)

	if !status.Authenticated {
		if err := e.local.Clear(); err != nil {
			return translateLocalErr(err)
		}
		e.container.ApplyClear()
		return nil
	}

	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	if err := e.remote.DeleteAllForUser(rctx, status.UserID); err != nil {
		return translateRemoteErr(err)
	}

	e.container.ApplyClear()
	e.publish(ctx, cart.NewClearedEvent(status.UserID))
	return nil
}

// SignIn transitions the engine from guest to authenticated mode,
// merging the guest cart into the user's remote cart exactly once.
func (e *Engine) SignIn(ctx context.Context, userID uuid.UUID) (MergeReport, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return MergeReport{}, shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	if e.state != StateReadyGuest {
		e.mu.Unlock()
		return MergeReport{}, shared.ErrInvalidState
	}
	e.state = StateMerging
	e.mu.Unlock()

	e.container.SetLoading(true)
	defer e.container.SetLoading(false)

	report, err := e.mergeWithRemote(ctx, userID)
	if err != nil {
		// Merge never ran; fall back to the guest view untouched
		e.setState(StateReadyGuest)
		return report, err
	}

	e.setReady(Authenticated(userID))
	return report, nil
}

// SignOut returns the engine to guest mode. Remote data is left intact;
// the in-memory view is reset and reloaded from the guest local store
// (or emptied entirely when configured to clear it).
func (e *Engine) SignOut(ctx context.Context) error {
	if !e.busy.CompareAndSwap(false, true) {
		return shared.ErrSyncBusy
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	if e.state != StateReadyAuthenticated {
		e.mu.Unlock()
		return shared.ErrInvalidState
	}
	e.mu.Unlock()

	if e.cfg.ClearGuestStoreOnSignOut {
		if err := e.local.Clear(); err != nil {
			e.logger.Warn("failed to clear guest store on sign-out", zap.Error(err))
		}
	}

	items, err := e.local.ReadAll()
	if err != nil {
		e.logger.Warn("guest cart unreadable on sign-out, starting empty", zap.Error(err))
		items = nil
	}
	e.container.ApplyReplace(items)
	e.setReady(Guest())
	return nil
}

// mergeWithRemote runs the per-line merge. Each line is applied
// individually; a failing line is logged and skipped so the rest still
// land. The guest store is cleared only after every line merged, which
// keeps a retry possible. Returns an error only when the merge could
// not run at all (guest or remote cart unreadable).
func (e *Engine) mergeWithRemote(ctx context.Context, userID uuid.UUID) (MergeReport, error) {
	guest, err := e.local.ReadAll()
	if err != nil {
		return MergeReport{}, translateLocalErr(err)
	}

	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	remote, err := e.listRemote(rctx, userID)
	if err != nil {
		return MergeReport{}, err
	}

	plan := cart.PlanMerge(guest, remote)
	report := MergeReport{Planned: len(plan)}

	for _, op := range plan {
		if err := e.applyMergeOp(ctx, userID, op); err != nil {
			report.Failed++
			e.logger.Warn("cart line failed to merge",
				zap.String("variant", op.Guest.Variant().String()),
				zap.String("op", string(op.Kind)),
				zap.Error(err),
			)
			continue
		}
		report.Succeeded++
	}

	if report.FullyMerged() {
		if err := e.local.Clear(); err != nil {
			e.logger.Warn("failed to clear guest store after merge", zap.Error(err))
		}
	}

	reloadCtx, cancelReload := e.remoteCtx(ctx)
	defer cancelReload()
	items, err := e.listRemote(reloadCtx, userID)
	if err != nil {
		return report, err
	}
	e.container.ApplyReplace(items)

	e.publish(ctx, cart.NewMergedEvent(userID, report.Succeeded, report.Failed))
	return report, nil
}

func (e *Engine) applyMergeOp(ctx context.Context, userID uuid.UUID, op cart.MergeOp) error {
	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	switch op.Kind {
	case cart.MergeOpUpdate:
		quantity := op.Quantity
		_, err := e.remote.UpdateItem(rctx, op.Remote.ID, userID, cart.UpdateParams{Quantity: &quantity})
		return translateRemoteErr(err)
	case cart.MergeOpInsert:
		_, err := e.remote.InsertItem(rctx, userID, cart.InsertParams{
			ProductID: op.Guest.ProductID,
			Quantity:  op.Quantity,
			Size:      op.Guest.Size,
			Frame:     op.Guest.Frame,
		})
		return translateRemoteErr(err)
	}
	return shared.NewDomainError("INVALID_INPUT", "Unknown merge op")
}

// guestMutate applies a container mutation and persists the resulting
// cart to the local store. The local store is synchronous, so the two
// cannot drift apart between operations.
func (e *Engine) guestMutate(apply func()) error {
	apply()
	return e.persistGuest()
}

func (e *Engine) persistGuest() error {
	snapshot := e.container.Snapshot()
	if err := e.local.WriteAll(snapshot.Items); err != nil {
		// Keep the container consistent with what is actually stored
		items, readErr := e.local.ReadAll()
		if readErr == nil {
			e.container.ApplyReplace(items)
		}
		return translateLocalErr(err)
	}
	return nil
}

func (e *Engine) listRemote(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	rctx, cancel := e.remoteCtx(ctx)
	defer cancel()

	items, err := e.remote.ListItems(rctx, userID)
	if err != nil {
		return nil, translateRemoteErr(err)
	}
	return items, nil
}

func (e *Engine) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.RemoteTimeout)
}

func (e *Engine) readyStatus() (AuthStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateReadyGuest:
		return Guest(), nil
	case StateReadyAuthenticated:
		return Authenticated(e.userID), nil
	}
	return AuthStatus{}, shared.ErrInvalidState
}

func (e *Engine) setReady(status AuthStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.userID = status.UserID
	if status.Authenticated {
		e.state = StateReadyAuthenticated
	} else {
		e.state = StateReadyGuest
	}
}

func (e *Engine) setState(state EngineState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

func (e *Engine) publish(ctx context.Context, event shared.DomainEvent) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, event); err != nil {
		e.logger.Warn("failed to publish cart event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

// translateRemoteErr maps backend failures onto the domain taxonomy.
// Domain errors pass through; timeouts and driver errors surface as
// NETWORK_ERROR so callers know a retry is reasonable.
func translateRemoteErr(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	// Timeouts, cancellations and raw driver errors all look the same to
	// the caller: the backend did not confirm, retry is reasonable.
	return shared.ErrNetwork
}

func translateLocalErr(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return shared.NewDomainError("LOCAL_STORE_ERROR", err.Error())
}
