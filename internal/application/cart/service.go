package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/catalog"
	"github.com/omorfo/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductProvider resolves catalog products for pricing and snapshots.
// The caching layer sits behind this interface so the service never
// talks to an ambient cache.
type ProductProvider interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// Service is the authenticated cart backend: it owns pricing, the
// duplicate-variant invariant and event publication, on top of plain
// row storage. It implements cart.RemoteStore, so the sync engine can
// run against it in-process.
type Service struct {
	repo     cart.Repository
	products ProductProvider
	events   shared.EventPublisher
	logger   *zap.Logger
}

// NewService creates a cart service
func NewService(repo cart.Repository, products ProductProvider, events shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		events:   events,
		logger:   logger,
	}
}

// ListItems returns the user's cart lines
func (s *Service) ListItems(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetCart returns the user's cart with aggregates computed
func (s *Service) GetCart(ctx context.Context, userID uuid.UUID) (cart.Cart, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return cart.Cart{}, err
	}
	return cart.NewCartFromItems(items), nil
}

// FindByVariant returns the user's line for a variant, or NOT_FOUND
func (s *Service) FindByVariant(ctx context.Context, userID uuid.UUID, key cart.VariantKey) (*cart.LineItem, error) {
	return s.repo.FindByVariant(ctx, userID, key)
}

// InsertItem adds a line to the user's cart. The unit price and display
// snapshot come from the current catalog price, never from the caller.
// If the variant already exists the quantities are folded, keeping the
// no-duplicate-lines invariant even under concurrent writers.
func (s *Service) InsertItem(ctx context.Context, userID uuid.UUID, params cart.InsertParams) (*cart.LineItem, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID is required")
	}
	if params.Quantity < 1 {
		return nil, shared.ErrInvalidQuantity
	}

	product, err := s.products.Get(ctx, params.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	if !product.IsPurchasable() {
		return nil, shared.NewDomainError("NOT_FOUND", "Product is no longer available")
	}

	price, err := product.PriceFor(params.Size, params.Frame)
	if err != nil {
		return nil, err
	}

	key := cart.VariantKey{ProductID: params.ProductID, Size: params.Size, Frame: params.Frame}
	existing, err := s.repo.FindByVariant(ctx, userID, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if err := existing.AddQuantity(params.Quantity); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.publishAggregate(ctx, existing)
		return existing, nil
	}

	item, err := cart.NewLineItem(params.ProductID, product.Name, price, product.ImageURL, params.Quantity, params.Size, params.Frame)
	if err != nil {
		return nil, err
	}
	item.UserID = userID

	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}

	s.publishAggregate(ctx, item)
	return item, nil
}

// UpdateItem applies the given fields to a line and returns the
// canonical stored record
func (s *Service) UpdateItem(ctx context.Context, lineID, userID uuid.UUID, params cart.UpdateParams) (*cart.LineItem, error) {
	item, err := s.repo.FindByID(ctx, lineID, userID)
	if err != nil {
		return nil, err
	}
	oldVariant := item.Variant()

	if params.Size != nil {
		if err := cart.ValidateSize(*params.Size); err != nil {
			return nil, err
		}
		item.Size = *params.Size
	}
	if params.Frame != nil {
		if err := cart.ValidateFrame(*params.Frame); err != nil {
			return nil, err
		}
		item.Frame = *params.Frame
	}
	if params.Quantity != nil {
		if err := item.SetQuantity(*params.Quantity); err != nil {
			return nil, err
		}
	}

	// A size/frame change can collide with another line of the same
	// cart; fold into that line instead of confirming a duplicate
	// variant the unique index would reject anyway.
	if item.Variant() != oldVariant {
		existing, err := s.repo.FindByVariant(ctx, userID, item.Variant())
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != item.ID {
			return s.foldInto(ctx, userID, existing, item)
		}
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.publishAggregate(ctx, item)
	return item, nil
}

// foldInto merges the quantity of src into dst and removes src,
// keeping one line per variant
func (s *Service) foldInto(ctx context.Context, userID uuid.UUID, dst, src *cart.LineItem) (*cart.LineItem, error) {
	if err := dst.AddQuantity(src.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, dst); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, src.ID, userID); err != nil {
		return nil, err
	}

	s.publishAggregate(ctx, dst)
	s.publish(ctx, cart.NewItemRemovedEvent(src.ID, userID))
	return dst, nil
}

// DeleteItem removes a line; deleting an absent line succeeds silently
func (s *Service) DeleteItem(ctx context.Context, lineID, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, lineID, userID); err != nil {
		return err
	}
	s.publish(ctx, cart.NewItemRemovedEvent(lineID, userID))
	return nil
}

// DeleteAllForUser empties the user's remote cart
func (s *Service) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, cart.NewClearedEvent(userID))
	return nil
}

// MergeGuestLines reconciles a guest cart sent by a storefront client
// into the user's remote cart at sign-in. Lines are applied one by one,
// best effort; the caller keeps its guest copy unless every line landed.
func (s *Service) MergeGuestLines(ctx context.Context, userID uuid.UUID, guest []cart.LineItem) (MergeReport, cart.Cart, error) {
	remote, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return MergeReport{}, cart.Cart{}, err
	}

	plan := cart.PlanMerge(guest, remote)
	report := MergeReport{Planned: len(plan)}

	for _, op := range plan {
		if err := s.applyMergeOp(ctx, userID, op); err != nil {
			report.Failed++
			s.logger.Warn("cart line failed to merge",
				zap.String("user_id", userID.String()),
				zap.String("variant", op.Guest.Variant().String()),
				zap.Error(err),
			)
			continue
		}
		report.Succeeded++
	}

	merged, err := s.GetCart(ctx, userID)
	if err != nil {
		return report, cart.Cart{}, err
	}

	s.publish(ctx, cart.NewMergedEvent(userID, report.Succeeded, report.Failed))
	return report, merged, nil
}

func (s *Service) applyMergeOp(ctx context.Context, userID uuid.UUID, op cart.MergeOp) error {
	switch op.Kind {
	case cart.MergeOpUpdate:
		quantity := op.Quantity
		_, err := s.UpdateItem(ctx, op.Remote.ID, userID, cart.UpdateParams{Quantity: &quantity})
		return err
	case cart.MergeOpInsert:
		_, err := s.InsertItem(ctx, userID, cart.InsertParams{
			ProductID: op.Guest.ProductID,
			Quantity:  op.Quantity,
			Size:      op.Guest.Size,
			Frame:     op.Guest.Frame,
		})
		return err
	}
	return shared.NewDomainError("INVALID_INPUT", "Unknown merge op")
}

func (s *Service) publishAggregate(ctx context.Context, item *cart.LineItem) {
	events := item.GetDomainEvents()
	item.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish cart events", zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish cart event", zap.Error(err))
	}
}

// Service satisfies the remote store contract consumed by the sync engine
var _ cart.RemoteStore = (*Service)(nil)
