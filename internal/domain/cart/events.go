package cart

import (
	"github.com/google/uuid"
	"github.com/omorfo/backend/internal/domain/shared"
)

// Cart event types
const (
	EventTypeItemAdded   = "cart.item_added"
	EventTypeItemUpdated = "cart.item_updated"
	EventTypeItemRemoved = "cart.item_removed"
	EventTypeCleared     = "cart.cleared"
	EventTypeMerged      = "cart.merged"
)

const aggregateType = "CartLineItem"

// ItemAddedEvent is published when a line enters a cart
type ItemAddedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID  `json:"user_id"`
	ProductID uuid.UUID  `json:"product_id"`
	Size      PosterSize `json:"size"`
	Frame     FrameStyle `json:"frame"`
	Quantity  int        `json:"quantity"`
}

// NewItemAddedEvent creates an ItemAddedEvent for the given line
func NewItemAddedEvent(item *LineItem) *ItemAddedEvent {
	return &ItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemAdded, aggregateType, item.ID),
		UserID:          item.UserID,
		ProductID:       item.ProductID,
		Size:            item.Size,
		Frame:           item.Frame,
		Quantity:        item.Quantity,
	}
}

// ItemUpdatedEvent is published when a line's quantity changes
type ItemUpdatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Quantity int       `json:"quantity"`
}

// NewItemUpdatedEvent creates an ItemUpdatedEvent for the given line
func NewItemUpdatedEvent(item *LineItem) *ItemUpdatedEvent {
	return &ItemUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemUpdated, aggregateType, item.ID),
		UserID:          item.UserID,
		Quantity:        item.Quantity,
	}
}

// ItemRemovedEvent is published when a line leaves a cart
type ItemRemovedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewItemRemovedEvent creates an ItemRemovedEvent for the given line id
func NewItemRemovedEvent(lineID, userID uuid.UUID) *ItemRemovedEvent {
	return &ItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemRemoved, aggregateType, lineID),
		UserID:          userID,
	}
}

// ClearedEvent is published when a cart is emptied
type ClearedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewClearedEvent creates a ClearedEvent for the given user's cart
func NewClearedEvent(userID uuid.UUID) *ClearedEvent {
	return &ClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCleared, aggregateType, userID),
		UserID:          userID,
	}
}

// MergedEvent is published after a guest cart is reconciled into a
// remote cart, whether fully or partially
type MergedEvent struct {
	shared.BaseDomainEvent
	UserID      uuid.UUID `json:"user_id"`
	MergedLines int       `json:"merged_lines"`
	FailedLines int       `json:"failed_lines"`
}

// NewMergedEvent creates a MergedEvent summarizing a merge run
func NewMergedEvent(userID uuid.UUID, merged, failed int) *MergedEvent {
	return &MergedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMerged, aggregateType, userID),
		UserID:          userID,
		MergedLines:     merged,
		FailedLines:     failed,
	}
}
