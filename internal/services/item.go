package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
)

var (
	// ErrItemNotFound is returned when no item matches the requested id.
	ErrItemNotFound = errors.New("item not found")
)

// ItemReader defines read-only operations for items.
type ItemReader interface {
	GetByID(ctx context.Context, id string) (*models.ItemDB, error)
	List(ctx context.Context) ([]models.ItemDB, error)
}

// ItemWriter defines write operations for items, including id allocation.
type ItemWriter interface {
	NextID(ctx context.Context) (int64, error)
	Save(ctx context.Context, item models.ItemDB) (string, error)
	Update(ctx context.Context, id string, item models.ItemDB) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ItemCache caches single-item lookups.
type ItemCache interface {
	Get(ctx context.Context, id string) (*models.ItemDB, error)
	Set(ctx context.Context, item models.ItemDB) error
	Invalidate(ctx context.Context, id string) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
}

// ItemEvent is the lifecycle message published on item mutations.
type ItemEvent struct {
	Action string `json:"action"`  // created, updated or deleted
	ItemID string `json:"item_id"` // Item identifier
	At     int64  `json:"at"`      // Epoch seconds
}

// ItemService owns the item lifecycle: sequential identifier allocation,
// derived-field maintenance and the partial-update contract.
type ItemService struct {
	reader ItemReader
	writer ItemWriter
	cache  ItemCache
	events KafkaWriter
}

// NewItemService creates a new ItemService. cache and events may be nil.
func NewItemService(reader ItemReader, writer ItemWriter, cache ItemCache, events KafkaWriter) *ItemService {
	return &ItemService{
		reader: reader,
		writer: writer,
		cache:  cache,
		events: events,
	}
}

// AgeYears derives the display age in years: round(ageDays/365, 1).
func AgeYears(ageDays int) float64 {
	return math.Round(float64(ageDays)/365*10) / 10
}

// ParseComments decodes a raw comments payload. Malformed input yields an
// empty list instead of an error; this leniency is deliberate and is the one
// exception to strict input validation.
func ParseComments(raw string) []models.Comment {
	if raw == "" {
		return []models.Comment{}
	}
	var comments []models.Comment
	if err := json.Unmarshal([]byte(raw), &comments); err != nil {
		logger.Log.Warnw("comments could not be parsed, using empty list", "err", err)
		return []models.Comment{}
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments
}

// List returns all items in store order. Each call re-reads fully.
func (svc *ItemService) List(ctx context.Context) ([]models.ItemDB, error) {
	items, err := svc.reader.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list items", "err", err)
		return nil, err
	}
	return items, nil
}

// Create persists a new item. The identifier comes from an atomic
// increment-and-fetch against the store, so concurrent creations never
// collide. date_added and age_years are set here, not by the caller.
func (svc *ItemService) Create(ctx context.Context, item models.ItemDB, rawComments string) (*models.ItemDB, error) {
	if item.AgeDays < 0 {
		return nil, ErrValidation
	}

	seq, err := svc.writer.NextID(ctx)
	if err != nil {
		logger.Log.Errorw("failed to allocate item id", "err", err)
		return nil, err
	}

	item.ID = strconv.FormatInt(seq, 10)
	item.AgeYears = AgeYears(item.AgeDays)
	item.Comments = ParseComments(rawComments)
	item.DateAdded = time.Now().Unix()
	item.UpdatedAt = nil

	if _, err := svc.writer.Save(ctx, item); err != nil {
		logger.Log.Errorw("failed to save item", "id", item.ID, "err", err)
		return nil, err
	}

	svc.publish(ctx, "created", item.ID)
	logger.Log.Infow("item created", "id", item.ID)
	return &item, nil
}

// Get returns a single item by id, consulting the cache first.
func (svc *ItemService) Get(ctx context.Context, id string) (*models.ItemDB, error) {
	if svc.cache != nil {
		cached, err := svc.cache.Get(ctx, id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	item, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, *item); err != nil {
			logger.Log.Warnw("failed to cache item", "id", id, "err", err)
		}
	}
	return item, nil
}

// Update overwrites category, condition, age_days and description, recomputes
// age_years and stamps updatedAt. Name, zipcode, image and comments are
// outside the write set and stay untouched.
func (svc *ItemService) Update(ctx context.Context, id string, upd models.ItemUpdate) (bool, error) {
	if upd.AgeDays < 0 {
		return false, ErrValidation
	}

	item, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, ErrItemNotFound
	}

	item.Category = upd.Category
	item.Condition = upd.Condition
	item.AgeDays = upd.AgeDays
	item.Description = upd.Description
	item.AgeYears = AgeYears(item.AgeDays)
	now := time.Now().UTC()
	item.UpdatedAt = &now

	ok, err := svc.writer.Update(ctx, id, *item)
	if err != nil {
		logger.Log.Errorw("failed to update item", "id", id, "err", err)
		return false, err
	}

	if svc.cache != nil {
		if err := svc.cache.Invalidate(ctx, id); err != nil {
			logger.Log.Warnw("failed to invalidate cached item", "id", id, "err", err)
		}
	}
	svc.publish(ctx, "updated", id)
	return ok, nil
}

// Delete removes an item. Comments are embedded and go with the parent.
func (svc *ItemService) Delete(ctx context.Context, id string) (bool, error) {
	item, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, ErrItemNotFound
	}

	ok, err := svc.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete item", "id", id, "err", err)
		return false, err
	}

	if svc.cache != nil {
		if err := svc.cache.Invalidate(ctx, id); err != nil {
			logger.Log.Warnw("failed to invalidate cached item", "id", id, "err", err)
		}
	}
	svc.publish(ctx, "deleted", id)
	logger.Log.Infow("item deleted", "id", id)
	return ok, nil
}

// publish sends an item lifecycle event. Publishing is best effort: failures
// are logged and never fail the mutation itself.
func (svc *ItemService) publish(ctx context.Context, action, itemID string) {
	if svc.events == nil {
		return
	}

	payload, err := json.Marshal(ItemEvent{
		Action: action,
		ItemID: itemID,
		At:     time.Now().Unix(),
	})
	if err != nil {
		return
	}

	msg := kafka.Message{
		Key:   []byte(itemID),
		Value: payload,
	}
	if err := svc.events.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish item event", "action", action, "item_id", itemID, "err", err)
	}
}
