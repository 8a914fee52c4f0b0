package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sbilibin2017/gw-secondchance/internal/docstore"
	"github.com/sbilibin2017/gw-secondchance/internal/logger"
	"github.com/sbilibin2017/gw-secondchance/internal/models"
)

// itemsCollection is the document store collection holding item records.
const itemsCollection = "secondChanceItems"

// ItemReadRepository handles item lookups against the document store.
type ItemReadRepository struct {
	store docstore.Store
}

func NewItemReadRepository(store docstore.Store) *ItemReadRepository {
	return &ItemReadRepository{store: store}
}

// GetByID returns the item with the given id, or nil when absent.
// Items are matched by their domain id field, not the store document id.
func (r *ItemReadRepository) GetByID(ctx context.Context, id string) (*models.ItemDB, error) {
	doc, err := r.store.FindOne(ctx, itemsCollection, map[string]any{"id": id})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to find item", "id", id, "error", err)
		return nil, err
	}

	var item models.ItemDB
	if err := json.Unmarshal(doc, &item); err != nil {
		logger.Log.Errorw("failed to decode item document", "id", id, "error", err)
		return nil, err
	}
	return &item, nil
}

// List returns all items in store insertion order. Each call re-reads fully.
func (r *ItemReadRepository) List(ctx context.Context) ([]models.ItemDB, error) {
	docs, err := r.store.FindAll(ctx, itemsCollection, nil)
	if err != nil {
		logger.Log.Errorw("failed to list items", "error", err)
		return nil, err
	}

	items := make([]models.ItemDB, 0, len(docs))
	for _, doc := range docs {
		var item models.ItemDB
		if err := json.Unmarshal(doc, &item); err != nil {
			logger.Log.Errorw("failed to decode item document", "error", err)
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ItemWriteRepository handles item mutations against the document store.
type ItemWriteRepository struct {
	store docstore.Store
}

func NewItemWriteRepository(store docstore.Store) *ItemWriteRepository {
	return &ItemWriteRepository{store: store}
}

// NextID atomically allocates the next item identifier.
func (r *ItemWriteRepository) NextID(ctx context.Context) (int64, error) {
	seq, err := r.store.NextSeq(ctx, itemsCollection)
	if err != nil {
		logger.Log.Errorw("failed to allocate item id", "error", err)
		return 0, err
	}
	return seq, nil
}

// Save persists a new item and returns the store-assigned document identifier.
func (r *ItemWriteRepository) Save(ctx context.Context, item models.ItemDB) (string, error) {
	id, err := r.store.InsertOne(ctx, itemsCollection, item)
	if err != nil {
		logger.Log.Errorw("failed to save item", "id", item.ID, "error", err)
		return "", err
	}
	return id, nil
}

// Update merges the full item record over the stored document and reports
// whether a document was updated.
func (r *ItemWriteRepository) Update(ctx context.Context, id string, item models.ItemDB) (bool, error) {
	ok, err := r.store.UpdateOne(ctx, itemsCollection, map[string]any{"id": id}, item)
	if err != nil {
		logger.Log.Errorw("failed to update item", "id", id, "error", err)
		return false, err
	}
	return ok, nil
}

// Delete removes the item and reports whether a document was deleted.
func (r *ItemWriteRepository) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.DeleteOne(ctx, itemsCollection, map[string]any{"id": id})
	if err != nil {
		logger.Log.Errorw("failed to delete item", "id", id, "error", err)
		return false, err
	}
	return ok, nil
}
