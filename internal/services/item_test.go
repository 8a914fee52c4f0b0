package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-secondchance/internal/models"
	"github.com/sbilibin2017/gw-secondchance/internal/services"
)

func TestAgeYears(t *testing.T) {
	tests := []struct {
		ageDays int
		want    float64
	}{
		{ageDays: 0, want: 0},
		{ageDays: 37, want: 0.1},
		{ageDays: 100, want: 0.3},
		{ageDays: 365, want: 1.0},
		{ageDays: 400, want: 1.1},
		{ageDays: 730, want: 2.0},
		{ageDays: 1095, want: 3.0},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.ageDays), func(t *testing.T) {
			assert.Equal(t, tt.want, services.AgeYears(tt.ageDays))
		})
	}
}

func TestParseComments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []models.Comment
	}{
		{
			name: "empty input",
			raw:  "",
			want: []models.Comment{},
		},
		{
			name: "valid list",
			raw:  `[{"author":"Ann","comment":"still works"}]`,
			want: []models.Comment{{Author: "Ann", Comment: "still works"}},
		},
		{
			name: "malformed json yields empty list",
			raw:  `{"author":`,
			want: []models.Comment{},
		},
		{
			name: "json null yields empty list",
			raw:  `null`,
			want: []models.Comment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ParseComments(tt.raw))
		})
	}
}

func TestItemService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("successful create fills derived fields", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)
		mockEvents := services.NewMockKafkaWriter(ctrl)

		mockWriter.EXPECT().NextID(gomock.Any()).Return(int64(42), nil)

		var saved models.ItemDB
		mockWriter.EXPECT().
			Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item models.ItemDB) (string, error) {
				saved = item
				return "doc-1", nil
			})
		mockEvents.EXPECT().
			WriteMessages(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
				assert.Len(t, msgs, 1)
				assert.Equal(t, "42", string(msgs[0].Key))
				var event services.ItemEvent
				assert.NoError(t, json.Unmarshal(msgs[0].Value, &event))
				assert.Equal(t, "created", event.Action)
				assert.Equal(t, "42", event.ItemID)
				return nil
			})

		svc := services.NewItemService(mockReader, mockWriter, nil, mockEvents)

		before := time.Now().Unix()
		created, err := svc.Create(context.Background(), models.ItemDB{
			Name:     "lamp",
			Category: "furniture",
			Zipcode:  "94105",
			AgeDays:  730,
		}, `[{"author":"Bob","comment":"bright"}]`)

		assert.NoError(t, err)
		assert.Equal(t, "42", created.ID)
		assert.Equal(t, 2.0, created.AgeYears)
		assert.Equal(t, []models.Comment{{Author: "Bob", Comment: "bright"}}, created.Comments)
		assert.GreaterOrEqual(t, created.DateAdded, before)
		assert.Nil(t, created.UpdatedAt)
		assert.Equal(t, *created, saved)
	})

	t.Run("negative age_days", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		created, err := svc.Create(context.Background(), models.ItemDB{Name: "lamp", AgeDays: -1}, "")
		assert.Nil(t, created)
		assert.ErrorIs(t, err, services.ErrValidation)
	})

	t.Run("id allocation error", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockWriter.EXPECT().NextID(gomock.Any()).Return(int64(0), errors.New("counter error"))

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		created, err := svc.Create(context.Background(), models.ItemDB{Name: "lamp"}, "")
		assert.Nil(t, created)
		assert.EqualError(t, err, "counter error")
	})

	t.Run("save error", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockWriter.EXPECT().NextID(gomock.Any()).Return(int64(7), nil)
		mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return("", errors.New("save error"))

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		created, err := svc.Create(context.Background(), models.ItemDB{Name: "lamp"}, "")
		assert.Nil(t, created)
		assert.EqualError(t, err, "save error")
	})

	t.Run("event publish failure does not fail create", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)
		mockEvents := services.NewMockKafkaWriter(ctrl)

		mockWriter.EXPECT().NextID(gomock.Any()).Return(int64(8), nil)
		mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return("doc-8", nil)
		mockEvents.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		svc := services.NewItemService(mockReader, mockWriter, nil, mockEvents)

		created, err := svc.Create(context.Background(), models.ItemDB{Name: "lamp"}, "")
		assert.NoError(t, err)
		assert.Equal(t, "8", created.ID)
	})
}

// stubItemWriter backs the concurrency test with an atomic counter so that
// parallel creations exercise real increment-and-fetch semantics.
type stubItemWriter struct {
	seq   int64
	mu    sync.Mutex
	saved []models.ItemDB
}

func (s *stubItemWriter) NextID(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&s.seq, 1), nil
}

func (s *stubItemWriter) Save(ctx context.Context, item models.ItemDB) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, item)
	return item.ID, nil
}

func (s *stubItemWriter) Update(ctx context.Context, id string, item models.ItemDB) (bool, error) {
	return false, errors.New("not supported")
}

func (s *stubItemWriter) Delete(ctx context.Context, id string) (bool, error) {
	return false, errors.New("not supported")
}

func TestItemService_Create_ConcurrentIDsAreDistinct(t *testing.T) {
	writer := &stubItemWriter{}
	svc := services.NewItemService(nil, writer, nil, nil)

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), models.ItemDB{
				Name: fmt.Sprintf("item-%d", i),
			}, "")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, writer.saved, goroutines)
	seen := make(map[string]bool, goroutines)
	for _, item := range writer.saved {
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestItemService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	item := &models.ItemDB{ID: "5", Name: "chair", Category: "furniture"}

	t.Run("cache hit skips the store", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)
		mockCache := services.NewMockItemCache(ctrl)

		mockCache.EXPECT().Get(gomock.Any(), "5").Return(item, nil)

		svc := services.NewItemService(mockReader, mockWriter, mockCache, nil)

		got, err := svc.Get(context.Background(), "5")
		assert.NoError(t, err)
		assert.Equal(t, item, got)
	})

	t.Run("cache miss reads the store and caches", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)
		mockCache := services.NewMockItemCache(ctrl)

		mockCache.EXPECT().Get(gomock.Any(), "5").Return(nil, nil)
		mockReader.EXPECT().GetByID(gomock.Any(), "5").Return(item, nil)
		mockCache.EXPECT().Set(gomock.Any(), *item).Return(nil)

		svc := services.NewItemService(mockReader, mockWriter, mockCache, nil)

		got, err := svc.Get(context.Background(), "5")
		assert.NoError(t, err)
		assert.Equal(t, item, got)
	})

	t.Run("not found", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockReader.EXPECT().GetByID(gomock.Any(), "404").Return(nil, nil)

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		got, err := svc.Get(context.Background(), "404")
		assert.Nil(t, got)
		assert.ErrorIs(t, err, services.ErrItemNotFound)
	})

	t.Run("reader error", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockReader.EXPECT().GetByID(gomock.Any(), "5").Return(nil, errors.New("db error"))

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		got, err := svc.Get(context.Background(), "5")
		assert.Nil(t, got)
		assert.EqualError(t, err, "db error")
	})
}

func TestItemService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &models.ItemDB{
		ID:          "5",
		Name:        "chair",
		Category:    "furniture",
		Condition:   "Older",
		Zipcode:     "94105",
		Description: "wooden chair",
		Image:       "/images/chair.png",
		AgeDays:     365,
		AgeYears:    1.0,
		Comments:    []models.Comment{{Author: "Ann", Comment: "sturdy"}},
		DateAdded:   1700000000,
	}

	t.Run("overwrites the four fields and stamps updatedAt", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		fresh := *existing
		mockReader.EXPECT().GetByID(gomock.Any(), "5").Return(&fresh, nil)

		var written models.ItemDB
		mockWriter.EXPECT().
			Update(gomock.Any(), "5", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, item models.ItemDB) (bool, error) {
				written = item
				return true, nil
			})

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		ok, err := svc.Update(context.Background(), "5", models.ItemUpdate{
			Category:    "seating",
			Condition:   "New",
			AgeDays:     730,
			Description: "refinished chair",
		})
		assert.NoError(t, err)
		assert.True(t, ok)

		assert.Equal(t, "seating", written.Category)
		assert.Equal(t, "New", written.Condition)
		assert.Equal(t, 730, written.AgeDays)
		assert.Equal(t, "refinished chair", written.Description)
		assert.Equal(t, 2.0, written.AgeYears)
		assert.NotNil(t, written.UpdatedAt)

		assert.Equal(t, existing.Name, written.Name)
		assert.Equal(t, existing.Zipcode, written.Zipcode)
		assert.Equal(t, existing.Image, written.Image)
		assert.Equal(t, existing.Comments, written.Comments)
		assert.Equal(t, existing.DateAdded, written.DateAdded)
	})

	t.Run("not found", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockReader.EXPECT().GetByID(gomock.Any(), "404").Return(nil, nil)

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		ok, err := svc.Update(context.Background(), "404", models.ItemUpdate{})
		assert.False(t, ok)
		assert.ErrorIs(t, err, services.ErrItemNotFound)
	})

	t.Run("negative age_days", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		ok, err := svc.Update(context.Background(), "5", models.ItemUpdate{AgeDays: -1})
		assert.False(t, ok)
		assert.ErrorIs(t, err, services.ErrValidation)
	})

	t.Run("invalidates the cache", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)
		mockCache := services.NewMockItemCache(ctrl)

		fresh := *existing
		mockReader.EXPECT().GetByID(gomock.Any(), "5").Return(&fresh, nil)
		mockWriter.EXPECT().Update(gomock.Any(), "5", gomock.Any()).Return(true, nil)
		mockCache.EXPECT().Invalidate(gomock.Any(), "5").Return(nil)

		svc := services.NewItemService(mockReader, mockWriter, mockCache, nil)

		ok, err := svc.Update(context.Background(), "5", models.ItemUpdate{})
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestItemService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	item := &models.ItemDB{ID: "5", Name: "chair"}

	t.Run("successful delete", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)
		mockCache := services.NewMockItemCache(ctrl)

		mockReader.EXPECT().GetByID(gomock.Any(), "5").Return(item, nil)
		mockWriter.EXPECT().Delete(gomock.Any(), "5").Return(true, nil)
		mockCache.EXPECT().Invalidate(gomock.Any(), "5").Return(nil)

		svc := services.NewItemService(mockReader, mockWriter, mockCache, nil)

		ok, err := svc.Delete(context.Background(), "5")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockReader.EXPECT().GetByID(gomock.Any(), "404").Return(nil, nil)

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		ok, err := svc.Delete(context.Background(), "404")
		assert.False(t, ok)
		assert.ErrorIs(t, err, services.ErrItemNotFound)
	})

	t.Run("writer error", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockReader.EXPECT().GetByID(gomock.Any(), "5").Return(item, nil)
		mockWriter.EXPECT().Delete(gomock.Any(), "5").Return(false, errors.New("db error"))

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		ok, err := svc.Delete(context.Background(), "5")
		assert.False(t, ok)
		assert.EqualError(t, err, "db error")
	})
}

func TestItemService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("returns all items", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		items := []models.ItemDB{{ID: "1", Name: "chair"}, {ID: "2", Name: "lamp"}}
		mockReader.EXPECT().List(gomock.Any()).Return(items, nil)

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		got, err := svc.List(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("reader error", func(t *testing.T) {
		mockReader := services.NewMockItemReader(ctrl)
		mockWriter := services.NewMockItemWriter(ctrl)

		mockReader.EXPECT().List(gomock.Any()).Return(nil, errors.New("db error"))

		svc := services.NewItemService(mockReader, mockWriter, nil, nil)

		got, err := svc.List(context.Background())
		assert.Nil(t, got)
		assert.EqualError(t, err, "db error")
	})
}
