package storage

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

func testItem(name string) domain.Item {
	return domain.Item{
		Name:        name,
		Brand:       "Ambev",
		MaxCapacity: 50,
		Quantity:    10,
		Type:        domain.TypeLager,
	}
}

// runRepositoryContract exercises the behaviour every ItemRepository must share.
// repo must be empty when called.
func runRepositoryContract(t *testing.T, repo port.ItemRepository) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		items, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	var brahmaID int64

	t.Run("save assigns id", func(t *testing.T) {
		saved, err := repo.Save(ctx, testItem("Brahma"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.ID == 0 {
			t.Fatal("expected assigned ID")
		}
		if saved.Type != domain.TypeLager {
			t.Errorf("expected type LAGER, got %s", saved.Type)
		}
		brahmaID = saved.ID
	})

	t.Run("find by id and name", func(t *testing.T) {
		byID, err := repo.FindByID(ctx, brahmaID)
		if err != nil || byID == nil {
			t.Fatalf("FindByID: item=%v err=%v", byID, err)
		}
		byName, err := repo.FindByName(ctx, "Brahma")
		if err != nil || byName == nil {
			t.Fatalf("FindByName: item=%v err=%v", byName, err)
		}
		if byID.ID != byName.ID {
			t.Errorf("expected same item, got %d and %d", byID.ID, byName.ID)
		}
	})

	t.Run("missing rows return nil", func(t *testing.T) {
		item, err := repo.FindByID(ctx, brahmaID+1000)
		if err != nil || item != nil {
			t.Errorf("FindByID missing: item=%v err=%v", item, err)
		}
		item, err = repo.FindByName(ctx, "nonexistent")
		if err != nil || item != nil {
			t.Errorf("FindByName missing: item=%v err=%v", item, err)
		}
	})

	t.Run("find all ordered by id", func(t *testing.T) {
		if _, err := repo.Save(ctx, testItem("Skol")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		items, err := repo.FindAll(ctx)
		if err != nil {
			t.Fatalf("FindAll failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].ID >= items[1].ID {
			t.Errorf("expected ascending ids, got %d, %d", items[0].ID, items[1].ID)
		}
	})

	t.Run("increment respects capacity", func(t *testing.T) {
		ok, err := repo.IncrementQuantity(ctx, brahmaID, 40)
		if err != nil || !ok {
			t.Fatalf("expected 10+40 accepted: ok=%v err=%v", ok, err)
		}
		ok, err = repo.IncrementQuantity(ctx, brahmaID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected 50+1 rejected")
		}
		item, _ := repo.FindByID(ctx, brahmaID)
		if item.Quantity != 50 {
			t.Errorf("expected quantity 50, got %d", item.Quantity)
		}
	})

	t.Run("increment with huge amount", func(t *testing.T) {
		ok, err := repo.IncrementQuantity(ctx, brahmaID, math.MaxInt)
		if err != nil || ok {
			t.Fatalf("expected huge amount rejected without error: ok=%v err=%v", ok, err)
		}
		item, _ := repo.FindByID(ctx, brahmaID)
		if item.Quantity != 50 {
			t.Errorf("expected quantity unchanged at 50, got %d", item.Quantity)
		}
	})

	t.Run("increment missing id", func(t *testing.T) {
		ok, err := repo.IncrementQuantity(ctx, brahmaID+1000, 1)
		if err != nil || ok {
			t.Errorf("expected no-op on missing id: ok=%v err=%v", ok, err)
		}
	})

	t.Run("save always inserts", func(t *testing.T) {
		item := testItem("Bohemia")
		item.ID = brahmaID
		saved, err := repo.Save(ctx, item)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.ID == brahmaID {
			t.Error("expected a fresh ID, not the caller's")
		}
		original, _ := repo.FindByID(ctx, brahmaID)
		if original == nil || original.Name != "Brahma" {
			t.Errorf("expected Brahma untouched, got %+v", original)
		}
	})

	t.Run("save rejects duplicate name", func(t *testing.T) {
		_, err := repo.Save(ctx, testItem("Brahma"))
		if !errors.Is(err, domain.ErrItemAlreadyExists) {
			t.Errorf("expected ErrItemAlreadyExists, got: %v", err)
		}
	})

	t.Run("concurrent increments never exceed capacity", func(t *testing.T) {
		saved, err := repo.Save(ctx, testItem("Antarctica"))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		var accepted atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 60; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.IncrementQuantity(ctx, saved.ID, 1)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if ok {
					accepted.Add(1)
				}
			}()
		}
		wg.Wait()

		if accepted.Load() != 40 {
			t.Errorf("expected 40 accepted increments, got %d", accepted.Load())
		}
		item, _ := repo.FindByID(ctx, saved.ID)
		if item.Quantity != 50 {
			t.Errorf("expected quantity 50, got %d", item.Quantity)
		}
	})

	t.Run("delete removes only target", func(t *testing.T) {
		if err := repo.DeleteByID(ctx, brahmaID); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		if item, _ := repo.FindByID(ctx, brahmaID); item != nil {
			t.Error("expected item to be deleted")
		}
		if item, _ := repo.FindByName(ctx, "Skol"); item == nil {
			t.Error("expected other items to survive")
		}
	})
}
