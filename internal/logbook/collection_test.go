package logbook_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nutrilog/internal/kvstore"
	"nutrilog/internal/logbook"
)

type flakyStore struct {
	*kvstore.Memory
	failPut bool
}

func (f *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.Memory.Put(ctx, key, value)
}

func openBook(t *testing.T, store kvstore.Store) *logbook.Book {
	t.Helper()
	book, err := logbook.Open(context.Background(), store, logbook.Options{})
	if err != nil {
		t.Fatalf("logbook.Open: %v", err)
	}
	return book
}

func meal(id, name string, calories int, at time.Time) logbook.Meal {
	return logbook.Meal{
		ID:        id,
		Name:      name,
		Nutrients: logbook.Nutrients{Calories: calories},
		Date:      at,
		Time:      at,
	}
}

func TestInsertKeepsNewestAtHead(t *testing.T) {
	ctx := context.Background()
	book := openBook(t, kvstore.NewMemory())
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := book.Meals.Insert(ctx, meal(id, id, 100, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Insert %s: %v", id, err)
		}
	}
	all := book.Meals.All()
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("expected newest first, got %v", ids(all))
	}

	if err := book.Meals.Insert(ctx, meal("a", "dup", 1, base)); !errors.Is(err, logbook.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestUpdateMutateRemove(t *testing.T) {
	ctx := context.Background()
	book := openBook(t, kvstore.NewMemory())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := book.Meals.Insert(ctx, meal("m1", "toast", 200, now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	updated := meal("m1", "toast with jam", 260, now)
	if err := book.Meals.Update(ctx, updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, ok := book.Meals.Get("m1")
	if !ok || got.Name != "toast with jam" || got.Calories != 260 {
		t.Fatalf("unexpected entry after update: %+v", got)
	}

	if err := book.Meals.Update(ctx, meal("missing", "x", 1, now)); !errors.Is(err, logbook.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mutated, err := book.Meals.Mutate(ctx, "m1", func(m *logbook.Meal) error {
		m.Quantity = 2
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if mutated.Quantity != 2 {
		t.Fatalf("expected returned copy to carry quantity, got %d", mutated.Quantity)
	}

	removed, found, err := book.Meals.Remove(ctx, "m1")
	if err != nil || !found || removed.ID != "m1" {
		t.Fatalf("Remove: found=%v err=%v removed=%+v", found, err, removed)
	}
	if _, found, err := book.Meals.Remove(ctx, "m1"); err != nil || found {
		t.Fatalf("second Remove should be a no-op, got found=%v err=%v", found, err)
	}
	if book.Meals.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", book.Meals.Len())
	}
}

func TestFailedWriteLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Memory: kvstore.NewMemory()}
	book := openBook(t, store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := book.Meals.Insert(ctx, meal("m1", "rice", 300, now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	store.failPut = true
	if err := book.Meals.Insert(ctx, meal("m2", "soup", 100, now)); err == nil {
		t.Fatal("expected insert to fail")
	}
	if _, err := book.Meals.Mutate(ctx, "m1", func(m *logbook.Meal) error { m.Calories = 1; return nil }); err == nil {
		t.Fatal("expected mutate to fail")
	}

	all := book.Meals.All()
	if len(all) != 1 || all[0].Calories != 300 {
		t.Fatalf("expected in-memory state unchanged after failed writes, got %+v", all)
	}
}

func TestMutationsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	book := openBook(t, store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := book.Meals.Insert(ctx, meal("m1", "ramen", 650, now)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	raw, ok, _ := store.Get(ctx, "meals-v6")
	if !ok {
		t.Fatal("expected meals-v6 key to be written")
	}
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("blob is not a JSON array: %v", err)
	}

	reopened := openBook(t, store)
	got, ok := reopened.Meals.Get("m1")
	if !ok || got.Name != "ramen" || got.Calories != 650 {
		t.Fatalf("unexpected entry after reopen: %+v", got)
	}
}

func ids(meals []logbook.Meal) []string {
	out := make([]string, 0, len(meals))
	for _, m := range meals {
		out = append(out, m.ID)
	}
	return out
}
