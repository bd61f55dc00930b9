package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/erazemk/arsenal/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, model.Item{Name: "Hełm", Quantity: 10})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected non-zero id")
	}
	if item.Category != "Other" || item.Warehouse != "Main" || item.Code != "NONE" {
		t.Errorf("expected defaults applied, got %+v", item)
	}

	got, err := s.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.Name != "Hełm" {
		t.Errorf("expected item 'Hełm', got %+v", got)
	}

	missing, err := s.GetItem(ctx, item.ID+1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListItemsMissingAndEmptyFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems on missing file: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected 0 items, got %d", len(items))
	}

	if err := os.WriteFile(filepath.Join(s.Dir(), ItemsFile), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	items, err = s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems on empty file: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected 0 items, got %d", len(items))
	}
}

func TestMalformedFileIsParseError(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(s.Dir(), ItemsFile)
	if err := os.WriteFile(path, []byte(`[{"id": 1,`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.ListItems(context.Background())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != path {
		t.Errorf("expected path %q, got %q", path, perr.Path)
	}

	_, err = s.CreateItem(context.Background(), model.Item{Name: "x"})
	if !errors.As(err, &perr) {
		t.Errorf("expected ParseError from CreateItem, got %v", err)
	}
}

// readItemsFile decodes the items document straight from disk.
func readItemsFile(t *testing.T, s *Store) []model.Item {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Dir(), ItemsFile))
	if err != nil {
		t.Fatalf("reading items file: %v", err)
	}
	var items []model.Item
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("decoding items file: %v", err)
	}
	return items
}

func TestItemOperationsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var want []model.Item
	check := func(step string) {
		t.Helper()
		got := readItemsFile(t, s)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: file holds %+v, want %+v", step, got, want)
		}
	}

	a, _ := s.CreateItem(ctx, model.Item{Name: "Karabinek", Category: "Broń", Quantity: 3, UnitPrice: 1200})
	want = append(want, *a)
	check("insert a")

	b, _ := s.CreateItem(ctx, model.Item{Name: "Kamizelka", Quantity: 7, MinQuantity: 2})
	want = append(want, *b)
	check("insert b")

	name := "Karabinek MSBS"
	qty := 5
	updated, err := s.UpdateItem(ctx, a.ID, ItemPatch{Name: &name, Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	want[0] = *updated
	check("update a")
	if want[0].Category != "Broń" {
		t.Errorf("expected category untouched, got %q", want[0].Category)
	}

	removed, err := s.DeleteItem(ctx, b.ID)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if removed == nil || removed.Name != "Kamizelka" {
		t.Errorf("expected removed 'Kamizelka', got %+v", removed)
	}
	want = want[:1]
	check("delete b")
}

func TestUpdateMissingItemIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.CreateItem(ctx, model.Item{Name: "Hełm"})

	name := "ghost"
	got, err := s.UpdateItem(ctx, 42, ItemPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %+v", got)
	}
}

func TestDeleteMissingItemLeavesFileUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.CreateItem(ctx, model.Item{Name: "Hełm", Quantity: 1})

	path := filepath.Join(s.Dir(), ItemsFile)
	before, _ := os.ReadFile(path)

	removed, err := s.DeleteItem(ctx, 1)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if removed != nil {
		t.Errorf("expected nil removed item, got %+v", removed)
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("expected items file to be unchanged")
	}
}

func TestAdjustItemQuantityNeverNegative(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _ := s.CreateItem(ctx, model.Item{Name: "Manierka", Quantity: 1})

	got, err := s.AdjustItemQuantity(ctx, item.ID, 1)
	if err != nil || got.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %+v (err %v)", got, err)
	}

	s.AdjustItemQuantity(ctx, item.ID, -1)
	s.AdjustItemQuantity(ctx, item.ID, -1)

	_, err = s.AdjustItemQuantity(ctx, item.ID, -1)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock at zero, got %v", err)
	}

	current, _ := s.GetItem(ctx, item.ID)
	if current.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", current.Quantity)
	}

	missing, err := s.AdjustItemQuantity(ctx, item.ID+1, 1)
	if err != nil || missing != nil {
		t.Errorf("expected silent no-op for missing item, got %+v (err %v)", missing, err)
	}
}

func TestIssueItemAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _ := s.CreateItem(ctx, model.Item{Name: "Racja", Quantity: 5})

	_, err := s.IssueItem(ctx, item.ID, 6)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	got, _ := s.GetItem(ctx, item.ID)
	if got.Quantity != 5 {
		t.Errorf("expected quantity unchanged at 5, got %d", got.Quantity)
	}

	issued, err := s.IssueItem(ctx, item.ID, 5)
	if err != nil {
		t.Fatalf("IssueItem: %v", err)
	}
	if issued.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", issued.Quantity)
	}

	if _, err := s.IssueItem(ctx, item.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestHelmetAlertScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _ := s.CreateItem(ctx, model.Item{Name: "Helmet", Quantity: 10, MinQuantity: 5})

	st, _ := s.Stats(ctx)
	if st.Alerts != 0 {
		t.Errorf("expected 0 alerts, got %d", st.Alerts)
	}

	issued, err := s.IssueItem(ctx, item.ID, 6)
	if err != nil {
		t.Fatalf("IssueItem: %v", err)
	}
	if issued.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", issued.Quantity)
	}

	st, _ = s.Stats(ctx)
	if st.Alerts != 1 {
		t.Errorf("expected 1 alert, got %d", st.Alerts)
	}
}

func TestConcurrentAdjustmentsAreNotLost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	item, _ := s.CreateItem(ctx, model.Item{Name: "Amunicja"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AdjustItemQuantity(ctx, item.ID, 1); err != nil {
				t.Errorf("AdjustItemQuantity: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := s.GetItem(ctx, item.ID)
	if got.Quantity != 50 {
		t.Errorf("expected quantity 50, got %d", got.Quantity)
	}
}

func TestItemIDsAreUniqueUnderFixedClock(t *testing.T) {
	s := newTestStore(t)
	fixedClock(s, time.UnixMilli(1000))
	ctx := context.Background()

	a, _ := s.CreateItem(ctx, model.Item{Name: "a"})
	b, _ := s.CreateItem(ctx, model.Item{Name: "b"})
	if a.ID != 1000 {
		t.Errorf("expected first id 1000, got %d", a.ID)
	}
	if b.ID != 1001 {
		t.Errorf("expected second id 1001, got %d", b.ID)
	}
}

func TestFilterItems(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Hełm wz. 2005", Category: "Ochrona", Code: "H-05"},
		{ID: 2, Name: "Kamizelka", Category: "Ochrona", Code: "K-01"},
		{ID: 3, Name: "Karabinek", Category: "Broń", Code: "MSBS"},
	}

	if got := FilterItems(items, "ka", ""); len(got) != 2 {
		t.Errorf("expected 2 matches for 'ka', got %d", len(got))
	}
	if got := FilterItems(items, "", "Ochrona"); len(got) != 2 {
		t.Errorf("expected 2 items in 'Ochrona', got %d", len(got))
	}
	if got := FilterItems(items, "msbs", "Broń"); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("expected item 3 by code, got %+v", got)
	}
	if got := Categories(items); !reflect.DeepEqual(got, []string{"Ochrona", "Broń"}) {
		t.Errorf("unexpected categories %v", got)
	}
}
