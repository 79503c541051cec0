// README: DB-backed store tests; skipped unless LANTERN_TEST_DSN is set.
package order

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lantern/internal/types"
)

func TestApplyTracking_CASAndHistory(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedOrder(t, store, "ord_cas", StatusOutForDelivery, 0)

	ok, err := store.ApplyTracking(ctx, "ord_cas", StatusOutForDelivery, 0, TrackingUpdate{
		EntryID:  "evt_1",
		Position: types.Point{Lat: 24.86, Lng: 67.00},
		Status:   StatusOutForDelivery,
	})
	if err != nil {
		t.Fatalf("apply tracking: %v", err)
	}
	if !ok {
		t.Fatal("expected CAS hit on fresh version")
	}

	// A replay with the stale version must miss without error.
	ok, err = store.ApplyTracking(ctx, "ord_cas", StatusOutForDelivery, 0, TrackingUpdate{
		EntryID:  "evt_2",
		Position: types.Point{Lat: 24.87, Lng: 67.02},
		Status:   StatusOutForDelivery,
	})
	if err != nil {
		t.Fatalf("stale apply: %v", err)
	}
	if ok {
		t.Fatal("stale version should miss the CAS")
	}

	o, err := store.Get(ctx, "ord_cas")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.StatusVersion != 1 {
		t.Errorf("status_version = %d, want 1", o.StatusVersion)
	}
	if o.CurrentLocation == nil || o.CurrentLocation.Lat != 24.86 {
		t.Errorf("current location = %v", o.CurrentLocation)
	}

	history, err := store.ListTracking(ctx, "ord_cas")
	if err != nil {
		t.Fatalf("list tracking: %v", err)
	}
	if len(history) != 1 || history[0].ID != "evt_1" {
		t.Errorf("history = %+v, want single evt_1", history)
	}
}

func TestApplyTracking_ETAOnlySetWhenProvided(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedOrder(t, store, "ord_eta", StatusReadyForPickup, 0)

	eta := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)
	ok, err := store.ApplyTracking(ctx, "ord_eta", StatusReadyForPickup, 0, TrackingUpdate{
		EntryID:               "evt_eta_1",
		Position:              types.Point{Lat: 24.86, Lng: 67.00},
		Status:                StatusOutForDelivery,
		EstimatedDeliveryTime: &eta,
	})
	if err != nil || !ok {
		t.Fatalf("apply with eta: ok=%v err=%v", ok, err)
	}

	// A later update without an ETA must keep the stored one (COALESCE).
	ok, err = store.ApplyTracking(ctx, "ord_eta", StatusOutForDelivery, 1, TrackingUpdate{
		EntryID:  "evt_eta_2",
		Position: types.Point{Lat: 24.87, Lng: 67.01},
		Status:   StatusOutForDelivery,
	})
	if err != nil || !ok {
		t.Fatalf("apply without eta: ok=%v err=%v", ok, err)
	}

	o, err := store.Get(ctx, "ord_eta")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.EstimatedDeliveryTime == nil || !o.EstimatedDeliveryTime.Equal(eta) {
		t.Errorf("eta = %v, want %v", o.EstimatedDeliveryTime, eta)
	}
}

func TestConcurrentTrackingUpdates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedOrder(t, store, "ord_race", StatusOutForDelivery, 0)

	const attempts = 8
	var wg sync.WaitGroup
	hits := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.ApplyTracking(ctx, "ord_race", StatusOutForDelivery, 0, TrackingUpdate{
				EntryID:  types.ID(fmt.Sprintf("evt_race_%d", i)),
				Position: types.Point{Lat: 24.86, Lng: 67.00},
				Status:   StatusDelivered,
			})
			if err != nil {
				t.Errorf("apply %d: %v", i, err)
				return
			}
			hits <- ok
		}(i)
	}

	wg.Wait()
	close(hits)

	wins := 0
	for ok := range hits {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 CAS winner, got %d", wins)
	}

	history, err := store.ListTracking(ctx, "ord_race")
	if err != nil {
		t.Fatalf("list tracking: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
}

func TestSetDeliveryLocation_Store(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedOrder(t, store, "ord_dest", StatusPlaced, 0)

	loc := DeliveryLocation{
		Position: types.Point{Lat: 24.90, Lng: 67.08},
		Address:  "House 12, Khayaban-e-Ittehad",
		Landmark: "near the park",
	}
	if err := store.SetDeliveryLocation(ctx, "ord_dest", loc); err != nil {
		t.Fatalf("set delivery location: %v", err)
	}

	o, err := store.Get(ctx, "ord_dest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.DeliveryLocation == nil || o.DeliveryLocation.Address != loc.Address || o.DeliveryLocation.Landmark != loc.Landmark {
		t.Errorf("delivery location = %+v", o.DeliveryLocation)
	}

	if err := store.SetDeliveryLocation(ctx, "ord_missing", loc); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for missing order, got %v", err)
	}
}

func TestListByStatusAndUser(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	seedOrder(t, store, "ord_s1", StatusPreparing, 0)
	seedOrder(t, store, "ord_s2", StatusOutForDelivery, 0)
	seedOrder(t, store, "ord_s3", StatusDelivered, 0)

	active, err := store.ListByStatus(ctx, []Status{StatusPreparing, StatusOutForDelivery})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active orders = %d, want 2", len(active))
	}

	mine, err := store.ListByUser(ctx, "u_test", 10)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("user orders = %d, want 3", len(mine))
	}
}

func seedOrder(t *testing.T, store *PGStore, id types.ID, status Status, version int) {
	t.Helper()

	items, _ := json.Marshal([]Item{{CatalogItemID: "dish_1", Quantity: 1}})
	_, err := store.db.Exec(context.Background(), `
		INSERT INTO orders (id, user_id, provider_id, status, status_version, items, total_amount, currency)
		VALUES ($1, 'u_test', 'prov_test', $2, $3, $4, 900, 'PKR')`,
		string(id), string(status), version, items,
	)
	if err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
}

func setupTestStore(t *testing.T) *PGStore {
	t.Helper()

	dsn := os.Getenv("LANTERN_TEST_DSN")
	if dsn == "" {
		t.Skip("LANTERN_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE order_tracking_events, orders"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "migrations", "0001_init.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
