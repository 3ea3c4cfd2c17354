package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

func TestPostgresIntegration_SlotConstraintsAndOutbox(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("BARBERBOOK_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("BARBERBOOK_TEST_DATABASE_URL not set")
	}

	db, err := Open(context.Background(), databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	schema := "barberbook_test_" + randomHex(t, 8)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw("SET LOCAL search_path TO " + schema).Exec(ctx); err != nil {
			return err
		}
		if err := applyMigrations(ctx, tx); err != nil {
			return err
		}

		c := shopTx{tx: tx, shopID: "s1"}
		base := domain.Appointment{
			ShopID:      "s1",
			ShopName:    "Barberia Central",
			ClientID:    "c1",
			ClientName:  "Ana",
			ClientPhone: "555-0101",
			StaffID:     "a",
			Date:        "2026-01-05",
			Time:        "09:00",
			Status:      domain.AppointmentStatusConfirmed,
		}

		a1 := base
		a1.ID = uuid.MustParse("00000000-0000-0000-0000-000000000901")
		a1, err := c.CreateAppointment(ctx, a1)
		if err != nil {
			return err
		}

		rows, err := c.ListAppointments(ctx, "2026-01-05")
		if err != nil {
			return err
		}
		if len(rows) != 1 || rows[0].ID != a1.ID {
			return fmt.Errorf("listed %d rows, want %s", len(rows), a1.ID)
		}

		if _, err := savepoint(ctx, tx, func() error {
			dup := base
			dup.ID = uuid.MustParse("00000000-0000-0000-0000-000000000902")
			_, err := c.CreateAppointment(ctx, dup)
			return err
		}); !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("staff slot err = %v, want %v", err, store.ErrConflict)
		}

		other := base
		other.ID = uuid.MustParse("00000000-0000-0000-0000-000000000903")
		other.StaffID = "b"
		if _, err := c.CreateAppointment(ctx, other); err != nil {
			return fmt.Errorf("staff b create: %w", err)
		}

		a1.Status = domain.AppointmentStatusCancelled
		a1.UpdatedAt = time.Now().UTC()
		if _, err := c.UpdateAppointment(ctx, a1); err != nil {
			return err
		}

		rebook := base
		rebook.ID = uuid.MustParse("00000000-0000-0000-0000-000000000904")
		if _, err := c.CreateAppointment(ctx, rebook); err != nil {
			return fmt.Errorf("rebook after cancel: %w", err)
		}

		got, err := c.GetAppointment(ctx, a1.ID)
		if err != nil {
			return err
		}
		if got.Status != domain.AppointmentStatusCancelled {
			return fmt.Errorf("status = %q, want cancelled", got.Status)
		}

		if err := c.DeleteAppointment(ctx, a1.ID); err != nil {
			return err
		}
		if _, err := c.GetAppointment(ctx, a1.ID); !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get deleted err = %v, want %v", err, store.ErrNotFound)
		}

		if err := checkOutbox(ctx, tx); err != nil {
			return fmt.Errorf("outbox: %w", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx error: %v", err)
	}
}

func checkOutbox(ctx context.Context, tx bun.Tx) error {
	n := domain.Notification{
		Type:        domain.NotificationAppointmentCreated,
		RecipientID: "a",
		Message:     "new booking",
		ShopID:      "s1",
	}
	if _, err := tx.NewInsert().Model(&n).Exec(ctx); err != nil {
		return err
	}

	var pending []domain.Notification
	if err := tx.NewSelect().Model(&pending).Where("published_at IS NULL").Scan(ctx); err != nil {
		return err
	}
	if len(pending) != 1 || pending[0].ID == uuid.Nil {
		return fmt.Errorf("pending = %+v", pending)
	}

	if _, err := tx.NewUpdate().
		Model((*domain.Notification)(nil)).
		Set("published_at = ?", time.Now().UTC()).
		Where("id IN (?)", bun.In([]uuid.UUID{pending[0].ID})).
		Exec(ctx); err != nil {
		return err
	}

	count, err := tx.NewSelect().Model((*domain.Notification)(nil)).Where("published_at IS NULL").Count(ctx)
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("unpublished after mark = %d", count)
	}
	return nil
}

// savepoint runs fn so that a failed statement does not abort the surrounding test transaction.
func savepoint(ctx context.Context, tx bun.Tx, fn func() error) (bool, error) {
	if _, err := tx.NewRaw("SAVEPOINT sp").Exec(ctx); err != nil {
		return false, err
	}
	if err := fn(); err != nil {
		if _, rbErr := tx.NewRaw("ROLLBACK TO SAVEPOINT sp").Exec(ctx); rbErr != nil {
			return false, rbErr
		}
		return false, err
	}
	_, err := tx.NewRaw("RELEASE SAVEPOINT sp").Exec(ctx)
	return true, err
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

func applyMigrations(ctx context.Context, exec rawExecutor) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for _, stmt := range splitSQLStatements(upSQL) {
			if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")), nil
}

func extractGooseUp(sql string) (string, error) {
	const upMarker, downMarker = "-- +goose Up", "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := strings.TrimLeft(sql[upIdx+len(upMarker):], "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
