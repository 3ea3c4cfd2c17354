package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

const (
	uniqueViolation = "23505"

	staffSlotConstraint      = "appointments_staff_slot_key"
	unassignedSlotConstraint = "appointments_unassigned_slot_key"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type shopTx struct {
	tx     bun.Tx
	shopID string
}

func (r *AppointmentRepo) Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	return getAppointment(ctx, r.db, appointmentID, "")
}

func (r *AppointmentRepo) ListByShop(ctx context.Context, shopID string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("shop_id = ?", shopID).
		OrderExpr("appt_date ASC, appt_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListByClient(ctx context.Context, clientID string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("client_id = ?", clientID).
		OrderExpr("appt_date ASC, appt_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListByStaff(ctx context.Context, staffID string, shopIDs []string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().Model(&rows)
	if len(shopIDs) > 0 {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("staff_id = ?", staffID).
				WhereOr("staff_id IS NULL AND shop_id IN (?)", bun.In(shopIDs))
		})
	} else {
		q = q.Where("staff_id = ?", staffID)
	}
	err := q.OrderExpr("appt_date ASC, appt_time ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListForDate(ctx context.Context, shopID, date string) ([]domain.Appointment, error) {
	return listForDate(ctx, r.db, shopID, date)
}

func (r *AppointmentRepo) InShopTransaction(ctx context.Context, shopID string, fn func(ctx context.Context, tx store.ShopTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockShopBook(ctx, tx, shopID); err != nil {
			return err
		}
		return fn(ctx, shopTx{tx: tx, shopID: shopID})
	})
}

func lockShopBook(ctx context.Context, tx bun.Tx, shopID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "appointments:"+shopID).Exec(ctx)
	return err
}

func getAppointment(ctx context.Context, db bun.IDB, appointmentID uuid.UUID, shopID string) (domain.Appointment, error) {
	var appt domain.Appointment
	q := db.NewSelect().
		Model(&appt).
		Where("id = ?", appointmentID)
	if shopID != "" {
		q = q.Where("shop_id = ?", shopID)
	}
	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func listForDate(ctx context.Context, db bun.IDB, shopID, date string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := db.NewSelect().
		Model(&rows).
		Where("shop_id = ?", shopID).
		Where("appt_date = ?", date).
		OrderExpr("appt_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r shopTx) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	return getAppointment(ctx, r.tx, appointmentID, r.shopID)
}

func (r shopTx) ListAppointments(ctx context.Context, date string) ([]domain.Appointment, error) {
	return listForDate(ctx, r.tx, r.shopID, date)
}

func (r shopTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if appt.ShopID != r.shopID {
		return domain.Appointment{}, errors.New("appointment belongs to another shop")
	}

	m := appt
	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapWriteError(err)
	}
	return m, nil
}

func (r shopTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("staff_id", "appt_date", "appt_time", "status", "updated_at").
		Where("id = ?", appt.ID).
		Where("shop_id = ?", r.shopID).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}

func (r shopTx) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	res, err := r.tx.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", appointmentID).
		Where("shop_id = ?", r.shopID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapWriteError turns violations of the partial slot indexes into store.ErrConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case staffSlotConstraint, unassignedSlotConstraint:
			return store.ErrConflict
		}
	}
	return err
}
