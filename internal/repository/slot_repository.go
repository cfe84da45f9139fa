package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_booking/internal/model"
	"github.com/Freeeeeet/slot_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, starts_at, service, customer, created_at, updated_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// CreateMissing создаёт слоты для переданных моментов времени, пропуская уже существующие.
// Возвращает количество реально вставленных строк.
func (r *SlotRepository) CreateMissing(ctx context.Context, times []time.Time, service string) (int, error) {
	query := `
		INSERT INTO time_slots (starts_at, service)
		VALUES ($1, $2)
		ON CONFLICT (starts_at) DO NOTHING
	`

	created := 0
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		for _, t := range times {
			tag, err := tx.Exec(ctx, query, t, service)
			if err != nil {
				return fmt.Errorf("insert slot %s: %w", t.Format("2006-01-02 15:04"), err)
			}
			created += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create missing slots: %w", err)
	}

	return created, nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM time_slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetFree получает свободные слоты в диапазоне [from, to), отсортированные по времени.
// Нулевые from/to означают отсутствие ограничения.
func (r *SlotRepository) GetFree(ctx context.Context, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE customer IS NULL
		  AND ($1::timestamp IS NULL OR starts_at >= $1)
		  AND ($2::timestamp IS NULL OR starts_at < $2)
		ORDER BY starts_at, id
	`

	rows, err := r.Query(ctx, query, nullableTime(from), nullableTime(to))
	if err != nil {
		return nil, fmt.Errorf("get free slots: %w", err)
	}

	return collectSlots(rows)
}

// GetRange получает все слоты в диапазоне [from, to), свободные и занятые
func (r *SlotRepository) GetRange(ctx context.Context, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at, id
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("get slots in range: %w", err)
	}

	return collectSlots(rows)
}

// GetBooked получает все занятые слоты, отсортированные по времени
func (r *SlotRepository) GetBooked(ctx context.Context) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM time_slots
		WHERE customer IS NOT NULL
		ORDER BY starts_at, id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get booked slots: %w", err)
	}

	return collectSlots(rows)
}

// Book бронирует слот. Один условный UPDATE: из нескольких
// конкурентных вызовов для одного слота успешен ровно один.
// Возвращает false, если слота нет или он уже занят.
func (r *SlotRepository) Book(ctx context.Context, slotID int64, customer, service string) (bool, error) {
	query := `
		UPDATE time_slots
		SET customer = $1, service = $2, updated_at = now()
		WHERE id = $3 AND customer IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, customer, service, slotID)
	if err != nil {
		return false, fmt.Errorf("book slot: %w", err)
	}

	return affected == 1, nil
}

// Release освобождает занятый слот и сбрасывает услугу.
// Возвращает false, если слота нет или он уже свободен.
func (r *SlotRepository) Release(ctx context.Context, slotID int64, defaultService string) (bool, error) {
	query := `
		UPDATE time_slots
		SET customer = NULL, service = $1, updated_at = now()
		WHERE id = $2 AND customer IS NOT NULL
	`

	affected, err := r.ExecAffected(ctx, query, defaultService, slotID)
	if err != nil {
		return false, fmt.Errorf("release slot: %w", err)
	}

	return affected == 1, nil
}

// ReleaseByCustomer освобождает все слоты клиента (сравнение без учёта регистра)
func (r *SlotRepository) ReleaseByCustomer(ctx context.Context, customer, defaultService string) (int64, error) {
	query := `
		UPDATE time_slots
		SET customer = NULL, service = $1, updated_at = now()
		WHERE customer IS NOT NULL AND lower(customer) = lower($2)
	`

	affected, err := r.ExecAffected(ctx, query, defaultService, customer)
	if err != nil {
		return 0, fmt.Errorf("release slots by customer: %w", err)
	}

	return affected, nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.When,
		&slot.Service,
		&slot.Customer,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func collectSlots(rows pgx.Rows) ([]*model.Slot, error) {
	defer rows.Close()

	slots := make([]*model.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
