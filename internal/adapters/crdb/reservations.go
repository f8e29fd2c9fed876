package crdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

type Reservations struct {
	repo *Repository
}

func NewReservations(repo *Repository) *Reservations {
	return &Reservations{repo: repo}
}

const reservationColumns = `
	r.id, r.restaurant_id, r.sector_id, r.party_size, r.start_at, r.end_at, r.status,
	r.customer_name, r.customer_phone, r.customer_email, r.customer_created_at, r.customer_updated_at,
	r.notes, r.created_at, r.updated_at, rt.table_id`

func (s *Reservations) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	rows, err := s.repo.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN reservation_tables rt ON rt.reservation_id = r.id
		WHERE r.id = $1
		ORDER BY rt.table_id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, errors.Wrapf(domain.ErrNotFound, "reservation %s", id)
	}
	return &reservations[0], nil
}

func (s *Reservations) FindByDate(ctx context.Context, date time.Time, restaurantID, sectorID string) ([]domain.Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.repo.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN reservation_tables rt ON rt.reservation_id = r.id
		WHERE r.restaurant_id = $1
		  AND r.status != 'CANCELLED'
		  AND r.start_at >= $2 AND r.start_at < $3
		  AND ($4 = '' OR r.sector_id = $4)
		ORDER BY r.start_at, r.id, rt.table_id
	`, restaurantID, dayStart, dayEnd, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReservations(rows)
}

func (s *Reservations) FindOverlapping(ctx context.Context, sectorID string, start, end time.Time) ([]domain.Reservation, error) {
	// Half-open interval intersection: a1 < b2 AND b1 < a2. Reservations
	// ending exactly at start (or starting exactly at end) do not match.
	rows, err := s.repo.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN reservation_tables rt ON rt.reservation_id = r.id
		WHERE r.sector_id = $1
		  AND r.status != 'CANCELLED'
		  AND r.start_at < $3 AND $2 < r.end_at
		ORDER BY r.start_at, r.id, rt.table_id
	`, sectorID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReservations(rows)
}

// Save upserts the reservation, its table assignments, and a
// reservation.created outbox record in one serializable transaction.
func (s *Reservations) Save(ctx context.Context, r domain.Reservation) error {
	return s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservations (
				id, restaurant_id, sector_id, party_size, start_at, end_at, status,
				customer_name, customer_phone, customer_email, customer_created_at, customer_updated_at,
				notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				status = excluded.status, notes = excluded.notes, updated_at = excluded.updated_at
		`, r.ID, r.RestaurantID, r.SectorID, r.PartySize, r.StartAt, r.EndAt, r.Status,
			r.Customer.Name, r.Customer.Phone, r.Customer.Email, r.Customer.CreatedAt, r.Customer.UpdatedAt,
			r.Notes, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, tableID := range r.TableIDs {
			tableID := tableID
			g.Go(func() error {
				_, err := tx.Exec(gctx, `
					INSERT INTO reservation_tables (reservation_id, table_id)
					VALUES ($1, $2)
					ON CONFLICT DO NOTHING
				`, r.ID, tableID)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		return s.insertEvent(ctx, tx, r, "reservation.created")
	})
}

// Delete removes the reservation and queues a reservation.cancelled event.
// Missing ids map to ErrNotFound.
func (s *Reservations) Delete(ctx context.Context, id uuid.UUID) error {
	reservation, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return errors.Wrapf(domain.ErrNotFound, "reservation %s", id)
		}
		return s.insertEvent(ctx, tx, *reservation, "reservation.cancelled")
	})
}

func (s *Reservations) insertEvent(ctx context.Context, tx pgx.Tx, r domain.Reservation, eventType string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"reservation_id": r.ID,
		"restaurant_id":  r.RestaurantID,
		"sector_id":      r.SectorID,
		"table_ids":      r.TableIDs,
		"party_size":     r.PartySize,
		"start":          r.StartAt.UTC().Format(time.RFC3339),
		"end":            r.EndAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return s.repo.InsertOutbox(ctx, tx, OutboxRecord{
		ID:            uuid.New(),
		AggregateType: "reservation",
		AggregateID:   r.ID,
		EventType:     eventType,
		Payload:       payload,
		DedupeKey:     eventType + ":" + r.ID.String(),
	})
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	var current *domain.Reservation

	for rows.Next() {
		var r domain.Reservation
		var tableID string
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.SectorID, &r.PartySize, &r.StartAt, &r.EndAt, &r.Status,
			&r.Customer.Name, &r.Customer.Phone, &r.Customer.Email, &r.Customer.CreatedAt, &r.Customer.UpdatedAt,
			&r.Notes, &r.CreatedAt, &r.UpdatedAt, &tableID); err != nil {
			return nil, err
		}
		if current == nil || current.ID != r.ID {
			if current != nil {
				reservations = append(reservations, *current)
			}
			r.TableIDs = []string{tableID}
			current = &r
			continue
		}
		current.TableIDs = append(current.TableIDs, tableID)
	}
	if current != nil {
		reservations = append(reservations, *current)
	}
	return reservations, rows.Err()
}
