package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reitclub/arena-booking-backend/booking"
	"github.com/reitclub/arena-booking-backend/message"
	"github.com/reitclub/arena-booking-backend/profile"
)

// Postgres is the remote tier of the persistence gateway.
type Postgres struct{ conn *pgx.Conn }

func NewPostgres(conn *pgx.Conn) *Postgres {
	return &Postgres{conn: conn}
}

const bookingColumns = `id, owner_id, owner_name, arena, date, start_time, end_time, status,
	COALESCE(purpose, ''), rake_required, shared_riding, current_riders, max_riders, booking_type,
	is_subscription, COALESCE(subscription_end_date, ''), COALESCE(parent_subscription_id, ''),
	is_deleted, deleted_at, created_at, updated_at`

type scannable interface {
	Scan(dest ...any) error
}

func scanBooking(row scannable) (booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.OwnerName,
		&b.Arena,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.Purpose,
		&b.RakeRequired,
		&b.SharedRiding,
		&b.CurrentRiders,
		&b.MaxRiders,
		&b.BookingType,
		&b.IsSubscription,
		&b.SubscriptionEndDate,
		&b.ParentSubscriptionID,
		&b.IsDeleted,
		&b.DeletedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (p *Postgres) CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	b = withBookingDefaults(b, time.Now())

	sql := `
		INSERT INTO riding_club.bookings(
			id, owner_id, owner_name, arena, date, start_time, end_time, status,
			purpose, rake_required, shared_riding, current_riders, max_riders, booking_type,
			is_subscription, subscription_end_date, parent_subscription_id,
			is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, false, $18, $19);
	`

	_, err := p.conn.Exec(ctx, sql,
		b.ID,
		b.OwnerID,
		b.OwnerName,
		b.Arena,
		b.Date,
		b.StartTime,
		b.EndTime,
		b.Status,
		b.Purpose,
		b.RakeRequired,
		b.SharedRiding,
		b.CurrentRiders,
		b.MaxRiders,
		b.BookingType,
		b.IsSubscription,
		nullIfEmpty(b.SubscriptionEndDate),
		nullIfEmpty(b.ParentSubscriptionID),
		b.CreatedAt,
		b.UpdatedAt,
	)

	if err != nil {
		return booking.Booking{}, fmt.Errorf("failed to insert booking: %w", err)
	}

	return b, nil
}

func (p *Postgres) GetBooking(ctx context.Context, id string) (booking.Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM riding_club.bookings WHERE id=$1;`

	b, err := scanBooking(p.conn.QueryRow(ctx, sql, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Booking{}, booking.ErrBookingNotFound
	}

	if err != nil {
		return booking.Booking{}, fmt.Errorf("failed to fetch booking with id %v: %w", id, err)
	}

	return b, nil
}

func (p *Postgres) ListBookings(ctx context.Context, filter booking.ListFilter) ([]booking.Booking, error) {
	sql := `
		SELECT ` + bookingColumns + `
		FROM riding_club.bookings
		WHERE ($1 = '' OR owner_id = $1)
		  AND ($2 OR NOT is_deleted)
		ORDER BY created_at DESC, id DESC;
	`

	rows, err := p.conn.Query(ctx, sql, filter.OwnerID, filter.IncludeDeleted)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	defer rows.Close()

	var bookings []booking.Booking

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings rows: %w", err)
	}

	return bookings, nil
}

func (p *Postgres) UpdateBookingStatus(ctx context.Context, id string, status booking.Status, sharedRiding *bool) error {
	var tag interface{ RowsAffected() int64 }
	var err error

	if sharedRiding == nil {
		sql := `UPDATE riding_club.bookings SET status=$1, updated_at=now() WHERE id=$2;`
		tag, err = p.conn.Exec(ctx, sql, status, id)
	} else {
		sql := `
			UPDATE riding_club.bookings
			SET status=$1, shared_riding=$2, max_riders=$3, updated_at=now()
			WHERE id=$4;
		`
		tag, err = p.conn.Exec(ctx, sql, status, *sharedRiding, booking.MaxRidersFor(*sharedRiding), id)
	}

	if err != nil {
		return fmt.Errorf("failed to update booking '%v' status: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}

func (p *Postgres) SoftDeleteBooking(ctx context.Context, id string) error {
	sql := `
		UPDATE riding_club.bookings
		SET is_deleted=true, deleted_at=now(), updated_at=now()
		WHERE id=$1;
	`

	tag, err := p.conn.Exec(ctx, sql, id)

	if err != nil {
		return fmt.Errorf("failed to delete booking '%v': %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}

func (p *Postgres) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	m = withMessageDefaults(m, time.Now())

	sql := `
		INSERT INTO riding_club.admin_messages(
			id, title, content, priority, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err := p.conn.Exec(ctx, sql,
		m.ID,
		m.Title,
		m.Content,
		m.Priority,
		m.IsActive,
		m.CreatedBy,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		return message.Message{}, fmt.Errorf("failed to insert admin message: %w", err)
	}

	return m, nil
}

func (p *Postgres) ListMessages(ctx context.Context, activeOnly bool) ([]message.Message, error) {
	sql := `
		SELECT id, title, content, priority, is_active, COALESCE(created_by, ''), created_at, updated_at
		FROM riding_club.admin_messages
		WHERE (NOT $1 OR is_active)
		ORDER BY
			CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
			created_at DESC,
			id DESC;
	`

	rows, err := p.conn.Query(ctx, sql, activeOnly)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin messages: %w", err)
	}

	defer rows.Close()

	var messages []message.Message

	for rows.Next() {
		var m message.Message
		err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.Content,
			&m.Priority,
			&m.IsActive,
			&m.CreatedBy,
			&m.CreatedAt,
			&m.UpdatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("error scanning admin message row: %w", err)
		}

		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin message rows: %w", err)
	}

	return messages, nil
}

func (p *Postgres) SetMessageActive(ctx context.Context, id string, active bool) error {
	sql := `UPDATE riding_club.admin_messages SET is_active=$1, updated_at=now() WHERE id=$2;`

	tag, err := p.conn.Exec(ctx, sql, active, id)

	if err != nil {
		return fmt.Errorf("failed to update admin message '%v': %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return message.ErrMessageNotFound
	}

	return nil
}

func (p *Postgres) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	sql := `
		SELECT id, user_id, COALESCE(display_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
			COALESCE(emergency_contact, ''), COALESCE(emergency_phone, ''), COALESCE(horse_name, ''),
			COALESCE(membership_type, ''), created_at, updated_at
		FROM riding_club.user_profiles
		WHERE user_id=$1;
	`

	var pr profile.Profile
	err := p.conn.QueryRow(ctx, sql, userID).Scan(
		&pr.ID,
		&pr.UserID,
		&pr.DisplayName,
		&pr.Email,
		&pr.Phone,
		&pr.EmergencyContact,
		&pr.EmergencyPhone,
		&pr.HorseName,
		&pr.MembershipType,
		&pr.CreatedAt,
		&pr.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return profile.Profile{}, profile.ErrProfileNotFound
	}

	if err != nil {
		return profile.Profile{}, fmt.Errorf("failed to fetch profile for user '%v': %w", userID, err)
	}

	return pr, nil
}

func (p *Postgres) UpsertProfile(ctx context.Context, userID string, partial profile.Profile) (profile.Profile, error) {
	existing, err := p.GetProfile(ctx, userID)

	if errors.Is(err, profile.ErrProfileNotFound) {
		created := newProfile(userID, partial, time.Now())

		sql := `
			INSERT INTO riding_club.user_profiles(
				id, user_id, display_name, email, phone, emergency_contact, emergency_phone,
				horse_name, membership_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
		`

		_, err := p.conn.Exec(ctx, sql,
			created.ID,
			created.UserID,
			created.DisplayName,
			created.Email,
			created.Phone,
			created.EmergencyContact,
			created.EmergencyPhone,
			created.HorseName,
			created.MembershipType,
			created.CreatedAt,
			created.UpdatedAt,
		)

		if err != nil {
			return profile.Profile{}, fmt.Errorf("failed to insert profile for user '%v': %w", userID, err)
		}

		return created, nil
	}

	if err != nil {
		return profile.Profile{}, err
	}

	merged := profile.Merge(existing, partial)
	merged.UpdatedAt = time.Now()

	sql := `
		UPDATE riding_club.user_profiles
		SET display_name=$1, email=$2, phone=$3, emergency_contact=$4, emergency_phone=$5,
			horse_name=$6, membership_type=$7, updated_at=$8
		WHERE user_id=$9;
	`

	_, err = p.conn.Exec(ctx, sql,
		merged.DisplayName,
		merged.Email,
		merged.Phone,
		merged.EmergencyContact,
		merged.EmergencyPhone,
		merged.HorseName,
		merged.MembershipType,
		merged.UpdatedAt,
		userID,
	)

	if err != nil {
		return profile.Profile{}, fmt.Errorf("failed to update profile for user '%v': %w", userID, err)
	}

	return merged, nil
}
