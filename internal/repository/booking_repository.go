package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/studyhall/seatadmin/internal/model"
)

// BookingRepo provides CRUD operations for booking records.  It is the
// persistence collaborator behind the conflict guard: the guard calls
// CreateBooking only from its commit path, and the unique key on
// (seat_id, booking_date, start_min) lets the database reject duplicates
// independently of the in-memory check.  All timestamps are stored in
// UTC; times of day are stored as minutes since midnight.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const mysqlErrDuplicateEntry = 1062

// CreateBooking inserts a new booking row.  A duplicate-key rejection
// from the database is translated to ErrConflict so the caller can treat
// it as a booking conflict regardless of which side detected it first.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
	           (id, student_id, seat_id, booking_date, start_min, end_min, shift, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.StudentID, b.SeatID, b.Date, int(b.Start), int(b.End),
		string(b.Shift), string(b.Status), b.CreatedAt.UTC(),
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return err
	}
	return nil
}

// UpdateBookingStatus moves a booking to a new lifecycle status.  It
// returns ErrBookingNotFound when no row with the given ID exists.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id string, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	return nil
}

// ListActive returns every booking still in the active status, ordered
// by seat, date and start time.  It is used at startup to warm the
// in-memory registry so the guard resumes with the same view of the
// world the database has.
func (r *BookingRepo) ListActive(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT id, student_id, seat_id, booking_date, start_min, end_min, shift, status, created_at
	           FROM bookings
	           WHERE status = ?
	           ORDER BY seat_id, booking_date, start_min`
	rows, err := r.db.QueryContext(ctx, q, string(model.BookingActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		var start, end int
		var shift, status string
		if err := rows.Scan(&b.ID, &b.StudentID, &b.SeatID, &b.Date, &start, &end, &shift, &status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Start = model.ClockTime(start)
		b.End = model.ClockTime(end)
		b.Shift = model.ShiftID(shift)
		b.Status = model.BookingStatus(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBySeat returns all bookings for one seat regardless of status,
// newest first.  Used by the dashboard to show a seat's history.
func (r *BookingRepo) ListBySeat(ctx context.Context, seatID string) ([]model.Booking, error) {
	const q = `SELECT id, student_id, seat_id, booking_date, start_min, end_min, shift, status, created_at
	           FROM bookings
	           WHERE seat_id = ?
	           ORDER BY booking_date DESC, start_min DESC`
	rows, err := r.db.QueryContext(ctx, q, seatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		var start, end int
		var shift, status string
		if err := rows.Scan(&b.ID, &b.StudentID, &b.SeatID, &b.Date, &start, &end, &shift, &status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Start = model.ClockTime(start)
		b.End = model.ClockTime(end)
		b.Shift = model.ShiftID(shift)
		b.Status = model.BookingStatus(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
