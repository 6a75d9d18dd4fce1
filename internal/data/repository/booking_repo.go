package repository

import (
	"context"
	"errors"
	"fmt"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrStatusMismatch means the booking left the expected status before the update landed.
	ErrStatusMismatch = errors.New("booking status changed concurrently")
	// ErrDateOverlap means a confirmed booking on the same property covers the dates.
	ErrDateOverlap = errors.New("dates overlap a confirmed booking")
)

const pgExclusionViolation = "23P01"

type BookingRepository interface {
	// Create inserts a PENDING booking after checking, under a per-property
	// lock, that no confirmed booking overlaps it.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error)
	FindConfirmedByPropertyID(ctx context.Context, propertyID uuid.UUID, window entity.DateRange) ([]*entity.Booking, error)
	// UpdateStatus moves a booking from one status to another only if it is
	// still in the expected status. Confirming re-checks overlaps atomically.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (*entity.Booking, error)

	FindByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.BookingDetail, error)
	FindByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*entity.BookingDetail, error)
	FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*entity.BookingDetail, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.BookingDetail, error)
	CountAll(ctx context.Context) (int64, error)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type scanner interface {
	Scan(dest ...any) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `b.id, b.tenant_id, b.property_id, b.start_date, b.end_date, b.status, b.created_at, b.updated_at`

const bookingDetailQuery = `
	SELECT b.id, b.tenant_id, b.property_id, b.start_date, b.end_date, b.status, b.created_at, b.updated_at,
	       p.landlord_id, p.title, p.city, p.rent_per_month,
	       u.name, u.email,
	       pay.status, pay.amount, pay.currency
	FROM bookings b
	JOIN properties p ON p.id = b.property_id
	JOIN users u ON u.id = b.tenant_id
	LEFT JOIN payments pay ON pay.booking_id = b.id
`

func scanBooking(row scanner, booking *entity.Booking) error {
	err := row.Scan(
		&booking.ID,
		&booking.TenantID,
		&booking.PropertyID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return checkStatus(booking.Status)
}

// checkStatus rejects rows written with a status this service does not know.
func checkStatus(status entity.BookingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("unknown booking status %q", string(status))
	}
	return nil
}

func scanBookingDetail(row scanner) (*entity.BookingDetail, error) {
	var (
		detail          entity.BookingDetail
		paymentStatus   *string
		paymentAmount   decimal.NullDecimal
		paymentCurrency *string
	)

	err := row.Scan(
		&detail.ID,
		&detail.TenantID,
		&detail.PropertyID,
		&detail.StartDate,
		&detail.EndDate,
		&detail.Status,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.Property.LandlordID,
		&detail.Property.Title,
		&detail.Property.City,
		&detail.Property.RentPerMonth,
		&detail.Tenant.Name,
		&detail.Tenant.Email,
		&paymentStatus,
		&paymentAmount,
		&paymentCurrency,
	)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(detail.Status); err != nil {
		return nil, err
	}

	detail.Property.ID = detail.PropertyID
	detail.Tenant.ID = detail.TenantID
	if paymentStatus != nil {
		detail.Payment = &entity.PaymentSummary{
			Status: entity.PaymentStatus(*paymentStatus),
			Amount: paymentAmount.Decimal,
		}
		if paymentCurrency != nil {
			detail.Payment.Currency = *paymentCurrency
		}
	}

	return &detail, nil
}

// lockProperty serialises writers of one property until the transaction ends.
func lockProperty(ctx context.Context, q querier, propertyID uuid.UUID) error {
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, propertyID.String()); err != nil {
		return fmt.Errorf("lock property %s: %w", propertyID.String(), err)
	}
	return nil
}

// hasConfirmedOverlap uses inclusive bounds on both ends.
func hasConfirmedOverlap(ctx context.Context, q querier, propertyID uuid.UUID, r entity.DateRange, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE property_id = $1
			  AND status = 'CONFIRMED'
			  AND id <> $4
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, propertyID, r.Start, r.End, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap for property %s: %w", propertyID.String(), err)
	}
	return exists, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, tenant_id, property_id, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockProperty(ctx, tx, booking.PropertyID); err != nil {
			return err
		}

		overlap, err := hasConfirmedOverlap(ctx, tx, booking.PropertyID, booking.Range(), uuid.Nil)
		if err != nil {
			return err
		}
		if overlap {
			return ErrDateOverlap
		}

		_, err = tx.Exec(ctx, query,
			booking.ID,
			booking.TenantID,
			booking.PropertyID,
			booking.StartDate,
			booking.EndDate,
			booking.Status,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		return err
	})

	if errors.Is(err, ErrDateOverlap) {
		return err
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("property_id", booking.PropertyID.String()),
			zap.String("tenant_id", booking.TenantID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	var booking entity.Booking
	err := scanBooking(r.db.QueryRow(ctx, query, id), &booking)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindDetailByID(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	detail, err := scanBookingDetail(r.db.QueryRow(ctx, bookingDetailQuery+` WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking detail by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking detail by ID %s: %w", id.String(), err)
	}

	return detail, nil
}

func (r *bookingRepository) FindConfirmedByPropertyID(ctx context.Context, propertyID uuid.UUID, window entity.DateRange) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.property_id = $1
		  AND b.status = 'CONFIRMED'
		  AND b.start_date <= $3
		  AND b.end_date >= $2
		ORDER BY b.start_date
	`

	rows, err := r.db.Query(ctx, query, propertyID, window.Start, window.End)
	if err != nil {
		r.log.Error("Failed to find confirmed bookings by property ID",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
		)
		return nil, fmt.Errorf("find confirmed bookings by property ID %s: %w", propertyID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		if err := scanBooking(rows, &booking); err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (*entity.Booking, error) {
	// The NOT EXISTS guard only applies when the target is CONFIRMED.
	query := `
		UPDATE bookings b
		SET status = $3::text, updated_at = NOW()
		WHERE b.id = $1
		  AND b.status = $2::text
		  AND (
			$3::text <> 'CONFIRMED'
			OR NOT EXISTS (
				SELECT 1 FROM bookings o
				WHERE o.property_id = b.property_id
				  AND o.id <> b.id
				  AND o.status = 'CONFIRMED'
				  AND o.start_date <= b.end_date
				  AND o.end_date >= b.start_date
			)
		  )
		RETURNING ` + bookingColumns

	var updated entity.Booking
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			propertyID uuid.UUID
			current    entity.BookingStatus
		)
		err := tx.QueryRow(ctx, `SELECT property_id, status FROM bookings WHERE id = $1`, id).Scan(&propertyID, &current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if to == entity.BookingStatusConfirmed {
			if err := lockProperty(ctx, tx, propertyID); err != nil {
				return err
			}
		}

		err = scanBooking(tx.QueryRow(ctx, query, id, from, to), &updated)
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		// Nothing updated: find out which guard failed.
		if err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&current); err != nil {
			return err
		}
		if current != from {
			return ErrStatusMismatch
		}
		return ErrDateOverlap
	})

	switch {
	case err == nil:
		return &updated, nil
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrStatusMismatch), errors.Is(err, ErrDateOverlap):
		return nil, err
	case isExclusionViolation(err):
		return nil, ErrDateOverlap
	default:
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, fmt.Errorf("update booking %s status to %s: %w", id.String(), string(to), err)
	}
}

func (r *bookingRepository) FindByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*entity.BookingDetail, error) {
	return r.findDetails(ctx, "tenant", bookingDetailQuery+` WHERE b.tenant_id = $1 ORDER BY b.created_at DESC`, tenantID)
}

func (r *bookingRepository) FindByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*entity.BookingDetail, error) {
	return r.findDetails(ctx, "landlord", bookingDetailQuery+` WHERE p.landlord_id = $1 ORDER BY b.created_at DESC`, landlordID)
}

func (r *bookingRepository) FindByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*entity.BookingDetail, error) {
	return r.findDetails(ctx, "property", bookingDetailQuery+` WHERE b.property_id = $1 ORDER BY b.created_at DESC`, propertyID)
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.BookingDetail, error) {
	return r.findDetails(ctx, "all", bookingDetailQuery+` ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) findDetails(ctx context.Context, scope, query string, args ...any) ([]*entity.BookingDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings",
			zap.Error(err),
			zap.String("scope", scope),
			zap.Any("args", args),
		)
		return nil, fmt.Errorf("list %s bookings: %w", scope, err)
	}
	defer rows.Close()

	bookings := make([]*entity.BookingDetail, 0)
	for rows.Next() {
		detail, err := scanBookingDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, detail)
	}

	return bookings, rows.Err()
}
