package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaincampus/warden/core"
)

// EnrollmentRepository persists purchase records. The (user_id, course_id)
// unique index closes the race between the service-level existence check and
// the insert.
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new enrollment repository.
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`,
		userID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrollment existence: %w", err)
	}
	return exists, nil
}

// Create inserts the enrollment. Two concurrent inserts for the same
// (user, course) pair race on the unique index; the loser gets
// core.ErrDuplicateEnrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment core.Enrollment) (core.Enrollment, error) {
	query := `
        INSERT INTO enrollments (user_id, course_id, course_payment_method_id, order_id, price, status, completed, enrolled_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.PaymentMethodID,
		enrollment.OrderID,
		enrollment.Price,
		enrollment.Status,
		enrollment.Completed,
		enrollment.EnrolledAt,
	).Scan(&enrollment.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.Enrollment{}, core.ErrDuplicateEnrollment
	}
	if err != nil {
		return core.Enrollment{}, fmt.Errorf("insert enrollment: %w", err)
	}
	return enrollment, nil
}
