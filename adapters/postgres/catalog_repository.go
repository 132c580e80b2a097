package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaincampus/warden/core"
)

// CatalogRepository reads courses and their payment methods. The trust core
// never writes to the catalog.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) FindCourse(ctx context.Context, id string) (core.Course, error) {
	var course core.Course
	err := r.db.QueryRow(ctx, `SELECT id, title FROM courses WHERE id = $1`, id).
		Scan(&course.ID, &course.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Course{}, core.ErrCourseNotFound
	}
	if err != nil {
		return core.Course{}, fmt.Errorf("query course: %w", err)
	}
	return course, nil
}

func (r *CatalogRepository) FindPaymentMethod(ctx context.Context, id int64) (core.PaymentMethod, error) {
	var method core.PaymentMethod
	err := r.db.QueryRow(ctx,
		`SELECT id, course_id, receiver_address, currency FROM course_payment_methods WHERE id = $1`, id).
		Scan(&method.ID, &method.CourseID, &method.ReceiverAddress, &method.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.PaymentMethod{}, core.ErrPaymentMethodNotFound
	}
	if err != nil {
		return core.PaymentMethod{}, fmt.Errorf("query payment method: %w", err)
	}
	return method, nil
}
