package ports

import (
	"context"

	"github.com/chaincampus/warden/core"
)

// IdentityRepository is the identity persistence contract. Lookups return
// core.ErrUserNotFound when no row matches; Create returns
// core.ErrUserExisted on a uniqueness conflict.
type IdentityRepository interface {
	FindByID(ctx context.Context, id string) (core.Identity, error)
	FindByUsername(ctx context.Context, username string) (core.Identity, error)
	FindByEmail(ctx context.Context, email string) (core.Identity, error)
	FindByWalletAddress(ctx context.Context, address string) (core.Identity, error)
	Create(ctx context.Context, identity core.Identity) (core.Identity, error)
	Update(ctx context.Context, identity core.Identity) (core.Identity, error)
	List(ctx context.Context) ([]core.Identity, error)
	Delete(ctx context.Context, id string) error
}

// CatalogRepository resolves courses and their registered payment methods.
// The trust core only reads from the catalog.
type CatalogRepository interface {
	FindCourse(ctx context.Context, id string) (core.Course, error)
	FindPaymentMethod(ctx context.Context, id int64) (core.PaymentMethod, error)
}

// EnrollmentRepository persists purchase records. Create must enforce the
// one-enrollment-per-(user, course) invariant atomically and return
// core.ErrDuplicateEnrollment when it would be violated.
type EnrollmentRepository interface {
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	Create(ctx context.Context, enrollment core.Enrollment) (core.Enrollment, error)
}
