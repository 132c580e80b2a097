package store

import (
	"context"
	"sync"
	"time"

	"github.com/chaincampus/warden/core"
)

// MemoryIdentityRepository is an in-memory identity repository for tests and
// Redis/Postgres-less development runs. Uniqueness of username, email and
// wallet address is enforced under one lock, matching the database's unique
// indexes.
type MemoryIdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]core.Identity
}

// NewMemoryIdentityRepository creates a new in-memory identity repository.
func NewMemoryIdentityRepository() *MemoryIdentityRepository {
	return &MemoryIdentityRepository{identities: make(map[string]core.Identity)}
}

func (r *MemoryIdentityRepository) FindByID(ctx context.Context, id string) (core.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[id]
	if !ok {
		return core.Identity{}, core.ErrUserNotFound
	}
	return identity, nil
}

func (r *MemoryIdentityRepository) findBy(match func(core.Identity) bool) (core.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, identity := range r.identities {
		if match(identity) {
			return identity, nil
		}
	}
	return core.Identity{}, core.ErrUserNotFound
}

func (r *MemoryIdentityRepository) FindByUsername(ctx context.Context, username string) (core.Identity, error) {
	return r.findBy(func(i core.Identity) bool { return i.Username == username })
}

func (r *MemoryIdentityRepository) FindByEmail(ctx context.Context, email string) (core.Identity, error) {
	return r.findBy(func(i core.Identity) bool { return i.Email != "" && i.Email == email })
}

func (r *MemoryIdentityRepository) FindByWalletAddress(ctx context.Context, address string) (core.Identity, error) {
	return r.findBy(func(i core.Identity) bool { return i.WalletAddress != "" && i.WalletAddress == address })
}

func (r *MemoryIdentityRepository) Create(ctx context.Context, identity core.Identity) (core.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.identities {
		if existing.Username == identity.Username ||
			(identity.Email != "" && existing.Email == identity.Email) ||
			(identity.WalletAddress != "" && existing.WalletAddress == identity.WalletAddress) {
			return core.Identity{}, core.ErrUserExisted
		}
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}
	r.identities[identity.ID] = identity
	return identity, nil
}

func (r *MemoryIdentityRepository) Update(ctx context.Context, identity core.Identity) (core.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.identities[identity.ID]; !ok {
		return core.Identity{}, core.ErrUserNotFound
	}
	r.identities[identity.ID] = identity
	return identity, nil
}

func (r *MemoryIdentityRepository) List(ctx context.Context) ([]core.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identities := make([]core.Identity, 0, len(r.identities))
	for _, identity := range r.identities {
		identities = append(identities, identity)
	}
	return identities, nil
}

func (r *MemoryIdentityRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.identities[id]; !ok {
		return core.ErrUserNotFound
	}
	delete(r.identities, id)
	return nil
}

// MemoryCatalogRepository serves a fixed set of courses and payment methods.
type MemoryCatalogRepository struct {
	mu      sync.RWMutex
	courses map[string]core.Course
	methods map[int64]core.PaymentMethod
}

// NewMemoryCatalogRepository creates a new in-memory catalog repository.
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		courses: make(map[string]core.Course),
		methods: make(map[int64]core.PaymentMethod),
	}
}

// AddCourse registers a course.
func (r *MemoryCatalogRepository) AddCourse(course core.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = course
}

// AddPaymentMethod registers a payment method.
func (r *MemoryCatalogRepository) AddPaymentMethod(method core.PaymentMethod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[method.ID] = method
}

func (r *MemoryCatalogRepository) FindCourse(ctx context.Context, id string) (core.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	course, ok := r.courses[id]
	if !ok {
		return core.Course{}, core.ErrCourseNotFound
	}
	return course, nil
}

func (r *MemoryCatalogRepository) FindPaymentMethod(ctx context.Context, id int64) (core.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	method, ok := r.methods[id]
	if !ok {
		return core.PaymentMethod{}, core.ErrPaymentMethodNotFound
	}
	return method, nil
}

// MemoryEnrollmentRepository enforces the one-enrollment-per-(user, course)
// invariant under a single lock, the in-memory stand-in for the unique
// index.
type MemoryEnrollmentRepository struct {
	mu          sync.Mutex
	nextID      int64
	enrollments map[[2]string]core.Enrollment
}

// NewMemoryEnrollmentRepository creates a new in-memory enrollment repository.
func NewMemoryEnrollmentRepository() *MemoryEnrollmentRepository {
	return &MemoryEnrollmentRepository{enrollments: make(map[[2]string]core.Enrollment)}
}

func (r *MemoryEnrollmentRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.enrollments[[2]string{userID, courseID}]
	return ok, nil
}

func (r *MemoryEnrollmentRepository) Create(ctx context.Context, enrollment core.Enrollment) (core.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]string{enrollment.UserID, enrollment.CourseID}
	if _, ok := r.enrollments[key]; ok {
		return core.Enrollment{}, core.ErrDuplicateEnrollment
	}
	r.nextID++
	enrollment.ID = r.nextID
	r.enrollments[key] = enrollment
	return enrollment, nil
}
