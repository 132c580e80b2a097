package core

import "time"

// Order status values for enrollments.
const (
	OrderStatusSuccess = "SUCCESS"
	OrderStatusFailed  = "FAILED"
)

// Course is the slice of the catalog the trust core needs: enough to check
// that the course exists and resolve its payment methods. Content modeling
// lives elsewhere.
type Course struct {
	ID    string
	Title string
}

// PaymentMethod is a way to pay for a specific course, registered with the
// on-chain address that must receive the funds.
type PaymentMethod struct {
	ID              int64
	CourseID        string
	ReceiverAddress string
	Currency        string
}

// Enrollment asserts that a user purchased access to a course, gated on a
// confirmed on-chain payment. At most one enrollment may exist per
// (user, course) pair.
type Enrollment struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	CourseID        string    `json:"courseId"`
	PaymentMethodID int64     `json:"coursePaymentMethodId"`
	OrderID         string    `json:"orderId"`
	Price           float64   `json:"price"`
	Status          string    `json:"status"`
	Completed       bool      `json:"completed"`
	EnrolledAt      time.Time `json:"enrolledAt"`
}
