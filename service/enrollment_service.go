package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/ports"
)

// baseUnitsPerCoin converts display units to the ledger's smallest unit.
var baseUnitsPerCoin = decimal.New(1, 6)

// EnrollmentService confirms on-chain payments against the ledger indexer
// and finalizes payment-gated enrollments.
type EnrollmentService struct {
	identities  ports.IdentityRepository
	catalog     ports.CatalogRepository
	enrollments ports.EnrollmentRepository
	indexer     ports.LedgerIndexer
	events      ports.EventPublisher
	baseUnit    string
}

// NewEnrollmentService creates a new enrollment service. baseUnit names the
// indexer's smallest currency unit, e.g. "lovelace".
func NewEnrollmentService(
	identities ports.IdentityRepository,
	catalog ports.CatalogRepository,
	enrollments ports.EnrollmentRepository,
	indexer ports.LedgerIndexer,
	events ports.EventPublisher,
	baseUnit string,
) *EnrollmentService {
	return &EnrollmentService{
		identities:  identities,
		catalog:     catalog,
		enrollments: enrollments,
		indexer:     indexer,
		events:      events,
		baseUnit:    baseUnit,
	}
}

// VerifyPayment checks that the transaction paid at least the expected
// amount to the expected receiver. The contract is a fail-closed boolean:
// an unknown transaction, an indexer failure, a genuinely short payment, and
// a non-positive expected amount all come back false. The sender reported by
// the indexer is informational and not compared against expectedSender.
func (s *EnrollmentService) VerifyPayment(ctx context.Context, expectedReceiver, expectedSender string, amount float64, txHash string) bool {
	// A zero or negative amount would make the receiver comparison vacuous:
	// paid starts at zero, so any indexed transaction would satisfy it.
	if amount <= 0 {
		return false
	}

	utxos, err := s.indexer.TransactionUTXOs(ctx, txHash)
	if err != nil {
		log.Printf("payment verification for tx %s failed closed: %v", txHash, err)
		return false
	}

	if len(utxos.Inputs) == 0 || len(utxos.Outputs) == 0 {
		return false
	}

	actualSender := utxos.Inputs[0].Address
	if expectedSender != "" && actualSender != expectedSender {
		log.Printf("tx %s sender %s differs from expected %s", txHash, actualSender, expectedSender)
	}

	expected := decimal.NewFromFloat(amount).Mul(baseUnitsPerCoin)
	receiver := strings.TrimSpace(expectedReceiver)

	paid := decimal.Zero
	for _, output := range utxos.Outputs {
		if strings.TrimSpace(output.Address) != receiver {
			continue
		}
		for _, amt := range output.Amount {
			if amt.Unit != s.baseUnit {
				continue
			}
			quantity, err := decimal.NewFromString(amt.Quantity)
			if err != nil {
				return false
			}
			paid = paid.Add(quantity)
		}
	}

	return paid.GreaterThanOrEqual(expected)
}

// EnrollAfterPayment creates a purchase record once the claimed transaction
// checks out. Preconditions run in a fixed order; the storage layer's
// uniqueness guarantee closes the race between the existence check and the
// insert.
func (s *EnrollmentService) EnrollAfterPayment(ctx context.Context, userID, courseID string, paymentMethodID int64, price float64, txHash string) (core.Enrollment, error) {
	user, err := s.identities.FindByID(ctx, userID)
	if err != nil {
		return core.Enrollment{}, err
	}

	course, err := s.catalog.FindCourse(ctx, courseID)
	if err != nil {
		return core.Enrollment{}, err
	}

	exists, err := s.enrollments.Exists(ctx, userID, courseID)
	if err != nil {
		return core.Enrollment{}, err
	}
	if exists {
		return core.Enrollment{}, core.ErrDuplicateEnrollment
	}

	method, err := s.catalog.FindPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		return core.Enrollment{}, err
	}

	if !s.VerifyPayment(ctx, method.ReceiverAddress, user.WalletAddress, price, txHash) {
		return core.Enrollment{}, core.ErrPaymentNotValid
	}

	enrollment, err := s.enrollments.Create(ctx, core.Enrollment{
		UserID:          user.ID,
		CourseID:        course.ID,
		PaymentMethodID: method.ID,
		OrderID:         uuid.New().String(),
		Price:           price,
		Status:          core.OrderStatusSuccess,
		EnrolledAt:      time.Now(),
	})
	if err != nil {
		return core.Enrollment{}, err
	}

	if s.events != nil {
		if err := s.events.PublishEnrollment(ctx, enrollment.UserID, enrollment.CourseID, enrollment.OrderID); err != nil {
			log.Printf("failed to publish enrollment event: %v", err)
		}
	}
	return enrollment, nil
}
