package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaincampus/warden/adapters/store"
	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/ports"
)

// fakeIndexer serves canned transactions.
type fakeIndexer struct {
	txs map[string]ports.TxUTXOs
	err error
}

func (f *fakeIndexer) TransactionUTXOs(ctx context.Context, txHash string) (ports.TxUTXOs, error) {
	if f.err != nil {
		return ports.TxUTXOs{}, f.err
	}
	tx, ok := f.txs[txHash]
	if !ok {
		return ports.TxUTXOs{}, errors.New("transaction not found")
	}
	return tx, nil
}

func singlePaymentTx(receiver, quantity string) ports.TxUTXOs {
	return ports.TxUTXOs{
		Hash:    "tx1",
		Inputs:  []ports.TxIO{{Address: "addr_s", Amount: []ports.TxAmount{{Unit: "lovelace", Quantity: "9000000"}}}},
		Outputs: []ports.TxIO{{Address: receiver, Amount: []ports.TxAmount{{Unit: "lovelace", Quantity: quantity}}}},
	}
}

type enrollmentFixture struct {
	svc         *EnrollmentService
	identities  *store.MemoryIdentityRepository
	catalog     *store.MemoryCatalogRepository
	enrollments *store.MemoryEnrollmentRepository
	indexer     *fakeIndexer
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	identities := store.NewMemoryIdentityRepository()
	catalog := store.NewMemoryCatalogRepository()
	enrollments := store.NewMemoryEnrollmentRepository()
	indexer := &fakeIndexer{txs: map[string]ports.TxUTXOs{}}

	_, err := identities.Create(context.Background(), core.Identity{
		ID:            "user-1",
		Username:      "addr_s",
		WalletAddress: "addr_s",
		LoginMethod:   core.LoginMethodWallet,
		Role:          core.RoleUser,
	})
	require.NoError(t, err)
	catalog.AddCourse(core.Course{ID: "course-1", Title: "Plutus from scratch"})
	catalog.AddPaymentMethod(core.PaymentMethod{ID: 7, CourseID: "course-1", ReceiverAddress: "addr_r", Currency: "ADA"})

	return &enrollmentFixture{
		svc:         NewEnrollmentService(identities, catalog, enrollments, indexer, nil, "lovelace"),
		identities:  identities,
		catalog:     catalog,
		enrollments: enrollments,
		indexer:     indexer,
	}
}

func TestVerifyPayment(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.txs["tx1"] = singlePaymentTx("addr_r", "5000000")
	ctx := context.Background()

	assert.True(t, f.svc.VerifyPayment(ctx, "addr_r", "addr_s", 5, "tx1"))
	assert.False(t, f.svc.VerifyPayment(ctx, "addr_r", "addr_s", 6, "tx1"))
	assert.False(t, f.svc.VerifyPayment(ctx, "addr_other", "addr_s", 5, "tx1"))
	assert.False(t, f.svc.VerifyPayment(ctx, "addr_r", "addr_s", 5, "unknown-tx"))
}

func TestVerifyPaymentTrimsReceiver(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.txs["tx1"] = singlePaymentTx("  addr_r ", "5000000")

	assert.True(t, f.svc.VerifyPayment(context.Background(), " addr_r", "addr_s", 5, "tx1"))
}

func TestVerifyPaymentSumsOutputs(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.txs["tx1"] = ports.TxUTXOs{
		Hash:   "tx1",
		Inputs: []ports.TxIO{{Address: "addr_s"}},
		Outputs: []ports.TxIO{
			{Address: "addr_r", Amount: []ports.TxAmount{{Unit: "lovelace", Quantity: "3000000"}}},
			{Address: "addr_change", Amount: []ports.TxAmount{{Unit: "lovelace", Quantity: "941000000"}}},
			{Address: "addr_r", Amount: []ports.TxAmount{
				{Unit: "lovelace", Quantity: "2000000"},
				{Unit: "asset1token", Quantity: "99"},
			}},
		},
	}

	// 3 + 2 display units across two outputs; the native-asset quantity and
	// the change output do not count.
	assert.True(t, f.svc.VerifyPayment(context.Background(), "addr_r", "addr_s", 5, "tx1"))
	assert.False(t, f.svc.VerifyPayment(context.Background(), "addr_r", "addr_s", 5.000001, "tx1"))
}

func TestVerifyPaymentRejectsNonPositiveAmounts(t *testing.T) {
	f := newEnrollmentFixture(t)
	// tx1 pays a third party only; addr_r receives nothing.
	f.indexer.txs["tx1"] = singlePaymentTx("addr_other", "5000000")
	ctx := context.Background()

	assert.False(t, f.svc.VerifyPayment(ctx, "addr_r", "addr_s", 0, "tx1"))
	assert.False(t, f.svc.VerifyPayment(ctx, "addr_r", "addr_s", -5, "tx1"))

	_, err := f.svc.EnrollAfterPayment(ctx, "user-1", "course-1", 7, 0, "tx1")
	assert.ErrorIs(t, err, core.ErrPaymentNotValid)

	exists, err := f.enrollments.Exists(ctx, "user-1", "course-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestVerifyPaymentFailsClosedOnIndexerError(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.err = errors.New("indexer timeout")

	assert.False(t, f.svc.VerifyPayment(context.Background(), "addr_r", "addr_s", 5, "tx1"))
}

func TestEnrollAfterPayment(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.txs["tx1"] = singlePaymentTx("addr_r", "5000000")
	ctx := context.Background()

	enrollment, err := f.svc.EnrollAfterPayment(ctx, "user-1", "course-1", 7, 5, "tx1")
	require.NoError(t, err)
	assert.Equal(t, core.OrderStatusSuccess, enrollment.Status)
	assert.NotEmpty(t, enrollment.OrderID)
	assert.False(t, enrollment.EnrolledAt.IsZero())

	// Second purchase for the same pair is rejected.
	_, err = f.svc.EnrollAfterPayment(ctx, "user-1", "course-1", 7, 5, "tx1")
	assert.ErrorIs(t, err, core.ErrDuplicateEnrollment)
}

func TestEnrollAfterPaymentPreconditions(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.txs["tx1"] = singlePaymentTx("addr_r", "5000000")
	f.indexer.txs["tx-short"] = singlePaymentTx("addr_r", "4000000")
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		courseID string
		methodID int64
		txHash   string
		want     error
	}{
		{"unknown user", "ghost", "course-1", 7, "tx1", core.ErrUserNotFound},
		{"unknown course", "user-1", "ghost", 7, "tx1", core.ErrCourseNotFound},
		{"unknown method", "user-1", "course-1", 99, "tx1", core.ErrPaymentMethodNotFound},
		{"short payment", "user-1", "course-1", 7, "tx-short", core.ErrPaymentNotValid},
		{"unknown tx", "user-1", "course-1", 7, "no-such-tx", core.ErrPaymentNotValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.EnrollAfterPayment(ctx, tt.userID, tt.courseID, tt.methodID, 5, tt.txHash)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnrollAfterPaymentConcurrentDuplicate(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.indexer.txs["tx1"] = singlePaymentTx("addr_r", "5000000")
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.EnrollAfterPayment(ctx, "user-1", "course-1", 7, 5, "tx1")
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, core.ErrDuplicateEnrollment):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)
}
