package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/climaxott/ledger/internal/models"
	"github.com/climaxott/ledger/pkg/config"
	"github.com/climaxott/ledger/pkg/tool"
	"github.com/climaxott/ledger/pkg/types"
)

type fixture struct {
	mgr       Manager
	db        *gorm.DB
	userID    string
	contentID string
}

func setupFixture(t *testing.T, autoApprove bool) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Content{}, &models.Payment{}))

	user := &models.User{
		ID:           tool.GenerateUUIDV7(),
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: "x",
		Role:         types.RoleUser,
	}
	content := &models.Content{
		ID:           tool.GenerateUUIDV7(),
		Title:        "Premiere Night",
		Type:         types.ContentTypeMovie,
		PremiumPrice: 9900,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(content).Error)

	cfg := &config.Config{}
	cfg.Payments.AutoApprove = autoApprove
	return &fixture{
		mgr:       NewService(cfg, zap.NewNop().Sugar(), db),
		db:        db,
		userID:    user.ID,
		contentID: content.ID,
	}
}

func (f *fixture) submitReq(transactionID string) *SubmitRequest {
	return &SubmitRequest{
		UserID:        f.userID,
		ContentID:     f.contentID,
		Amount:        9900,
		TransactionID: transactionID,
	}
}

func TestSubmit_AutoApprove(t *testing.T) {
	f := setupFixture(t, true)

	res, err := f.mgr.Submit(context.Background(), f.submitReq("TXN1"))
	require.NoError(t, err)
	require.True(t, res.Created)
	require.False(t, res.AlreadyPaid)
	require.True(t, res.Paid())
	require.Equal(t, types.PaymentStatusApproved, res.Payment.Status)
	require.Equal(t, types.PaymentTypePremiumContent, res.Payment.PaymentType)
	require.Equal(t, types.PaymentGatewayUPI, res.Payment.Gateway)
}

func TestSubmit_DuplicateTupleReturnsExistingRow(t *testing.T) {
	f := setupFixture(t, true)

	first, err := f.mgr.Submit(context.Background(), f.submitReq("TXN1"))
	require.NoError(t, err)

	second, err := f.mgr.Submit(context.Background(), f.submitReq("TXN1"))
	require.NoError(t, err)
	require.False(t, second.Created)
	require.True(t, second.AlreadyPaid)
	require.Equal(t, first.Payment.ID, second.Payment.ID)

	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestSubmit_PendingTupleIsNotAlreadyPaid(t *testing.T) {
	f := setupFixture(t, false)

	_, err := f.mgr.Submit(context.Background(), f.submitReq("TXN1"))
	require.NoError(t, err)

	res, err := f.mgr.Submit(context.Background(), f.submitReq("TXN2"))
	require.NoError(t, err)
	require.False(t, res.Created)
	require.False(t, res.AlreadyPaid)
	require.False(t, res.Paid())
}

func TestSubmit_TransactionIDReuseConflicts(t *testing.T) {
	f := setupFixture(t, true)

	_, err := f.mgr.Submit(context.Background(), f.submitReq("TXN1"))
	require.NoError(t, err)

	req := f.submitReq("TXN1")
	req.PaymentType = types.PaymentTypeFestParticipation
	_, err = f.mgr.Submit(context.Background(), req)
	require.ErrorIs(t, err, ErrTransactionIDReused)
}

func TestSubmit_Validation(t *testing.T) {
	f := setupFixture(t, true)
	ctx := context.Background()

	cases := map[string]*SubmitRequest{
		"missing transaction id": {UserID: f.userID, ContentID: f.contentID, Amount: 100},
		"missing user":           {ContentID: f.contentID, Amount: 100, TransactionID: "T"},
		"malformed user id":      {UserID: "abc", ContentID: f.contentID, Amount: 100, TransactionID: "T"},
		"non-positive amount":    {UserID: f.userID, ContentID: f.contentID, Amount: 0, TransactionID: "T"},
		"unknown gateway": {UserID: f.userID, ContentID: f.contentID, Amount: 100,
			TransactionID: "T", Gateway: types.PaymentGateway("cash")},
		"unknown payment type": {UserID: f.userID, ContentID: f.contentID, Amount: 100,
			TransactionID: "T", PaymentType: types.PaymentType("rental")},
	}
	for name, req := range cases {
		_, err := f.mgr.Submit(ctx, req)
		require.ErrorIs(t, err, ErrValidation, name)
	}
}

func TestSubmit_UnknownReferences(t *testing.T) {
	f := setupFixture(t, true)
	ctx := context.Background()

	req := f.submitReq("TXN1")
	req.UserID = tool.GenerateUUIDV7()
	_, err := f.mgr.Submit(ctx, req)
	require.ErrorIs(t, err, ErrUserNotFound)

	req = f.submitReq("TXN1")
	req.ContentID = tool.GenerateUUIDV7()
	_, err = f.mgr.Submit(ctx, req)
	require.ErrorIs(t, err, ErrContentNotFound)
}

func TestCheck_ApprovedOnly(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	paid, _, err := f.mgr.Check(ctx, f.userID, f.contentID, types.PaymentTypePremiumContent)
	require.NoError(t, err)
	require.False(t, paid)

	res, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)

	paid, _, err = f.mgr.Check(ctx, f.userID, f.contentID, types.PaymentTypePremiumContent)
	require.NoError(t, err)
	require.False(t, paid, "pending payment must not grant access")

	_, err = f.mgr.Approve(ctx, res.Payment.ID)
	require.NoError(t, err)

	paid, payment, err := f.mgr.Check(ctx, f.userID, f.contentID, "")
	require.NoError(t, err)
	require.True(t, paid)
	require.Equal(t, res.Payment.ID, payment.ID)
}

func TestCheckAny_ReturnsAnyStatus(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	p, err := f.mgr.CheckAny(ctx, f.userID, f.contentID, "")
	require.NoError(t, err)
	require.Nil(t, p)

	res, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)

	p, err = f.mgr.CheckAny(ctx, f.userID, f.contentID, "")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, res.Payment.ID, p.ID)
	require.Equal(t, types.PaymentStatusPending, p.Status)
}

func TestTransitions(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	res, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)
	id := res.Payment.ID

	p, err := f.mgr.Approve(ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusApproved, p.Status)

	// Re-approving is a no-op success.
	p, err = f.mgr.Approve(ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusApproved, p.Status)

	// Admin may flip a settled record.
	p, err = f.mgr.Decline(ctx, id)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusDeclined, p.Status)

	_, err = f.mgr.Approve(ctx, tool.GenerateUUIDV7())
	require.ErrorIs(t, err, ErrPaymentNotFound)
	_, err = f.mgr.Decline(ctx, tool.GenerateUUIDV7())
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestDelete(t *testing.T) {
	f := setupFixture(t, true)
	ctx := context.Background()

	res, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)

	require.NoError(t, f.mgr.Delete(ctx, res.Payment.ID))
	require.ErrorIs(t, f.mgr.Delete(ctx, res.Payment.ID), ErrPaymentNotFound)
}

func TestApplyGatewayStatus_Idempotent(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	_, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)

	p, err := f.mgr.ApplyGatewayStatus(ctx, "TXN1", types.GatewayEventCompleted)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusApproved, p.Status)

	// Redelivery of the same event settles nothing new.
	p, err = f.mgr.ApplyGatewayStatus(ctx, "TXN1", types.GatewayEventCompleted)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusApproved, p.Status)

	// A conflicting terminal report keeps the settled state.
	p, err = f.mgr.ApplyGatewayStatus(ctx, "TXN1", types.GatewayEventFailed)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusApproved, p.Status)

	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestApplyGatewayStatus_FailedDeclines(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	_, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)

	p, err := f.mgr.ApplyGatewayStatus(ctx, "TXN1", types.GatewayEventExpired)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusDeclined, p.Status)

	_, err = f.mgr.ApplyGatewayStatus(ctx, "NOPE", types.GatewayEventCompleted)
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCreatePending_KeepsPaymentURL(t *testing.T) {
	f := setupFixture(t, true)

	res, err := f.mgr.CreatePending(context.Background(), f.submitReq("TXN1"), "https://pay.example/abc")
	require.NoError(t, err)
	require.True(t, res.Created)
	// Gateway-created records stay pending even under auto-approve.
	require.Equal(t, types.PaymentStatusPending, res.Payment.Status)
	require.Equal(t, "https://pay.example/abc", res.Payment.PaymentURL)
}

func TestListEnriched(t *testing.T) {
	f := setupFixture(t, true)
	ctx := context.Background()

	_, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)

	// A payment whose references were deleted afterwards still lists.
	orphan := &models.Payment{
		ID:            tool.GenerateUUIDV7(),
		UserID:        tool.GenerateUUIDV7(),
		ContentID:     tool.GenerateUUIDV7(),
		Amount:        500,
		TransactionID: "TXN-ORPHAN",
		PaymentType:   types.PaymentTypePremiumContent,
		Gateway:       types.PaymentGatewayOther,
		Status:        types.PaymentStatusPending,
	}
	require.NoError(t, f.db.Create(orphan).Error)

	items, err := f.mgr.ListEnriched(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byTxn := map[string]*EnrichedPayment{}
	for _, it := range items {
		byTxn[it.TransactionID] = it
	}
	require.Equal(t, "Asha", byTxn["TXN1"].UserName)
	require.Equal(t, "Premiere Night", byTxn["TXN1"].ContentTitle)
	require.Equal(t, "Unknown", byTxn["TXN-ORPHAN"].UserName)
	require.Equal(t, "Untitled", byTxn["TXN-ORPHAN"].ContentTitle)
}

func TestScan_FiltersAndPagination(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	res, err := f.mgr.Submit(ctx, f.submitReq("TXN1"))
	require.NoError(t, err)
	_, err = f.mgr.Approve(ctx, res.Payment.ID)
	require.NoError(t, err)

	req := f.submitReq("TXN2")
	req.PaymentType = types.PaymentTypeFestParticipation
	_, err = f.mgr.Submit(ctx, req)
	require.NoError(t, err)

	out, err := f.mgr.Scan(ctx, &ScanRequest{
		Filters: []*types.CommonFilter{{
			Field:    "status",
			Operator: types.CommonFilterOperatorEq,
			Values:   []any{string(types.PaymentStatusApproved)},
		}},
		Size: 10,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, out.Total)
	require.Len(t, out.Items, 1)
	require.Equal(t, "TXN1", out.Items[0].TransactionID)

	out, err = f.mgr.Scan(ctx, &ScanRequest{Size: 1, SortBy: "transaction_id", SortOrder: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 2, out.Total)
	require.Len(t, out.Items, 1)
	require.Equal(t, "TXN1", out.Items[0].TransactionID)

	out, err = f.mgr.Scan(ctx, &ScanRequest{From: 1, Size: 1, SortBy: "transaction_id", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	require.Equal(t, "TXN2", out.Items[0].TransactionID)
}
