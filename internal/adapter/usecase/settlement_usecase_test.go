package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
)

func (f *fixture) draftCampaign(id string, budget int64) domain.Campaign {
	c := f.activeCampaign(id, budget, "Douala")
	c.Status = domain.CampaignDraft
	f.store.PutCampaign(c)
	return c
}

func (f *fixture) campaignStatus(t *testing.T, id string) domain.CampaignStatus {
	t.Helper()
	c, err := f.store.GetCampaign(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}

func depositReq(campaignID string) port.DepositRequest {
	return port.DepositRequest{CampaignID: campaignID, Method: domain.MethodMTN, Phone: "237670000000"}
}

var collected = port.CollectResponse{Reference: "gw-dep-1", USSDCode: "*126#", Operator: "MTN"}

func TestDepositConfirmedByPoll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	f.gateway.EXPECT().Collect(mock.Anything, mock.MatchedBy(func(r port.CollectRequest) bool {
		return r.Amount.Equal(decimal.NewFromInt(10000)) && r.Phone == "237670000000" && r.ExternalReference != ""
	})).Return(collected, nil).Once()
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewayPending}, nil).Times(2)
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewaySuccessful, Operator: "MTN"}, nil).Once()

	res, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, res.Transaction.Status)
	assert.Equal(t, "gw-dep-1", res.Transaction.GatewayReference)
	assert.Nil(t, res.Instructions)
	assert.Equal(t, 3, f.sleeper.Calls())
	assert.Equal(t, domain.CampaignSubmitted, f.campaignStatus(t, "c1"))
}

func TestDepositTimeoutThenWebhook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	f.gateway.EXPECT().Collect(mock.Anything, mock.Anything).Return(collected, nil).Once()
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewayPending}, nil)

	res, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionFailed, res.Transaction.Status)
	assert.True(t, res.Transaction.TimedOut)
	require.NotNil(t, res.Instructions)
	assert.Equal(t, "*126#", res.Instructions.USSDCode)
	assert.Equal(t, "MTN", res.Instructions.Operator)
	assert.Equal(t, DefaultRetryPolicy().Attempts(), f.sleeper.Calls())
	assert.Equal(t, domain.CampaignDraft, f.campaignStatus(t, "c1"))

	ev := port.WebhookEvent{
		ExternalReference: res.Transaction.ExternalReference,
		GatewayReference:  "gw-dep-1",
		Status:            port.GatewaySuccessful,
	}
	tx, err := f.settlement.HandleWebhook(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, tx.Status)
	assert.Equal(t, domain.CampaignSubmitted, f.campaignStatus(t, "c1"))

	_, err = f.campaigns.ChangeStatus(ctx, adminPrincipal, "c1", domain.CampaignActive)
	require.NoError(t, err)

	// replay changes nothing
	tx, err = f.settlement.HandleWebhook(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, tx.Status)
	assert.Equal(t, domain.CampaignActive, f.campaignStatus(t, "c1"))
}

func TestWebhookReplayAdvancesCampaignOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	require.NoError(t, f.store.CreateTransaction(ctx, &domain.Transaction{
		ID: "tx-1", Reference: "TXECHO-1", ExternalReference: "TXECHO-1", GatewayReference: "gw-9",
		UserID: advertiserPrincipal.ID, Type: domain.TransactionDeposit, Amount: decimal.NewFromInt(10000),
		Status: domain.TransactionPending, CampaignID: "c1",
	}))

	ev := port.WebhookEvent{ExternalReference: "TXECHO-1", Status: port.GatewaySuccessful}
	for i := 0; i < 3; i++ {
		tx, err := f.settlement.HandleWebhook(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionConfirmed, tx.Status)
	}
	assert.Equal(t, domain.CampaignSubmitted, f.campaignStatus(t, "c1"))
	assert.Equal(t, 1, f.activities(domain.ActivityCampaignSubmitted))
	assert.Equal(t, 1, f.activities(domain.ActivityPaymentReceived))
}

func (f *fixture) deposits(t *testing.T, campaignID string, status domain.TransactionStatus) int {
	t.Helper()
	txs, err := f.store.ListUserTransactions(context.Background(), advertiserPrincipal.ID)
	require.NoError(t, err)
	n := 0
	for _, tx := range txs {
		if tx.Type == domain.TransactionDeposit && tx.CampaignID == campaignID && tx.Status == status {
			n++
		}
	}
	return n
}

func TestTimedOutDepositKeepsFundingSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	f.gateway.EXPECT().Collect(mock.Anything, mock.Anything).Return(collected, nil).Once()
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewayPending}, nil)

	res, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.NoError(t, err)
	require.True(t, res.Transaction.TimedOut)

	active, err := f.store.FindActiveDeposit(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, res.Transaction.ID, active.ID)

	// the payer may still complete the first payment on the handset
	_, err = f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.ErrorIs(t, err, port.ErrDuplicateTransaction)

	f.clock.Advance(time.Hour)
	tx, err := f.settlement.HandleWebhook(ctx, port.WebhookEvent{
		ExternalReference: res.Transaction.ExternalReference,
		GatewayReference:  "gw-dep-1",
		Status:            port.GatewaySuccessful,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, tx.Status)
	assert.Equal(t, f.clock.Now(), tx.UpdatedAt)
	assert.Equal(t, 1, f.deposits(t, "c1", domain.TransactionConfirmed))
	assert.Equal(t, 0, f.deposits(t, "c1", domain.TransactionFailed))
	assert.Equal(t, 1, f.activities(domain.ActivityPaymentReceived))
}

func TestTimedOutDepositReleasedByGatewayFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	f.gateway.EXPECT().Collect(mock.Anything, mock.Anything).Return(collected, nil).Once()
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewayPending}, nil).Times(DefaultRetryPolicy().Attempts())
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewayFailed, Reason: "cancelled by payer"}, nil).Once()

	res, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.NoError(t, err)
	require.True(t, res.Transaction.TimedOut)

	f.clock.Advance(time.Minute)
	st, err := f.settlement.CheckStatus(ctx, advertiserPrincipal, res.Transaction.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionFailed, st.Transaction.Status)
	assert.False(t, st.Transaction.TimedOut)
	assert.Equal(t, "cancelled by payer", st.Transaction.ErrorMessage)
	assert.Equal(t, f.clock.Now(), st.Transaction.UpdatedAt)

	active, err := f.store.FindActiveDeposit(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, active)

	// a definitive failure is final
	tx, err := f.settlement.HandleWebhook(ctx, port.WebhookEvent{
		ExternalReference: res.Transaction.ExternalReference,
		Status:            port.GatewaySuccessful,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionFailed, tx.Status)
	assert.Equal(t, domain.CampaignDraft, f.campaignStatus(t, "c1"))
}

func TestDepositFailedByGateway(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	f.gateway.EXPECT().Collect(mock.Anything, mock.Anything).Return(collected, nil).Once()
	f.gateway.EXPECT().Status(mock.Anything, "gw-dep-1").
		Return(port.StatusResponse{Status: port.GatewayFailed, Reason: "insufficient funds"}, nil).Once()

	res, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionFailed, res.Transaction.Status)
	assert.Equal(t, "insufficient funds", res.Transaction.ErrorMessage)
	assert.False(t, res.Transaction.TimedOut)
	assert.Equal(t, domain.CampaignDraft, f.campaignStatus(t, "c1"))

	// a failed deposit does not block a retry
	active, err := f.store.FindActiveDeposit(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestDepositCollectErrorMarksFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)

	f.gateway.EXPECT().Collect(mock.Anything, mock.Anything).
		Return(port.CollectResponse{}, errors.New("connection reset by peer")).Once()

	_, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.ErrorIs(t, err, port.ErrGateway)

	txs, err := f.settlement.ListTransactions(ctx, advertiserPrincipal)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionFailed, txs[0].Status)
	assert.Contains(t, txs[0].ErrorMessage, "connection reset")
	assert.Zero(t, f.sleeper.Calls())
}

func TestDuplicateDepositRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)
	require.NoError(t, f.store.CreateTransaction(ctx, &domain.Transaction{
		ID: "tx-1", Reference: "TXECHO-1", UserID: advertiserPrincipal.ID,
		Type: domain.TransactionDeposit, Amount: decimal.NewFromInt(10000),
		Status: domain.TransactionPending, CampaignID: "c1",
	}))

	_, err := f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("c1"))
	require.ErrorIs(t, err, port.ErrDuplicateTransaction)

	txs, err := f.settlement.ListTransactions(ctx, advertiserPrincipal)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestDepositGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)
	stranger := domain.Principal{ID: "adv-2", Role: domain.RoleAdvertiser}

	_, err := f.settlement.InitiateDeposit(ctx, stranger, depositReq("c1"))
	require.ErrorIs(t, err, port.ErrForbidden)

	req := depositReq("c1")
	req.Method = "cm.unknown"
	_, err = f.settlement.InitiateDeposit(ctx, advertiserPrincipal, req)
	require.ErrorIs(t, err, port.ErrInvalidInput)

	_, err = f.settlement.InitiateDeposit(ctx, advertiserPrincipal, depositReq("missing"))
	require.ErrorIs(t, err, port.ErrCampaignNotFound)
}

func (f *fixture) fundedAmbassador(id string, balance int64) domain.Principal {
	p := f.ambassador(id, "Douala", 50)
	u, _ := f.store.GetUser(context.Background(), id)
	u.Balance = decimal.NewFromInt(balance)
	f.store.PutUser(*u)
	return p
}

func withdrawal(amount int64) port.WithdrawalRequest {
	return port.WithdrawalRequest{Amount: decimal.NewFromInt(amount), Method: domain.MethodOrange, Phone: "237690000000"}
}

func TestWithdrawalOverBalanceRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 500)

	_, err := f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(600))
	require.ErrorIs(t, err, port.ErrInsufficientBalance)

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)))
	txs, err := f.settlement.ListTransactions(ctx, amb)
	require.NoError(t, err)
	assert.Empty(t, txs)

	_, err = f.settlement.InitiateWithdrawal(ctx, advertiserPrincipal, withdrawal(10))
	require.ErrorIs(t, err, port.ErrForbidden)
}

func TestWithdrawalDebitsAfterAcceptanceAndRefundsOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 1000)

	f.gateway.EXPECT().Withdraw(mock.Anything, mock.MatchedBy(func(r port.WithdrawRequest) bool {
		return r.Amount.Equal(decimal.NewFromInt(400)) && r.Phone == "237690000000"
	})).Return(port.WithdrawResponse{Reference: "gw-wd-1"}, nil).Once()

	res, err := f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(400))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, res.Transaction.Status)
	assert.Equal(t, "gw-wd-1", res.Transaction.GatewayReference)

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(600)), "balance %s", balance)

	_, err = f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(100))
	require.ErrorIs(t, err, port.ErrDuplicateTransaction)

	ev := port.WebhookEvent{GatewayReference: "gw-wd-1", Status: port.GatewayFailed, Reason: "payee unreachable"}
	for i := 0; i < 2; i++ {
		tx, err := f.settlement.HandleWebhook(ctx, ev)
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionFailed, tx.Status)
	}
	balance, err = f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "refunded exactly once, balance %s", balance)
}

func TestWithdrawalConfirmedKeepsDebit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 1000)
	f.gateway.EXPECT().Withdraw(mock.Anything, mock.Anything).
		Return(port.WithdrawResponse{Reference: "gw-wd-1"}, nil).Once()

	res, err := f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(1000))
	require.NoError(t, err)

	tx, err := f.settlement.HandleWebhook(ctx, port.WebhookEvent{
		ExternalReference: res.Transaction.ExternalReference,
		Status:            port.GatewaySuccessful,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, tx.Status)

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestWithdrawalConfirmedBeforeAcknowledgement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 1000)

	f.gateway.EXPECT().Withdraw(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, req port.WithdrawRequest) (port.WithdrawResponse, error) {
			tx, err := f.settlement.HandleWebhook(ctx, port.WebhookEvent{
				ExternalReference: req.ExternalReference,
				Status:            port.GatewaySuccessful,
			})
			require.NoError(t, err)
			assert.Equal(t, domain.TransactionConfirmed, tx.Status)
			return port.WithdrawResponse{Reference: "gw-wd-1"}, nil
		}).Once()

	res, err := f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(400))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, res.Transaction.Status)
	assert.Equal(t, "gw-wd-1", res.Transaction.GatewayReference)

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(600)), "debited exactly once, balance %s", balance)

	// a late failure cannot refund a confirmed payout
	tx, err := f.settlement.HandleWebhook(ctx, port.WebhookEvent{GatewayReference: "gw-wd-1", Status: port.GatewayFailed})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, tx.Status)
	balance, err = f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(600)), "balance %s", balance)
}

func TestWithdrawalFailedBeforeAcknowledgement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 1000)

	f.gateway.EXPECT().Withdraw(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, req port.WithdrawRequest) (port.WithdrawResponse, error) {
			_, err := f.settlement.HandleWebhook(ctx, port.WebhookEvent{
				ExternalReference: req.ExternalReference,
				Status:            port.GatewayFailed,
				Reason:            "payee unreachable",
			})
			require.NoError(t, err)
			return port.WithdrawResponse{Reference: "gw-wd-1"}, nil
		}).Once()

	res, err := f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(400))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionFailed, res.Transaction.Status)
	assert.False(t, res.Transaction.Debited())

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "balance %s", balance)
}

func TestFractionalWithdrawalRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 1000)

	_, err := f.settlement.InitiateWithdrawal(ctx, amb, port.WithdrawalRequest{
		Amount: decimal.RequireFromString("400.5"), Method: domain.MethodOrange, Phone: "237690000000",
	})
	require.ErrorIs(t, err, port.ErrInvalidInput)

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)))
	txs, err := f.settlement.ListTransactions(ctx, amb)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestWithdrawalGatewayErrorDoesNotDebit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	amb := f.fundedAmbassador("amb-1", 1000)
	f.gateway.EXPECT().Withdraw(mock.Anything, mock.Anything).
		Return(port.WithdrawResponse{}, errors.New("gateway timeout")).Once()

	_, err := f.settlement.InitiateWithdrawal(ctx, amb, withdrawal(300))
	require.ErrorIs(t, err, port.ErrGateway)

	balance, err := f.settlement.GetBalance(ctx, amb)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)))

	txs, err := f.settlement.ListTransactions(ctx, amb)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionFailed, txs[0].Status)
	assert.False(t, txs[0].Debited())
}

func TestCheckStatusPromotesTimedOutDeposit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)
	require.NoError(t, f.store.CreateTransaction(ctx, &domain.Transaction{
		ID: "tx-1", Reference: "TXECHO-1", ExternalReference: "TXECHO-1", GatewayReference: "gw-7",
		UserID: advertiserPrincipal.ID, Type: domain.TransactionDeposit, Amount: decimal.NewFromInt(10000),
		Status: domain.TransactionPending, CampaignID: "c1", USSDCode: "#150#",
	}))
	_, err := f.store.FailTransaction(ctx, "tx-1", "payment confirmation timed out", true)
	require.NoError(t, err)

	f.gateway.EXPECT().Status(mock.Anything, "gw-7").
		Return(port.StatusResponse{Status: port.GatewayPending}, nil).Once()
	res, err := f.settlement.CheckStatus(ctx, advertiserPrincipal, "gw-7")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionFailed, res.Transaction.Status)
	require.NotNil(t, res.Instructions)
	assert.Equal(t, "#150#", res.Instructions.USSDCode)

	f.gateway.EXPECT().Status(mock.Anything, "gw-7").
		Return(port.StatusResponse{Status: port.GatewaySuccessful}, nil).Once()
	res, err = f.settlement.CheckStatus(ctx, advertiserPrincipal, "TXECHO-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, res.Transaction.Status)
	assert.Nil(t, res.Instructions)
	assert.Equal(t, domain.CampaignSubmitted, f.campaignStatus(t, "c1"))

	// settled rows are not re-polled
	res, err = f.settlement.CheckStatus(ctx, advertiserPrincipal, "TXECHO-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionConfirmed, res.Transaction.Status)
}

func TestCheckStatusRequiresOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.draftCampaign("c1", 10000)
	require.NoError(t, f.store.CreateTransaction(ctx, &domain.Transaction{
		ID: "tx-1", Reference: "TXECHO-1", ExternalReference: "TXECHO-1",
		UserID: advertiserPrincipal.ID, Type: domain.TransactionDeposit, Amount: decimal.NewFromInt(10000),
		Status: domain.TransactionPending, CampaignID: "c1",
	}))

	for _, p := range []domain.Principal{
		{ID: "adv-2", Role: domain.RoleAdvertiser},
		{ID: "amb-1", Role: domain.RoleAmbassador},
	} {
		_, err := f.settlement.CheckStatus(ctx, p, "TXECHO-1")
		require.ErrorIs(t, err, port.ErrForbidden, p.ID)
	}

	// no gateway reference yet, so nothing is polled
	for _, p := range []domain.Principal{advertiserPrincipal, adminPrincipal} {
		res, err := f.settlement.CheckStatus(ctx, p, "TXECHO-1")
		require.NoError(t, err, p.ID)
		assert.Equal(t, domain.TransactionPending, res.Transaction.Status)
	}
}

func TestUnknownReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.settlement.CheckStatus(ctx, advertiserPrincipal, "nope")
	require.ErrorIs(t, err, port.ErrTransactionNotFound)

	_, err = f.settlement.HandleWebhook(ctx, port.WebhookEvent{ExternalReference: "nope", Status: port.GatewaySuccessful})
	require.ErrorIs(t, err, port.ErrTransactionNotFound)

	_, err = f.settlement.HandleWebhook(ctx, port.WebhookEvent{Status: port.GatewaySuccessful})
	require.ErrorIs(t, err, port.ErrInvalidInput)
}

func TestRetryPolicyAttempts(t *testing.T) {
	assert.Equal(t, 7, DefaultRetryPolicy().Attempts())
	assert.Equal(t, 1, RetryPolicy{}.Attempts())
	assert.Equal(t, 1, RetryPolicy{Interval: 10, Budget: 5}.Attempts())
}
