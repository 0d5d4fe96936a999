package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"echopub/internal/core/domain"
	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

// SettlementUseCase implements port.SettlementUseCase.
type SettlementUseCase struct {
	campaigns    port.CampaignRepository
	users        port.UserRepository
	transactions port.TransactionRepository
	lifecycle    port.CampaignUseCase
	gateway      port.PaymentGateway
	activity     port.ActivityLogger
	clock        port.Clock
	sleeper      port.Sleeper
	retry        RetryPolicy
	currency     string
	logger       *slog.Logger
}

type SettlementDeps struct {
	Repos     port.Repositories
	Lifecycle port.CampaignUseCase
	Gateway   port.PaymentGateway
	Activity  port.ActivityLogger
	Clock     port.Clock
	Sleeper   port.Sleeper
	Retry     RetryPolicy
	Currency  string
	Logger    *slog.Logger
}

func NewSettlementUseCase(d SettlementDeps) *SettlementUseCase {
	if d.Currency == "" {
		d.Currency = "XAF"
	}
	return &SettlementUseCase{
		campaigns:    d.Repos.Campaigns,
		users:        d.Repos.Users,
		transactions: d.Repos.Transactions,
		lifecycle:    d.Lifecycle,
		gateway:      d.Gateway,
		activity:     d.Activity,
		clock:        d.Clock,
		sleeper:      d.Sleeper,
		retry:        d.Retry,
		currency:     d.Currency,
		logger:       d.Logger,
	}
}

func validPayee(method domain.PaymentMethod, phone string) error {
	if !method.Valid() {
		return fmt.Errorf("%w: unsupported payment method %q", port.ErrInvalidInput, method)
	}
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("%w: phone is required", port.ErrInvalidInput)
	}
	return nil
}

// InitiateDeposit funds a campaign with its budget and waits for the
// gateway verdict. Everything after the transaction row exists runs on a
// context detached from the caller, so a disconnecting client cannot leave
// the row pending.
func (u *SettlementUseCase) InitiateDeposit(ctx context.Context, p domain.Principal, req port.DepositRequest) (*port.SettlementResult, error) {
	if p.Role != domain.RoleAdvertiser && p.Role != domain.RoleAdmin {
		return nil, port.ErrForbidden
	}
	if err := validPayee(req.Method, req.Phone); err != nil {
		return nil, err
	}
	c, err := u.campaigns.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	if p.Role == domain.RoleAdvertiser && c.AdvertiserID != p.ID {
		return nil, port.ErrForbidden
	}
	if !c.Budget.IsPositive() || !c.Budget.IsInteger() {
		return nil, fmt.Errorf("%w: campaign budget is not a payable amount", port.ErrInvalidInput)
	}
	existing, err := u.transactions.FindActiveDeposit(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, port.ErrDuplicateTransaction
	}

	now := u.clock.Now()
	ref := newReference(depositPrefix, now)
	tx := &domain.Transaction{
		ID:                uuid.NewString(),
		Reference:         ref,
		ExternalReference: ref,
		UserID:            c.AdvertiserID,
		Type:              domain.TransactionDeposit,
		Amount:            c.Budget,
		Currency:          u.currency,
		Status:            domain.TransactionPending,
		Method:            req.Method,
		Phone:             req.Phone,
		CampaignID:        c.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	// the storage constraint closes the race between the check above and
	// this insert
	if err = u.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	metrics.Transactions.WithLabelValues(string(tx.Type), string(tx.Status)).Inc()

	bg := context.WithoutCancel(ctx)
	resp, err := u.gateway.Collect(bg, port.CollectRequest{
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		Phone:             tx.Phone,
		Description:       "Campaign funding: " + c.Title,
		ExternalReference: tx.ExternalReference,
	})
	if err != nil {
		_ = u.fail(bg, tx, err.Error(), false)
		return nil, fmt.Errorf("%w: collect: %v", port.ErrGateway, err)
	}
	tx.GatewayReference = resp.Reference
	tx.USSDCode = resp.USSDCode
	tx.Operator = resp.Operator
	if err = u.transactions.SetGatewayReference(bg, tx.ID, resp.Reference, resp.USSDCode, resp.Operator); err != nil {
		// the webhook can still match on the external reference
		u.logger.Error("store gateway reference failed",
			slog.String("reference", tx.Reference),
			slog.Any("error", err))
	}
	u.logger.Info("deposit initiated",
		slog.String("reference", tx.Reference),
		slog.String("gateway_reference", resp.Reference),
		slog.String("campaign_id", c.ID))

	st, outcome := u.pollStatus(bg, resp.Reference)
	switch outcome {
	case pollSucceeded:
		_ = u.confirm(bg, tx)
	case pollFailed:
		_ = u.fail(bg, tx, failureReason(st), false)
	default:
		_ = u.fail(bg, tx, "payment confirmation timed out", true)
	}
	// a webhook may have settled the row while polling
	if stored, err := u.transactions.GetTransactionByReference(bg, tx.Reference); err == nil {
		tx = stored
	}
	result := &port.SettlementResult{Transaction: tx}
	if tx.TimedOut {
		result.Instructions = instructions(tx)
	}
	return result, nil
}

// InitiateWithdrawal asks the gateway for a payout and debits the balance
// only once the gateway acknowledged it.
func (u *SettlementUseCase) InitiateWithdrawal(ctx context.Context, p domain.Principal, req port.WithdrawalRequest) (*port.SettlementResult, error) {
	if p.Role != domain.RoleAmbassador {
		return nil, port.ErrForbidden
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", port.ErrInvalidInput)
	}
	// the gateway settles whole currency units only
	if !req.Amount.IsInteger() {
		return nil, fmt.Errorf("%w: amount must be a whole amount", port.ErrInvalidInput)
	}
	if err := validPayee(req.Method, req.Phone); err != nil {
		return nil, err
	}
	user, err := u.users.GetUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(user.Balance) {
		return nil, port.ErrInsufficientBalance
	}
	pending, err := u.transactions.FindPendingWithdrawal(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, port.ErrDuplicateTransaction
	}

	now := u.clock.Now()
	ref := newReference(withdrawalPrefix, now)
	tx := &domain.Transaction{
		ID:                uuid.NewString(),
		Reference:         ref,
		ExternalReference: ref,
		UserID:            p.ID,
		Type:              domain.TransactionWithdrawal,
		Amount:            req.Amount,
		Currency:          u.currency,
		Status:            domain.TransactionPending,
		Method:            req.Method,
		Phone:             req.Phone,
		AmbassadorID:      p.ID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err = u.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	metrics.Transactions.WithLabelValues(string(tx.Type), string(tx.Status)).Inc()

	bg := context.WithoutCancel(ctx)
	resp, err := u.gateway.Withdraw(bg, port.WithdrawRequest{
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		Phone:             tx.Phone,
		Description:       "Ambassador withdrawal",
		ExternalReference: tx.ExternalReference,
	})
	if err != nil {
		_ = u.fail(bg, tx, err.Error(), false)
		return nil, fmt.Errorf("%w: withdraw: %v", port.ErrGateway, err)
	}
	balance, err := u.transactions.AcceptWithdrawal(bg, tx.ID, resp.Reference)
	if err != nil {
		u.logger.Error("withdrawal accepted by gateway but not debited",
			slog.String("reference", tx.Reference),
			slog.String("gateway_reference", resp.Reference),
			slog.Any("error", err))
		_ = u.fail(bg, tx, "debit failed: "+err.Error(), false)
		return nil, err
	}
	// a webhook may have settled the row before the acknowledgement
	if stored, err := u.transactions.GetTransactionByReference(bg, tx.Reference); err == nil {
		tx = stored
	} else {
		tx.GatewayReference = resp.Reference
	}
	u.logger.Info("withdrawal initiated",
		slog.String("reference", tx.Reference),
		slog.String("gateway_reference", resp.Reference),
		slog.String("amount", tx.Amount.String()),
		slog.String("balance", balance.String()))
	u.activity.Log(ctx, domain.Activity{
		Type:          domain.ActivityWithdrawalRequested,
		Title:         "Withdrawal requested",
		UserID:        p.ID,
		TransactionID: tx.ID,
		Metadata:      map[string]any{"amount": tx.Amount.String(), "method": string(tx.Method)},
	})
	return &port.SettlementResult{Transaction: tx}, nil
}

// HandleWebhook applies a gateway notification. Replays of an already
// applied status change nothing.
func (u *SettlementUseCase) HandleWebhook(ctx context.Context, ev port.WebhookEvent) (*domain.Transaction, error) {
	if ev.ExternalReference == "" && ev.GatewayReference == "" {
		return nil, fmt.Errorf("%w: webhook without reference", port.ErrInvalidInput)
	}
	tx, err := u.lookup(ctx, ev.ExternalReference, ev.GatewayReference)
	if err != nil {
		return nil, err
	}
	if tx.Type == domain.TransactionDeposit && tx.GatewayReference == "" && ev.GatewayReference != "" {
		if err = u.transactions.SetGatewayReference(ctx, tx.ID, ev.GatewayReference, tx.USSDCode, ev.Operator); err != nil {
			return nil, err
		}
		tx.GatewayReference = ev.GatewayReference
	}
	u.logger.Info("webhook received",
		slog.String("reference", tx.Reference),
		slog.String("status", string(ev.Status)))
	return u.apply(ctx, tx, port.StatusResponse{
		Reference:         ev.GatewayReference,
		ExternalReference: ev.ExternalReference,
		Status:            ev.Status,
		Reason:            ev.Reason,
		Operator:          ev.Operator,
	})
}

func (u *SettlementUseCase) lookup(ctx context.Context, refs ...string) (*domain.Transaction, error) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		tx, err := u.transactions.GetTransactionByReference(ctx, ref)
		if err == nil {
			return tx, nil
		}
		if !errors.Is(err, port.ErrTransactionNotFound) {
			return nil, err
		}
	}
	return nil, port.ErrTransactionNotFound
}

// CheckStatus re-polls the gateway once for an unsettled transaction. Only
// the owner of the transaction or an admin may look it up.
func (u *SettlementUseCase) CheckStatus(ctx context.Context, p domain.Principal, ref string) (*port.SettlementResult, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", port.ErrInvalidInput)
	}
	tx, err := u.transactions.GetTransactionByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if tx.UserID != p.ID && p.Role != domain.RoleAdmin && p.Role != domain.RoleSystem {
		return nil, port.ErrForbidden
	}
	settled := tx.Status == domain.TransactionConfirmed ||
		(tx.Status == domain.TransactionFailed && !tx.TimedOut)
	if settled || tx.GatewayReference == "" {
		return &port.SettlementResult{Transaction: tx, Instructions: instructions(tx)}, nil
	}
	st, err := u.gateway.Status(ctx, tx.GatewayReference)
	if err != nil {
		return nil, fmt.Errorf("%w: status: %v", port.ErrGateway, err)
	}
	tx, err = u.apply(ctx, tx, st)
	if err != nil {
		return nil, err
	}
	return &port.SettlementResult{Transaction: tx, Instructions: instructions(tx)}, nil
}

// apply maps the gateway vocabulary onto the transaction and returns the
// stored state afterwards.
func (u *SettlementUseCase) apply(ctx context.Context, tx *domain.Transaction, st port.StatusResponse) (*domain.Transaction, error) {
	switch st.Status {
	case port.GatewaySuccessful:
		if err := u.confirm(ctx, tx); err != nil {
			return nil, err
		}
	case port.GatewayFailed:
		if err := u.fail(ctx, tx, failureReason(st), false); err != nil {
			return nil, err
		}
	case port.GatewayPending:
	default:
		u.logger.Warn("unknown gateway status",
			slog.String("reference", tx.Reference),
			slog.String("status", string(st.Status)))
	}
	return u.transactions.GetTransactionByReference(ctx, tx.Reference)
}

// confirm settles the transaction as confirmed. Side effects run only for
// the call that actually changed the row.
func (u *SettlementUseCase) confirm(ctx context.Context, tx *domain.Transaction) error {
	changed, err := u.transactions.ConfirmTransaction(ctx, tx.ID)
	if err != nil {
		u.logger.Error("confirm transaction failed",
			slog.String("reference", tx.Reference),
			slog.Any("error", err))
		return err
	}
	if !changed {
		return nil
	}
	tx.Status = domain.TransactionConfirmed
	tx.TimedOut = false
	tx.ErrorMessage = ""
	metrics.Transactions.WithLabelValues(string(tx.Type), string(tx.Status)).Inc()
	u.logger.Info("transaction confirmed",
		slog.String("reference", tx.Reference),
		slog.String("type", string(tx.Type)))

	if tx.Type != domain.TransactionDeposit {
		return nil
	}
	u.advanceCampaign(ctx, tx.CampaignID)
	u.activity.Log(ctx, domain.Activity{
		Type:          domain.ActivityPaymentReceived,
		Title:         "Payment received",
		UserID:        tx.UserID,
		CampaignID:    tx.CampaignID,
		TransactionID: tx.ID,
		Metadata:      map[string]any{"amount": tx.Amount.String(), "reference": tx.Reference},
	})
	return nil
}

// advanceCampaign submits a funded draft campaign. The deposit stays
// confirmed whatever happens here.
func (u *SettlementUseCase) advanceCampaign(ctx context.Context, campaignID string) {
	c, err := u.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		u.logger.Error("load funded campaign failed",
			slog.String("campaign_id", campaignID),
			slog.Any("error", err))
		return
	}
	if c.Status != domain.CampaignDraft {
		return
	}
	_, err = u.lifecycle.ChangeStatus(ctx, domain.SystemPrincipal, campaignID, domain.CampaignSubmitted)
	if err != nil && !errors.Is(err, port.ErrInvalidTransition) {
		u.logger.Error("submit funded campaign failed",
			slog.String("campaign_id", campaignID),
			slog.Any("error", err))
	}
}

func (u *SettlementUseCase) fail(ctx context.Context, tx *domain.Transaction, reason string, timedOut bool) error {
	changed, err := u.transactions.FailTransaction(ctx, tx.ID, reason, timedOut)
	if err != nil {
		u.logger.Error("fail transaction failed",
			slog.String("reference", tx.Reference),
			slog.Any("error", err))
		return err
	}
	if !changed {
		return nil
	}
	tx.Status = domain.TransactionFailed
	tx.ErrorMessage = reason
	tx.TimedOut = timedOut
	metrics.Transactions.WithLabelValues(string(tx.Type), string(tx.Status)).Inc()
	u.logger.Warn("transaction failed",
		slog.String("reference", tx.Reference),
		slog.String("type", string(tx.Type)),
		slog.String("reason", reason),
		slog.Bool("timed_out", timedOut))
	return nil
}

func failureReason(st port.StatusResponse) string {
	if st.Reason != "" {
		return st.Reason
	}
	return "payment failed"
}

func instructions(tx *domain.Transaction) *port.GatewayInstructions {
	if tx.Status == domain.TransactionConfirmed || (tx.USSDCode == "" && tx.Operator == "") {
		return nil
	}
	return &port.GatewayInstructions{USSDCode: tx.USSDCode, Operator: tx.Operator}
}

func (u *SettlementUseCase) GetBalance(ctx context.Context, p domain.Principal) (decimal.Decimal, error) {
	user, err := u.users.GetUser(ctx, p.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

func (u *SettlementUseCase) ListTransactions(ctx context.Context, p domain.Principal) ([]domain.Transaction, error) {
	return u.transactions.ListUserTransactions(ctx, p.ID)
}
