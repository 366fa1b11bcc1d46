package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/internal/services/validate"
	"github.com/vadiminshakov/walletctl/internal/storage/journal"
	"github.com/vadiminshakov/walletctl/internal/transport"
)

const (
	transferPath       = "/wallet/transfer"
	withdrawPath       = "/transactions/withdraw"
	depositAddressPath = "/wallet/deposit/address"
)

// Recorder appends submitted operations to the local audit trail.
type Recorder interface {
	Record(entry journal.Entry) error
}

// Service validates, dispatches and journals mutating wallet operations.
// Mutations are not deduplicated here; the presentation layer disables the
// triggering control while a request is outstanding.
type Service struct {
	dispatcher Dispatcher
	balances   *BalanceCache
	journal    Recorder
	logger     *zap.Logger
}

// NewService creates the wallet service. journal may be nil.
func NewService(dispatcher Dispatcher, balances *BalanceCache, journal Recorder, logger *zap.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		balances:   balances,
		journal:    journal,
		logger:     logger,
	}
}

// Balances exposes the cache for read/refresh.
func (s *Service) Balances() *BalanceCache {
	return s.balances
}

// Transfer validates against the current balance snapshot and dispatches an
// internal transfer. Validation failures never reach the network.
func (s *Service) Transfer(ctx context.Context, in validate.TransferInput) error {
	req, err := validate.Transfer(in, s.balances.Read())
	if err != nil {
		return err
	}

	if _, err := s.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         transferPath,
		Body:         req,
		RequiresAuth: true,
	}); err != nil {
		return err
	}

	s.record(journal.Entry{
		Kind:        journal.KindTransfer,
		Asset:       req.Asset,
		Amount:      req.Amount,
		Destination: req.ToEmail,
		Memo:        req.Memo,
		SubmittedAt: time.Now().UTC(),
	})

	s.refreshAfterMutation(ctx)

	return nil
}

// PrepareWithdrawal validates a withdrawal and computes the fee/net figures
// the user has to confirm. Pure; nothing is dispatched.
func (s *Service) PrepareWithdrawal(in validate.WithdrawalInput) (validate.WithdrawalTicket, error) {
	return validate.Withdrawal(in, s.balances.Read())
}

// ConfirmWithdrawal dispatches a previously prepared and user-confirmed
// withdrawal ticket.
func (s *Service) ConfirmWithdrawal(ctx context.Context, ticket validate.WithdrawalTicket) error {
	if _, err := s.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         withdrawPath,
		Body:         ticket.Request,
		RequiresAuth: true,
	}); err != nil {
		return err
	}

	s.record(journal.Entry{
		Kind:        journal.KindWithdrawal,
		Asset:       ticket.Request.Asset,
		Amount:      ticket.Request.Amount,
		Fee:         ticket.Fee,
		Destination: ticket.Request.DestinationAddress,
		Memo:        ticket.Request.Memo,
		SubmittedAt: time.Now().UTC(),
	})

	s.refreshAfterMutation(ctx)

	return nil
}

// DepositAddress fetches the deposit address for the account.
func (s *Service) DepositAddress(ctx context.Context) (string, error) {
	raw, err := s.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         depositAddressPath,
		RequiresAuth: true,
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", errors.Wrap(err, "decode deposit address response")
	}
	return payload.Address, nil
}

func (s *Service) record(entry journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(entry); err != nil {
		s.logger.Warn("failed to journal operation", zap.Error(err))
	}
}

// refreshAfterMutation re-fetches balances after a successful mutation.
// Best effort: the mutation already succeeded, a failed refresh only leaves
// the snapshot stale.
func (s *Service) refreshAfterMutation(ctx context.Context) {
	if _, err := s.balances.Refresh(ctx); err != nil {
		s.logger.Warn("post-mutation balance refresh failed", zap.Error(err))
	}
}
