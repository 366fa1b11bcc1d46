// Package validate judges mutating wallet operations before any network call.
// Everything here is pure and deterministic: validators prepare and reject,
// they never dispatch.
package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/walletctl/internal/domain"
)

// Withdrawal policy.
var (
	// WithdrawalFeeRate 0.5% fee charged on every withdrawal.
	WithdrawalFeeRate = decimal.New(5, -3)
	// MinimumWithdrawal smallest accepted withdrawal amount.
	MinimumWithdrawal = decimal.NewFromInt(10)
)

// FeeScale decimal places of fee arithmetic, matching the 8-dp amounts the
// backend serves.
const FeeScale = 8

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// TRON addresses: "T" followed by 33 alphanumerics.
	tronAddressPattern = regexp.MustCompile(`^T[A-Za-z0-9]{33}$`)
)

// TransferInput raw form input for an internal transfer.
type TransferInput struct {
	ToEmail string
	Amount  decimal.Decimal
	Asset   string
	Memo    string
}

// TransferRequest normalized payload for the transfer endpoint.
type TransferRequest struct {
	ToEmail string          `json:"to_email"`
	Amount  decimal.Decimal `json:"amount"`
	Asset   string          `json:"asset"`
	Memo    string          `json:"memo"`
}

// Transfer validates a transfer against the balance snapshot and returns the
// normalized request payload.
func Transfer(in TransferInput, balances domain.Balances) (TransferRequest, error) {
	email := strings.TrimSpace(in.ToEmail)
	if !emailPattern.MatchString(email) {
		return TransferRequest{}, &domain.ValidationError{Field: "recipient", Reason: "malformed email address"}
	}
	if !in.Amount.IsPositive() {
		return TransferRequest{}, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.Amount.GreaterThan(balances.Amount(in.Asset)) {
		return TransferRequest{}, &domain.ValidationError{Field: "amount", Reason: "insufficient balance"}
	}

	return TransferRequest{
		ToEmail: email,
		Amount:  in.Amount,
		Asset:   in.Asset,
		Memo:    strings.TrimSpace(in.Memo),
	}, nil
}

// WithdrawalInput raw form input for an on-chain withdrawal.
type WithdrawalInput struct {
	Address string
	Amount  decimal.Decimal
	Asset   string
	Memo    string
}

// WithdrawalRequest normalized payload for the withdraw endpoint.
type WithdrawalRequest struct {
	DestinationAddress string          `json:"destination_address"`
	Amount             decimal.Decimal `json:"amount"`
	Asset              string          `json:"asset"`
	Memo               string          `json:"memo"`
}

// WithdrawalTicket the confirmation figures shown to the user before the
// request is dispatched.
type WithdrawalTicket struct {
	Request WithdrawalRequest
	Fee     decimal.Decimal
	Net     decimal.Decimal
}

// Withdrawal validates a withdrawal, computes fee and net amount, and returns
// the ticket the user must confirm before dispatch.
func Withdrawal(in WithdrawalInput, balances domain.Balances) (WithdrawalTicket, error) {
	address := strings.TrimSpace(in.Address)
	if !tronAddressPattern.MatchString(address) {
		return WithdrawalTicket{}, &domain.ValidationError{Field: "address", Reason: "malformed TRON address"}
	}
	if !in.Amount.IsPositive() {
		return WithdrawalTicket{}, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.Amount.GreaterThan(balances.Amount(in.Asset)) {
		return WithdrawalTicket{}, &domain.ValidationError{Field: "amount", Reason: "insufficient balance"}
	}
	if in.Amount.LessThan(MinimumWithdrawal) {
		return WithdrawalTicket{}, &domain.ValidationError{
			Field:  "amount",
			Reason: "below the minimum withdrawal of " + MinimumWithdrawal.String(),
		}
	}

	fee := in.Amount.Mul(WithdrawalFeeRate).Round(FeeScale)
	net := in.Amount.Sub(fee)

	return WithdrawalTicket{
		Request: WithdrawalRequest{
			DestinationAddress: address,
			Amount:             in.Amount,
			Asset:              in.Asset,
			Memo:               strings.TrimSpace(in.Memo),
		},
		Fee: fee,
		Net: net,
	}, nil
}
