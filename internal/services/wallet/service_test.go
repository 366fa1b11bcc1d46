package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/internal/domain"
	"github.com/vadiminshakov/walletctl/internal/services/validate"
	"github.com/vadiminshakov/walletctl/internal/storage/journal"
	"github.com/vadiminshakov/walletctl/internal/transport"
)

type memJournal struct {
	entries []journal.Entry
}

func (m *memJournal) Record(entry journal.Entry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func newServiceWithBalance(t *testing.T, usdt string, handler func(req transport.Request) (json.RawMessage, error)) (*Service, *fakeDispatcher, *memJournal) {
	t.Helper()

	fake := &fakeDispatcher{handler: func(req transport.Request) (json.RawMessage, error) {
		if req.Path == balancePath {
			return balancePayload([2]string{"USDT", usdt}), nil
		}
		return handler(req)
	}}

	jrnl := &memJournal{}
	cache := NewBalanceCache(fake, zap.NewNop())
	_, err := cache.Refresh(context.Background())
	require.NoError(t, err)

	return NewService(fake, cache, jrnl, zap.NewNop()), fake, jrnl
}

func TestTransfer_InsufficientBalanceRejectedWithoutNetworkCall(t *testing.T) {
	svc, fake, jrnl := newServiceWithBalance(t, "100.00000000", func(transport.Request) (json.RawMessage, error) {
		t.Fatal("no request must be dispatched for an invalid transfer")
		return nil, nil
	})

	err := svc.Transfer(context.Background(), validate.TransferInput{
		ToEmail: "bob@example.com",
		Amount:  decimal.NewFromInt(150),
		Asset:   "USDT",
	})

	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
	// only the initial balance refresh went out
	require.Len(t, fake.sent(), 1)
	require.Empty(t, jrnl.entries)
}

func TestTransfer_DispatchesJournalsAndRefreshes(t *testing.T) {
	svc, fake, jrnl := newServiceWithBalance(t, "100", func(req transport.Request) (json.RawMessage, error) {
		require.Equal(t, transferPath, req.Path)
		require.True(t, req.RequiresAuth)
		return json.RawMessage(`{"success": true}`), nil
	})

	err := svc.Transfer(context.Background(), validate.TransferInput{
		ToEmail: "bob@example.com",
		Amount:  decimal.NewFromInt(30),
		Asset:   "USDT",
		Memo:    "rent",
	})
	require.NoError(t, err)

	sent := fake.sent()
	// initial refresh, transfer, post-mutation refresh
	require.Len(t, sent, 3)
	require.Equal(t, transferPath, sent[1].Path)
	require.Equal(t, balancePath, sent[2].Path)

	require.Len(t, jrnl.entries, 1)
	require.Equal(t, journal.KindTransfer, jrnl.entries[0].Kind)
	require.Equal(t, "bob@example.com", jrnl.entries[0].Destination)
	require.True(t, jrnl.entries[0].Amount.Equal(decimal.NewFromInt(30)))

	payload, ok := sent[1].Body.(validate.TransferRequest)
	require.True(t, ok)
	require.Equal(t, "rent", payload.Memo)
}

func TestWithdrawal_PrepareComputesFiguresWithoutDispatch(t *testing.T) {
	svc, fake, _ := newServiceWithBalance(t, "200", func(transport.Request) (json.RawMessage, error) {
		t.Fatal("prepare must not dispatch")
		return nil, nil
	})

	ticket, err := svc.PrepareWithdrawal(validate.WithdrawalInput{
		Address: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		Amount:  decimal.NewFromInt(100),
		Asset:   "USDT",
	})
	require.NoError(t, err)
	require.Equal(t, "0.5", ticket.Fee.String())
	require.Equal(t, "99.5", ticket.Net.String())
	require.Len(t, fake.sent(), 1, "only the initial balance refresh may go out")
}

func TestWithdrawal_ConfirmDispatchesTicket(t *testing.T) {
	svc, fake, jrnl := newServiceWithBalance(t, "200", func(req transport.Request) (json.RawMessage, error) {
		require.Equal(t, withdrawPath, req.Path)
		return json.RawMessage(`{"id": 9}`), nil
	})

	ticket, err := svc.PrepareWithdrawal(validate.WithdrawalInput{
		Address: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		Amount:  decimal.NewFromInt(100),
		Asset:   "USDT",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmWithdrawal(context.Background(), ticket))

	sent := fake.sent()
	require.Len(t, sent, 3)

	payload, ok := sent[1].Body.(validate.WithdrawalRequest)
	require.True(t, ok)
	require.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", payload.DestinationAddress)

	require.Len(t, jrnl.entries, 1)
	require.Equal(t, journal.KindWithdrawal, jrnl.entries[0].Kind)
	require.Equal(t, "0.5", jrnl.entries[0].Fee.String())
}

func TestDepositAddress(t *testing.T) {
	svc, _, _ := newServiceWithBalance(t, "0", func(req transport.Request) (json.RawMessage, error) {
		require.Equal(t, depositAddressPath, req.Path)
		return json.RawMessage(`{"address": "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"}`), nil
	})

	address, err := svc.DepositAddress(context.Background())
	require.NoError(t, err)
	require.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", address)
}

func TestTransfer_ServerErrorSurfacedVerbatim(t *testing.T) {
	svc, _, jrnl := newServiceWithBalance(t, "100", func(transport.Request) (json.RawMessage, error) {
		return nil, &domain.ServerError{Status: 400, Message: "recipient not found"}
	})

	err := svc.Transfer(context.Background(), validate.TransferInput{
		ToEmail: "ghost@example.com",
		Amount:  decimal.NewFromInt(10),
		Asset:   "USDT",
	})

	var serverErr *domain.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "recipient not found", serverErr.Message)
	require.Empty(t, jrnl.entries, "failed operations are not journaled")
}
