package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageQuery_ValuesOmitsEmptyFilters(t *testing.T) {
	q := PageQuery{Skip: 20, Limit: 20}

	v := q.Values()
	require.Equal(t, "20", v.Get("skip"))
	require.Equal(t, "20", v.Get("limit"))
	require.False(t, v.Has("type"))
	require.False(t, v.Has("status"))
	require.False(t, v.Has("asset"))
}

func TestPageQuery_ValuesIncludesSetFilters(t *testing.T) {
	q := PageQuery{
		Limit: 20,
		Filters: HistoryFilters{
			Type:   string(TransactionWithdrawal),
			Status: string(StatusPending),
			Asset:  "USDT",
		},
	}

	v := q.Values()
	require.Equal(t, "withdrawal", v.Get("type"))
	require.Equal(t, "pending", v.Get("status"))
	require.Equal(t, "USDT", v.Get("asset"))
}

func TestSession_Authenticated(t *testing.T) {
	require.False(t, Session{}.Authenticated())
	require.True(t, Session{Token: "tok", Identity: "a@b.co"}.Authenticated())
}
