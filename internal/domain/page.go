package domain

import (
	"net/url"
	"strconv"
)

// HistoryFilters optional constraints on the history listing.
// Empty fields are omitted from the outgoing query entirely.
type HistoryFilters struct {
	Type   string
	Status string
	Asset  string
}

// PageQuery one page of the transaction history.
type PageQuery struct {
	Skip    int
	Limit   int
	Filters HistoryFilters
}

// Values encodes the query for the history endpoint, dropping empty filters.
func (q PageQuery) Values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(q.Skip))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Filters.Type != "" {
		v.Set("type", q.Filters.Type)
	}
	if q.Filters.Status != "" {
		v.Set("status", q.Filters.Status)
	}
	if q.Filters.Asset != "" {
		v.Set("asset", q.Filters.Asset)
	}
	return v
}

// PageResult one resolved page of history.
type PageResult struct {
	Records []TransactionRecord
	Total   int
	Query   PageQuery
}
