package dashboard

import (
	"errors"

	"crypto-oracle/internal/domain"
)

// Operation names the request sequence an error came from.
type Operation int

const (
	OpListing Operation = iota
	OpSelect
	OpRefresh
	OpNews
)

const (
	MsgListingFailed    = "Failed to fetch cryptocurrencies. Please try again later."
	MsgPredictionFailed = "Failed to generate predictions for this cryptocurrency."
	MsgRefreshFailed    = "Failed to refresh predictions."
	MsgSelectError      = "An error occurred while generating predictions."
	MsgRefreshError     = "An error occurred while refreshing data."
	MsgNewsFailed       = "Failed to fetch news for this cryptocurrency."
)

// UserMessage converts err into the single line shown to the viewer.
func UserMessage(op Operation, err error) string {
	if err == nil {
		return ""
	}
	if op == OpListing || errors.Is(err, domain.ErrListingFetchFailed) {
		return MsgListingFailed
	}
	if op == OpNews || errors.Is(err, domain.ErrNewsFetchFailed) {
		return MsgNewsFailed
	}
	noForecast := errors.Is(err, domain.ErrPredictionUnavailable) || errors.Is(err, domain.ErrGeneration)
	switch {
	case op == OpRefresh && noForecast:
		return MsgRefreshFailed
	case op == OpRefresh:
		return MsgRefreshError
	case noForecast:
		return MsgPredictionFailed
	default:
		return MsgSelectError
	}
}
