package domain

import "errors"

var (
	ErrListingFetchFailed    = errors.New("listing fetch failed")
	ErrPredictionUnavailable = errors.New("prediction unavailable")
	ErrNewsFetchFailed       = errors.New("news fetch failed")
	ErrGeneration            = errors.New("forecast generation failed")
	ErrUnknownCoin           = errors.New("unknown coin")
)
