package dashboard

import (
	"errors"
	"fmt"
	"testing"

	"crypto-oracle/internal/domain"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()

	unavailable := fmt.Errorf("%w: bitcoin", domain.ErrPredictionUnavailable)
	generation := fmt.Errorf("%w: bad price", domain.ErrGeneration)
	other := errors.New("socket closed")

	tests := []struct {
		op   Operation
		err  error
		want string
	}{
		{OpListing, other, MsgListingFailed},
		{OpSelect, fmt.Errorf("%w: 503", domain.ErrListingFetchFailed), MsgListingFailed},
		{OpSelect, unavailable, MsgPredictionFailed},
		{OpSelect, generation, MsgPredictionFailed},
		{OpSelect, other, MsgSelectError},
		{OpRefresh, unavailable, MsgRefreshFailed},
		{OpRefresh, other, MsgRefreshError},
		{OpNews, other, MsgNewsFailed},
		{OpSelect, fmt.Errorf("%w: rss timeout", domain.ErrNewsFetchFailed), MsgNewsFailed},
		{OpRefresh, fmt.Errorf("%w: rss timeout", domain.ErrNewsFetchFailed), MsgNewsFailed},
		{OpSelect, nil, ""},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.op, tt.err); got != tt.want {
			t.Errorf("UserMessage(%d, %v) = %q, want %q", tt.op, tt.err, got, tt.want)
		}
	}
}
