package libgen

import (
	"errors"
	"testing"

	"github.com/chromedp/cdproto/network"
)

func TestCheckStatus(t *testing.T) {
	const page = "http://libgen.rs/fiction/?q=dune"

	for _, status := range []int64{200, 204, 299} {
		if err := checkStatus(page, &network.Response{Status: status}); err != nil {
			t.Errorf("status %d: unexpected error %v", status, err)
		}
	}
	if err := checkStatus(page, nil); err != nil {
		t.Errorf("missing response: unexpected error %v", err)
	}

	for _, status := range []int64{301, 404, 503} {
		err := checkStatus(page, &network.Response{Status: status, StatusText: "nope"})
		var fe *FetchError
		if !errors.As(err, &fe) || fe.StatusCode != int(status) || fe.URL != page {
			t.Errorf("status %d: expected FetchError, got %v", status, err)
		}
	}
}
