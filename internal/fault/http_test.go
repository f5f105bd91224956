package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Permission("not yours"), http.StatusForbidden},
		{StateConflict("already approved"), http.StatusConflict},
		{&InsufficientInventoryError{Requested: 10, Available: 4}, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", Validation("bad")), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &InsufficientInventoryError{Requested: 2, Available: 1}), http.StatusConflict},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestInsufficientInventoryMessage(t *testing.T) {
	err := &InsufficientInventoryError{Requested: 10, Available: 4}
	want := "insufficient inventory: requested 10, available 4"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
