package nav

import (
	"fmt"
	"testing"

	apperrors "caltrack/internal/platform/errors"
)

func TestFailedRoutesAuthErrors(t *testing.T) {
	t.Parallel()
	msg := Failed("load day", fmt.Errorf("fetch: %w", apperrors.ErrUnauthorized))()
	if _, ok := msg.(AuthFailedMsg); !ok {
		t.Fatalf("msg = %T, want AuthFailedMsg", msg)
	}

	msg = Failed("load day", fmt.Errorf("fetch: %w", apperrors.ErrTimeout))()
	status, ok := msg.(StatusMsg)
	if !ok {
		t.Fatalf("msg = %T, want StatusMsg", msg)
	}
	if status.Text != "load day: fetch: request timed out" {
		t.Fatalf("status = %q", status.Text)
	}
}
