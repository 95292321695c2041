package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vladislavdragonenkov/waterdesk/internal/domain"
)

func TestInsufficientStockError_Message(t *testing.T) {
	err := &domain.InsufficientStockError{ProductName: "Binh 20L", Available: 7, Requested: 10}

	want := `product "Binh 20L" has only 7 in stock, 10 requested`
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestProductNotFoundError_Message(t *testing.T) {
	err := &domain.ProductNotFoundError{ProductID: "p1", ProductName: "Binh 20L"}

	want := `product "Binh 20L" (p1) not found in catalog`
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestAsAPIError(t *testing.T) {
	apiErr := &domain.APIError{StatusCode: 400, Message: "bad request", Category: domain.CategoryRejected}
	wrapped := fmt.Errorf("create order: %w", apiErr)

	got, ok := domain.AsAPIError(wrapped)
	if !ok {
		t.Fatal("expected APIError to be found in chain")
	}
	if got.StatusCode != 400 || got.Category != domain.CategoryRejected {
		t.Fatalf("unexpected error: %+v", got)
	}

	if _, ok := domain.AsAPIError(errors.New("plain")); ok {
		t.Fatal("plain error must not match APIError")
	}
}

func TestErrorCategoryHelpers(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		network     bool
		softSuccess bool
	}{
		{
			name:    "network",
			err:     &domain.APIError{Message: "connection refused", Category: domain.CategoryNetwork},
			network: true,
		},
		{
			name: "rejected",
			err:  &domain.APIError{StatusCode: 422, Message: "validation", Category: domain.CategoryRejected},
		},
		{
			name:        "soft success",
			err:         &domain.APIError{StatusCode: 500, Message: "partial", Category: domain.CategorySoftSuccess},
			softSuccess: true,
		},
		{
			name: "not an api error",
			err:  domain.ErrCartEmpty,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if domain.IsNetworkError(tc.err) != tc.network {
				t.Fatalf("IsNetworkError = %v, want %v", domain.IsNetworkError(tc.err), tc.network)
			}
			if domain.IsSoftSuccess(tc.err) != tc.softSuccess {
				t.Fatalf("IsSoftSuccess = %v, want %v", domain.IsSoftSuccess(tc.err), tc.softSuccess)
			}
		})
	}
}

func TestAPIError_Message(t *testing.T) {
	withStatus := &domain.APIError{StatusCode: 502, Message: "bad gateway", Category: domain.CategoryRejected}
	if withStatus.Error() != "api error (rejected, status 502): bad gateway" {
		t.Fatalf("unexpected message: %s", withStatus.Error())
	}

	noStatus := &domain.APIError{Message: "timeout", Category: domain.CategoryNetwork}
	if noStatus.Error() != "api error (network): timeout" {
		t.Fatalf("unexpected message: %s", noStatus.Error())
	}
}
