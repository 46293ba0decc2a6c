package response

import (
	"net/http"
	"testing"
)

func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"id": "t-1"})
	if !resp.Success {
		t.Error("Success() should set Success = true")
	}
	if resp.Error != nil {
		t.Error("Success() should not carry an error")
	}
}

func TestError(t *testing.T) {
	resp := Error(ErrCodeStoreNotFound, "No store exists at this address")
	if resp.Success {
		t.Error("Error() should set Success = false")
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeStoreNotFound {
		t.Errorf("unexpected error info: %+v", resp.Error)
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeStoreNotFound, http.StatusNotFound},
		{ErrCodeLimitExceeded, http.StatusUnprocessableEntity},
		{ErrCodeThemeNotAllowed, http.StatusConflict},
		{ErrCodeTenantExists, http.StatusConflict},
		{ErrCodeUnknownTheme, http.StatusBadRequest},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := GetHTTPStatus(tt.code); got != tt.expected {
			t.Errorf("GetHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
		}
	}
}

func TestLimitExceededDetails(t *testing.T) {
	resp := LimitExceeded("products", 100, 100)
	if resp.Error == nil {
		t.Fatal("expected error info")
	}
	if resp.Error.Details["resource"] != "products" {
		t.Errorf("details resource = %q", resp.Error.Details["resource"])
	}
	if resp.Error.Details["limit"] != "100" {
		t.Errorf("details limit = %q", resp.Error.Details["limit"])
	}
}
