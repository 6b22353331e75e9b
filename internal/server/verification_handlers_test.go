package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foliobay/backend/internal/verification"
	"github.com/gin-gonic/gin"
)

func TestBindOptionalJSON(t *testing.T) {
	newCtx := func(body string) *gin.Context {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		return c
	}

	t.Run("empty body binds zero values", func(t *testing.T) {
		var req verification.ApproveRequest
		if err := bindOptionalJSON(newCtx(""), &req); err != nil {
			t.Fatalf("expected empty body to be accepted, got %v", err)
		}
		if req.AdminNotes != nil {
			t.Fatalf("expected zero-value request, got notes %q", *req.AdminNotes)
		}
	})

	t.Run("valid body binds fields", func(t *testing.T) {
		var req verification.ApproveRequest
		if err := bindOptionalJSON(newCtx(`{"admin_notes":"documents check out"}`), &req); err != nil {
			t.Fatalf("expected valid body to bind, got %v", err)
		}
		if req.AdminNotes == nil || *req.AdminNotes != "documents check out" {
			t.Fatalf("unexpected notes: %v", req.AdminNotes)
		}
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		var req verification.ApproveRequest
		if err := bindOptionalJSON(newCtx(`{"admin_notes":`), &req); err == nil {
			t.Fatal("expected malformed body to fail binding")
		}
	})
}
