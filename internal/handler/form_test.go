package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/form"
)

func TestGeneratePDFEndpoint(t *testing.T) {
	h := NewFormHandler(form.NewGenerator(), audit.NewStore(t.TempDir(), nil), nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/form/generate-pdf/520b",
		strings.NewReader(`{"RN":"REC-001","deliveryAcceptance":{"material_placed":"yes"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("type")
	c.SetParamValues("520b")
	asUser(c, 7, "jane")

	if err := h.GeneratePDF(c); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "application/pdf") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("body is not a PDF")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "520B_REC-001_") {
		t.Fatalf("filename missing record number: %q", cd)
	}
}

func TestGeneratePDFUnknownType(t *testing.T) {
	h := NewFormHandler(form.NewGenerator(), audit.NewStore(t.TempDir(), nil), nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/form/generate-pdf/999x", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("type")
	c.SetParamValues("999x")
	asUser(c, 7, "jane")

	if err := h.GeneratePDF(c); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown type: expected 400 got %d", rec.Code)
	}
}
