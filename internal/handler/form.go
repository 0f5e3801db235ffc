package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/form"
)

// FormHandler turns stored record data into filled regulatory PDFs.
type FormHandler struct {
	Gen   *form.Generator
	Audit *audit.Store
	Log   *zap.Logger
}

func NewFormHandler(gen *form.Generator, aud *audit.Store, log *zap.Logger) *FormHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FormHandler{Gen: gen, Audit: aud, Log: log}
}

// GeneratePDF renders the requested form from the posted payload and
// returns it as an attachment.  Absent payload fields render as empty
// cells rather than failing the whole document.
func (h *FormHandler) GeneratePDF(c echo.Context) error {
	t, err := form.ParseType(c.Param("type"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown form type; expected 520b, 501a or 519a"})
	}

	payload := form.Payload{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	pdf, filename, err := h.Gen.Generate(t, payload)
	if err != nil {
		h.Log.Error("form generation failed", zap.String("type", string(t)), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": form.Classify(err)})
	}

	username, _ := c.Get("username").(string)
	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("generate_pdf", fmt.Sprintf("generated %s", filename), username, userID, c.RealIP())

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
