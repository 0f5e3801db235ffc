package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/model"
	"github.com/Adira-Medica/inventory-app/internal/repository"
)

// ItemStore is the slice of the item repository the handlers need.
type ItemStore interface {
	DescriptionExists(ctx context.Context, description string, excludeID uint64) (bool, error)
	Create(ctx context.Context, it *model.ItemNumber) error
	GetByID(ctx context.Context, id uint64) (model.ItemNumber, error)
	List(ctx context.Context, includeObsolete bool) ([]model.ItemNumber, error)
	ListNumbers(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id uint64, fields map[string]any, updatedBy string) error
	SetObsolete(ctx context.Context, id uint64, obsolete bool, updatedBy string) error
	Delete(ctx context.Context, id uint64) error
}

// ItemHandler serves the item master endpoints.
type ItemHandler struct {
	Items ItemStore
	Audit *audit.Store
}

func NewItemHandler(items ItemStore, aud *audit.Store) *ItemHandler {
	return &ItemHandler{Items: items, Audit: aud}
}

// dropServerControlled removes columns a client may never set through an
// update payload.  The repository whitelist enforces the same rule; the
// keys are stripped here too so they never reach the storage layer.
func dropServerControlled(fields map[string]any) {
	for _, k := range []string{"id", "created_by", "updated_by", "created_at", "updated_at", "is_obsolete"} {
		delete(fields, k)
	}
}

type itemReq struct {
	ItemNumber            string `json:"item_number"`
	Description           string `json:"description"`
	Client                string `json:"client"`
	ProtocolNumber        string `json:"protocol_number"`
	Vendor                string `json:"vendor"`
	UOM                   string `json:"uom"`
	Controlled            string `json:"controlled"`
	TempStorageConditions string `json:"temp_storage_conditions"`
	OtherStorageConds     string `json:"other_storage_conditions"`
	MaxExposureTime       int    `json:"max_exposure_time"`
	TemperTime            int    `json:"temper_time"`
	WorkingExposureTime   int    `json:"working_exposure_time"`
	VendorCodeRev         string `json:"vendor_code_rev"`
	Randomized            string `json:"randomized"`
	SequentialNumbers     string `json:"sequential_numbers"`
	StudyType             string `json:"study_type"`
}

type itemResp struct {
	ID                    uint64 `json:"id"`
	ItemNumber            string `json:"item_number"`
	Description           string `json:"description"`
	Client                string `json:"client"`
	ProtocolNumber        string `json:"protocol_number"`
	Vendor                string `json:"vendor"`
	UOM                   string `json:"uom"`
	Controlled            string `json:"controlled"`
	TempStorageConditions string `json:"temp_storage_conditions"`
	OtherStorageConds     string `json:"other_storage_conditions"`
	MaxExposureTime       int    `json:"max_exposure_time"`
	TemperTime            int    `json:"temper_time"`
	WorkingExposureTime   int    `json:"working_exposure_time"`
	VendorCodeRev         string `json:"vendor_code_rev"`
	Randomized            string `json:"randomized"`
	SequentialNumbers     string `json:"sequential_numbers"`
	StudyType             string `json:"study_type"`
	IsObsolete            bool   `json:"is_obsolete"`
	DisplayOrder          int    `json:"display_order"`
	CreatedBy             string `json:"created_by"`
	UpdatedBy             string `json:"updated_by"`
	CreatedAt             string `json:"created_at"`
	UpdatedAt             string `json:"updated_at"`
}

func toItemResp(it model.ItemNumber) itemResp {
	return itemResp{
		ID: it.ID, ItemNumber: it.ItemNumber, Description: it.Description,
		Client: it.Client, ProtocolNumber: it.ProtocolNumber, Vendor: it.Vendor,
		UOM: it.UOM, Controlled: it.Controlled,
		TempStorageConditions: it.TempStorageConditions, OtherStorageConds: it.OtherStorageConds,
		MaxExposureTime: it.MaxExposureTime, TemperTime: it.TemperTime,
		WorkingExposureTime: it.WorkingExposureTime, VendorCodeRev: it.VendorCodeRev,
		Randomized: it.Randomized, SequentialNumbers: it.SequentialNumbers,
		StudyType: it.StudyType, IsObsolete: it.IsObsolete, DisplayOrder: it.DisplayOrder,
		CreatedBy: it.CreatedBy, UpdatedBy: it.UpdatedBy,
		CreatedAt: it.CreatedAt.Format(time.RFC3339), UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
	}
}

// List returns catalog entries ordered by display order.  Obsolete rows
// are hidden unless include_obsolete=true is passed.
func (h *ItemHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	includeObsolete := c.QueryParam("include_obsolete") == "true"
	items, err := h.Items.List(ctx, includeObsolete)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list items"})
	}
	out := make([]itemResp, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResp(it))
	}
	return c.JSON(http.StatusOK, out)
}

// Numbers returns just the active item numbers for dropdowns.
func (h *ItemHandler) Numbers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	numbers, err := h.Items.ListNumbers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list item numbers"})
	}
	if numbers == nil {
		numbers = []string{}
	}
	return c.JSON(http.StatusOK, numbers)
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load item"})
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// Create adds a catalog entry.  Descriptions are unique ignoring case;
// the audit columns come from the authenticated user, never the payload.
func (h *ItemHandler) Create(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ItemNumber == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_number and description are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if dup, err := h.Items.DescriptionExists(ctx, req.Description, 0); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not validate description"})
	} else if dup {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "an item with this description already exists"})
	}

	username, _ := c.Get("username").(string)
	it := model.ItemNumber{
		ItemNumber: req.ItemNumber, Description: req.Description,
		Client: req.Client, ProtocolNumber: req.ProtocolNumber, Vendor: req.Vendor,
		UOM: req.UOM, Controlled: req.Controlled,
		TempStorageConditions: req.TempStorageConditions, OtherStorageConds: req.OtherStorageConds,
		MaxExposureTime: req.MaxExposureTime, TemperTime: req.TemperTime,
		WorkingExposureTime: req.WorkingExposureTime, VendorCodeRev: req.VendorCodeRev,
		Randomized: req.Randomized, SequentialNumbers: req.SequentialNumbers,
		StudyType: req.StudyType, CreatedBy: username, UpdatedBy: username,
	}
	if err := h.Items.Create(ctx, &it); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateItemNumber):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an item with this item number already exists"})
		case errors.Is(err, repository.ErrDuplicateDescription):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an item with this description already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create item"})
	}

	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("create_item", fmt.Sprintf("created item %s", it.ItemNumber), username, userID, c.RealIP())
	return c.JSON(http.StatusCreated, toItemResp(it))
}

// Update applies a partial field map.  Unknown and server-controlled
// columns are dropped by the repository whitelist; display_order only
// changes when the payload carries it.
func (h *ItemHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	dropServerControlled(fields)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if desc, ok := fields["description"].(string); ok && desc != "" {
		if dup, err := h.Items.DescriptionExists(ctx, desc, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not validate description"})
		} else if dup {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an item with this description already exists"})
		}
	}

	username, _ := c.Get("username").(string)
	if err := h.Items.Update(ctx, id, fields, username); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case errors.Is(err, repository.ErrDuplicateItemNumber):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an item with this item number already exists"})
		case errors.Is(err, repository.ErrDuplicateDescription):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an item with this description already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update item"})
	}

	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("update_item", fmt.Sprintf("updated item %d", id), username, userID, c.RealIP())

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "item updated"})
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// ToggleObsolete flips the soft-delete flag.
func (h *ItemHandler) ToggleObsolete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load item"})
	}

	username, _ := c.Get("username").(string)
	if err := h.Items.SetObsolete(ctx, id, !it.IsObsolete, username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update item"})
	}

	userID, _ := c.Get("user_id").(uint64)
	state := "obsolete"
	if it.IsObsolete {
		state = "active"
	}
	h.Audit.LogActivity("toggle_item_obsolete", fmt.Sprintf("marked item %s %s", it.ItemNumber, state), username, userID, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_obsolete": !it.IsObsolete})
}

// Delete removes a row permanently.  Kept for legacy cleanup; routine
// retirement goes through ToggleObsolete.
func (h *ItemHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete item"})
	}
	username, _ := c.Get("username").(string)
	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("delete_item", fmt.Sprintf("deleted item %d", id), username, userID, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted"})
}
