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

// ReceivingStore is the slice of the receiving repository the handlers need.
type ReceivingStore interface {
	Create(ctx context.Context, rd *model.ReceivingData) error
	GetByID(ctx context.Context, id uint64) (model.ReceivingData, error)
	GetByReceivingNo(ctx context.Context, no string) (model.ReceivingData, error)
	List(ctx context.Context, includeObsolete bool) ([]model.ReceivingData, error)
	ListNumbers(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id uint64, fields map[string]any, updatedBy string) error
	SetObsolete(ctx context.Context, id uint64, obsolete bool, updatedBy string) error
	Delete(ctx context.Context, id uint64) error
}

// ReceivingHandler serves the receiving record endpoints.
type ReceivingHandler struct {
	Receiving ReceivingStore
	Audit     *audit.Store
}

func NewReceivingHandler(recv ReceivingStore, aud *audit.Store) *ReceivingHandler {
	return &ReceivingHandler{Receiving: recv, Audit: aud}
}

type receivingReq struct {
	ItemID                 uint64 `json:"item_id"`
	ReceivingNo            string `json:"receiving_no"`
	TrackingNumber         string `json:"tracking_number"`
	LotNo                  string `json:"lot_no"`
	PONo                   string `json:"po_no"`
	TotalUnitsVendor       int    `json:"total_units_vendor"`
	TotalStorageContainers int    `json:"total_storage_containers"`
	ExpDate                string `json:"exp_date"`
	NCMR                   string `json:"ncmr"`
	TotalUnitsReceived     int    `json:"total_units_received"`
	TempDeviceInAlarm      string `json:"temp_device_in_alarm"`
	TempDeviceDeactivated  string `json:"temp_device_deactivated"`
	TempDeviceReturned     string `json:"temp_device_returned_to_courier"`
	CommentsFor520B        string `json:"comments_for_520b"`
}

type receivingResp struct {
	ID                     uint64 `json:"id"`
	ItemID                 uint64 `json:"item_id"`
	ItemNumber             string `json:"item_number"`
	ReceivingNo            string `json:"receiving_no"`
	TrackingNumber         string `json:"tracking_number"`
	LotNo                  string `json:"lot_no"`
	PONo                   string `json:"po_no"`
	TotalUnitsVendor       int    `json:"total_units_vendor"`
	TotalStorageContainers int    `json:"total_storage_containers"`
	ExpDate                string `json:"exp_date"`
	NCMR                   string `json:"ncmr"`
	TotalUnitsReceived     int    `json:"total_units_received"`
	TempDeviceInAlarm      string `json:"temp_device_in_alarm"`
	TempDeviceDeactivated  string `json:"temp_device_deactivated"`
	TempDeviceReturned     string `json:"temp_device_returned_to_courier"`
	CommentsFor520B        string `json:"comments_for_520b"`
	IsObsolete             bool   `json:"is_obsolete"`
	DisplayOrder           int    `json:"display_order"`
	CreatedBy              string `json:"created_by"`
	UpdatedBy              string `json:"updated_by"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

func toReceivingResp(rd model.ReceivingData) receivingResp {
	return receivingResp{
		ID: rd.ID, ItemID: rd.ItemID, ItemNumber: rd.ItemNumber,
		ReceivingNo: rd.ReceivingNo, TrackingNumber: rd.TrackingNumber,
		LotNo: rd.LotNo, PONo: rd.PONo,
		TotalUnitsVendor: rd.TotalUnitsVendor, TotalStorageContainers: rd.TotalStorageContainers,
		ExpDate: rd.ExpDate, NCMR: rd.NCMR, TotalUnitsReceived: rd.TotalUnitsReceived,
		TempDeviceInAlarm: rd.TempDeviceInAlarm, TempDeviceDeactivated: rd.TempDeviceDeactivated,
		TempDeviceReturned: rd.TempDeviceReturned, CommentsFor520B: rd.CommentsFor520B,
		IsObsolete: rd.IsObsolete, DisplayOrder: rd.DisplayOrder,
		CreatedBy: rd.CreatedBy, UpdatedBy: rd.UpdatedBy,
		CreatedAt: rd.CreatedAt.Format(time.RFC3339), UpdatedAt: rd.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ReceivingHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	includeObsolete := c.QueryParam("include_obsolete") == "true"
	records, err := h.Receiving.List(ctx, includeObsolete)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list receiving records"})
	}
	out := make([]receivingResp, 0, len(records))
	for _, rd := range records {
		out = append(out, toReceivingResp(rd))
	}
	return c.JSON(http.StatusOK, out)
}

// Numbers returns the active receiving numbers for dropdowns.
func (h *ReceivingHandler) Numbers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	numbers, err := h.Receiving.ListNumbers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list receiving numbers"})
	}
	if numbers == nil {
		numbers = []string{}
	}
	return c.JSON(http.StatusOK, numbers)
}

func (h *ReceivingHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The path parameter is either a numeric id or a receiving number;
	// the UI looks records up both ways.
	param := c.Param("id")
	var (
		rd  model.ReceivingData
		err error
	)
	if id, perr := strconv.ParseUint(param, 10, 64); perr == nil {
		rd, err = h.Receiving.GetByID(ctx, id)
	} else {
		rd, err = h.Receiving.GetByReceivingNo(ctx, param)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiving record not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load receiving record"})
	}
	return c.JSON(http.StatusOK, toReceivingResp(rd))
}

// Create registers an inbound shipment against an item master row.
func (h *ReceivingHandler) Create(c echo.Context) error {
	var req receivingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ReceivingNo == "" || req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "receiving_no and item_id are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	username, _ := c.Get("username").(string)
	rd := model.ReceivingData{
		ItemID: req.ItemID, ReceivingNo: req.ReceivingNo,
		TrackingNumber: req.TrackingNumber, LotNo: req.LotNo, PONo: req.PONo,
		TotalUnitsVendor: req.TotalUnitsVendor, TotalStorageContainers: req.TotalStorageContainers,
		ExpDate: req.ExpDate, NCMR: req.NCMR, TotalUnitsReceived: req.TotalUnitsReceived,
		TempDeviceInAlarm: req.TempDeviceInAlarm, TempDeviceDeactivated: req.TempDeviceDeactivated,
		TempDeviceReturned: req.TempDeviceReturned, CommentsFor520B: req.CommentsFor520B,
		CreatedBy: username, UpdatedBy: username,
	}
	if err := h.Receiving.Create(ctx, &rd); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateReceivingNo):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "receiving number already exists"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "referenced item does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create receiving record"})
	}

	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("create_receiving", fmt.Sprintf("created receiving %s", rd.ReceivingNo), username, userID, c.RealIP())
	return c.JSON(http.StatusCreated, toReceivingResp(rd))
}

// Update applies a partial field map through the column whitelist.
func (h *ReceivingHandler) Update(c echo.Context) error {
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

	username, _ := c.Get("username").(string)
	if err := h.Receiving.Update(ctx, id, fields, username); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiving record not found"})
		case errors.Is(err, repository.ErrDuplicateReceivingNo):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "receiving number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update receiving record"})
	}

	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("update_receiving", fmt.Sprintf("updated receiving %d", id), username, userID, c.RealIP())

	rd, err := h.Receiving.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "receiving record updated"})
	}
	return c.JSON(http.StatusOK, toReceivingResp(rd))
}

func (h *ReceivingHandler) ToggleObsolete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rd, err := h.Receiving.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiving record not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load receiving record"})
	}

	username, _ := c.Get("username").(string)
	if err := h.Receiving.SetObsolete(ctx, id, !rd.IsObsolete, username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update receiving record"})
	}

	userID, _ := c.Get("user_id").(uint64)
	state := "obsolete"
	if rd.IsObsolete {
		state = "active"
	}
	h.Audit.LogActivity("toggle_receiving_obsolete", fmt.Sprintf("marked receiving %s %s", rd.ReceivingNo, state), username, userID, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_obsolete": !rd.IsObsolete})
}

func (h *ReceivingHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Receiving.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "receiving record not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete receiving record"})
	}
	username, _ := c.Get("username").(string)
	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity("delete_receiving", fmt.Sprintf("deleted receiving %d", id), username, userID, c.RealIP())
	return c.JSON(http.StatusOK, echo.Map{"message": "receiving record deleted"})
}
