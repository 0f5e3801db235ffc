package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Adira-Medica/inventory-app/internal/model"
)

const receivingColumns = `rd.id, rd.item_id, i.item_number, rd.receiving_no, rd.tracking_number,
	rd.lot_no, rd.po_no, rd.total_units_vendor, rd.total_storage_containers, rd.exp_date,
	rd.ncmr, rd.total_units_received, rd.temp_device_in_alarm, rd.temp_device_deactivated,
	rd.temp_device_returned_to_courier, rd.comments_for_520b, rd.is_obsolete, rd.display_order,
	rd.created_by, rd.updated_by, rd.created_at, rd.updated_at`

// receivingUpdatable mirrors itemUpdatable: caller-editable columns in a
// fixed order, audit columns excluded, display_order honored only when
// present in the payload.
var receivingUpdatable = []string{
	"item_id", "receiving_no", "tracking_number", "lot_no", "po_no",
	"total_units_vendor", "total_storage_containers", "exp_date", "ncmr",
	"total_units_received", "temp_device_in_alarm", "temp_device_deactivated",
	"temp_device_returned_to_courier", "comments_for_520b", "display_order",
}

// ReceivingRepo encapsulates all database queries for receiving records.
type ReceivingRepo struct{ DB *sql.DB }

func NewReceivingRepo(db *sql.DB) *ReceivingRepo { return &ReceivingRepo{DB: db} }

func scanReceiving(row interface{ Scan(...any) error }) (model.ReceivingData, error) {
	var rd model.ReceivingData
	err := row.Scan(&rd.ID, &rd.ItemID, &rd.ItemNumber, &rd.ReceivingNo, &rd.TrackingNumber,
		&rd.LotNo, &rd.PONo, &rd.TotalUnitsVendor, &rd.TotalStorageContainers, &rd.ExpDate,
		&rd.NCMR, &rd.TotalUnitsReceived, &rd.TempDeviceInAlarm, &rd.TempDeviceDeactivated,
		&rd.TempDeviceReturned, &rd.CommentsFor520B, &rd.IsObsolete, &rd.DisplayOrder,
		&rd.CreatedBy, &rd.UpdatedBy, &rd.CreatedAt, &rd.UpdatedAt)
	return rd, err
}

// Create inserts a receiving record referencing an item by numeric id.
func (r *ReceivingRepo) Create(ctx context.Context, rd *model.ReceivingData) error {
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order),0)+1 FROM receiving_data").Scan(&rd.DisplayOrder); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO receiving_data (item_id, receiving_no, tracking_number, lot_no, po_no,
			total_units_vendor, total_storage_containers, exp_date, ncmr, total_units_received,
			temp_device_in_alarm, temp_device_deactivated, temp_device_returned_to_courier,
			comments_for_520b, display_order, created_by, updated_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rd.ItemID, rd.ReceivingNo, rd.TrackingNumber, rd.LotNo, rd.PONo,
		rd.TotalUnitsVendor, rd.TotalStorageContainers, rd.ExpDate, rd.NCMR, rd.TotalUnitsReceived,
		rd.TempDeviceInAlarm, rd.TempDeviceDeactivated, rd.TempDeviceReturned,
		rd.CommentsFor520B, rd.DisplayOrder, rd.CreatedBy, rd.CreatedBy)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			return ErrDuplicateReceivingNo
		}
		if strings.Contains(msg, "1452") { // FK violation: unknown item_id
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rd.ID = uint64(id)
	return nil
}

// GetByID fetches a receiving record with its item number joined in.
func (r *ReceivingRepo) GetByID(ctx context.Context, id uint64) (model.ReceivingData, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+receivingColumns+" FROM receiving_data rd JOIN item_numbers i ON i.id=rd.item_id WHERE rd.id=? LIMIT 1", id)
	rd, err := scanReceiving(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReceivingData{}, ErrNotFound
	}
	return rd, err
}

// GetByReceivingNo fetches a record by its human-facing number.
func (r *ReceivingRepo) GetByReceivingNo(ctx context.Context, no string) (model.ReceivingData, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+receivingColumns+" FROM receiving_data rd JOIN item_numbers i ON i.id=rd.item_id WHERE rd.receiving_no=? LIMIT 1",
		strings.TrimSpace(no))
	rd, err := scanReceiving(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ReceivingData{}, ErrNotFound
	}
	return rd, err
}

// List returns receiving records in display order, hiding obsolete rows
// unless asked otherwise.
func (r *ReceivingRepo) List(ctx context.Context, includeObsolete bool) ([]model.ReceivingData, error) {
	q := "SELECT " + receivingColumns + " FROM receiving_data rd JOIN item_numbers i ON i.id=rd.item_id"
	if !includeObsolete {
		q += " WHERE rd.is_obsolete=FALSE"
	}
	q += " ORDER BY rd.display_order, rd.id"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReceivingData
	for rows.Next() {
		rd, err := scanReceiving(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// ListNumbers returns just the receiving numbers of active records.
func (r *ReceivingRepo) ListNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT receiving_no FROM receiving_data WHERE is_obsolete=FALSE ORDER BY display_order, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update applies the whitelisted columns present in fields and stamps
// updated_by.
func (r *ReceivingRepo) Update(ctx context.Context, id uint64, fields map[string]any, updatedBy string) error {
	var sets []string
	var args []any
	for _, col := range receivingUpdatable {
		if v, ok := fields[col]; ok {
			sets = append(sets, col+"=?")
			args = append(args, v)
		}
	}
	sets = append(sets, "updated_by=?")
	args = append(args, updatedBy, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE receiving_data SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateReceivingNo
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM receiving_data WHERE id=?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// SetObsolete toggles the soft-delete flag.
func (r *ReceivingRepo) SetObsolete(ctx context.Context, id uint64, obsolete bool, updatedBy string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE receiving_data SET is_obsolete=?, updated_by=? WHERE id=?", obsolete, updatedBy, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record permanently (legacy path).
func (r *ReceivingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM receiving_data WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of active receiving records.
func (r *ReceivingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM receiving_data WHERE is_obsolete=FALSE").Scan(&n)
	return n, err
}
