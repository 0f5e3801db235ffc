package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Adira-Medica/inventory-app/internal/model"
)

const itemColumns = `id, item_number, description, client, protocol_number, vendor, uom,
	controlled, temp_storage_conditions, other_storage_conditions, max_exposure_time,
	temper_time, working_exposure_time, vendor_code_rev, randomized, sequential_numbers,
	study_type, is_obsolete, display_order, created_by, updated_by, created_at, updated_at`

// itemUpdatable lists the columns a caller may change through an update
// payload, in a fixed order so generated SQL is deterministic.  Audit
// columns (created_by/updated_by and timestamps) are server-controlled
// and deliberately absent; display_order is applied only when the payload
// carries it.
var itemUpdatable = []string{
	"item_number", "description", "client", "protocol_number", "vendor", "uom",
	"controlled", "temp_storage_conditions", "other_storage_conditions",
	"max_exposure_time", "temper_time", "working_exposure_time", "vendor_code_rev",
	"randomized", "sequential_numbers", "study_type", "display_order",
}

// ItemRepo encapsulates all database queries for the item master.
type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

// mapItemDuplicate translates a MySQL 1062 on item_numbers into the
// sentinel matching the violated key.  The database only enforces the
// item-number key; description uniqueness is checked before the write,
// so an unnamed 1062 still falls back to the description sentinel.
func mapItemDuplicate(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "uq_item_numbers_number") {
		return ErrDuplicateItemNumber
	}
	return ErrDuplicateDescription
}

func scanItem(row interface{ Scan(...any) error }) (model.ItemNumber, error) {
	var it model.ItemNumber
	err := row.Scan(&it.ID, &it.ItemNumber, &it.Description, &it.Client, &it.ProtocolNumber,
		&it.Vendor, &it.UOM, &it.Controlled, &it.TempStorageConditions, &it.OtherStorageConds,
		&it.MaxExposureTime, &it.TemperTime, &it.WorkingExposureTime, &it.VendorCodeRev,
		&it.Randomized, &it.SequentialNumbers, &it.StudyType, &it.IsObsolete, &it.DisplayOrder,
		&it.CreatedBy, &it.UpdatedBy, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// DescriptionExists reports whether another row carries the same
// description ignoring case.  excludeID skips the row being updated.
func (r *ItemRepo) DescriptionExists(ctx context.Context, description string, excludeID uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_numbers WHERE LOWER(description)=LOWER(?) AND id<>?",
		strings.TrimSpace(description), excludeID).Scan(&n)
	return n > 0, err
}

// Create inserts a new item.  The caller is expected to have run the
// description uniqueness check; display_order is assigned here (max+1).
func (r *ItemRepo) Create(ctx context.Context, it *model.ItemNumber) error {
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order),0)+1 FROM item_numbers").Scan(&it.DisplayOrder); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO item_numbers (item_number, description, client, protocol_number, vendor,
			uom, controlled, temp_storage_conditions, other_storage_conditions, max_exposure_time,
			temper_time, working_exposure_time, vendor_code_rev, randomized, sequential_numbers,
			study_type, display_order, created_by, updated_by)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		it.ItemNumber, it.Description, it.Client, it.ProtocolNumber, it.Vendor,
		it.UOM, it.Controlled, it.TempStorageConditions, it.OtherStorageConds, it.MaxExposureTime,
		it.TemperTime, it.WorkingExposureTime, it.VendorCodeRev, it.Randomized, it.SequentialNumbers,
		it.StudyType, it.DisplayOrder, it.CreatedBy, it.CreatedBy)
	if err != nil {
		return mapItemDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches an item by id.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (model.ItemNumber, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM item_numbers WHERE id=? LIMIT 1", id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ItemNumber{}, ErrNotFound
	}
	return it, err
}

// List returns items in display order.  Obsolete rows are filtered out
// unless includeObsolete is set; audit and form flows treat non-obsolete
// as the canonical active set.
func (r *ItemRepo) List(ctx context.Context, includeObsolete bool) ([]model.ItemNumber, error) {
	q := "SELECT " + itemColumns + " FROM item_numbers"
	if !includeObsolete {
		q += " WHERE is_obsolete=FALSE"
	}
	q += " ORDER BY display_order, id"
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ItemNumber
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListNumbers returns just the natural keys of active items.
func (r *ItemRepo) ListNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT item_number FROM item_numbers WHERE is_obsolete=FALSE ORDER BY display_order, id")
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
// updated_by.  Keys outside the whitelist are ignored, which is what
// keeps created_by and friends server-controlled.
func (r *ItemRepo) Update(ctx context.Context, id uint64, fields map[string]any, updatedBy string) error {
	var sets []string
	var args []any
	for _, col := range itemUpdatable {
		if v, ok := fields[col]; ok {
			sets = append(sets, col+"=?")
			args = append(args, v)
		}
	}
	sets = append(sets, "updated_by=?")
	args = append(args, updatedBy, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE item_numbers SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return mapItemDuplicate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows for no-op updates too, so
		// distinguish a missing row explicitly.
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM item_numbers WHERE id=?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// SetObsolete toggles the soft-delete flag.
func (r *ItemRepo) SetObsolete(ctx context.Context, id uint64, obsolete bool, updatedBy string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE item_numbers SET is_obsolete=?, updated_by=? WHERE id=?", obsolete, updatedBy, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item permanently.  Kept for legacy callers; the
// obsolete flag is the preferred retirement path.
func (r *ItemRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM item_numbers WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of active items.
func (r *ItemRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM item_numbers WHERE is_obsolete=FALSE").Scan(&n)
	return n, err
}
