package model

import "time"

// ReceivingData records one inbound shipment (`receiving_data` table).
// Each record references an item master row by numeric item_id; the
// human-facing ReceivingNo is unique.  Temperature device fields carry
// Yes/No/N-A strings as captured on the receiving paperwork.
type ReceivingData struct {
	ID                    uint64    // receiving_data.id
	ItemID                uint64    // receiving_data.item_id (FK item_numbers.id)
	ItemNumber            string    // item_numbers.item_number (joined, read-only)
	ReceivingNo           string    // receiving_data.receiving_no (unique)
	TrackingNumber        string    // receiving_data.tracking_number
	LotNo                 string    // receiving_data.lot_no
	PONo                  string    // receiving_data.po_no
	TotalUnitsVendor      int       // receiving_data.total_units_vendor
	TotalStorageContainers int      // receiving_data.total_storage_containers
	ExpDate               string    // receiving_data.exp_date
	NCMR                  string    // receiving_data.ncmr
	TotalUnitsReceived    int       // receiving_data.total_units_received
	TempDeviceInAlarm     string    // receiving_data.temp_device_in_alarm
	TempDeviceDeactivated string    // receiving_data.temp_device_deactivated
	TempDeviceReturned    string    // receiving_data.temp_device_returned_to_courier
	CommentsFor520B       string    // receiving_data.comments_for_520b
	IsObsolete            bool      // receiving_data.is_obsolete (soft delete)
	DisplayOrder          int       // receiving_data.display_order
	CreatedBy             string    // receiving_data.created_by
	UpdatedBy             string    // receiving_data.updated_by
	CreatedAt             time.Time // receiving_data.created_at
	UpdatedAt             time.Time // receiving_data.updated_at
}
