package model

import "time"

// ItemNumber is a catalog entry in the item master (`item_numbers` table).
// Descriptions must be unique case-insensitively; records are retired with
// the IsObsolete flag rather than deleted, although a hard delete exists
// for legacy callers.  DisplayOrder controls listing order in the UI and
// is preserved across updates unless a payload sets it explicitly.
type ItemNumber struct {
	ID                    uint64    // item_numbers.id
	ItemNumber            string    // item_numbers.item_number (natural key)
	Description           string    // item_numbers.description
	Client                string    // item_numbers.client
	ProtocolNumber        string    // item_numbers.protocol_number
	Vendor                string    // item_numbers.vendor
	UOM                   string    // item_numbers.uom (unit of measure)
	Controlled            string    // item_numbers.controlled
	TempStorageConditions string    // item_numbers.temp_storage_conditions
	OtherStorageConds     string    // item_numbers.other_storage_conditions
	MaxExposureTime       int       // item_numbers.max_exposure_time (hours)
	TemperTime            int       // item_numbers.temper_time (hours)
	WorkingExposureTime   int       // item_numbers.working_exposure_time (hours)
	VendorCodeRev         string    // item_numbers.vendor_code_rev
	Randomized            string    // item_numbers.randomized (Yes/No)
	SequentialNumbers     string    // item_numbers.sequential_numbers (Yes/No)
	StudyType             string    // item_numbers.study_type
	IsObsolete            bool      // item_numbers.is_obsolete (soft delete)
	DisplayOrder          int       // item_numbers.display_order
	CreatedBy             string    // item_numbers.created_by
	UpdatedBy             string    // item_numbers.updated_by
	CreatedAt             time.Time // item_numbers.created_at
	UpdatedAt             time.Time // item_numbers.updated_at
}
