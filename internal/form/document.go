package form

// Document is the renderer-facing model every form builder produces: a
// titled sequence of blocks.  Keeping builders and rendering decoupled is
// what collapsed the three historical generator implementations into one
// backend.
type Document struct {
	Title  string
	Number string // identifying record number, used in the filename and audit trail
	Blocks []Block
}

// Block is one titled section.  A block may carry labeled text fields,
// checkbox rows, a table, or any mix; empty slices render as nothing.
type Block struct {
	Heading string
	Fields  []FieldValue
	Checks  []CheckValue
	Table   *Table
}

// FieldValue is a labeled text field.
type FieldValue struct {
	Label string
	Value string
}

// CheckValue is a checkbox row.  When Tri is set the row renders the
// Yes / No / N-A columns; otherwise a single checked/unchecked mark.
type CheckValue struct {
	Label   string
	Tri     bool
	State   TriState // used when Tri
	Checked bool     // used when !Tri
}

// Table is a column-headed grid, used for 501A transactions and 519A
// drug movements.
type Table struct {
	Columns []string
	Rows    [][]string
}
