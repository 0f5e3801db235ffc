package form

var locationStatusItems = []struct{ label, source string }{
	{"Quarantine", "locationStatus.quarantine"},
	{"Rejected", "locationStatus.rejected"},
	{"Released", "locationStatus.released"},
}

var transactionColumns = []string{"Date", "Description", "Units In", "Units Out", "Balance", "Completed By"}

func build501A(p Payload) Document {
	doc := Document{
		Title:  "Form 501A - Material Accountability Record",
		Number: p.String("receiving_no"),
	}

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Material Identification",
		Fields: []FieldValue{
			{"Receiving No.", p.String("receiving_no")},
			{"Item No.", p.String("item_no")},
			{"Item Description", p.String("item_description")},
			{"Client Name", p.String("client_name")},
			{"Vendor Name", p.String("vendor_name")},
			{"Lot No.", p.String("lot_no")},
			{"Storage Conditions", p.String("storage_conditions")},
			{"Other Storage Conditions", p.String("other_storage_conditions")},
			{"Total Units Received", p.String("total_units_received")},
			{"Controlled Substance", p.String("controlled_substance")},
		},
	})

	var status []CheckValue
	for _, item := range locationStatusItems {
		status = append(status, CheckValue{Label: item.label, Checked: p.Bool(item.source)})
	}
	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Location Status",
		Checks:  status,
		Fields: []FieldValue{
			{p.String("dateType"), p.String("dateValue")},
			{"Completed By", p.String("completedBy")},
		},
	})

	table := &Table{Columns: transactionColumns}
	for _, tx := range p.List("transactions") {
		table.Rows = append(table.Rows, []string{
			tx.String("date"), tx.String("description"), tx.String("units_in"),
			tx.String("units_out"), tx.String("balance"), tx.String("completed_by"),
		})
	}
	doc.Blocks = append(doc.Blocks, Block{Heading: "Transactions", Table: table})

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Comments",
		Fields:  []FieldValue{{"Comments", p.String("comments")}},
	})
	return doc
}
