package form

var movementColumns = []string{"Destination", "Date", "Time", "Exposure Time", "Cumulative ET", "Completed By", "Verified By"}

func build519A(p Payload) Document {
	doc := Document{
		Title:  "Form 519A - Drug Movement and Exposure Record",
		Number: p.String("Receiving No"),
	}

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Material Identification",
		Fields: []FieldValue{
			{"Receiving No.", p.String("Receiving No")},
			{"Item No.", p.String("Item No")},
			{"Item Description", p.String("Item Description")},
			{"Lot No.", p.String("Lot No")},
			{"Storage Conditions", p.String("Storage Conditions")},
			{"Other Storage Conditions", p.String("Other Storage Conditions")},
			{"Date and Time Received", p.String("Date and Time Received")},
		},
	})

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Temperature Monitoring",
		Fields: []FieldValue{
			{"Temperature Device on Alarm", p.String("Temperature Device on Alarm")},
			{"Temperature Device Deactivated", p.String("Temperature Device Deactivated")},
			{"Temperature Device Returned to Courier", p.String("Temperature Device Returned to Courier")},
		},
	})

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Exposure Limits",
		Fields: []FieldValue{
			{"Maximum Exposure Time", p.String("Maximum Exposure Time")},
			{"Temper Time", p.String("Temper Time")},
			{"Working Exposure Time", p.String("Working Exposure Time")},
			{"Container No.", p.String("Container No")},
			{"Total Units/Container", p.String("Total Units/Container")},
			{"Record Created By", p.String("Record Created By")},
		},
	})

	table := &Table{Columns: movementColumns}
	for _, mv := range p.List("drugMovements") {
		table.Rows = append(table.Rows, []string{
			mv.String("destination"), mv.String("date"), mv.String("time"),
			mv.String("exposureTime"), mv.String("cumulativeET"),
			mv.String("completedBy"), mv.String("verifiedBy"),
		})
	}
	doc.Blocks = append(doc.Blocks, Block{Heading: "Drug Movements", Table: table})
	return doc
}
