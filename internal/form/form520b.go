package form

// Delivery acceptance rows on the 520B carry Yes/No/N-A selections; the
// remaining checkbox groups are plain booleans.  Label text matches the
// controlled template wording exactly.
var deliveryAcceptanceItems = []struct{ label, source string }{
	{"Material placed in storage as documented above", "deliveryAcceptance.material_placed"},
	{"Discrepancies and/or damaged documented on the shipping paperwork", "deliveryAcceptance.discrepancies"},
	{"Supporting documentation received attached", "deliveryAcceptance.supporting_docs"},
	{"Shipment REJECTED. Reason documented on the shipping paperwork", "deliveryAcceptance.shipment_rejected"},
}

var documentVerificationItems = []string{
	"Purchase Order", "Packing Slip", "Bill of Lading", "CoC/CoA",
	"SDS #", "Invoice", "Other (Specify)",
}

var issuesItems = []string{
	"Quantity discrepancies found",
	"Damage to shipping container(s)",
	"Damage to product within shipping container",
	"Temperature excursion",
}

func build520B(p Payload) Document {
	doc := Document{
		Title:  "Form 520B - Material Receipt and Delivery Acceptance",
		Number: p.String("RN"),
	}

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Material Identification",
		Fields: []FieldValue{
			{"Item No.", p.String("Item No")},
			{"Tracking No.", p.String("Tracking No")},
			{"Client Name", p.String("Client Name")},
			{"Item Description", p.String("Item Description")},
			{"Storage Conditions: Temperature", p.String("Storage Conditions:Temperature")},
			{"Other", p.String("Other")},
		},
	})

	var acceptance []CheckValue
	for _, item := range deliveryAcceptanceItems {
		acceptance = append(acceptance, CheckValue{Label: item.label, Tri: true, State: p.Tri(item.source)})
	}
	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Delivery Acceptance",
		Checks:  acceptance,
		Fields:  []FieldValue{{"Completed By", p.String("deliveryCompletedBy")}},
	})

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Receiving",
		Fields: []FieldValue{
			{"Receiving No.", p.String("RN")},
			{"Lot No.", p.String("Lot No")},
			{"PO No.", p.String("PO No")},
			{"Protocol No.", p.String("Protocol No")},
			{"Vendor", p.String("Vendor")},
			{"UoM", p.String("UoM")},
			{"Total Units (vendor count)", p.String("Total Units (vendor count)")},
			{"Total Storage Containers", p.String("Total Storage Containers")},
			{p.String("selectedDateType"), p.String("dateValue")},
			{"Completed By", p.String("receivedBy")},
		},
	})

	var verification []CheckValue
	for _, label := range documentVerificationItems {
		verification = append(verification, CheckValue{Label: label, Checked: p.Bool("documentVerification." + label)})
	}
	doc.Blocks = append(doc.Blocks, Block{Heading: "Document Verification", Checks: verification})

	var issues []CheckValue
	for _, label := range issuesItems {
		issues = append(issues, CheckValue{Label: label, Checked: p.Bool("issuesSection." + label)})
	}
	doc.Blocks = append(doc.Blocks, Block{Heading: "Issues", Checks: issues})

	doc.Blocks = append(doc.Blocks, Block{
		Heading: "Disposition",
		Fields: []FieldValue{
			{"NCMR", p.String("NCMR")},
			{"Comments", p.String("Comments")},
		},
	})
	return doc
}
