package infra

// packing_slip.go — packing slip generation using go-pdf/fpdf.
// A slip is rendered after CompletePacking commits and travels inside the
// package: pack number header, order reference, item table with quantities,
// and the measured weight / dimensions / package count.
//
// The output file is saved to storagePath/slip_{packNumber}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"packhouse/internal/model"
)

// GeneratePackingSlip renders the slip for a packed PickPack and returns the
// absolute path to the generated file.
func GeneratePackingSlip(pp *model.PickPack, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("slip: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("slip_%s.pdf", pp.PackNumber)
	filePath := filepath.Join(storagePath, fileName)

	// A6 landscape fits the standard slip pouches used on the packing bench.
	pdf := fpdf.New("L", "mm", "A6", "")
	pdf.SetMargins(6, 6, 6)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 12

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "PACKING SLIP", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, pp.PackNumber, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Order "+pp.OrderID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.Line(6, pdf.GetY(), pageW-6, pdf.GetY())
	pdf.Ln(2)

	// ── Item table ────────────────────────────────────────────────────────────
	col1 := contentW * 0.62 // product id
	col2 := contentW * 0.14 // qty
	col3 := contentW * 0.24 // shelf

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Shelf", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range pp.Items {
		shelf := ""
		if item.ShelfLocation != nil {
			shelf = *item.ShelfLocation
		}
		pdf.CellFormat(col1, 5, item.ProductID.String(), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, shelf, "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(6, pdf.GetY(), pageW-6, pdf.GetY())
	pdf.Ln(2)

	// ── Package attributes ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW/3, 5, "Weight: "+pp.WeightKg.StringFixed(3)+" kg", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/3, 5, "Dims: "+pp.Dimensions, "", 0, "C", false, 0, "")
	pdf.CellFormat(contentW/3, 5, fmt.Sprintf("Packages: %d", pp.PackageCount), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("slip: write file: %w", err)
	}

	return filePath, nil
}
