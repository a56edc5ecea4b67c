package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/fdg312/health-hub/internal/bundle"
	"github.com/jung-kurt/gofpdf"
)

// Generator renders a bundle.Comparison as a PDF or CSV export for
// handoff to kitchen staff.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateReport renders cmp in the requested format. ctx is accepted for
// symmetry with the rest of the service layer; rendering itself is pure
// CPU work and never blocks.
func (g *Generator) GenerateReport(ctx context.Context, cmp bundle.Comparison, format string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return g.generatePDF(cmp)
	case FormatCSV:
		return g.generateCSV(cmp)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Generator) generateCSV(cmp bundle.Comparison) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"solution_rank", "total_cost_cents", "avg_cost_per_person_cents",
		"popular_items_percent", "kitchen_load_percent", "optimality_score",
		"item_id", "item_name", "quantity",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for rank, sol := range cmp.Solutions {
		itemIDs := make([]string, 0, len(sol.Items))
		for id := range sol.Items {
			itemIDs = append(itemIDs, id)
		}
		sort.Strings(itemIDs)

		if len(itemIDs) == 0 {
			row := solutionRow(rank, sol, "", "", 0)
			if err := w.Write(row); err != nil {
				return nil, err
			}
			continue
		}

		for _, id := range itemIDs {
			qty := sol.Items[id]
			name := id
			if item, ok := sol.ItemByID[id]; ok {
				name = item.Name
			}
			row := solutionRow(rank, sol, id, name, qty)
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func solutionRow(rank int, sol bundle.Solution, itemID, itemName string, qty int) []string {
	return []string{
		strconv.Itoa(rank + 1),
		strconv.Itoa(sol.TotalCost),
		strconv.Itoa(sol.AverageCostPerPerson),
		fmt.Sprintf("%.1f", sol.PopularItemsPercent),
		fmt.Sprintf("%.1f", sol.KitchenLoadPercent),
		strconv.Itoa(sol.OptimalityScore),
		itemID,
		itemName,
		strconv.Itoa(qty),
	}
}

func (g *Generator) generatePDF(cmp bundle.Comparison) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, "Bundle Comparison")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Solver: %s", cmp.SolverType))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Finding time: %d ms", cmp.FindingTimeMs))
	pdf.Ln(5)
	if cmp.Reason != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Reason: %s (no bundles found)", cmp.Reason))
		pdf.Ln(10)
	} else {
		pdf.Cell(0, 6, fmt.Sprintf("Bundles returned: %d", len(cmp.Solutions)))
		pdf.Ln(10)
	}

	for rank, sol := range cmp.Solutions {
		pdf.SetFont("Arial", "", 13)
		pdf.Cell(0, 8, fmt.Sprintf("Bundle #%d — score %d", rank+1, sol.OptimalityScore))
		pdf.Ln(7)

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 5, fmt.Sprintf("Total cost: %d cents (avg/person: %d)", sol.TotalCost, sol.AverageCostPerPerson))
		pdf.Ln(5)
		pdf.Cell(0, 5, fmt.Sprintf("Popular items: %.1f%%   Kitchen load: %.1f%%", sol.PopularItemsPercent, sol.KitchenLoadPercent))
		pdf.Ln(7)

		g.drawItemsTable(pdf, sol)
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawItemsTable(pdf *gofpdf.Fpdf, sol bundle.Solution) {
	itemIDs := make([]string, 0, len(sol.Items))
	for id, qty := range sol.Items {
		if qty > 0 {
			itemIDs = append(itemIDs, id)
		}
	}
	sort.Strings(itemIDs)

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(80, 6, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, "Diet", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Price (c)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Qty", "1", 1, "C", false, 0, "")

	for _, id := range itemIDs {
		qty := sol.Items[id]
		item := sol.ItemByID[id]
		pdf.CellFormat(80, 6, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, string(item.Diet), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, strconv.Itoa(item.PriceCents), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, strconv.Itoa(qty), "1", 1, "C", false, 0, "")
	}
}
