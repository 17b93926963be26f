package reports

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"
)

// StatementPDF renders the user's transactions for a date range as a PDF.
func (h *Handler) StatementPDF(c *fiber.Ctx) error {
	userID, ok := reportUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	from, to, err := statementRange(c)
	if err != nil {
		return err
	}

	items, totalIncome, totalExpense, err := h.loadRows(c.UserContext(), userID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed statement: "+err.Error())
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Period: "+from+" to "+to)
	pdf.Ln(5)
	pdf.Cell(0, 6, "User: "+maskID(userID))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Income", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expense", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Net", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, totalIncome.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, totalExpense.StringFixed(2), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, totalIncome.Sub(totalExpense).StringFixed(2), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	colW := []float64{26, 22, 92, 28, 18}
	pdf.CellFormat(colW[0], 8, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[1], 8, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[2], 8, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[3], 8, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(colW[4], 8, "Auto", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range items {
		desc := it.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		auto := ""
		if it.Recurring {
			auto = "yes"
		}
		pdf.CellFormat(colW[0], 7, it.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 7, it.Type, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 7, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 7, it.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colW[4], 7, auto, "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render pdf: "+err.Error())
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="statement-`+from+`-`+to+`.pdf"`)
	return c.Send(buf.Bytes())
}
