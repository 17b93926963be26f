package reports

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// TransactionsXLSX exports the user's transactions for a date range as a
// spreadsheet.
func (h *Handler) TransactionsXLSX(c *fiber.Ctx) error {
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
		return fiber.NewError(fiber.StatusInternalServerError, "failed export: "+err.Error())
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Type", "Description", "Amount", "Generated"}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hd)
	}

	for row, it := range items {
		auto := ""
		if it.Recurring {
			auto = "yes"
		}
		values := []any{it.Date, it.Type, it.Description, it.Amount.StringFixed(2), auto}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	// totals footer
	footer := len(items) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", footer), "Income")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", footer), totalIncome.StringFixed(2))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", footer+1), "Expense")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", footer+1), totalExpense.StringFixed(2))
	f.SetCellValue(sheet, fmt.Sprintf("A%d", footer+2), "Net")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", footer+2), totalIncome.Sub(totalExpense).StringFixed(2))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render xlsx: "+err.Error())
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="transactions-`+from+`-`+to+`.xlsx"`)
	return c.Send(buf.Bytes())
}
