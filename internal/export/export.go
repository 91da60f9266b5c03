// Package export writes the filtered grid view to an XLSX workbook with the
// same columns, headers and sheet name the original tracking sheet uses.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/airock47/proctrack/internal/grid"
)

const sheetName = "採購進度追蹤"

var headers = []string{
	"採購單號",
	"產品代碼",
	"商品",
	"貨物狀態",
	"採購數量",
	"交貨日期(系統預計交期)",
	"派送日期(下次交貨日期)",
	"到港日",
	"倉庫",
	"良品庫存(不含門市)",
	"未交貨數量",
	"備註",
}

// Write renders rows to an XLSX file at path. Rows are written in the order
// given; callers pass the already-filtered view.
func Write(path string, rows []grid.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for i, r := range rows {
		values := []any{
			r.PONumber,
			r.ProductCode,
			r.ProductName,
			r.GoodsStatus,
			r.Quantity,
			grid.NormalizeDate(r.DeliveryDate),
			grid.NormalizeDate(r.DispatchDate),
			grid.NormalizeDate(r.ArrivalDate),
			r.Warehouse,
			r.GoodStock,
			r.Outstanding(),
			r.Remarks,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// FileName builds a timestamped export file name.
func FileName(now time.Time) string {
	return fmt.Sprintf("procurement_export_%s.xlsx", now.Format("20060102_150405"))
}
