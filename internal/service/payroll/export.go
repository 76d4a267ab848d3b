package payroll

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/cmlabs-hris/hris-portal-go/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName       = "Payroll"
)

var exportHeader = []string{
	"Employee Name", "Email", "Department", "Monthly Salary",
	"Full Days", "Late Days", "Absents", "Leave Days",
	"LOP Amount", "Final Pay",
}

func exportFilename(resp payroll.PayrollResponse, format payroll.Format) string {
	return fmt.Sprintf("payroll_%s_to_%s.%s", resp.PayrollPeriod.StartDate, resp.PayrollPeriod.EndDate, format)
}

func renderCSV(resp payroll.PayrollResponse) (payroll.ExportFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return payroll.ExportFile{}, err
	}
	for _, r := range resp.PayrollData {
		record := []string{
			r.EmployeeName,
			r.Email,
			r.Department,
			r.MonthlySalary.StringFixed(2),
			strconv.Itoa(r.FullDays),
			strconv.Itoa(r.LateDays),
			strconv.Itoa(r.Absents),
			strconv.Itoa(r.LeaveDays),
			r.LOPAmount.StringFixed(2),
			r.FinalPay.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return payroll.ExportFile{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return payroll.ExportFile{}, err
	}

	return payroll.ExportFile{
		Filename:    exportFilename(resp, payroll.FormatCSV),
		ContentType: csvContentType,
		Content:     buf.Bytes(),
	}, nil
}

func renderXLSX(resp payroll.PayrollResponse) (payroll.ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return payroll.ExportFile{}, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return payroll.ExportFile{}, err
	}

	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return payroll.ExportFile{}, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(exportHeader))
	if err != nil {
		return payroll.ExportFile{}, err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return payroll.ExportFile{}, err
	}

	for i, r := range resp.PayrollData {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return payroll.ExportFile{}, err
		}
		values := []interface{}{
			r.EmployeeName,
			r.Email,
			r.Department,
			r.MonthlySalary.InexactFloat64(),
			r.FullDays,
			r.LateDays,
			r.Absents,
			r.LeaveDays,
			r.LOPAmount.InexactFloat64(),
			r.FinalPay.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return payroll.ExportFile{}, err
		}
		for _, col := range []string{"D", "I", "J"} {
			ref := fmt.Sprintf("%s%d", col, row)
			if err := f.SetCellStyle(sheetName, ref, ref, moneyStyle); err != nil {
				return payroll.ExportFile{}, err
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "C", 24); err != nil {
		return payroll.ExportFile{}, err
	}
	if err := f.SetColWidth(sheetName, "D", lastCol, 14); err != nil {
		return payroll.ExportFile{}, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return payroll.ExportFile{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return payroll.ExportFile{}, err
	}

	return payroll.ExportFile{
		Filename:    exportFilename(resp, payroll.FormatXLSX),
		ContentType: xlsxContentType,
		Content:     buf.Bytes(),
	}, nil
}
