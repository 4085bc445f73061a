package httpapi

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"codeberg.org/mutker/producflow/internal/domain"
	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/metrics"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Production Records"
	shiftsSheet  = "Shift Summary"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var recordsHeader = []string{
	"ID", "Equipment ID", "Shift", "Output", "Defects", "Downtime (min)", "Efficiency (%)", "Date",
}

var shiftsHeader = []string{
	"Shift", "Date", "Total Output", "Total Defects", "Total Downtime (min)", "Average Efficiency (%)", "Equipment",
}

// exportProduction serves one day's records and shift summaries as a workbook.
func (s *Server) exportProduction(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	from, to := domain.DayRange(date)
	records, err := s.store.ProductionRecords(r.Context(), domain.ProductionFilter{From: from, To: to})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summaries, err := s.reporter.ShiftSummaries(r.Context(), date, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	buf, err := buildWorkbook(records, summaries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition",
		`attachment; filename="production-`+from.Format(dateLayout)+`.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func buildWorkbook(records []domain.ProductionRecord, summaries []metrics.ShiftSummary) (*bytes.Buffer, error) {
	errFactory := errors.New()

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, errFactory.Wrap(ErrExport, err)
	}

	recordRows := make([][]any, 0, len(records))
	for _, rec := range records {
		recordRows = append(recordRows, []any{
			rec.ID, rec.EquipmentID, string(rec.Shift), rec.OutputQuantity, rec.DefectQuantity,
			rec.DowntimeMinutes, metrics.Round2(rec.EfficiencyPercentage), rec.Date.Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, recordsSheet, recordsHeader, recordRows, headerStyle); err != nil {
		return nil, errFactory.Wrap(ErrExport, err)
	}

	shiftRows := make([][]any, 0, len(summaries))
	for _, sum := range summaries {
		shiftRows = append(shiftRows, []any{
			string(sum.Shift), sum.Date.Format(dateLayout), sum.TotalOutput, sum.TotalDefects,
			sum.TotalDowntime, sum.AverageEfficiency, sum.EquipmentCount,
		})
	}
	if err := writeSheet(f, shiftsSheet, shiftsHeader, shiftRows, headerStyle); err != nil {
		return nil, errFactory.Wrap(ErrExport, err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errFactory.Wrap(ErrExport, err)
	}
	if idx, err := f.GetSheetIndex(recordsSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errFactory.Wrap(ErrExport, err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]any, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &headerRow); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
