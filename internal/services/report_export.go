package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/observability"
	"github.com/prefeitura-rio/app-cadastro/internal/utils"
)

const reportSheetName = "Pessoas"

// ReportSource streams the generated CSV report
type ReportSource interface {
	DownloadReport(ctx context.Context) (io.ReadCloser, error)
}

// ReportExporter converts the backend CSV report into an XLSX workbook
type ReportExporter struct {
	source ReportSource
	logger *logging.SafeLogger
}

// NewReportExporter creates an exporter reading from source
func NewReportExporter(source ReportSource) *ReportExporter {
	return &ReportExporter{
		source: source,
		logger: observability.Logger().Named("report_export"),
	}
}

// WriteXLSX downloads the CSV and writes it to w as a workbook. CPF and
// Telefone columns are written masked.
func (e *ReportExporter) WriteXLSX(ctx context.Context, w io.Writer) error {
	ctx, span := utils.TraceBusinessLogic(ctx, "export_xlsx")
	defer span.End()

	body, err := e.source.DownloadReport(ctx)
	if err != nil {
		utils.RecordErrorInSpan(span, err, nil)
		return fmt.Errorf("export report: %w", err)
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("export report: empty csv: %w", ErrInvalidPayload)
		}
		return fmt.Errorf("export report: read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			e.logger.Warn("failed to close workbook", zap.Error(err))
		}
	}()
	xlsx.SetSheetName("Sheet1", reportSheetName)

	headerStyle, err := xlsx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("export report: header style: %w", err)
	}

	formatters := make([]func(string) string, len(header))
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := xlsx.SetCellValue(reportSheetName, cell, name); err != nil {
			return fmt.Errorf("export report: write header: %w", err)
		}
		formatters[col] = columnFormatter(name)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := xlsx.SetCellStyle(reportSheetName, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("export report: apply header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = xlsx.SetColWidth(reportSheetName, "A", lastCol, 24)

	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("export report: read row %d: %w", rows+2, err)
		}

		// cells are written as text so CPF and CEP keep leading zeros
		for col, value := range record {
			if col < len(formatters) && formatters[col] != nil {
				value = formatters[col](value)
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, rows+2)
			if err := xlsx.SetCellStr(reportSheetName, cell, value); err != nil {
				return fmt.Errorf("export report: write %s: %w", cell, err)
			}
		}
		rows++
	}

	utils.AddSpanAttribute(span, "report.rows", rows)
	if _, err := xlsx.WriteTo(w); err != nil {
		return fmt.Errorf("export report: write workbook: %w", err)
	}
	return nil
}

func columnFormatter(header string) func(string) string {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "cpf":
		return func(v string) string { return utils.Format(utils.FieldCPF, v) }
	case "telefone":
		return func(v string) string { return utils.Format(utils.FieldPhone, v) }
	case "cep":
		return func(v string) string { return utils.Format(utils.FieldCEP, v) }
	default:
		return nil
	}
}
