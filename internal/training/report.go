package training

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jengzang/flight-delay-backend-go/internal/artifact"
	"github.com/jengzang/flight-delay-backend-go/internal/dataset"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// Report sheet names
const (
	SheetMetrics     = "Metrics"
	SheetImportance  = "Feature Importance"
	SheetImputation  = "Imputation"
	SheetCorrelation = "Target Correlation"
)

// Report is the content of the training report workbook
type Report struct {
	Metrics      models.EvaluationMetrics
	Importance   []gbm.Importance
	Imputations  []dataset.Imputation
	Correlations []Correlation
}

// WriteReport renders the report as an xlsx workbook at path
func WriteReport(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMetrics); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, SheetMetrics, []string{"Metric", "Value"}, metricRows(r.Metrics)); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetImportance); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	importance := make([][]any, len(r.Importance))
	for i, imp := range r.Importance {
		importance[i] = []any{i + 1, imp.Feature, imp.Score}
	}
	if err := writeRows(f, SheetImportance, []string{"Rank", "Feature", "Importance"}, importance); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetImputation); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	imputations := make([][]any, len(r.Imputations))
	for i, imp := range r.Imputations {
		imputations[i] = []any{imp.Column, imp.Strategy, imp.Value, imp.Filled}
	}
	if err := writeRows(f, SheetImputation, []string{"Column", "Strategy", "Value", "Filled"}, imputations); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetCorrelation); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	correlations := make([][]any, len(r.Correlations))
	for i, c := range r.Correlations {
		correlations[i] = []any{c.Feature, c.Pearson, c.Spearman}
	}
	if err := writeRows(f, SheetCorrelation, []string{"Feature", "Pearson", "Spearman"}, correlations); err != nil {
		return err
	}

	return artifact.WriteAtomic(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
			}
		}
	}
	return nil
}

func metricRows(m models.EvaluationMetrics) [][]any {
	rows := [][]any{
		{"Run", m.RunID},
		{"RMSE", m.RMSE},
		{"MAE", m.MAE},
		{"R2", m.R2},
		{"Median absolute error", m.MedianAbsoluteError},
		{"Explained variance", m.ExplainedVariance},
		{"MAPE (%)", m.MAPE},
		{"Mean actual", m.MeanActual},
		{"Mean predicted", m.MeanPredicted},
		{"Std actual", m.StdActual},
		{"Std predicted", m.StdPredicted},
		{"Min actual", m.MinActual},
		{"Max actual", m.MaxActual},
		{"Min predicted", m.MinPredicted},
		{"Max predicted", m.MaxPredicted},
		{"Train rows", m.TrainRows},
		{"Test rows", m.TestRows},
		{"Best iteration", m.BestIteration},
	}
	if m.Baseline != nil {
		rows = append(rows,
			[]any{"Linear baseline RMSE", m.Baseline.RMSE},
			[]any{"Linear baseline MAE", m.Baseline.MAE},
		)
	}
	return rows
}
