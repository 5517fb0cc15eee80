// Package report exports the search history of an optimizer set to an
// xlsx workbook: one Summary sheet plus one history sheet per
// optimizer.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/emtune/tuner-core/internal/search"
)

// WriteWorkbook writes the set's current state to filename.
func WriteWorkbook(filename string, set *search.Set) error {
	f, err := buildWorkbook(setOptimizers(set))
	if err != nil {
		return err
	}
	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("saving report %s: %w", filename, err)
	}
	return nil
}

// Write streams the workbook to w, for serving reports over HTTP.
func Write(w io.Writer, set *search.Set) error {
	f, err := buildWorkbook(setOptimizers(set))
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// WriteOptimizer streams a workbook holding one optimizer's summary
// and history.
func WriteOptimizer(w io.Writer, o *search.Optimizer) error {
	f, err := buildWorkbook([]*search.Optimizer{o})
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing report for %s: %w", o.Name(), err)
	}
	return nil
}

func setOptimizers(set *search.Set) []*search.Optimizer {
	opts := make([]*search.Optimizer, 0, set.Len())
	for _, name := range set.Names() {
		if o, ok := set.Get(name); ok {
			opts = append(opts, o)
		}
	}
	return opts
}

func buildWorkbook(optimizers []*search.Optimizer) (*excelize.File, error) {
	f := excelize.NewFile()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)

	headers := []string{"Optimizer", "Variable", "Strategy", "State", "Batches", "Best batch", "Best value", "Best output", "Target"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summary, cell, h)
	}

	for row, o := range optimizers {
		if err := writeSummaryRow(f, summary, row+2, o); err != nil {
			return nil, err
		}
		if err := writeHistorySheet(f, o); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeSummaryRow(f *excelize.File, sheet string, row int, o *search.Optimizer) error {
	state := "searching"
	if o.Done() {
		state = "stopped"
	}

	values := []any{o.Name(), o.VariableName(), o.StrategyName(), state, o.PreviousBatchNo()}

	if batch, best, err := o.Closest(); err == nil {
		_, outputs := o.History()
		values = append(values, batch.BatchNo, best, outputs[batch.BatchNo-1])
	} else {
		values = append(values, "", "", "")
	}
	values = append(values, o.Settings().TargetValue)

	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheet, cell, v)
	}
	return nil
}

func writeHistorySheet(f *excelize.File, o *search.Optimizer) error {
	sheet := o.Name()
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %s: %w", sheet, err)
	}

	headers := []string{"Batch", o.VariableName(), o.Settings().TargetQuantity, "Artifact"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	variables, outputs := o.History()
	ledger := o.Ledger()
	for i := range variables {
		row := i + 2
		artifact := ""
		if i < len(ledger) {
			artifact = ledger[i].ArtifactName
		}
		for col, v := range []any{i + 1, variables[i], outputs[i], artifact} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}
