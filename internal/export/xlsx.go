// Package export writes intake runs to spreadsheet files for the firm's
// weekly reporting.
package export

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/intake-cli/internal/model"
)

var runHeaders = []string{
	"Run ID",
	"Session ID",
	"Team ID",
	"Status",
	"Workflow",
	"Matter Type",
	"Urgency",
	"Contact Name",
	"Email",
	"Phone",
	"Quality",
	"Completeness",
	"Needs Review",
	"Action",
	"Priority",
	"Degraded",
	"Failures",
	"Tokens",
	"Cost USD",
	"Created",
}

// WriteRunsXLSX writes one row per run to an XLSX file at path.
func WriteRunsXLSX(path string, runs []model.IntakeRun) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Intake Runs")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range runHeaders {
		header.AddCell().SetString(h)
	}

	for _, run := range runs {
		addRunRow(sheet, run)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save file")
	}
	return nil
}

func addRunRow(sheet *xlsx.Sheet, run model.IntakeRun) {
	row := sheet.AddRow()
	row.AddCell().SetString(run.ID)
	row.AddCell().SetString(run.Session.SessionID)
	row.AddCell().SetString(run.Session.TeamID)
	row.AddCell().SetString(string(run.Status))

	if run.Result == nil {
		// Pad so every row has the same width.
		for i := 4; i < len(runHeaders)-1; i++ {
			row.AddCell()
		}
		row.AddCell().SetString(run.CreatedAt.Format(time.RFC3339))
		return
	}

	res := run.Result
	row.AddCell().SetString(string(res.Workflow.Workflow))
	row.AddCell().SetString(res.Matter.MatterType)
	row.AddCell().SetString(string(res.Matter.Urgency))
	row.AddCell().SetString(res.Contact.FullName)
	row.AddCell().SetString(res.Contact.Email)
	row.AddCell().SetString(res.Contact.Phone)
	row.AddCell().SetInt(res.Quality.QualityScore)
	row.AddCell().SetInt(res.Quality.CompletenessScore)
	row.AddCell().SetBool(res.Quality.RequiresHumanReview)
	row.AddCell().SetString(string(res.Action.Action))
	row.AddCell().SetString(string(res.Action.Priority))
	row.AddCell().SetBool(res.Degraded)
	row.AddCell().SetString(failureSummary(res.StageFailures))
	row.AddCell().SetInt(res.TotalTokens)
	row.AddCell().SetFloat(res.TotalCost)
	row.AddCell().SetString(run.CreatedAt.Format(time.RFC3339))
}

func failureSummary(failures []model.StageFailure) string {
	if len(failures) == 0 {
		return ""
	}
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.Stage + ":" + string(f.Kind)
	}
	return strings.Join(parts, ", ")
}
