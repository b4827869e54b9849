package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"robot-factory-backend/internal/store"
)

const (
	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// NoDataSheet names the only sheet of a workbook for a week without production.
	NoDataSheet = "No Data Available"

	dateLayout   = "2006-01-02"
	columnMargin = 2
)

// Header is the first row of every model sheet.
var Header = []string{"Модель", "Версия", "Количество за неделю"}

// Source supplies aggregated production counts.
type Source interface {
	WeeklyProduction(ctx context.Context, from, to time.Time) ([]store.ProductionRow, error)
}

// Report is a rendered weekly workbook.
type Report struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Filename  string
	Content   []byte
}

// Generator builds the weekly production report.
type Generator struct {
	source Source
	loc    *time.Location
	now    func() time.Time
}

// NewGenerator creates a generator computing weeks in loc.
func NewGenerator(source Source, loc *time.Location) *Generator {
	if loc == nil {
		loc = time.Local
	}
	return &Generator{source: source, loc: loc, now: time.Now}
}

// WeekBounds returns Monday 00:00:00 and Sunday 23:59:59 of the week containing t,
// in t's location.
func WeekBounds(t time.Time) (start, end time.Time) {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	start = time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 7).Add(-time.Second)
	return start, end
}

// Filename is the download name of the report for the week starting at start.
func Filename(start, end time.Time) string {
	return fmt.Sprintf("robot_production_report_%s_to_%s.xlsx", start.Format(dateLayout), end.Format(dateLayout))
}

// CurrentWeek returns the bounds of the week containing the current time.
func (g *Generator) CurrentWeek() (start, end time.Time) {
	return WeekBounds(g.now().In(g.loc))
}

// Weekly renders the report for the current week.
func (g *Generator) Weekly(ctx context.Context) (*Report, error) {
	start, end := g.CurrentWeek()

	rows, err := g.source.WeeklyProduction(ctx, start, start.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	f, err := BuildWorkbook(rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return &Report{
		WeekStart: start,
		WeekEnd:   end,
		Filename:  Filename(start, end),
		Content:   buf.Bytes(),
	}, nil
}

// BuildWorkbook lays rows out with one sheet per model, in the order models first appear.
// Sheet names are case-insensitive, so a model clashing with an earlier sheet gets a
// numeric suffix.
func BuildWorkbook(rows []store.ProductionRow) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	if len(rows) == 0 {
		if err := f.SetSheetName(defaultSheet, NoDataSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name empty sheet: %w", err)
		}
		return f, nil
	}

	var models []string
	byModel := make(map[string][]store.ProductionRow)
	for _, r := range rows {
		if _, ok := byModel[r.Model]; !ok {
			models = append(models, r.Model)
		}
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	sheets := make([]string, 0, len(models))
	for i, name := range models {
		sheet := uniqueSheetName(name, sheets)
		var err error
		if i == 0 {
			// The first model takes over the builder's default sheet.
			err = renameSheet(f, defaultSheet, sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		sheets = append(sheets, sheet)

		if err := writeModelSheet(f, sheet, byModel[name]); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// uniqueSheetName appends 1, 2, ... to name until it no longer matches any of taken.
func uniqueSheetName(name string, taken []string) string {
	candidate := name
	for i := 1; containsFold(taken, candidate); i++ {
		candidate = name + strconv.Itoa(i)
	}
	return candidate
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// renameSheet renames from to to, also when the two differ only by case,
// which excelize treats as a no-op.
func renameSheet(f *excelize.File, from, to string) error {
	if from == to {
		return nil
	}
	if strings.EqualFold(from, to) {
		if err := f.SetSheetName(from, NoDataSheet); err != nil {
			return err
		}
		from = NoDataSheet
	}
	return f.SetSheetName(from, to)
}

func writeModelSheet(f *excelize.File, sheet string, rows []store.ProductionRow) error {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, Header)
	for _, r := range rows {
		table = append(table, []string{r.Model, r.Version, strconv.FormatInt(r.Total, 10)})
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{Header[0], Header[1], Header[2]}); err != nil {
		return fmt.Errorf("failed to write header on %q: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{r.Model, r.Version, r.Total}); err != nil {
			return fmt.Errorf("failed to write row %d on %q: %w", i+2, sheet, err)
		}
	}

	for col := range Header {
		width := 0
		for _, row := range table {
			width = max(width, utf8.RuneCountInString(row[col]))
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width+columnMargin)); err != nil {
			return fmt.Errorf("failed to size column %s on %q: %w", name, sheet, err)
		}
	}
	return nil
}
