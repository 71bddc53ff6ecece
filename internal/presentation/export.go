package presentation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jengzang/reallocation-screener/internal/models"
)

// ExportFilename is the suggested download name of the filtered view
const ExportFilename = "filtered_reallocation_data.csv"

// WriteCSV writes the view as UTF-8 CSV with a byte-order mark so spreadsheet
// tools detect the encoding. All columns are written in table order with a header
// row and no index column. Nulls become empty fields.
// It returns the number of data rows written.
func WriteCSV(w io.Writer, view *models.Table) (int, error) {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)

	if err := cw.Write(view.Columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(view.Columns))
	for i := range view.Records {
		for j, col := range view.Columns {
			row[j] = FormatValue(view.Records[i].Value(col))
		}
		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return view.Len(), fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := tw.Close(); err != nil {
		return view.Len(), fmt.Errorf("failed to flush csv: %w", err)
	}
	return view.Len(), nil
}

// FormatValue renders a record value as CSV text
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case time.Time:
		return x.Format(models.ExportTimeLayout)
	default:
		return fmt.Sprint(x)
	}
}
