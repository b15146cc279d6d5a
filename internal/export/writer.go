package export

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"
	"time"

	"loopr-backend/internal/models"
)

const DefaultFilename = "transactions_export"

// Writer renders transactions as CSV rows for a fixed column set.
type Writer struct {
	csv     *csv.Writer
	columns []Column
	row     []string
	rows    int
}

func NewWriter(w io.Writer, cols []Column) *Writer {
	return &Writer{
		csv:     csv.NewWriter(w),
		columns: cols,
		row:     make([]string, len(cols)),
	}
}

func (w *Writer) WriteHeader() error {
	for i, c := range w.columns {
		w.row[i] = c.Label
	}
	return w.csv.Write(w.row)
}

func (w *Writer) Write(t *models.Transaction) error {
	for i, c := range w.columns {
		w.row[i] = c.Value(t)
	}
	if err := w.csv.Write(w.row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Flush pushes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func (w *Writer) Rows() int {
	return w.rows
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename builds "<base>_<timestamp>.csv" where the timestamp is the
// ISO-8601 UTC time with ':' and '.' replaced by '-'.
func Filename(base string, now time.Time) string {
	base = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(base), "_")
	base = strings.Trim(base, "_")
	if base == "" {
		base = DefaultFilename
	}
	stamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return base + "_" + stamp + ".csv"
}
