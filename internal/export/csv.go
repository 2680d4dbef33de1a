package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/okabelab/graymeter/internal/database"
)

// utf8BOM is prepended so spreadsheet applications detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BuildCSV renders result rows as a CSV document with a UTF-8 BOM and CRLF
// line endings. Columns are the filename and the white-pixel counts at each
// of the two cutoffs.
func BuildCSV(rows []database.ResultRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write([]string{"filename", "white_pixel_count_t1", "white_pixel_count_t2"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Filename,
			strconv.Itoa(row.Count1),
			strconv.Itoa(row.Count2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
