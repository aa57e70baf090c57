package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tgpulse/tgpulse/app/database"
)

// DefaultColumns is the column order used when the caller does not pick
// its own set.
var DefaultColumns = []string{
	"id", "post_id", "channel", "date", "text", "author",
	"views", "likes", "engagement_rate", "content_type",
	"hashtags", "mentions", "links",
}

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	dateLayout = "2006-01-02 15:04:05"
	sheetName  = "Posts"
)

// ErrLimitExceeded reports that an export was refused before any rows
// were rendered.
type ErrLimitExceeded struct {
	Requested int
	Limit     int
}

func (e *ErrLimitExceeded) Error() string {
	return fmt.Sprintf("export of %d rows exceeds the limit of %d", e.Requested, e.Limit)
}

// Record pairs a post with the resolved channel handle, which the post
// row itself does not carry.
type Record struct {
	Post    database.Post
	Channel string
}

// ToRows renders records as a header row followed by one row per record.
// An empty record list yields no rows at all, not a lone header. Unknown
// column names render as empty cells rather than failing the whole
// export.
func ToRows(records []Record, columns []string) [][]string {
	if len(records) == 0 {
		return nil
	}
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, columns)

	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = cellValue(record, column)
		}
		rows = append(rows, row)
	}

	return rows
}

// ToCSV renders records as UTF-8 CSV prefixed with a BOM so spreadsheet
// applications pick up the encoding. No records means empty bytes.
func ToCSV(records []Record, columns []string) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	buf.WriteString("\xef\xbb\xbf")

	w := csv.NewWriter(&buf)
	for _, row := range ToRows(records, columns) {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// ToXLSX renders records as a single-sheet workbook. No records means
// empty bytes.
func ToXLSX(records []Record, columns []string) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, row := range ToRows(records, columns) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write sheet row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func cellValue(record Record, column string) string {
	p := record.Post

	switch column {
	case "id":
		return strconv.FormatInt(p.ID, 10)
	case "post_id":
		return p.PostID
	case "channel":
		return record.Channel
	case "date":
		return p.Date.Format(dateLayout)
	case "text":
		return stringValue(p.Text)
	case "author":
		return stringValue(p.Author)
	case "views":
		return strconv.Itoa(p.Views)
	case "likes":
		return strconv.Itoa(p.Likes)
	case "engagement_rate":
		if p.EngagementRate == nil {
			return ""
		}
		return strconv.FormatFloat(*p.EngagementRate, 'f', -1, 64)
	case "reading_time":
		return strconv.Itoa(p.ReadingTime)
	case "content_type":
		return p.ContentType
	case "category":
		return stringValue(p.Category)
	case "media_urls":
		return strings.Join(p.MediaURLs, ", ")
	case "hashtags":
		return strings.Join(p.Hashtags, ", ")
	case "mentions":
		return strings.Join(p.Mentions, ", ")
	case "links":
		return strings.Join(p.Links, ", ")
	case "keywords":
		return strings.Join(p.Keywords, ", ")
	case "parsed_at":
		return p.ParsedAt.Format(dateLayout)
	}

	return ""
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Filename builds the attachment name for an export download.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("posts_%s.%s", now.Format("20060102_150405"), format)
}
