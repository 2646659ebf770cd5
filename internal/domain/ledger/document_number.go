package ledger

import (
	"regexp"
	"strconv"
	"time"
)

var documentNumberPattern = regexp.MustCompile(`^WZ\s(\d{1,4})/(\d{1,2})/(\d{4})$`)

const (
	minDocumentYear       = 2000
	maxDocumentYearsAhead = 10
)

// DocumentNumber is the parsed form of a "WZ <n>/<month>/<year>" business key
type DocumentNumber struct {
	Raw    string
	Serial int
	Month  int
	Year   int
}

// ParseDocumentNumber parses and range-checks a document number.
// The year must fall in [2000, now.Year()+10].
func ParseDocumentNumber(raw string, now time.Time) (DocumentNumber, bool) {
	m := documentNumberPattern.FindStringSubmatch(raw)
	if m == nil {
		return DocumentNumber{}, false
	}

	serial, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if month < 1 || month > 12 {
		return DocumentNumber{}, false
	}
	if year < minDocumentYear || year > now.Year()+maxDocumentYearsAhead {
		return DocumentNumber{}, false
	}

	return DocumentNumber{Raw: raw, Serial: serial, Month: month, Year: year}, true
}
