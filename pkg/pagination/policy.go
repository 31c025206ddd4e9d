package pagination

// Mode selects the pagination behavior for a search call.
type Mode string

const (
	// ModeNone fetches a single page and stops.
	ModeNone Mode = "none"

	// ModeManual fetches a single page and surfaces the continuation token
	// so the caller can resume with a later call.
	ModeManual Mode = "manual"

	// ModeAll follows continuation tokens until the data or a configured
	// ceiling is exhausted.
	ModeAll Mode = "all"
)

// Valid reports whether the mode is one of the recognized values.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModeManual, ModeAll:
		return true
	}
	return false
}

// NoCeiling disables the record ceiling.
const NoCeiling = 0

// PageSize computes how many records to request for the next page. With no
// ceiling it is always baseSize; otherwise it is the remaining budget capped
// at baseSize. A result of 0 means the ceiling has been met and no request
// should be issued.
func PageSize(baseSize, recordCeiling, recordsSoFar int) int {
	if recordCeiling <= NoCeiling {
		return baseSize
	}
	remaining := recordCeiling - recordsSoFar
	if remaining <= 0 {
		return 0
	}
	if remaining < baseSize {
		return remaining
	}
	return baseSize
}

// ShouldContinue decides whether another page should be fetched. The rules
// are evaluated strictly in order:
//
//	none    -> stop
//	manual  -> stop after one page (the token is surfaced separately)
//	all     -> stop when the ceiling is reached, no token was returned, or
//	           the page came back short; continue otherwise
//
// Unrecognized modes stop.
func ShouldContinue(mode Mode, recordCeiling, totalRecords, pageRecordCount, requestedPageSize int, nextToken string) bool {
	switch mode {
	case ModeNone, ModeManual:
		return false
	case ModeAll:
		if recordCeiling > NoCeiling && totalRecords >= recordCeiling {
			return false
		}
		if nextToken == "" {
			return false
		}
		// A short page signals the end of data even when a token is present.
		if pageRecordCount < requestedPageSize {
			return false
		}
		return true
	default:
		return false
	}
}
