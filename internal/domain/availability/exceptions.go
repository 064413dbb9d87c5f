package availability

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// exceptionRecord is the serialized form of one exception entry.
// The blob predates schema changes, so every field is optional at decode
// time and checked explicitly.
type exceptionRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
	State string `json:"state"`
}

// DecodeExceptions parses a serialized JSON array of exception entries.
// Malformed input fails open: an unparseable blob yields no exceptions,
// and individually invalid entries are skipped without aborting the rest.
// PRE: none
// POST: returns valid exceptions plus one diagnostic per skipped entry
func DecodeExceptions(raw string) ([]Exception, []string) {
	if raw == "" {
		return nil, nil
	}

	var records []exceptionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		slog.Warn("availability_exceptions_unparseable", "error", err)
		return nil, []string{fmt.Sprintf("unparseable exception payload: %v", err)}
	}

	var exceptions []Exception
	var skipped []string
	for i, rec := range records {
		exc, err := decodeRecord(rec)
		if err != nil {
			slog.Warn("availability_exception_skipped", "index", i, "error", err)
			skipped = append(skipped, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		exceptions = append(exceptions, exc)
	}
	return exceptions, skipped
}

// decodeRecord converts one serialized entry into a validated Exception.
func decodeRecord(rec exceptionRecord) (Exception, error) {
	if rec.Start == "" || rec.End == "" || rec.State == "" {
		return Exception{}, fmt.Errorf("missing start, end or state")
	}
	start, err := time.Parse(time.RFC3339, rec.Start)
	if err != nil {
		return Exception{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, rec.End)
	if err != nil {
		return Exception{}, fmt.Errorf("invalid end: %w", err)
	}
	exc := Exception{Start: start, End: end, State: State(rec.State)}
	if err := exc.Validate(); err != nil {
		return Exception{}, err
	}
	return exc, nil
}

// EncodeExceptions serializes exceptions back to the stored blob form.
// PRE: exceptions have been validated
// POST: returns a JSON array in the same shape DecodeExceptions accepts
func EncodeExceptions(exceptions []Exception) (string, error) {
	records := make([]exceptionRecord, 0, len(exceptions))
	for _, exc := range exceptions {
		records = append(records, exceptionRecord{
			Start: exc.Start.Format(time.RFC3339),
			End:   exc.End.Format(time.RFC3339),
			State: string(exc.State),
		})
	}
	out, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode exceptions: %w", err)
	}
	return string(out), nil
}
