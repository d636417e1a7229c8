package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meloon/internal/core"
)

// maxBodyBytes bounds JSON request bodies; uploads have their own limit.
const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. Malformed bodies and
// unknown fields are validation errors; an empty body also matches io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return core.Validation("decode body", "content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if core.KindOf(err) != core.KindInternal {
			return err
		}
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &core.Error{Kind: core.KindValidation, Op: "decode body", Msg: "request body is empty", Err: io.EOF}
		case errors.As(err, &tooLarge):
			return core.Validation("decode body", "request body exceeds %d bytes", tooLarge.Limit)
		default:
			return core.Validation("decode body", "malformed JSON: %v", err)
		}
	}
	if dec.More() {
		return core.Validation("decode body", "request body must hold a single JSON object")
	}
	return nil
}

// queryInt returns the integer value of key, def when absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Validation("parse "+key, "%q is not a number", v)
	}
	return n, nil
}

func queryInt64(q url.Values, key string) (int64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, core.Validation("parse "+key, "%q is not a valid id", v)
	}
	return n, nil
}

// parseOptionalTime parses s when set; nil means the field was omitted.
func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := core.ParseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseMonthParam resolves a YYYY-MM value; empty means the current month.
func parseMonthParam(s string, now time.Time) (core.Window, error) {
	if strings.TrimSpace(s) == "" {
		return core.CurrentMonth(now), nil
	}
	return core.ParseMonth(s)
}

func optionalTxType(s string) (core.TxType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseTxType(s)
}

func optionalDebtType(s string) (core.DebtType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return core.ParseDebtType(s)
}
