package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"meloon/internal/core"
	"meloon/internal/log"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.NotFound("get", "missing"), http.StatusNotFound},
		{core.Validation("add", "bad"), http.StatusBadRequest},
		{core.Conflict("delete", "in use"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", core.NotFound("get", "missing")), http.StatusNotFound},
		{core.ErrInvalidAmount, http.StatusBadRequest},
		{core.ErrBadCredentials, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("sqlite: table accounts is locked"))

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || env.Code != 500 || env.Message != "internal server error" {
		t.Fatalf("envelope = %+v status = %d", env, rec.Code)
	}
}

func TestWriteErrorLogsInternalFailure(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	cfg.Format = "json"
	logger := log.New(cfg).With(log.NewFields().WithRequestID("req_1").ToSlice()...)

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/summary?month=2024-05", nil)
	req = req.WithContext(log.WithContext(req.Context(), logger))
	writeError(httptest.NewRecorder(), req, errors.New("sqlite: table accounts is locked"))

	out := buf.String()
	for _, want := range []string{
		`"msg":"Request failed"`,
		`"error":"sqlite: table accounts is locked"`,
		`"component":"http"`,
		`"path":"/v1/dashboard/summary"`,
		`"query":"month=2024-05"`,
		`"request_id":"req_1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s: %s", want, out)
		}
	}

	buf.Reset()
	writeError(httptest.NewRecorder(), req, core.NotFound("get", "missing"))
	if buf.Len() != 0 {
		t.Errorf("client errors must not log at error level: %s", buf.String())
	}
}

func TestWriteErrorUsesKindMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("add transaction: %w", core.NotFound("get account", "account %d", 7))
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != http.StatusNotFound || env.Message != "account 7" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestListOf(t *testing.T) {
	page := core.Page[int]{Items: []int{1, 2}, Total: 7, Page: 2, PageSize: 2}
	got := listOf(page, func(i int) string { return fmt.Sprint(i * 10) })
	if len(got.List) != 2 || got.List[1] != "20" || got.Total != 7 || got.CurrentPage != 2 || got.PageSize != 2 {
		t.Fatalf("listOf() = %+v", got)
	}

	empty := listOf(core.Page[int]{}, func(i int) int { return i })
	b, _ := json.Marshal(empty)
	if string(b) != `{"list":[],"total":0,"current_page":0,"page_size":0}` {
		t.Fatalf("empty list JSON = %s", b)
	}
}

func TestWriteOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeOK(rec, "", map[string]int{"n": 1})
	if rec.Body.String() != `{"code":200,"message":"success","data":{"n":1}}`+"\n" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
