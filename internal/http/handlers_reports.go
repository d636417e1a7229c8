package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"meloon/internal/core"
	"meloon/internal/log"
	"meloon/internal/xlsx"
)

// maxUploadBytes bounds spreadsheet imports.
const maxUploadBytes = 10 << 20

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthParam(r.URL.Query().Get("month"), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svc.Reports.Dashboard(r.Context(), owner(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", dashboardDTO{
		Month:              d.Month.Start.Format("2006-01"),
		TotalBalance:       d.TotalBalance,
		MonthIncome:        d.MonthIncome,
		MonthExpense:       d.MonthExpense,
		RecentTransactions: mapSlice(d.Recent, toTransactionViewDTO),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := core.ParsePeriod(q.Get("period_type"), q.Get("date"), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.svc.Reports.Report(r.Context(), owner(r), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", toReportDTO(rep))
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	// The body is optional; chunked requests report ContentLength -1.
	var req adviceRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, err)
			return
		}
	}
	month, err := parseMonthParam(req.Period, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svc.Reports.Advise(r.Context(), owner(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", adviceDTO{AdviceText: a.Text, Score: a.Score, TopCategory: a.TopCategory})
}

// handleExport renders the workbook in memory first so a failure still
// produces a JSON error instead of a truncated download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.Spreadsheets.Export(r.Context(), owner(r), &buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsx.Filename(s.now())))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Export download interrupted", log.FieldError, err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, core.Validation("import", "upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, r, core.Validation("import", "expected a multipart form with a file field"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, core.Validation("import", "file is required"))
		return
	}
	defer file.Close()

	res, err := s.svc.Spreadsheets.Import(r.Context(), owner(r), file)
	if err != nil {
		// Rows before the failing one stay committed.
		writeErrorData(w, r, err, res)
		return
	}
	writeOK(w, fmt.Sprintf("imported %d rows, skipped %d", res.Imported, res.Skipped), res)
}
