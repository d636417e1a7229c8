package http

import (
	"net/http"

	"meloon/internal/core"
)

func (s *Server) handleDebtSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Debts.Summary(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", debtSummaryDTO{
		TotalBorrowIn: sum.TotalBorrowIn,
		TotalLendOut:  sum.TotalLendOut,
		NetDebt:       sum.NetDebt,
	})
}

func (s *Server) handleDebtList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f core.DebtFilter
	var err error
	if f.Type, err = optionalDebtType(q.Get("type")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Page, err = queryInt(q, "page", 1); err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.svc.Debts.List(r.Context(), owner(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", listOf(page, toDebtDTO))
}

func (s *Server) handleDebtAdd(w http.ResponseWriter, r *http.Request) {
	var req debtAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		writeError(w, r, core.Validation("add debt", "amount is required"))
		return
	}
	typ, err := core.ParseDebtType(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	at, err := parseOptionalTime(req.ActionTime)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cmd := core.DebtCreate{Type: typ, Person: req.PersonName, Amount: *req.Amount, Note: req.Note}
	if at != nil {
		cmd.Time = *at
	}
	d, err := s.svc.Debts.Add(r.Context(), owner(r), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "debt recorded", toDebtDTO(d))
}

func (s *Server) handleDebtUpdate(w http.ResponseWriter, r *http.Request) {
	var req debtUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cmd := core.DebtUpdate{ID: req.DebtID, Person: req.PersonName, Amount: req.Amount, Note: req.Note}
	if req.Type != nil {
		typ, err := core.ParseDebtType(*req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cmd.Type = &typ
	}
	var err error
	if cmd.Time, err = parseOptionalTime(req.ActionTime); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := s.svc.Debts.Update(r.Context(), owner(r), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "debt updated", toDebtDTO(d))
}

func (s *Server) handleDebtDelete(w http.ResponseWriter, r *http.Request) {
	var req debtDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Debts.Delete(r.Context(), owner(r), core.DeleteRequest{ID: req.DebtID}); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "debt deleted", nil)
}
