package http

import (
	"net/http"

	"meloon/internal/core"
)

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := core.TransactionFilter{}

	var err error
	if f.Range, err = core.DayRange(q.Get("start_date"), q.Get("end_date")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Type, err = optionalTxType(q.Get("type")); err != nil {
		writeError(w, r, err)
		return
	}
	if f.AccountID, err = queryInt64(q, "account_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if f.Page, err = queryInt(q, "page", 1); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := s.svc.Transactions.List(r.Context(), owner(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", listOf(page, toTransactionViewDTO))
}

func (s *Server) handleTransactionAdd(w http.ResponseWriter, r *http.Request) {
	var req transactionAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		writeError(w, r, core.Validation("add transaction", "amount is required"))
		return
	}
	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	at, err := parseOptionalTime(req.TransactionTime)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cmd := core.TransactionCreate{
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		Amount:       *req.Amount,
		Type:         typ,
		Summary:      req.Summary,
		Counterparty: req.TargetPerson,
		Note:         req.Note,
	}
	if at != nil {
		cmd.Time = *at
	}

	t, err := s.svc.Transactions.Add(r.Context(), owner(r), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "transaction recorded", toTransactionDTO(t))
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	var req transactionUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ownerID := owner(r)

	// The type is immutable; echoing the current value is tolerated.
	if req.Type != nil && req.TransactionID > 0 {
		typ, err := core.ParseTxType(*req.Type)
		if err != nil {
			writeError(w, r, err)
			return
		}
		current, err := s.svc.Transactions.Get(r.Context(), ownerID, req.TransactionID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if current.Type != typ {
			writeError(w, r, core.Validation("update transaction", "type cannot be changed; delete and re-add the transaction"))
			return
		}
	}

	at, err := parseOptionalTime(req.TransactionTime)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.svc.Transactions.Update(r.Context(), ownerID, core.TransactionUpdate{
		ID:           req.TransactionID,
		Amount:       req.Amount,
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		Time:         at,
		Summary:      req.Summary,
		Counterparty: req.TargetPerson,
		Note:         req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "transaction updated", toTransactionDTO(t))
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	var req transactionDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), owner(r), core.DeleteRequest{ID: req.TransactionID}); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "transaction deleted", nil)
}
