package http

import (
	"net/http"

	"meloon/internal/core"
)

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Accounts.List(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", mapSlice(accounts, toAccountDTO))
}

func (s *Server) handleAccountAdd(w http.ResponseWriter, r *http.Request) {
	var req accountAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.svc.Accounts.Add(r.Context(), owner(r), core.AccountCreate{
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "account created", toAccountDTO(a))
}

func (s *Server) handleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	var req accountUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Balance != nil {
		writeError(w, r, core.Validation("update account", "balance changes only through transactions"))
		return
	}
	a, err := s.svc.Accounts.Update(r.Context(), owner(r), core.AccountUpdate{
		ID:   req.AccountID,
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "account updated", toAccountDTO(a))
}

func (s *Server) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	var req accountDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Accounts.Delete(r.Context(), owner(r), core.DeleteRequest{ID: req.AccountID}); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "account deleted", nil)
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	typ, err := optionalTxType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := s.svc.Categories.List(r.Context(), owner(r), typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", mapSlice(categories, toCategoryDTO))
}

func (s *Server) handleCategoryAdd(w http.ResponseWriter, r *http.Request) {
	var req categoryAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Add(r.Context(), owner(r), core.CategoryCreate{Name: req.Name, Type: typ, Icon: req.Icon})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "category created", toCategoryDTO(c))
}

func (s *Server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	var req categoryUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), owner(r), core.CategoryUpdate{ID: req.CategoryID, Name: req.Name, Icon: req.Icon})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "category updated", toCategoryDTO(c))
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	var req categoryDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Categories.Delete(r.Context(), owner(r), core.DeleteRequest{ID: req.CategoryID}); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "category deleted", nil)
}
