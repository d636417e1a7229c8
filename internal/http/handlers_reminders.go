package http

import (
	"net/http"

	"meloon/internal/core"
)

func (s *Server) handleReminderList(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.svc.Reminders.List(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "", mapSlice(reminders, toReminderDTO))
}

func (s *Server) handleReminderAdd(w http.ResponseWriter, r *http.Request) {
	var req reminderAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	at, err := core.ParseTimeOfDay(req.ReminderTime)
	if err != nil {
		writeError(w, r, err)
		return
	}
	freq, err := core.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rem, err := s.svc.Reminders.Add(r.Context(), owner(r), core.ReminderCreate{
		EventName: req.EventName,
		At:        at,
		Frequency: freq,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "reminder created", toReminderDTO(rem))
}

func (s *Server) handleReminderUpdate(w http.ResponseWriter, r *http.Request) {
	var req reminderUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cmd := core.ReminderUpdate{
		ID:        req.ReminderID,
		EventName: req.EventName,
		Note:      req.Note,
		Active:    req.IsActive,
	}
	if req.ReminderTime != nil {
		at, err := core.ParseTimeOfDay(*req.ReminderTime)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cmd.At = &at
	}
	if req.Frequency != nil {
		freq, err := core.ParseFrequency(*req.Frequency)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cmd.Frequency = &freq
	}

	rem, err := s.svc.Reminders.Update(r.Context(), owner(r), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "reminder updated", toReminderDTO(rem))
}

func (s *Server) handleReminderDelete(w http.ResponseWriter, r *http.Request) {
	var req reminderDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Reminders.Delete(r.Context(), owner(r), core.DeleteRequest{ID: req.ReminderID}); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, "reminder deleted", nil)
}
