package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hairfit/internal/domain"
)

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	memberID := strings.TrimSpace(r.URL.Query().Get("member_id"))
	recs, err := a.History.List(r.Context(), memberID, skip, limit)
	if err != nil {
		a.logger().Error().Err(err).Msg("list history")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	a.json(w, http.StatusOK, recs)
}

// CreateHistory stores a record. Paths must already be server-relative or
// absolute URLs; inline image payloads are refused.
func (a *App) CreateHistory(w http.ResponseWriter, r *http.Request) {
	var req domain.NewHistoryRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	req.OriginalPhotoPath = strings.TrimSpace(req.OriginalPhotoPath)
	req.ReferenceStyleID = strings.TrimSpace(req.ReferenceStyleID)
	req.ResultPhotoPath = strings.TrimSpace(req.ResultPhotoPath)
	if req.MemberID != nil && strings.TrimSpace(*req.MemberID) == "" {
		req.MemberID = nil
	}
	if req.OriginalPhotoPath == "" || req.ReferenceStyleID == "" || req.ResultPhotoPath == "" ||
		domain.IsDataURI(req.OriginalPhotoPath) || domain.IsDataURI(req.ResultPhotoPath) {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	if req.MemberID != nil {
		if _, err := a.Members.GetByID(r.Context(), *req.MemberID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.error(w, r, http.StatusNotFound, codeMemberNotFound)
				return
			}
			a.logger().Error().Err(err).Msg("check history member")
			a.error(w, r, http.StatusInternalServerError, codeInternal)
			return
		}
	}
	rec, err := a.History.Create(r.Context(), req)
	if err != nil {
		a.logger().Error().Err(err).Msg("create history")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	a.json(w, http.StatusCreated, rec)
}

func (a *App) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := a.History.GetByID(r.Context(), id)
	if err != nil {
		a.historyError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, rec)
}

func (a *App) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.History.Delete(r.Context(), id); err != nil {
		a.historyError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) historyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, r, http.StatusNotFound, codeHistoryNotFound)
		return
	}
	a.logger().Error().Err(err).Msg("history lookup")
	a.error(w, r, http.StatusInternalServerError, codeInternal)
}
