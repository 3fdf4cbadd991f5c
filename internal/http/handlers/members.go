package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hairfit/internal/domain"
)

func (a *App) ListMembers(w http.ResponseWriter, r *http.Request) {
	skip, limit := page(r)
	members, err := a.Members.List(r.Context(), skip, limit)
	if err != nil {
		a.logger().Error().Err(err).Msg("list members")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	a.json(w, http.StatusOK, members)
}

func (a *App) GetMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := a.Members.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, r, http.StatusNotFound, codeMemberNotFound)
			return
		}
		a.logger().Error().Err(err).Str("member_id", id).Msg("get member")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
		return
	}
	a.json(w, http.StatusOK, m)
}
