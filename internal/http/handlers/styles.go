package handlers

import (
	"net/http"

	"hairfit/internal/domain"
)

type stylesResponse struct {
	Styles []domain.Style `json:"styles"`
}

// ListStyles rescans the style directory so newly dropped images show up
// without a restart.
func (a *App) ListStyles(w http.ResponseWriter, r *http.Request) {
	if err := a.Styles.Reload(); err != nil {
		a.logger().Warn().Err(err).Msg("style reload failed, serving last scan")
	}
	a.json(w, http.StatusOK, stylesResponse{Styles: a.Styles.List()})
}
