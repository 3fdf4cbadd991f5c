package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"hairfit/internal/domain"
	"hairfit/internal/providers/synth"
)

type synthesizeResponse struct {
	ResultImage string `json:"result_image"`
}

// Synthesize takes a multipart client photo ("file") plus "style_id" and
// returns the composite as base64.
func (a *App) Synthesize(w http.ResponseWriter, r *http.Request) {
	img, err := a.readImageFile(w, r)
	if err != nil {
		a.logger().Debug().Err(err).Msg("synthesis input rejected")
		a.error(w, r, http.StatusBadRequest, codeInvalidImage)
		return
	}
	styleID := strings.TrimSpace(r.FormValue("style_id"))
	if styleID == "" {
		a.error(w, r, http.StatusBadRequest, codeBadRequest)
		return
	}
	if _, err := a.Styles.Get(styleID); err != nil {
		a.error(w, r, http.StatusNotFound, codeStyleNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.synthesisTimeout())
	defer cancel()
	start := time.Now()
	result, err := a.Synth.Synthesize(ctx, img, styleID)
	log := a.logger().With().Str("style_id", styleID).Dur("took", time.Since(start)).Logger()
	switch {
	case err == nil && strings.TrimSpace(result) != "":
		log.Info().Int("bytes", len(img.Data)).Msg("synthesis completed")
		a.json(w, http.StatusOK, synthesizeResponse{ResultImage: result})
	case err == nil:
		log.Warn().Msg("synthesis returned an empty image")
		a.error(w, r, http.StatusBadGateway, codeSynthesisFailed)
	case errors.Is(err, synth.ErrMissingAPIKey):
		a.error(w, r, http.StatusServiceUnavailable, codeSynthesisUnavailable)
	case errors.Is(err, domain.ErrStyleNotFound):
		a.error(w, r, http.StatusNotFound, codeStyleNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Msg("synthesis timed out")
		a.error(w, r, http.StatusGatewayTimeout, codeSynthesisTimeout)
	default:
		log.Error().Err(err).Msg("synthesis failed")
		a.error(w, r, http.StatusBadGateway, codeSynthesisFailed)
	}
}
