package handlers

import (
	"net/http"

	"github.com/Datle-2003/video-subtitle-generator/internal/lang"
)

type LanguageHandler struct {
	providers []string
	engines   []string
}

func NewLanguageHandler(providers, engines []string) *LanguageHandler {
	return &LanguageHandler{providers: providers, engines: engines}
}

// List returns the selectable target languages along with the configured
// translation providers and transcription engines, so the UI can populate
// its dropdowns from one call.
func (h *LanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"languages": lang.Supported(),
		"providers": h.providers,
		"engines":   h.engines,
	}, http.StatusOK)
}
