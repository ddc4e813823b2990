package categories

import (
	"encoding/json"
	"net/http"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	// Públicos: la pantalla principal se arma sin sesión.
	r.Get("/categories", listCategoriesHandler(svc, log))
	r.Get("/sliders", listSlidersHandler(svc, log))
}

type categoryResponse struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Position int    `json:"position"`
}

type sliderResponse struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Position int    `json:"position"`
}

// listCategoriesHandler godoc
// @Summary      Listar categorías
// @Tags         categories
// @Produce      json
// @Success      200  {array}  categoryResponse
// @Router       /categories [get]
func listCategoriesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListCategories(r.Context())
		if err != nil {
			middleware.LogRequestError(log, r, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]categoryResponse, 0, len(items))
		for _, c := range items {
			out = append(out, categoryResponse{Name: c.Name, ImageURL: c.ImageURL, Position: c.Position})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listSlidersHandler godoc
// @Summary      Listar sliders
// @Tags         categories
// @Produce      json
// @Success      200  {array}  sliderResponse
// @Router       /sliders [get]
func listSlidersHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListSliders(r.Context())
		if err != nil {
			middleware.LogRequestError(log, r, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]sliderResponse, 0, len(items))
		for _, s := range items {
			out = append(out, sliderResponse{Name: s.Name, ImageURL: s.ImageURL, Position: s.Position})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
