package favorites

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-adoption/internal/domain/listings"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Route("/me/favorites", func(fr chi.Router) {
		fr.Get("/", getFavoritesHandler(svc, log))
		fr.Get("/pets", listFavoritePetsHandler(svc, log))

		fr.Put("/{petID}", addFavoriteHandler(svc, log))
		fr.Delete("/{petID}", removeFavoriteHandler(svc, log))
		fr.Post("/{petID}/toggle", toggleFavoriteHandler(svc, log))
	})
}

type favoritesResponse struct {
	Email     string    `json:"email"`
	PetIDs    []string  `json:"pet_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type toggleResponse struct {
	Favorite  bool              `json:"favorite"`
	Favorites favoritesResponse `json:"favorites"`
}

// favoritePetResponse es la tarjeta de la lista de favoritos.
type favoritePetResponse struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Breed    string       `json:"breed"`
	Age      float64      `json:"age"`
	Sex      listings.Sex `json:"sex"`
	Address  string       `json:"address"`
	ImageURL string       `json:"image_url"`
}

// getFavoritesHandler godoc
// @Summary      Mis favoritos
// @Description  Devuelve los ids favoritos del usuario. La primera vez crea el registro vacío.
// @Tags         favorites
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Success      200                 {object}  favoritesResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/favorites [get]
func getFavoritesHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		rec, err := svc.Get(r.Context(), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toFavoritesResponse(rec))
	}
}

// listFavoritePetsHandler godoc
// @Summary      Mascotas favoritas
// @Description  Resuelve los favoritos a publicaciones; las que ya no existen se omiten.
// @Tags         favorites
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Success      200                 {array}   favoritePetResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/favorites/pets [get]
func listFavoritePetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		items, err := svc.ListPets(r.Context(), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		out := make([]favoritePetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, favoritePetResponse{
				ID:       p.ID,
				Name:     p.Name,
				Category: p.Category,
				Breed:    p.Breed,
				Age:      p.Age,
				Sex:      p.Sex,
				Address:  p.Address,
				ImageURL: p.ImageURL,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// addFavoriteHandler godoc
// @Summary      Agregar favorito
// @Description  Idempotente: agregar dos veces no duplica.
// @Tags         favorites
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        petID               path      string  true   "ID de la publicación"
// @Success      200                 {object}  favoritesResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/favorites/{petID} [put]
func addFavoriteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		rec, err := svc.Add(r.Context(), claims.Email, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toFavoritesResponse(rec))
	}
}

// removeFavoriteHandler godoc
// @Summary      Quitar favorito
// @Description  Idempotente: quitar un id ausente no cambia nada.
// @Tags         favorites
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        petID               path      string  true   "ID de la publicación"
// @Success      200                 {object}  favoritesResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/favorites/{petID} [delete]
func removeFavoriteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		rec, err := svc.Remove(r.Context(), claims.Email, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toFavoritesResponse(rec))
	}
}

// toggleFavoriteHandler godoc
// @Summary      Alternar favorito
// @Tags         favorites
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        petID               path      string  true   "ID de la publicación"
// @Success      200                 {object}  toggleResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/favorites/{petID}/toggle [post]
func toggleFavoriteHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		rec, fav, err := svc.Toggle(r.Context(), claims.Email, chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Favorite: fav, Favorites: toFavoritesResponse(rec)})
	}
}

// writeError loguea solo los 500; el resto son errores del cliente.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "favorites not found", http.StatusNotFound)
	default:
		middleware.LogRequestError(log, r, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toFavoritesResponse(rec Record) favoritesResponse {
	ids := rec.PetIDs
	if ids == nil {
		ids = []string{}
	}
	return favoritesResponse{
		Email:     rec.Email,
		PetIDs:    ids,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
