package listings

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/images"

	"github.com/go-chi/chi/v5"
)

// Tope de memoria al parsear multipart; el resto va a archivos temporales.
const multipartMemory = 8 << 20

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPostHandler(svc, log))
		pr.Get("/", listPostsHandler(svc, log))

		pr.Get("/{petID}", getPostHandler(svc, log))
		// Solo el dueño edita o borra.
		pr.Patch("/{petID}", updatePostHandler(svc, log))
		pr.Delete("/{petID}", deletePostHandler(svc, log))
	})

	r.Get("/me/pets", listMyPostsHandler(svc, log))
	r.Post("/images", uploadImageHandler(svc, log))
}

type createPostRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Breed    string  `json:"breed"`
	Age      float64 `json:"age"`
	Sex      string  `json:"sex"`
	Weight   float64 `json:"weight"`
	Address  string  `json:"address"`
	About    string  `json:"about"`
	ImageURL string  `json:"image_url"`
}

type updatePostRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Breed    *string  `json:"breed"`
	Age      *float64 `json:"age"`
	Sex      *string  `json:"sex"`
	Weight   *float64 `json:"weight"`
	Address  *string  `json:"address"`
	About    *string  `json:"about"`
	ImageURL *string  `json:"image_url"`
}

type ownerResponse struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type postResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Breed     string        `json:"breed"`
	Age       float64       `json:"age"`
	Sex       Sex           `json:"sex"`
	Weight    float64       `json:"weight"`
	Address   string        `json:"address"`
	About     string        `json:"about"`
	AboutHTML string        `json:"about_html"`
	ImageURL  string        `json:"image_url"`
	Owner     ownerResponse `json:"owner"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type imageResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
	Format   string `json:"format,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

type validationResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields"`
}

// createPostHandler godoc
// @Summary      Publicar mascota
// @Description  Crea una publicación de adopción. Acepta JSON (con image_url) o multipart/form-data (con archivo "image").
// @Tags         pets
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        X-Debug-User-Email  header    string             false  "Email (modo dev)"
// @Param        body                body      createPostRequest  true   "Publicación"
// @Success      201                 {object}  postResponse
// @Failure      400                 {object}  validationResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      502                 {string}  string  "image upload failed"
// @Router       /pets [post]
func createPostHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}

		var (
			req   createPostRequest
			image *images.Upload
		)
		if isMultipart(r) {
			f, upload, err := readMultipart(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer closeUpload(upload)
			image = upload
			req = createPostRequest{
				Name:     f.Value("name"),
				Category: f.Value("category"),
				Breed:    f.Value("breed"),
				Age:      f.Float("age"),
				Sex:      f.Value("sex"),
				Weight:   f.Float("weight"),
				Address:  f.Value("address"),
				About:    f.Value("about"),
				ImageURL: f.Value("image_url"),
			}
		} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), Owner{
			Email:     claims.Email,
			Name:      claims.Name,
			AvatarURL: claims.AvatarURL,
		}, CreateInput{
			Name:     req.Name,
			Category: req.Category,
			Breed:    req.Breed,
			Age:      req.Age,
			Sex:      req.Sex,
			Weight:   req.Weight,
			Address:  req.Address,
			About:    req.About,
			ImageURL: req.ImageURL,
			Image:    image,
		})
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPostResponse(p))
	}
}

// listPostsHandler godoc
// @Summary      Listar mascotas
// @Description  Lista publicaciones, opcionalmente filtradas por categoría. Más recientes primero.
// @Tags         pets
// @Produce      json
// @Param        category  query     string  false  "Categoría (Dogs, Cats, ...)"
// @Success      200       {array}   postResponse
// @Router       /pets [get]
func listPostsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	// Público: el catálogo se ve sin sesión.
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByCategory(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponses(items))
	}
}

// getPostHandler godoc
// @Summary      Ver mascota
// @Tags         pets
// @Produce      json
// @Param        petID  path      string  true  "ID de la publicación"
// @Success      200    {object}  postResponse
// @Failure      404    {string}  string  "pet not found"
// @Router       /pets/{petID} [get]
func getPostHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponse(p))
	}
}

// updatePostHandler godoc
// @Summary      Editar mascota
// @Description  PATCH: solo se modifican los campos enviados. Solo el dueño. Acepta JSON o multipart (archivo "image").
// @Tags         pets
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        X-Debug-User-Email  header    string             false  "Email (modo dev)"
// @Param        petID               path      string             true   "ID de la publicación"
// @Param        body                body      updatePostRequest  true   "Campos a modificar"
// @Success      200                 {object}  postResponse
// @Failure      400                 {object}  validationResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      403                 {string}  string  "forbidden"
// @Failure      404                 {string}  string  "pet not found"
// @Failure      502                 {string}  string  "image upload failed"
// @Router       /pets/{petID} [patch]
func updatePostHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}

		var (
			req   updatePostRequest
			image *images.Upload
		)
		if isMultipart(r) {
			f, upload, err := readMultipart(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer closeUpload(upload)
			image = upload
			req = updatePostRequest{
				Name:     f.Ptr("name"),
				Category: f.Ptr("category"),
				Breed:    f.Ptr("breed"),
				Age:      f.FloatPtr("age"),
				Sex:      f.Ptr("sex"),
				Weight:   f.FloatPtr("weight"),
				Address:  f.Ptr("address"),
				About:    f.Ptr("about"),
				ImageURL: f.Ptr("image_url"),
			}
		} else {
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		updated, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), claims.Email, UpdateInput{
			Name:     req.Name,
			Category: req.Category,
			Breed:    req.Breed,
			Age:      req.Age,
			Sex:      req.Sex,
			Weight:   req.Weight,
			Address:  req.Address,
			About:    req.About,
			ImageURL: req.ImageURL,
			Image:    image,
		})
		if err != nil {
			writeError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, toPostResponse(updated))
	}
}

// deletePostHandler godoc
// @Summary      Borrar mascota
// @Tags         pets
// @Param        X-Debug-User-Email  header  string  false  "Email (modo dev)"
// @Param        petID               path    string  true   "ID de la publicación"
// @Success      204
// @Failure      401  {string}  string  "unauthorized"
// @Failure      403  {string}  string  "forbidden"
// @Failure      404  {string}  string  "pet not found"
// @Router       /pets/{petID} [delete]
func deletePostHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), claims.Email); err != nil {
			writeError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listMyPostsHandler godoc
// @Summary      Mis publicaciones
// @Tags         pets
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Success      200                 {array}   postResponse
// @Failure      401                 {string}  string  "unauthorized"
// @Router       /me/pets [get]
func listMyPostsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireEmail(w, r)
		if !ok {
			return
		}
		items, err := svc.ListByOwner(r.Context(), claims.Email)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPostResponses(items))
	}
}

// uploadImageHandler godoc
// @Summary      Subir imagen
// @Description  Sube una imagen suelta (campo "image") y devuelve su URL durable.
// @Tags         images
// @Accept       mpfd
// @Produce      json
// @Param        X-Debug-User-Email  header    string  false  "Email (modo dev)"
// @Param        image               formData  file    true   "Imagen JPEG/PNG/GIF/WebP"
// @Success      201                 {object}  imageResponse
// @Failure      400                 {string}  string  "image is required"
// @Failure      401                 {string}  string  "unauthorized"
// @Failure      502                 {string}  string  "image upload failed"
// @Router       /images [post]
func uploadImageHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireEmail(w, r); !ok {
			return
		}
		if !isMultipart(r) {
			http.Error(w, "multipart/form-data required", http.StatusBadRequest)
			return
		}
		_, upload, err := readMultipart(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if upload == nil {
			http.Error(w, "image is required", http.StatusBadRequest)
			return
		}
		defer closeUpload(upload)

		res, err := svc.UploadImage(r.Context(), *upload)
		if err != nil {
			writeError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, imageResponse{
			URL:      res.URL,
			PublicID: res.PublicID,
			Format:   res.Format,
			Bytes:    res.Bytes,
			Width:    res.Width,
			Height:   res.Height,
		})
	}
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// formValues envuelve los campos de texto de un multipart.
type formValues map[string][]string

func (f formValues) Value(key string) string {
	if v := f[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (f formValues) Ptr(key string) *string {
	if v, ok := f[key]; ok && len(v) > 0 {
		s := v[0]
		return &s
	}
	return nil
}

// Float devuelve 0 si falta o no es número; el validador lo rechaza después.
func (f formValues) Float(key string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimSpace(f.Value(key)), 64)
	return n
}

func (f formValues) FloatPtr(key string) *float64 {
	if f.Ptr(key) == nil {
		return nil
	}
	n := f.Float(key)
	return &n
}

// uploadFile guarda el archivo abierto para cerrarlo al final del request.
type uploadFile struct {
	multipart.File
}

// readMultipart devuelve los campos y, si vino, la imagen del campo "image".
func readMultipart(r *http.Request) (formValues, *images.Upload, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}
	values := formValues(r.MultipartForm.Value)

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return values, nil, nil
	}
	if err != nil {
		return nil, nil, errors.New("invalid image field")
	}
	return values, &images.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        uploadFile{file},
	}, nil
}

func closeUpload(u *images.Upload) {
	if u == nil {
		return
	}
	if f, ok := u.Body.(uploadFile); ok {
		_ = f.Close()
	}
}

// writeError traduce errores de dominio a HTTP. Solo loguea los 500.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "invalid input", Fields: verr.Fields})
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrUploadFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		middleware.LogRequestError(log, r, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toPostResponse(p Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Breed:     p.Breed,
		Age:       p.Age,
		Sex:       p.Sex,
		Weight:    p.Weight,
		Address:   p.Address,
		About:     p.About,
		AboutHTML: p.AboutHTML(),
		ImageURL:  p.ImageURL,
		Owner: ownerResponse{
			Email:     p.Owner.Email,
			Name:      p.Owner.Name,
			AvatarURL: p.Owner.AvatarURL,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPostResponses(items []Post) []postResponse {
	out := make([]postResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPostResponse(p))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
// Si más adelante se repite en más módulos, recién conviene extraerlo a un helper común.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
