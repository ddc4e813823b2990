package router

import (
	"context"
	"errors"
	"net/http"

	_ "pet-adoption/docs"
	"pet-adoption/internal/domain/categories"
	"pet-adoption/internal/domain/favorites"
	"pet-adoption/internal/domain/listings"
	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/images"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Logger       logger.Logger     // nil => Nop

	// Opcional: si viene, usa esos repos. Si no, in-memory.
	Stores *Stores

	// nil => solo se aceptan image_url ya alojadas.
	Uploader images.Uploader
	// Si viene, se sirve en /uploads/* (backend de imágenes local).
	UploadsDir string

	CORSAllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(opts.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.HeaderDebugEmail, middleware.HeaderDebugName, middleware.HeaderDebugAvatar},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if opts.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	stores := opts.Stores
	if stores == nil {
		s := MemoryStores(log)
		stores = &s
	}

	// Services por módulo
	categoriesSvc := categories.NewService(stores.Categories)
	listingsSvc := listings.NewService(stores.Listings, opts.Uploader, categoriesSvc)
	favoritesSvc := favorites.NewService(stores.Favorites, listingsSvc)
	threadsSvc := threads.NewService(stores.Threads)

	// Rutas por módulo
	categories.RegisterRoutes(r, categoriesSvc, log)
	listings.RegisterRoutes(r, listingsSvc, log)
	favorites.RegisterRoutes(r, favoritesSvc, log)
	threads.RegisterRoutes(r, threadsSvc, postOwners(listingsSvc), log)

	return r
}

// postOwners adapta listings al lookup que usa threads para "Adopt me".
func postOwners(svc *listings.Service) threads.OwnerLookup {
	return func(ctx context.Context, postID string) (threads.Participant, error) {
		o, err := svc.OwnerOf(ctx, postID)
		if errors.Is(err, listings.ErrNotFound) {
			return threads.Participant{}, threads.ErrUnknownPost
		}
		if err != nil {
			return threads.Participant{}, err
		}
		return threads.Participant{Email: o.Email, Name: o.Name, AvatarURL: o.AvatarURL}, nil
	}
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
