package router

import (
	"context"
	"fmt"
	"os"
	"time"

	"pet-adoption/internal/adapters/auth/clerk"
	"pet-adoption/internal/adapters/auth/jwtauth"
	"pet-adoption/internal/adapters/images/cloudinary"
	"pet-adoption/internal/adapters/images/gcs"
	"pet-adoption/internal/adapters/images/guard"
	"pet-adoption/internal/adapters/images/local"
	"pet-adoption/internal/adapters/images/s3store"
	"pet-adoption/internal/adapters/storage/fsstore"
	mem "pet-adoption/internal/adapters/storage/memory"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/config"
	"pet-adoption/internal/domain/categories"
	"pet-adoption/internal/domain/favorites"
	"pet-adoption/internal/domain/listings"
	"pet-adoption/internal/domain/threads"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/images"
)

// Stores agrupa los repos de todos los módulos de un mismo backend.
type Stores struct {
	Listings   listings.Repository
	Favorites  favorites.Repository
	Categories categories.Repository
	Threads    threads.Repository
}

func MemoryStores(log logger.Logger) Stores {
	return Stores{
		Listings:   mem.NewListingRepo(),
		Favorites:  mem.NewFavoritesRepo(),
		Categories: mem.NewCategoryRepo(nil, nil),
		Threads:    mem.NewThreadRepo(log),
	}
}

// OpenStores abre el backend configurado. close libera conexiones y listeners.
func OpenStores(ctx context.Context, cfg config.Storage, log logger.Logger) (Stores, func(), error) {
	switch cfg.Backend {
	case config.StorageMemory, "":
		return MemoryStores(log), func() {}, nil

	case config.StoragePostgres:
		db, err := pg.OpenMigrated(cfg.DSN)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("postgres: %w", err)
		}
		threadsRepo := pg.NewThreadsRepo(db, log)

		lctx, cancel := context.WithCancel(context.Background())
		go func() {
			if err := pg.Listen(lctx, cfg.DSN, threadsRepo.Hub(), log); err != nil {
				log.Error("postgres listener stopped", map[string]any{"err": err})
			}
		}()

		stores := Stores{
			Listings:   pg.NewListingsRepo(db),
			Favorites:  pg.NewFavoritesRepo(db),
			Categories: pg.NewCategoriesRepo(db),
			Threads:    threadsRepo,
		}
		return stores, func() {
			cancel()
			_ = db.Close()
		}, nil

	case config.StorageFirestore:
		client, err := fsstore.Open(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return Stores{}, nil, err
		}
		cats := fsstore.NewCategoriesRepo(client)
		if err := cats.Seed(ctx); err != nil {
			log.Warn("firestore category seed failed", map[string]any{"err": err})
		}
		stores := Stores{
			Listings:   fsstore.NewListingsRepo(client),
			Favorites:  fsstore.NewFavoritesRepo(client),
			Categories: cats,
			Threads:    fsstore.NewThreadsRepo(client, log),
		}
		return stores, func() { _ = client.Close() }, nil
	}
	return Stores{}, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// NewUploader arma el backend de imágenes detrás del guard (tamaño, formato, nombre).
// Devuelve nil si no hay backend configurado.
func NewUploader(ctx context.Context, cfg config.Images) (images.Uploader, func(), error) {
	var (
		next    images.Uploader
		closeFn = func() {}
	)

	switch cfg.Backend {
	case config.ImagesNone, "":
		return nil, closeFn, nil

	case config.ImagesLocal:
		u, err := local.New(cfg.Local.Dir, cfg.Local.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		next = u

	case config.ImagesCloudinary:
		u, err := cloudinary.New(cloudinary.Config{
			BaseURL:      cfg.Cloudinary.BaseURL,
			CloudName:    cfg.Cloudinary.CloudName,
			UploadPreset: cfg.Cloudinary.UploadPreset,
		})
		if err != nil {
			return nil, nil, err
		}
		next = u

	case config.ImagesS3:
		u, err := s3store.New(ctx, s3store.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		next = u

	case config.ImagesGCS:
		u, err := gcs.New(ctx, gcs.Config{
			Bucket:          cfg.GCS.Bucket,
			CredentialsFile: cfg.GCS.CredentialsFile,
			PublicBaseURL:   cfg.GCS.PublicBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		next = u
		closeFn = func() { _ = u.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown images backend %q", cfg.Backend)
	}

	return guard.New(next, cfg.Backend, cfg.MaxBytes, cfg.Folder), closeFn, nil
}

// NewVerifier devuelve nil en modo dev (headers X-Debug-*).
func NewVerifier(cfg config.Auth) (auth.AuthVerifier, error) {
	switch cfg.Mode {
	case config.AuthDev, "":
		return nil, nil

	case config.AuthJWT, config.AuthClerk:
		jc := jwtauth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Leeway: 30 * time.Second}
		if cfg.JWTPublicKey != "" {
			pem, err := os.ReadFile(cfg.JWTPublicKey)
			if err != nil {
				return nil, fmt.Errorf("read jwt public key: %w", err)
			}
			jc.PublicKeyPEM = pem
		}
		tokens, err := jwtauth.NewVerifier(jc)
		if err != nil {
			return nil, err
		}
		if cfg.Mode == config.AuthJWT {
			return tokens, nil
		}

		client, err := clerk.NewClient(clerk.Config{BaseURL: cfg.ClerkBaseURL, SecretKey: cfg.ClerkSecret})
		if err != nil {
			return nil, err
		}
		return clerk.NewVerifier(tokens, client, 5*time.Minute), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
}
