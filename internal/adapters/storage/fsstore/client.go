// Package fsstore implementa los repositorios sobre Firestore con las
// colecciones de la app móvil: Pets, UserFavPet, Chat/{id}/Messages,
// Category y Sliders.
package fsstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	colPets       = "Pets"
	colFavorites  = "UserFavPet"
	colChats      = "Chat"
	colMessages   = "Messages"
	colCategories = "Category"
	colSliders    = "Sliders"
)

var ErrProjectRequired = errors.New("fsstore: project id is required")

// Open crea el cliente. Con FIRESTORE_EMULATOR_HOST seteado usa el emulador.
func Open(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, ErrProjectRequired
	}
	c, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fsstore: new client: %w", err)
	}
	return c, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func isCanceled(err error) bool {
	c := status.Code(err)
	return c == codes.Canceled || c == codes.DeadlineExceeded || errors.Is(err, context.Canceled)
}
