package listings

import "context"

// OwnerOf expone el dueño de una publicación.
// Lo usa threads para abrir un chat desde una publicación sin importar este paquete.
func (s *Service) OwnerOf(ctx context.Context, postID string) (Owner, error) {
	p, err := s.GetByID(ctx, postID)
	if err != nil {
		return Owner{}, err
	}
	return p.Owner, nil
}
