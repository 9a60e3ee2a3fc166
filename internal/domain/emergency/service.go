package emergency

import (
	"context"
	"fmt"
)

type Service struct {
	shares ShareRepository
}

func NewService(shares ShareRepository) *Service {
	return &Service{shares: shares}
}

// GetView returns the record shared under token.
func (s *Service) GetView(ctx context.Context, token string) (*View, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	v, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if v.PublicView == nil {
		v.PublicView = &Record{}
	}
	return v, nil
}

// PutView shares v under token, replacing any previous record.
func (s *Service) PutView(ctx context.Context, token string, v *View) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if v == nil || v.PublicView == nil {
		return fmt.Errorf("public_view is required")
	}
	return s.shares.Put(ctx, token, v)
}
