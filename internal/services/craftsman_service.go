package services

import (
	"context"
	"time"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
)

// CraftsmanService backs the public craftsman directory.
type CraftsmanService struct {
	Users   *repos.UserRepo
	Timeout time.Duration
}

func (s *CraftsmanService) List(ctx context.Context, f repos.CraftsmenFilter) ([]domain.User, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	var users []domain.User
	err := readRetry.Do(ctx, func() error {
		var err error
		users, err = s.Users.Craftsmen(ctx, f)
		if err != nil {
			return errs.Transient("list craftsmen", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
