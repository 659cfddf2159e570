package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

// ProfileService fills in the fields registration leaves blank. Craftsmen
// only show up in the directory once their profile is complete.
type ProfileService struct {
	Users   *repos.UserRepo
	Timeout time.Duration
}

type ProfileInput struct {
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Phone           string   `json:"phone"`
	Street          string   `json:"street"`
	PostalCode      string   `json:"postalCode"`
	City            string   `json:"city"`
	CompanyName     string   `json:"companyName"`
	Bio             string   `json:"bio"`
	Categories      []string `json:"categories"`
	ExperienceYears int      `json:"experienceYears"`
}

// Update replaces the caller's profile with the submitted one and
// recomputes the completion flag.
func (s *ProfileService) Update(ctx context.Context, user *domain.User, in ProfileInput) (*domain.User, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	first, ok := validate.Name(in.FirstName)
	if !ok {
		return nil, errs.Validation("first name is required")
	}
	last, ok := validate.Name(in.LastName)
	if !ok {
		return nil, errs.Validation("last name is required")
	}
	plz := ""
	if strings.TrimSpace(in.PostalCode) != "" {
		if plz, ok = validate.PostalCode(in.PostalCode); !ok {
			return nil, errs.Validation("invalid postal code")
		}
	}
	city := ""
	if strings.TrimSpace(in.City) != "" {
		if city, ok = validate.Name(in.City); !ok {
			return nil, errs.Validation("invalid city")
		}
	}
	bio := strings.TrimSpace(in.Bio)
	if len(bio) > 2000 {
		return nil, errs.Validation("bio is too long")
	}

	if user.Role != domain.RoleCraftsman {
		if in.CompanyName != "" || len(in.Categories) > 0 || in.ExperienceYears != 0 {
			return nil, errs.Validation("only craftsmen have business details")
		}
	}
	for _, cat := range in.Categories {
		if _, ok := validate.Category(cat); !ok {
			return nil, errs.Validation("unknown category")
		}
	}
	if in.ExperienceYears < 0 || in.ExperienceYears > 80 {
		return nil, errs.Validation("invalid experience years")
	}

	catsJSON := []byte("[]")
	if len(in.Categories) > 0 {
		var err error
		if catsJSON, err = json.Marshal(in.Categories); err != nil {
			return nil, errs.Validation("invalid categories")
		}
	}

	u := *user
	u.FirstName = first
	u.LastName = last
	u.Phone = strings.TrimSpace(in.Phone)
	u.Street = strings.TrimSpace(in.Street)
	u.PostalCode = plz
	u.City = city
	u.CompanyName = strings.TrimSpace(in.CompanyName)
	u.Bio = bio
	u.CategoriesJSON = string(catsJSON)
	u.ExperienceYears = in.ExperienceYears
	u.ProfileCompleted = profileComplete(&u)

	if err := s.Users.UpdateProfile(ctx, &u); err != nil {
		return nil, errs.Transient("update profile", err)
	}
	return &u, nil
}

// profileComplete mirrors what the directory needs: customers just need an
// address on file, craftsmen additionally a trade to be found under.
func profileComplete(u *domain.User) bool {
	if u.City == "" || u.PostalCode == "" {
		return false
	}
	if u.Role == domain.RoleCraftsman {
		return u.CategoriesJSON != "[]"
	}
	return true
}
