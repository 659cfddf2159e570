package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
)

const userCols = `id,email,password_hash,role,first_name,last_name,phone,street,postal_code,city,
company_name,bio,categories_json,experience_years,profile_completed,created_at,updated_at`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u,
		`SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users(id,email,password_hash,role,first_name,last_name,phone,
		                  street,postal_code,city,company_name,bio,categories_json,
		                  experience_years,profile_completed)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Email, u.Hash, u.Role, u.FirstName, u.LastName, u.Phone,
		u.Street, u.PostalCode, u.City, u.CompanyName, u.Bio, u.CategoriesJSON,
		u.ExperienceYears, u.ProfileCompleted)
	return err
}

// UpdateProfile rewrites the mutable profile columns. Email, role and
// password stay as registered.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users SET first_name=?, last_name=?, phone=?, street=?, postal_code=?,
		                 city=?, company_name=?, bio=?, categories_json=?,
		                 experience_years=?, profile_completed=?,
		                 updated_at=CURRENT_TIMESTAMP
		WHERE id=?`,
		u.FirstName, u.LastName, u.Phone, u.Street, u.PostalCode,
		u.City, u.CompanyName, u.Bio, u.CategoriesJSON,
		u.ExperienceYears, u.ProfileCompleted, u.ID)
	return err
}

// CraftsmenFilter narrows the craftsmen directory. Zero values match all.
type CraftsmenFilter struct {
	Category string
	City     string
}

func (r *UserRepo) Craftsmen(ctx context.Context, f CraftsmenFilter) ([]domain.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE role='craftsman' AND profile_completed=1`
	args := []any{}
	if f.Category != "" {
		// categories_json is a JSON array of strings
		q += ` AND categories_json LIKE ?`
		args = append(args, `%"`+f.Category+`"%`)
	}
	if f.City != "" {
		q += ` AND LOWER(city) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.City)+"%")
	}
	q += ` ORDER BY company_name, last_name`
	out := []domain.User{}
	err := r.DB.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`,
		sid, userID)
	return err
}

func (r *UserRepo) SessionUser(ctx context.Context, sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
      SELECT `+prefixCols("u", userCols)+`
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}

// prefixCols rewrites "a,b,c" as "p.a,p.b,p.c" for joined selects.
func prefixCols(p, cols string) string {
	parts := strings.Split(cols, ",")
	for i, c := range parts {
		parts[i] = p + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ",")
}
