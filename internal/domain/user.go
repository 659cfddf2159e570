package domain

// Roles stored in users.role.
const (
	RoleCustomer  = "customer"
	RoleCraftsman = "craftsman"
	RoleAdmin     = "admin"
)

type User struct {
	ID               string `db:"id" json:"id"`
	Email            string `db:"email" json:"email"`
	Hash             string `db:"password_hash" json:"-"`
	Role             string `db:"role" json:"role"`
	FirstName        string `db:"first_name" json:"firstName"`
	LastName         string `db:"last_name" json:"lastName"`
	Phone            string `db:"phone" json:"phone,omitempty"`
	Street           string `db:"street" json:"street,omitempty"`
	PostalCode       string `db:"postal_code" json:"postalCode,omitempty"`
	City             string `db:"city" json:"city,omitempty"`
	CompanyName      string `db:"company_name" json:"companyName,omitempty"`
	Bio              string `db:"bio" json:"bio,omitempty"`
	CategoriesJSON   string `db:"categories_json" json:"-"`
	ExperienceYears  int    `db:"experience_years" json:"experienceYears,omitempty"`
	ProfileCompleted bool   `db:"profile_completed" json:"profileCompleted"`
	CreatedAt        string `db:"created_at" json:"createdAt"`
	UpdatedAt        string `db:"updated_at" json:"-"`
}

// DisplayName is what shows up next to messages and applications:
// company name for craftsmen that have one, otherwise first + last name.
func (u *User) DisplayName() string {
	if u.Role == RoleCraftsman && u.CompanyName != "" {
		return u.CompanyName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
