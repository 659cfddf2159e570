package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
)

const jobCols = `id,customer_id,title,description,category,street,postal_code,city,
budget_min,budget_max,urgency,status,created_at,updated_at`

type JobRepo struct{ DB *sqlx.DB }

func NewJobRepo(db *sqlx.DB) *JobRepo { return &JobRepo{DB: db} }

func (r *JobRepo) Create(ctx context.Context, j *domain.Job) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO jobs(id,customer_id,title,description,category,street,postal_code,city,
		                 budget_min,budget_max,urgency,status)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		j.ID, j.CustomerID, j.Title, j.Description, j.Category, j.Street, j.PostalCode,
		j.City, j.BudgetMin, j.BudgetMax, j.Urgency, j.Status)
	return err
}

func (r *JobRepo) ByID(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	err := r.DB.GetContext(ctx, &j, `SELECT `+jobCols+` FROM jobs WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Filter is the typed query object for job listings; each set field adds
// one parameterized predicate.
type Filter struct {
	Status   string
	Search   string
	Category string
	Urgency  string
	Limit    int
}

func (r *JobRepo) List(ctx context.Context, f Filter) ([]domain.Job, error) {
	q := `SELECT ` + prefixCols("j", jobCols) + `,
	        CASE WHEN u.company_name<>'' THEN u.company_name
	             ELSE u.first_name || ' ' || u.last_name END AS customer_name
	      FROM jobs j JOIN users u ON u.id=j.customer_id WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		q += ` AND j.status=?`
		args = append(args, f.Status)
	}
	if f.Search != "" {
		q += ` AND (LOWER(j.title) LIKE ? OR LOWER(j.description) LIKE ?)`
		term := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, term, term)
	}
	if f.Category != "" {
		q += ` AND j.category=?`
		args = append(args, f.Category)
	}
	if f.Urgency != "" {
		q += ` AND j.urgency=?`
		args = append(args, f.Urgency)
	}
	q += ` ORDER BY j.created_at DESC, j.id`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	out := []domain.Job{}
	err := r.DB.SelectContext(ctx, &out, q, args...)
	return out, err
}

// ByParty returns jobs where the user is the customer or has a live
// application. Withdrawn bids drop out, matching HasActive, so the
// conversation aggregator never lists a thread the craftsman can no
// longer open.
func (r *JobRepo) ByParty(ctx context.Context, userID string) ([]domain.Job, error) {
	out := []domain.Job{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT `+prefixCols("j", jobCols)+`
		FROM jobs j
		WHERE j.customer_id=?
		   OR EXISTS (SELECT 1 FROM job_applications a
		              WHERE a.job_id=j.id AND a.craftsman_id=?
		                AND a.status<>'withdrawn')
		ORDER BY j.created_at DESC, j.id`, userID, userID)
	return out, err
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE jobs SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, status, id)
	return err
}

// Stats feeds the admin dashboard.
type Stats struct {
	Users               int `db:"users" json:"users"`
	Jobs                int `db:"jobs" json:"jobs"`
	Applications        int `db:"applications" json:"applications"`
	PendingApplications int `db:"pending_applications" json:"pendingApplications"`
	JobsInProgress      int `db:"jobs_in_progress" json:"jobsInProgress"`
	JobsCompleted       int `db:"jobs_completed" json:"jobsCompleted"`
	NewUsersThisMonth   int `db:"new_users_this_month" json:"newUsersThisMonth"`
}

func (r *JobRepo) PlatformStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.DB.GetContext(ctx, &s, `
		SELECT
		  (SELECT COUNT(*) FROM users)                                          AS users,
		  (SELECT COUNT(*) FROM jobs)                                           AS jobs,
		  (SELECT COUNT(*) FROM job_applications)                               AS applications,
		  (SELECT COUNT(*) FROM job_applications WHERE status='pending')        AS pending_applications,
		  (SELECT COUNT(*) FROM jobs WHERE status='in_progress')                AS jobs_in_progress,
		  (SELECT COUNT(*) FROM jobs WHERE status='completed')                  AS jobs_completed,
		  (SELECT COUNT(*) FROM users
		     WHERE created_at >= strftime('%Y-%m-01', 'now'))                   AS new_users_this_month`)
	return s, err
}
