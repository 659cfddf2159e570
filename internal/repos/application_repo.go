package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
)

const appCols = `id,job_id,craftsman_id,message,price,estimated_duration,status,
scheduled_date,scheduled_time,created_at,updated_at`

type ApplicationRepo struct{ DB *sqlx.DB }

func NewApplicationRepo(db *sqlx.DB) *ApplicationRepo { return &ApplicationRepo{DB: db} }

func (r *ApplicationRepo) Create(ctx context.Context, a *domain.JobApplication) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO job_applications(id,job_id,craftsman_id,message,price,estimated_duration,status)
		VALUES(?,?,?,?,?,?,?)`,
		a.ID, a.JobID, a.CraftsmanID, a.Message, a.Price, a.EstimatedDuration, a.Status)
	return err
}

func (r *ApplicationRepo) ByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	var a domain.JobApplication
	err := r.DB.GetContext(ctx, &a, `SELECT `+appCols+` FROM job_applications WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Exists reports whether the craftsman already has any application on the
// job, including withdrawn or rejected ones.
func (r *ApplicationRepo) Exists(ctx context.Context, jobID, craftsmanID string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM job_applications WHERE job_id=? AND craftsman_id=?`,
		jobID, craftsmanID)
	return n > 0, err
}

// HasActive is the authorization flavor: withdrawn bids no longer make the
// craftsman a party to the job.
func (r *ApplicationRepo) HasActive(ctx context.Context, jobID, craftsmanID string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM job_applications
		 WHERE job_id=? AND craftsman_id=? AND status<>'withdrawn'`,
		jobID, craftsmanID)
	return n > 0, err
}

// HasAccepted reports whether the craftsman holds the winning bid. Only
// they may move the job itself along.
func (r *ApplicationRepo) HasAccepted(ctx context.Context, jobID, craftsmanID string) (bool, error) {
	var n int
	err := r.DB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM job_applications
		 WHERE job_id=? AND craftsman_id=? AND status IN ('accepted','completed')`,
		jobID, craftsmanID)
	return n > 0, err
}

func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID string) ([]domain.JobApplication, error) {
	out := []domain.JobApplication{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT `+prefixCols("a", appCols)+`,
		       CASE WHEN u.company_name<>'' THEN u.company_name
		            ELSE u.first_name || ' ' || u.last_name END AS craftsman_name
		FROM job_applications a JOIN users u ON u.id=a.craftsman_id
		WHERE a.job_id=?
		ORDER BY a.created_at, a.id`, jobID)
	return out, err
}

func (r *ApplicationRepo) ListByCraftsman(ctx context.Context, craftsmanID, status string) ([]domain.JobApplication, error) {
	q := `SELECT ` + appCols + ` FROM job_applications WHERE craftsman_id=?`
	args := []any{craftsmanID}
	if status != "" {
		q += ` AND status=?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id`
	out := []domain.JobApplication{}
	err := r.DB.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE job_applications SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		status, id)
	return err
}

func (r *ApplicationRepo) SetSchedule(ctx context.Context, id, date, timeOfDay string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE job_applications
		SET scheduled_date=?, scheduled_time=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=?`, date, timeOfDay, id)
	return err
}

// Scheduled lists the craftsman's accepted applications that carry a date,
// soonest first.
func (r *ApplicationRepo) Scheduled(ctx context.Context, craftsmanID string) ([]domain.JobApplication, error) {
	out := []domain.JobApplication{}
	err := r.DB.SelectContext(ctx, &out, `
		SELECT `+appCols+` FROM job_applications
		WHERE craftsman_id=? AND status IN ('accepted','completed')
		  AND scheduled_date IS NOT NULL
		ORDER BY scheduled_date, scheduled_time`, craftsmanID)
	return out, err
}
