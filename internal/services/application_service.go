package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

type ApplicationService struct {
	Jobs    *repos.JobRepo
	Apps    *repos.ApplicationRepo
	Timeout time.Duration
}

type ApplyInput struct {
	Message           string   `json:"message"`
	Price             *float64 `json:"price,omitempty"`
	EstimatedDuration *int64   `json:"estimatedDuration,omitempty"`
}

// Apply files a craftsman's bid on an open job. One bid per (job, craftsman);
// the unique index backs this up against racing requests.
func (s *ApplicationService) Apply(ctx context.Context, craftsman *domain.User, jobID string, in ApplyInput) (*domain.JobApplication, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if craftsman.Role != domain.RoleCraftsman {
		return nil, errs.Unauthorized("only craftsmen can apply")
	}
	msg, ok := validate.Content(in.Message, 2000)
	if !ok {
		return nil, errs.Validation("application message is required")
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, errs.Validation("price cannot be negative")
	}
	if in.EstimatedDuration != nil && *in.EstimatedDuration <= 0 {
		return nil, errs.Validation("estimated duration must be positive")
	}

	checker := &PartyChecker{Jobs: s.Jobs, Apps: s.Apps}
	job, err := checker.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobOpen {
		return nil, errs.Validation("job is no longer open")
	}
	if job.CustomerID == craftsman.ID {
		return nil, errs.Validation("cannot apply to your own job")
	}

	exists, err := s.Apps.Exists(ctx, jobID, craftsman.ID)
	if err != nil {
		return nil, errs.Transient("check application", err)
	}
	if exists {
		return nil, errs.Validation("already applied to this job")
	}

	a := &domain.JobApplication{
		ID:                uuid.NewString(),
		JobID:             jobID,
		CraftsmanID:       craftsman.ID,
		Message:           msg,
		Price:             in.Price,
		EstimatedDuration: in.EstimatedDuration,
		Status:            domain.ApplicationPending,
	}
	if err := s.Apps.Create(ctx, a); err != nil {
		return nil, errs.Transient("create application", err)
	}
	return a, nil
}

func (s *ApplicationService) Mine(ctx context.Context, craftsman *domain.User, status string) ([]domain.JobApplication, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if status != "" {
		switch status {
		case domain.ApplicationPending, domain.ApplicationAccepted, domain.ApplicationRejected,
			domain.ApplicationWithdrawn, domain.ApplicationCompleted:
		default:
			return nil, errs.Validation("unknown application status")
		}
	}
	var out []domain.JobApplication
	err := readRetry.Do(ctx, func() error {
		apps, err := s.Apps.ListByCraftsman(ctx, craftsman.ID, status)
		if err != nil {
			return errs.Transient("list applications", err)
		}
		out = apps
		return nil
	})
	return out, err
}

func (s *ApplicationService) byID(ctx context.Context, id string) (*domain.JobApplication, error) {
	a, err := s.Apps.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("application not found")
	}
	if err != nil {
		return nil, errs.Transient("fetch application", err)
	}
	return a, nil
}

// Decide lets the job owner accept or reject a pending application.
// Accepting moves the job to in_progress.
func (s *ApplicationService) Decide(ctx context.Context, owner *domain.User, applicationID, decision string) (*domain.JobApplication, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if decision != domain.ApplicationAccepted && decision != domain.ApplicationRejected {
		return nil, errs.Validation("decision must be accepted or rejected")
	}
	a, err := s.byID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	checker := &PartyChecker{Jobs: s.Jobs, Apps: s.Apps}
	job, err := checker.JobByID(ctx, a.JobID)
	if err != nil {
		return nil, err
	}
	if job.CustomerID != owner.ID {
		return nil, errs.Unauthorized("only the job owner can decide")
	}
	if a.Status != domain.ApplicationPending {
		return nil, errs.Validation("application already decided")
	}

	if err := s.Apps.UpdateStatus(ctx, a.ID, decision); err != nil {
		return nil, errs.Transient("update application", err)
	}
	if decision == domain.ApplicationAccepted {
		if err := s.Jobs.UpdateStatus(ctx, job.ID, domain.JobInProgress); err != nil {
			return nil, errs.Transient("update job status", err)
		}
	}
	a.Status = decision
	return a, nil
}

// Withdraw retracts the craftsman's own pending bid.
func (s *ApplicationService) Withdraw(ctx context.Context, craftsman *domain.User, applicationID string) (*domain.JobApplication, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	a, err := s.byID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a.CraftsmanID != craftsman.ID {
		return nil, errs.Unauthorized("not your application")
	}
	if a.Status != domain.ApplicationPending {
		return nil, errs.Validation("only pending applications can be withdrawn")
	}
	if err := s.Apps.UpdateStatus(ctx, a.ID, domain.ApplicationWithdrawn); err != nil {
		return nil, errs.Transient("update application", err)
	}
	a.Status = domain.ApplicationWithdrawn
	return a, nil
}

// Schedule sets the visit date/time on an accepted application.
func (s *ApplicationService) Schedule(ctx context.Context, craftsman *domain.User, applicationID, date, timeOfDay string) (*domain.JobApplication, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errs.Validation("date must be YYYY-MM-DD")
	}
	if timeOfDay != "" {
		if _, err := time.Parse("15:04", timeOfDay); err != nil {
			return nil, errs.Validation("time must be HH:MM")
		}
	}
	a, err := s.byID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if a.CraftsmanID != craftsman.ID {
		return nil, errs.Unauthorized("not your application")
	}
	if a.Status != domain.ApplicationAccepted {
		return nil, errs.Validation("only accepted applications can be scheduled")
	}
	if err := s.Apps.SetSchedule(ctx, a.ID, date, timeOfDay); err != nil {
		return nil, errs.Transient("set schedule", err)
	}
	a.ScheduledDate = &date
	if timeOfDay != "" {
		a.ScheduledTime = &timeOfDay
	}
	return a, nil
}

// ScheduledEntry pairs an application with its job for the calendar view.
type ScheduledEntry struct {
	Application domain.JobApplication `json:"application"`
	Job         domain.Job            `json:"job"`
}

func (s *ApplicationService) ScheduleList(ctx context.Context, craftsman *domain.User) ([]ScheduledEntry, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	apps, err := s.Apps.Scheduled(ctx, craftsman.ID)
	if err != nil {
		return nil, errs.Transient("list schedule", err)
	}
	out := make([]ScheduledEntry, 0, len(apps))
	for _, a := range apps {
		job, err := s.Jobs.ByID(ctx, a.JobID)
		if err != nil {
			return nil, errs.Transient("fetch job", err)
		}
		out = append(out, ScheduledEntry{Application: a, Job: *job})
	}
	return out, nil
}
