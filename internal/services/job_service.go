package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/validate"
)

type JobService struct {
	Jobs    *repos.JobRepo
	Apps    *repos.ApplicationRepo
	Users   *repos.UserRepo
	Timeout time.Duration
}

type CreateJobInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Street      string  `json:"street"`
	PostalCode  string  `json:"postalCode"`
	City        string  `json:"city"`
	BudgetMin   float64 `json:"budgetMin"`
	BudgetMax   float64 `json:"budgetMax"`
	Urgency     string  `json:"urgency"`
}

func (s *JobService) Create(ctx context.Context, customer *domain.User, in CreateJobInput) (*domain.Job, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if customer.Role != domain.RoleCustomer {
		return nil, errs.Unauthorized("only customers can post jobs")
	}
	title, ok := validate.Content(in.Title, 150)
	if !ok {
		return nil, errs.Validation("title is required")
	}
	desc, ok := validate.Content(in.Description, 5000)
	if !ok {
		return nil, errs.Validation("description is required")
	}
	category, ok := validate.Category(in.Category)
	if !ok {
		return nil, errs.Validation("unknown category")
	}
	urgency, ok := validate.Urgency(in.Urgency)
	if !ok {
		return nil, errs.Validation("unknown urgency level")
	}
	plz, ok := validate.PostalCode(in.PostalCode)
	if !ok {
		return nil, errs.Validation("invalid postal code")
	}
	city, ok := validate.Name(in.City)
	if !ok {
		return nil, errs.Validation("city is required")
	}
	if in.BudgetMin < 0 || in.BudgetMax < 0 || (in.BudgetMax > 0 && in.BudgetMin > in.BudgetMax) {
		return nil, errs.Validation("invalid budget range")
	}

	j := &domain.Job{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		Title:       title,
		Description: desc,
		Category:    category,
		Street:      in.Street,
		PostalCode:  plz,
		City:        city,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
		Urgency:     urgency,
		Status:      domain.JobOpen,
	}
	if err := s.Jobs.Create(ctx, j); err != nil {
		return nil, errs.Transient("create job", err)
	}
	return j, nil
}

// List returns open jobs matching the filter, newest first.
func (s *JobService) List(ctx context.Context, f repos.Filter) ([]domain.Job, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	if f.Status == "" {
		f.Status = domain.JobOpen
	}
	var out []domain.Job
	err := readRetry.Do(ctx, func() error {
		jobs, err := s.Jobs.List(ctx, f)
		if err != nil {
			return errs.Transient("list jobs", err)
		}
		out = jobs
		return nil
	})
	return out, err
}

type JobDetail struct {
	Job          domain.Job              `json:"job"`
	Customer     domain.User             `json:"customer"`
	Applications []domain.JobApplication `json:"applications"`
}

func (s *JobService) Detail(ctx context.Context, jobID string, viewer *domain.User) (*JobDetail, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	checker := &PartyChecker{Jobs: s.Jobs, Apps: s.Apps}
	job, err := checker.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	customer, err := s.Users.ByID(ctx, job.CustomerID)
	if err != nil {
		return nil, errs.Transient("fetch customer", err)
	}
	apps, err := s.Apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, errs.Transient("fetch applications", err)
	}

	// Applicants' contact details stay between the parties: anyone can see
	// an open job, but only the owner sees all bids; a craftsman sees their own.
	if viewer == nil || (viewer.ID != job.CustomerID && viewer.Role != domain.RoleAdmin) {
		filtered := apps[:0]
		for _, a := range apps {
			if viewer != nil && a.CraftsmanID == viewer.ID {
				filtered = append(filtered, a)
			}
		}
		apps = filtered
	}

	return &JobDetail{Job: *job, Customer: *customer, Applications: apps}, nil
}

// UpdateStatus applies a lifecycle transition. The owner can move the job
// along or cancel it while open; the accepted craftsman can mark it completed.
func (s *JobService) UpdateStatus(ctx context.Context, user *domain.User, jobID, status string) (*domain.Job, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	checker := &PartyChecker{Jobs: s.Jobs, Apps: s.Apps}
	job, err := checker.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !validTransition(job.Status, status) {
		return nil, errs.Validation("illegal status transition")
	}

	switch {
	case user.ID == job.CustomerID:
		// owner may apply any legal transition
	case status == domain.JobCompleted:
		accepted, err := s.Apps.HasAccepted(ctx, jobID, user.ID)
		if err != nil {
			return nil, errs.Transient("check application", err)
		}
		if !accepted {
			return nil, errs.Unauthorized("only the accepted craftsman can complete a job")
		}
	default:
		return nil, errs.Unauthorized("only the job owner can do that")
	}

	if err := s.Jobs.UpdateStatus(ctx, jobID, status); err != nil {
		return nil, errs.Transient("update job status", err)
	}
	job.Status = status
	return job, nil
}

func validTransition(from, to string) bool {
	switch from {
	case domain.JobOpen:
		return to == domain.JobInProgress || to == domain.JobCancelled
	case domain.JobInProgress:
		return to == domain.JobCompleted || to == domain.JobCancelled
	}
	return false
}

func (s *JobService) PlatformStats(ctx context.Context) (repos.Stats, error) {
	ctx, cancel := bound(ctx, s.Timeout)
	defer cancel()

	var stats repos.Stats
	err := readRetry.Do(ctx, func() error {
		st, err := s.Jobs.PlatformStats(ctx)
		if err != nil {
			return errs.Transient("platform stats", err)
		}
		stats = st
		return nil
	})
	return stats, err
}
