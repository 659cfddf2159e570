package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

func applicationService(db *sqlx.DB) *services.ApplicationService {
	return &services.ApplicationService{Jobs: repos.NewJobRepo(db), Apps: repos.NewApplicationRepo(db)}
}

func TestApply_RulesAndDuplicates(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	hans := seededUser(t, db, "u-hans")
	svc := applicationService(db)

	// Customers cannot bid.
	if _, err := svc.Apply(ctx, claudia, "job-bad-001", services.ApplyInput{Message: "hi"}); errs.KindOf(err) != errs.KindUnauthorized {
		t.Fatalf("want unauthorized for customer, got %v", err)
	}

	price := 4500.0
	a, err := svc.Apply(ctx, hans, "job-bad-001", services.ApplyInput{Message: "Ich kann nächste Woche", Price: &price})
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != domain.ApplicationPending {
		t.Fatalf("new application must be pending, got %s", a.Status)
	}

	// One bid per job and craftsman.
	if _, err := svc.Apply(ctx, hans, "job-bad-001", services.ApplyInput{Message: "nochmal"}); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("want validation for duplicate, got %v", err)
	}

	// Withdrawing does not reopen the slot.
	if _, err := svc.Withdraw(ctx, hans, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Apply(ctx, hans, "job-bad-001", services.ApplyInput{Message: "doch wieder"}); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("want validation after withdraw, got %v", err)
	}

	bad := -1.0
	if _, err := svc.Apply(ctx, hans, "job-elektro-001", services.ApplyInput{Message: "hi", Price: &bad}); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("negative price must be rejected")
	}
	if _, err := svc.Apply(ctx, hans, "job-elektro-001", services.ApplyInput{Message: "   "}); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("blank message must be rejected")
	}
}

func TestDecide_AcceptMovesJobInProgress(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	martin := seededUser(t, db, "u-martin")
	hans := seededUser(t, db, "u-hans")
	a := applyToJob(t, db, hans, "job-bad-001")
	svc := applicationService(db)

	// Only the owner decides.
	if _, err := svc.Decide(ctx, martin, a.ID, domain.ApplicationAccepted); errs.KindOf(err) != errs.KindUnauthorized {
		t.Fatalf("want unauthorized for non-owner, got %v", err)
	}
	if _, err := svc.Decide(ctx, claudia, a.ID, "maybe"); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("unknown decision must be rejected")
	}

	decided, err := svc.Decide(ctx, claudia, a.ID, domain.ApplicationAccepted)
	if err != nil {
		t.Fatal(err)
	}
	if decided.Status != domain.ApplicationAccepted {
		t.Fatalf("want accepted, got %s", decided.Status)
	}

	job, err := repos.NewJobRepo(db).ByID(ctx, "job-bad-001")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != domain.JobInProgress {
		t.Fatalf("accepting must move the job to in_progress, got %s", job.Status)
	}

	// Already decided applications stay decided.
	if _, err := svc.Decide(ctx, claudia, a.ID, domain.ApplicationRejected); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("re-deciding must be rejected")
	}
	// Accepted bids cannot be withdrawn.
	if _, err := svc.Withdraw(ctx, hans, a.ID); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("withdrawing an accepted bid must be rejected")
	}
}

func TestSchedule_AcceptedOnly(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	hans := seededUser(t, db, "u-hans")
	a := applyToJob(t, db, hans, "job-bad-001")
	svc := applicationService(db)

	if _, err := svc.Schedule(ctx, hans, a.ID, "2026-09-15", "10:30"); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("pending applications cannot be scheduled")
	}
	if _, err := svc.Decide(ctx, claudia, a.ID, domain.ApplicationAccepted); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Schedule(ctx, hans, a.ID, "15.09.2026", ""); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("non-ISO dates must be rejected")
	}
	if _, err := svc.Schedule(ctx, hans, a.ID, "2026-09-15", "25:99"); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("bad times must be rejected")
	}

	scheduled, err := svc.Schedule(ctx, hans, a.ID, "2026-09-15", "10:30")
	if err != nil {
		t.Fatal(err)
	}
	if scheduled.ScheduledDate == nil || *scheduled.ScheduledDate != "2026-09-15" {
		t.Fatalf("date not set: %+v", scheduled)
	}

	entries, err := svc.ScheduleList(ctx, hans)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Job.ID != "job-bad-001" {
		t.Fatalf("bad schedule list: %+v", entries)
	}
}

func TestMine_FiltersByStatus(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	hans := seededUser(t, db, "u-hans")
	applyToJob(t, db, hans, "job-bad-001")
	applyToJob(t, db, hans, "job-elektro-001")
	svc := applicationService(db)

	all, err := svc.Mine(ctx, hans, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 applications, got %d", len(all))
	}
	pending, err := svc.Mine(ctx, hans, domain.ApplicationPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("want 2 pending, got %d", len(pending))
	}
	if _, err := svc.Mine(ctx, hans, "garbage"); errs.KindOf(err) != errs.KindValidation {
		t.Fatal("unknown status filter must be rejected")
	}
}
