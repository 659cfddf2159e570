package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

func conversationService(db *sqlx.DB) *services.ConversationService {
	return &services.ConversationService{
		Jobs:     repos.NewJobRepo(db),
		Apps:     repos.NewApplicationRepo(db),
		Users:    repos.NewUserRepo(db),
		Messages: repos.NewMessageRepo(db),
	}
}

func TestConversations_OnePerApplicant(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	hans := seededUser(t, db, "u-hans")
	erika := seededUser(t, db, "u-erika")
	applyToJob(t, db, hans, "job-bad-001")
	applyToJob(t, db, erika, "job-bad-001")

	msgSvc := messageService(db)
	if _, err := msgSvc.Send(ctx, hans, "job-bad-001", claudia.ID, "Angebot von Hans"); err != nil {
		t.Fatal(err)
	}

	convs, err := conversationService(db).List(ctx, claudia)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Fatalf("want one conversation per applicant, got %d", len(convs))
	}

	// The thread with traffic sorts first and carries its preview.
	first := convs[0]
	if first.Counterpart.ID != hans.ID {
		t.Fatalf("active thread should sort first, got counterpart %s", first.Counterpart.ID)
	}
	if first.LastMessage == nil || first.LastMessage.Content != "Angebot von Hans" {
		t.Fatalf("missing preview: %+v", first.LastMessage)
	}
	if first.UnreadCount != 1 {
		t.Fatalf("want 1 unread in hans thread, got %d", first.UnreadCount)
	}

	second := convs[1]
	if second.Counterpart.ID != erika.ID {
		t.Fatalf("silent thread should be erika, got %s", second.Counterpart.ID)
	}
	if second.LastMessage != nil || second.UnreadCount != 0 {
		t.Fatalf("silent thread should be empty: %+v", second)
	}
}

func TestConversations_CraftsmanSide(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	hans := seededUser(t, db, "u-hans")
	applyToJob(t, db, hans, "job-bad-001")

	msgSvc := messageService(db)
	if _, err := msgSvc.Send(ctx, claudia, "job-bad-001", hans.ID, "Wann können Sie vorbeikommen?"); err != nil {
		t.Fatal(err)
	}

	convs, err := conversationService(db).List(ctx, hans)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 1 {
		t.Fatalf("want one conversation, got %d", len(convs))
	}
	c := convs[0]
	if c.Counterpart.ID != claudia.ID {
		t.Fatalf("craftsman's counterpart must be the customer, got %s", c.Counterpart.ID)
	}
	if c.Job.ID != "job-bad-001" {
		t.Fatalf("wrong job: %s", c.Job.ID)
	}
	if c.UnreadCount != 1 {
		t.Fatalf("want 1 unread, got %d", c.UnreadCount)
	}

	// Reading the thread zeroes the badge on the next listing.
	if _, err := msgSvc.LoadHistory(ctx, hans, "job-bad-001", ""); err != nil {
		t.Fatal(err)
	}
	convs, err = conversationService(db).List(ctx, hans)
	if err != nil {
		t.Fatal(err)
	}
	if convs[0].UnreadCount != 0 {
		t.Fatalf("unread should be cleared, got %d", convs[0].UnreadCount)
	}
}

func TestConversations_RecencyOrder(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	martin := seededUser(t, db, "u-martin")
	hans := seededUser(t, db, "u-hans")
	applyToJob(t, db, hans, "job-bad-001")
	applyToJob(t, db, hans, "job-elektro-001")

	msgSvc := messageService(db)
	if _, err := msgSvc.Send(ctx, hans, "job-bad-001", claudia.ID, "erste Nachricht"); err != nil {
		t.Fatal(err)
	}
	if _, err := msgSvc.Send(ctx, hans, "job-elektro-001", martin.ID, "zweite Nachricht"); err != nil {
		t.Fatal(err)
	}

	convs, err := conversationService(db).List(ctx, hans)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Fatalf("want 2 conversations, got %d", len(convs))
	}
	if convs[0].Job.ID != "job-elektro-001" || convs[1].Job.ID != "job-bad-001" {
		t.Fatalf("most recent thread must sort first: %s, %s", convs[0].Job.ID, convs[1].Job.ID)
	}
}

func TestConversations_WithdrawnApplicantDropsOut(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()

	claudia := seededUser(t, db, "u-claudia")
	hans := seededUser(t, db, "u-hans")
	a := applyToJob(t, db, hans, "job-bad-001")

	appSvc := &services.ApplicationService{Jobs: repos.NewJobRepo(db), Apps: repos.NewApplicationRepo(db)}
	if _, err := appSvc.Withdraw(ctx, hans, a.ID); err != nil {
		t.Fatal(err)
	}

	convs, err := conversationService(db).List(ctx, claudia)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range convs {
		if c.Counterpart.ID == hans.ID && c.Job.ID == "job-bad-001" {
			t.Fatal("withdrawn applicant must not appear in the customer's list")
		}
	}

	// The craftsman's own list drops the thread too, so it never shows a
	// conversation the history endpoint would refuse to open.
	convs, err = conversationService(db).List(ctx, hans)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range convs {
		if c.Job.ID == "job-bad-001" {
			t.Fatal("withdrawn applicant must not list the abandoned thread")
		}
	}
}
