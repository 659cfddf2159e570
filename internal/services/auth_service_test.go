package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/iTeLLiiX/CraftConnect/internal/domain"
	"github.com/iTeLLiiX/CraftConnect/internal/errs"
	"github.com/iTeLLiiX/CraftConnect/internal/repos"
	"github.com/iTeLLiiX/CraftConnect/internal/services"
)

func TestRegister_Validation(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	svc := &services.AuthService{Users: repos.NewUserRepo(db), JWTSecret: "test-secret", TokenTTL: time.Hour}

	cases := map[string]services.RegisterInput{
		"bad email":     {Email: "not-an-email", Password: "Passw0rd!", FirstName: "Max", LastName: "Muster", Role: "customer"},
		"weak password": {Email: "max@example.de", Password: "short", FirstName: "Max", LastName: "Muster", Role: "customer"},
		"no digits":     {Email: "max@example.de", Password: "Passwords!", FirstName: "Max", LastName: "Muster", Role: "customer"},
		"no first name": {Email: "max@example.de", Password: "Passw0rd!", FirstName: " ", LastName: "Muster", Role: "customer"},
		"bad role":      {Email: "max@example.de", Password: "Passw0rd!", FirstName: "Max", LastName: "Muster", Role: "admin"},
		"taken email":   {Email: "claudia@craftconnect.test", Password: "Passw0rd!", FirstName: "C", LastName: "K", Role: "customer"},
	}
	for name, in := range cases {
		if _, err := svc.Register(ctx, in); errs.KindOf(err) != errs.KindValidation {
			t.Fatalf("%s: want validation, got %v", name, err)
		}
	}

	u, err := svc.Register(ctx, services.RegisterInput{
		Email: "max@example.de", Password: "Passw0rd!", FirstName: "Max", LastName: "Muster", Role: "craftsman",
	})
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != domain.RoleCraftsman || u.Hash == "Passw0rd!" {
		t.Fatalf("bad user: %+v", u)
	}
}

func TestLogin_SessionAndToken(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	svc := &services.AuthService{Users: repos.NewUserRepo(db), JWTSecret: "test-secret", TokenTTL: time.Hour}

	if _, _, err := svc.Login(ctx, "sid-1", "claudia@craftconnect.test", "falsch"); errs.KindOf(err) != errs.KindUnauthenticated {
		t.Fatalf("want unauthenticated, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "sid-1", "niemand@example.de", "Passw0rd!"); errs.KindOf(err) != errs.KindUnauthenticated {
		t.Fatalf("want unauthenticated for unknown email, got %v", err)
	}

	u, token, err := svc.Login(ctx, "sid-1", "claudia@craftconnect.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u-claudia" || token == "" {
		t.Fatalf("bad login result: %v %q", u, token)
	}

	// The session cookie path resolves the same user.
	cu, err := svc.CurrentUser(ctx, "sid-1")
	if err != nil || cu.ID != "u-claudia" {
		t.Fatalf("session lookup failed: %v %v", cu, err)
	}

	// So does the bearer token path.
	tu, err := svc.UserFromToken(ctx, token)
	if err != nil || tu.ID != "u-claudia" {
		t.Fatalf("token lookup failed: %v %v", tu, err)
	}

	// A token signed with a different secret is rejected.
	other := &services.AuthService{Users: repos.NewUserRepo(db), JWTSecret: "other-secret"}
	if _, err := other.UserFromToken(ctx, token); errs.KindOf(err) != errs.KindUnauthenticated {
		t.Fatal("foreign token must be rejected")
	}

	if err := svc.Logout(ctx, "sid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CurrentUser(ctx, "sid-1"); err == nil {
		t.Fatal("session must be gone after logout")
	}
}
