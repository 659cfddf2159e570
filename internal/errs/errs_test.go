package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestKindOfAndHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   Kind
		status int
	}{
		{Unauthenticated("no session"), KindUnauthenticated, fiber.StatusUnauthorized},
		{Unauthorized("not a party"), KindUnauthorized, fiber.StatusForbidden},
		{Validation("missing field"), KindValidation, fiber.StatusBadRequest},
		{NotFound("no such job"), KindNotFound, fiber.StatusNotFound},
		{Transient("db down", errors.New("locked")), KindTransient, fiber.StatusInternalServerError},
		{errors.New("plain"), KindUnknown, fiber.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.kind {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.kind)
		}
		if got := HTTPStatus(c.err); got != c.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.status)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFound("job missing")
	outer := fmt.Errorf("loading detail: %w", inner)
	if KindOf(outer) != KindNotFound {
		t.Fatal("kind must survive fmt.Errorf wrapping")
	}
	if HTTPStatus(outer) != fiber.StatusNotFound {
		t.Fatal("status must survive fmt.Errorf wrapping")
	}
}

func TestTransient(t *testing.T) {
	cause := errors.New("connection reset")
	err := Transient("send message", cause)
	if !IsTransient(err) {
		t.Fatal("transient error not recognized")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must stay in the chain")
	}
	if IsTransient(Validation("nope")) {
		t.Fatal("validation is not transient")
	}
	if Transient("noop", nil) != nil {
		t.Fatal("wrapping nil must stay nil")
	}
}
