package api

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scentshop/perfumery/pkg/storefront"
)

const (
	memberKey  = "member"
	sessionTTL = 7 * 24 * time.Hour
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type passwordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func memberID(c *fiber.Ctx) string {
	id, _ := c.Locals(memberKey).(string)
	return id
}

// requireSession rejects requests without a live session cookie.
func (s *Server) requireSession(c *fiber.Ctx) error {
	id, ok := s.store.session(c.Cookies(sessionCookie))
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "not logged in")
	}
	c.Locals(memberKey, id)
	return c.Next()
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, user, err := s.store.login(strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, err.Error())
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	s.logger.Info("member logged in", "member", user.ID)
	return c.JSON(fiber.Map{"user": user})
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid email address")
	}
	if len(in.Password) < 6 {
		return fail(c, fiber.StatusBadRequest, "password must be at least 6 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fail(c, fiber.StatusBadRequest, "name is required")
	}

	user, err := s.store.register(email, in.Password, strings.TrimSpace(in.Name))
	if errors.Is(err, errEmailRegistered) {
		return fail(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to register")
	}

	s.logger.Info("member registered", "member", user.ID)
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	s.store.logout(c.Cookies(sessionCookie))
	c.ClearCookie(sessionCookie)
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	user, err := s.store.profile(memberID(c))
	if err != nil {
		return fail(c, fiber.StatusNotFound, "member not found")
	}
	return c.JSON(user)
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var update storefront.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return fail(c, fiber.StatusBadRequest, "name cannot be empty")
	}

	user, err := s.store.updateProfile(memberID(c), update)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "member not found")
	}
	return c.JSON(user)
}

func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	var in passwordChange
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(in.NewPassword) < 6 {
		return fail(c, fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	err := s.store.changePassword(memberID(c), in.CurrentPassword, in.NewPassword)
	switch {
	case errors.Is(err, errWrongPassword):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return fail(c, fiber.StatusNotFound, "member not found")
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}
