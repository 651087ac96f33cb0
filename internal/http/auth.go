package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"board/internal/service"
	"board/internal/session"
)

const (
	msgRegistered         = "Registration complete. Please log in."
	msgRegisterFailed     = "Registration failed. Please choose a different username."
	msgInvalidCredentials = "Invalid username or password."
	msgLoggedOut          = "You have been logged out."
	msgLoginRequired      = "Please log in first."
	msgAccountGone        = "Your account no longer exists. Please log in again."
	msgWithdrawn          = "Your account has been deleted."
)

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register", nil)
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "register", gin.H{"errors": fieldErrors(err)})
		return
	}

	if _, err := h.users.Register(c.Request.Context(), form.Username, form.Password); err != nil {
		if errors.Is(err, service.ErrPasswordTooLong) {
			h.render(c, http.StatusBadRequest, "register", gin.H{
				"errors": []FieldError{{Field: "password", Error: "must be at most 72 bytes"}},
			})
			return
		}
		// any store failure reads the same to the client, the log keeps the cause
		if !errors.Is(err, service.ErrUserAlreadyExists) {
			h.logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Warn("registration failed")
		}
		h.sessions.AddFlash(c, session.FlashDanger, msgRegisterFailed)
		h.render(c, http.StatusConflict, "register", nil)
		return
	}

	h.redirect(c, "/login", session.FlashSuccess, msgRegistered)
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login", nil)
}

func (h *Handler) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "login", gin.H{"errors": fieldErrors(err)})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.sessions.AddFlash(c, session.FlashDanger, msgInvalidCredentials)
			h.render(c, http.StatusUnauthorized, "login", nil)
			return
		}
		h.fail(c, err)
		return
	}

	if err := h.sessions.Login(c, user.ID, user.Username); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, "/", session.FlashSuccess, fmt.Sprintf("Welcome, %s!", user.Username))
}

func (h *Handler) logout(c *gin.Context) {
	h.sessions.Clear(c)
	h.redirect(c, "/", session.FlashInfo, msgLoggedOut)
}

func (h *Handler) profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), session.From(c).UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.sessions.Clear(c)
			h.redirect(c, "/login", session.FlashDanger, msgAccountGone)
			return
		}
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "profile", gin.H{
		"profile": gin.H{
			"id":         profile.User.ID,
			"username":   profile.User.Username,
			"created_at": profile.User.CreatedAt.Format(time.RFC3339),
			"post_count": profile.PostCount,
		},
	})
}

func (h *Handler) withdraw(c *gin.Context) {
	err := h.users.Withdraw(c.Request.Context(), session.From(c).UserID)
	if err != nil && !errors.Is(err, service.ErrUserNotFound) {
		h.fail(c, err)
		return
	}

	h.sessions.Clear(c)
	h.redirect(c, "/", session.FlashSuccess, msgWithdrawn)
}
