package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/boron/internal/auth"
)

func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, s.CookieMaxAge, "/", "", true, true)
}

func (s *Server) SetupStatus(c *gin.Context) {
	initialized, err := s.Auth.Initialized(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	message := "Setup required - please set admin password"
	if initialized {
		message = "Setup complete"
	}
	c.JSON(http.StatusOK, gin.H{"initialized": initialized, "message": message})
}

type setupRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Setup sets the admin password on a fresh install and logs the admin in.
func (s *Server) Setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Password != req.PasswordConfirm {
		fail(c, http.StatusBadRequest, "passwords do not match")
		return
	}

	ctx := c.Request.Context()
	if err := s.Auth.Setup(ctx, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrAlreadyInitialized):
			fail(c, http.StatusBadRequest, "setup already completed, use /login instead")
		case errors.Is(err, auth.ErrPasswordTooShort):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	token, err := s.Auth.SignToken(s.Auth.Username)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Setup complete", "username": s.Auth.Username})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := s.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotInitialized):
			fail(c, http.StatusBadRequest, "initial setup required")
		case errors.Is(err, auth.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, "invalid username or password")
		default:
			fail(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "username": req.Username})
}

func (s *Server) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": c.GetString(auth.SubjectKey)})
}
