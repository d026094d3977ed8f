package handler

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/user"

	"github.com/gin-gonic/gin"
)

type userHandler struct {
	svc          user.Service
	secureCookie bool
	cookieMaxAge int
}

func (h *userHandler) register(c *gin.Context) {
	var in user.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.setTokenCookie(c, res.Token)
	c.JSON(http.StatusCreated, res)
}

func (h *userHandler) login(c *gin.Context) {
	var in user.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.setTokenCookie(c, res.Token)
	c.JSON(http.StatusOK, res)
}

func (h *userHandler) me(c *gin.Context) {
	u, err := h.svc.GetMe(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *userHandler) updateProfile(c *gin.Context) {
	var in user.UpdateProfileInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.UpdateProfile(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	h.setTokenCookie(c, res.Token)
	c.JSON(http.StatusOK, res)
}

// setTokenCookie mirrors the bearer token into an HttpOnly cookie for
// browser clients.
func (h *userHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.AccessTokenCookie, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
}
