package handlers

import (
	"net/http"

	"HospitalMS/middlewares"
	"HospitalMS/models"
	"HospitalMS/services"
	"HospitalMS/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates the user and returns tokens along with user info
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}

	utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken)
	middlewares.RespondData(c, http.StatusOK, "تم تسجيل الدخول بنجاح", session)
}

// RefreshToken accepts the refresh token in the body or the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(utils.RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		middlewares.HttpError(c, models.ErrUnauthorized)
		return
	}

	session, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}

	utils.SetAuthCookies(c, session.AccessToken, session.RefreshToken)
	middlewares.RespondData(c, http.StatusOK, "", session)
}

func (h *AuthHandler) GetUserProfile(c *gin.Context) {
	p, ok := middlewares.CurrentPrincipal(c)
	if !ok {
		middlewares.HttpError(c, models.ErrUnauthorized)
		return
	}

	user, permissions, err := h.service.Me(c.Request.Context(), p)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", gin.H{"user": user, "permissions": permissions})
}

func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	middlewares.RespondData(c, http.StatusOK, "تم تسجيل الخروج", nil)
}

// SendResetCode always answers the same way whether or not the email is known.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	if err := h.service.SendResetCode(c.Request.Context(), req.Email); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "تم إرسال رمز إعادة التعيين إلى بريدك الإلكتروني", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "تم تغيير كلمة المرور بنجاح", nil)
}
