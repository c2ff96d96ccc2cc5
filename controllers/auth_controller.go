package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rameshmuthu-dev/mobilemania-backend/middleware"
	"github.com/rameshmuthu-dev/mobilemania-backend/services"
)

const sessionCookieMaxAge = 24 * 60 * 60

// AuthController handles HTTP requests for registration, verification and
// sessions.
type AuthController struct {
	authService  *services.AuthService
	secureCookie bool
}

func NewAuthController(authService *services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{authService: authService, secureCookie: secureCookie}
}

// Register handles POST /api/auth/register.
func (ac *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, svcErr := ac.authService.Register(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Registered. Check your email for the verification code.",
		"user":    user,
	})
}

// VerifyEmail handles POST /api/auth/verify-email.
func (ac *AuthController) VerifyEmail(ctx *gin.Context) {
	var req services.VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := ac.authService.VerifyEmail(ctx.Request.Context(), &req); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// Login handles POST /api/auth/login. The session token is returned in the
// body and set as an HTTP-only cookie.
func (ac *AuthController) Login(ctx *gin.Context) {
	var req services.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	token, user, svcErr := ac.authService.Login(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie("token", token, sessionCookieMaxAge, "/", "", ac.secureCookie, true)
	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout handles POST /api/auth/logout.
func (ac *AuthController) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie("token", "", -1, "/", "", ac.secureCookie, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (ac *AuthController) ForgotPassword(ctx *gin.Context) {
	var req services.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := ac.authService.RequestPasswordReset(ctx.Request.Context(), &req); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "If that email is registered, a reset code has been sent."})
}

// ResetPassword handles POST /api/auth/reset-password.
func (ac *AuthController) ResetPassword(ctx *gin.Context) {
	var req services.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := ac.authService.ResetPassword(ctx.Request.Context(), &req); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Me handles GET /api/auth/me.
func (ac *AuthController) Me(ctx *gin.Context) {
	user, svcErr := ac.authService.GetUser(ctx.Request.Context(), middleware.GetUserID(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}
