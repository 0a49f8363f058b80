package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and profile endpoints
type AuthHandler struct {
	BaseHandler
	authService         *identityapp.AuthService
	verificationService *identityapp.VerificationService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService, verificationService *identityapp.VerificationService) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		verificationService: verificationService,
	}
}

// RegisterRequest represents a storefront registration request
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest represents an OTP submission
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResendVerificationRequest asks for a fresh OTP and link
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=20"`
	Address   string `json:"address" binding:"max=500"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserResponse is the user view returned to the storefront
type UserResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	IsEmailVerified bool   `json:"is_email_verified"`
	CreatedAt       string `json:"created_at"`
}

// RegisterResponse reports the created account and whether the
// verification email went out
type RegisterResponse struct {
	User      UserResponse `json:"user"`
	EmailSent bool         `json:"email_sent"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

// AdminLoginResponse is returned on successful back-office login
type AdminLoginResponse struct {
	TokenResponse
	Admin AdminResponse `json:"admin"`
}

// AdminResponse is the admin view returned to the back office
type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func toUserResponse(u identityapp.UserInfo) UserResponse {
	return UserResponse{
		ID:              u.ID.String(),
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Phone:           u.Phone,
		Address:         u.Address,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

// Register godoc
// @Summary      Register a new storefront account
// @Description  Creates an unverified user and sends the verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} dto.Response{data=RegisterResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, RegisterResponse{
		User:      toUserResponse(result.User),
		EmailSent: result.EmailSent,
	})
}

// Login godoc
// @Summary      Log in to the storefront
// @Description  Returns an access token. Unverified accounts get an
// @Description  EMAIL_NOT_VERIFIED error carrying the user id.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		TokenResponse: TokenResponse{
			AccessToken: result.AccessToken,
			TokenType:   result.TokenType,
			ExpiresAt:   result.ExpiresAt.Format(time.RFC3339),
		},
		User: toUserResponse(result.User),
	})
}

// AdminLogin godoc
// @Summary      Log in to the back office
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Admin login request"
// @Success      200 {object} dto.Response{data=AdminLoginResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.authService.AdminLogin(c.Request.Context(), identityapp.AdminLoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, AdminLoginResponse{
		TokenResponse: TokenResponse{
			AccessToken: result.AccessToken,
			TokenType:   result.TokenType,
			ExpiresAt:   result.ExpiresAt.Format(time.RFC3339),
		},
		Admin: AdminResponse{
			ID:       result.Admin.ID.String(),
			Username: result.Admin.Username,
			Email:    result.Admin.Email,
			FullName: result.Admin.FullName,
		},
	})
}

// Logout revokes the presented access token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	err := h.authService.Logout(c.Request.Context(), identityapp.LogoutInput{
		TokenJTI:  claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Logged out"})
}

// VerifyOTP godoc
// @Summary      Verify an email address with the mailed OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "OTP submission"
// @Success      200 {object} dto.Response
// @Failure      410 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err := h.verificationService.VerifyOTP(c.Request.Context(), identityapp.VerifyOTPInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Email verified"})
}

// VerifyEmailLink verifies via the token carried in the mailed link
func (h *AuthHandler) VerifyEmailLink(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.BadRequest(c, "Missing verification token")
		return
	}

	err := h.verificationService.VerifyToken(c.Request.Context(), identityapp.VerifyTokenInput{
		Token: token,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Email verified"})
}

// ResendVerification regenerates the OTP and token and re-sends the email
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	sent, err := h.verificationService.Resend(c.Request.Context(), identityapp.ResendVerificationInput{
		Email: req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"email_sent": sent})
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}

// UpdateProfile updates the authenticated user's profile fields
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), identityapp.UpdateProfileInput{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}

// ChangePassword changes the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	err = h.authService.ChangePassword(c.Request.Context(), identityapp.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Password changed"})
}

// ListUsers returns a page of registered users for the back office
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var req struct {
		Page     int    `form:"page"`
		PageSize int    `form:"page_size" binding:"omitempty,max=100"`
		Search   string `form:"search"`
		Verified *bool  `form:"verified"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	result, err := h.authService.ListUsers(c.Request.Context(), identityapp.ListUsersInput{
		Keyword:  req.Search,
		Verified: req.Verified,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	users := make([]UserResponse, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toUserResponse(u))
	}
	h.SuccessWithMeta(c, users, result.Total, result.Page, result.PageSize)
}
