package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rameshmuthu-dev/mobilemania-backend/models"
	"github.com/rameshmuthu-dev/mobilemania-backend/repository"
)

const (
	otpLength = 6
	otpTTL    = 15 * time.Minute
	tokenTTL  = 24 * time.Hour

	otpPurposeVerify = "verify"
	otpPurposeReset  = "reset"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type AuthService struct {
	userRepo  repository.UserRepository
	otpStore  repository.OTPStore
	sender    EmailSender
	jwtSecret []byte
	logger    *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, otpStore repository.OTPStore, sender EmailSender, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		otpStore:  otpStore,
		sender:    sender,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// Register creates an unverified user and emails a one-time verification
// code. Email delivery is best-effort; the code stays valid in the store
// either way.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, *ServiceError) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, NewDuplicateError("Email is already registered")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("Failed to check existing email", zap.Error(err))
		return nil, NewInternalError("Failed to register")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, NewInternalError("Failed to register")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, NewDuplicateError("Email is already registered")
		}
		s.logger.Error("Failed to persist user", zap.Error(err))
		return nil, NewInternalError("Failed to register")
	}

	s.sendOTP(ctx, otpPurposeVerify, req.Email, "Verify your email - MobileMania")
	return user, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) *ServiceError {
	user, svcErr := s.findUserByEmail(ctx, req.Email)
	if svcErr != nil {
		return svcErr
	}

	if svcErr := s.checkOTP(ctx, otpPurposeVerify, req.Email, req.Code); svcErr != nil {
		return svcErr
	}

	if err := s.userRepo.SetVerified(ctx, user.ID); err != nil {
		s.logger.Error("Failed to mark user verified", zap.String("email", req.Email), zap.Error(err))
		return NewInternalError("Failed to verify email")
	}
	_ = s.otpStore.Delete(ctx, otpPurposeVerify, req.Email)
	return nil
}

// Login checks credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (string, *models.User, *ServiceError) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, NewUnauthorizedError("Invalid email or password")
		}
		s.logger.Error("Failed to fetch user for login", zap.Error(err))
		return "", nil, NewInternalError("Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", nil, NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsVerified {
		return "", nil, NewUnauthorizedError("Email is not verified")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		return "", nil, NewInternalError("Failed to log in")
	}
	return token, user, nil
}

// RequestPasswordReset emails a reset code. It reports success whether or
// not the email is registered, to avoid account enumeration.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *ForgotPasswordRequest) *ServiceError {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		s.logger.Error("Failed to fetch user for password reset", zap.Error(err))
		return NewInternalError("Failed to request password reset")
	}

	s.sendOTP(ctx, otpPurposeReset, req.Email, "Password reset - MobileMania")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) *ServiceError {
	user, svcErr := s.findUserByEmail(ctx, req.Email)
	if svcErr != nil {
		return svcErr
	}

	if svcErr := s.checkOTP(ctx, otpPurposeReset, req.Email, req.Code); svcErr != nil {
		return svcErr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash new password", zap.Error(err))
		return NewInternalError("Failed to reset password")
	}
	if err := s.userRepo.SetPassword(ctx, user.ID, string(hashed)); err != nil {
		s.logger.Error("Failed to update password", zap.String("email", req.Email), zap.Error(err))
		return NewInternalError("Failed to reset password")
	}
	_ = s.otpStore.Delete(ctx, otpPurposeReset, req.Email)
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, *ServiceError) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, NewValidationError("Invalid user ID format")
	}
	user, err := s.userRepo.FindByID(ctx, userOID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("User not found")
		}
		s.logger.Error("Failed to fetch user", zap.String("user_id", userID), zap.Error(err))
		return nil, NewInternalError("Failed to fetch user")
	}
	return user, nil
}

func (s *AuthService) sendOTP(ctx context.Context, purpose, email, subject string) {
	code := GenerateOTP(otpLength)
	if err := s.otpStore.Set(ctx, purpose, email, code, otpTTL); err != nil {
		s.logger.Error("Failed to store OTP", zap.String("email", email), zap.Error(err))
		return
	}
	if _, err := s.sender.SendEmail(ctx, email, subject, BuildOTPEmail(code, otpTTL)); err != nil {
		s.logger.Warn("Failed to send OTP email", zap.String("email", email), zap.Error(err))
		return
	}
	s.logger.Info("OTP email sent", zap.String("email", email), zap.String("purpose", purpose))
}

func (s *AuthService) checkOTP(ctx context.Context, purpose, email, code string) *ServiceError {
	stored, err := s.otpStore.Get(ctx, purpose, email)
	if err != nil {
		s.logger.Error("Failed to read OTP", zap.String("email", email), zap.Error(err))
		return NewInternalError("Failed to verify code")
	}
	if stored == "" || stored != code {
		return NewValidationError("Invalid or expired verification code")
	}
	return nil
}

func (s *AuthService) findUserByEmail(ctx context.Context, email string) (*models.User, *ServiceError) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, NewNotFoundError("User not found")
		}
		s.logger.Error("Failed to fetch user", zap.String("email", email), zap.Error(err))
		return nil, NewInternalError("Failed to fetch user")
	}
	return user, nil
}

func (s *AuthService) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// GenerateOTP returns a numeric one-time code of the given length.
func GenerateOTP(length int) string {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			code += "0"
			continue
		}
		code += n.String()
	}
	return code
}
