package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vnkhanh/engchi-backend/models"
	"github.com/vnkhanh/engchi-backend/utils"
)

type AuthSettings struct {
	JWTSecret     string
	SetupSecret   string
	TokenTTL      time.Duration
	SetupTTL      time.Duration
	EncryptionKey string
	FallbackKey   string // GEMINI_API_KEY cấp server, có thể rỗng
}

type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type idTokenVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &idTokenVerifier{clientID: clientID}
}

func (v *idTokenVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, err
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	return &GoogleIdentity{Subject: payload.Subject, Email: email, Name: name}, nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	AIAPIKey string
}

type GoogleLoginResult struct {
	Token           string `json:"token,omitempty"`
	SetupToken      string `json:"setupToken,omitempty"`
	ProfileComplete bool   `json:"profileComplete"`
}

type AuthService struct {
	users    UserRepository
	google   GoogleVerifier
	settings AuthSettings
}

func NewAuthService(users UserRepository, google GoogleVerifier, settings AuthSettings) *AuthService {
	return &AuthService{users: users, google: google, settings: settings}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) accessToken(u *models.User) (string, error) {
	return utils.GenerateToken(s.settings.JWTSecret, u.ID.String(), string(u.Role), utils.PurposeAccess, s.settings.TokenTTL)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", models.ErrUserExists
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("không thể mã hoá mật khẩu: %w", err)
	}
	encKey, err := utils.EncryptSecret(s.settings.EncryptionKey, strings.TrimSpace(in.AIAPIKey))
	if err != nil {
		return "", fmt.Errorf("encrypt api key: %w", err)
	}

	user := &models.User{
		Username:        strings.TrimSpace(in.Username),
		Email:           email,
		Password:        string(hashed),
		AIAPIKey:        encKey,
		ProfileComplete: true,
		Role:            models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}
	return s.accessToken(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrUserNotFound) {
		return "", models.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", models.ErrInvalidCredentials
	}
	return s.accessToken(user)
}

// GoogleLogin: tài khoản đã đủ hồ sơ nhận token truy cập,
// tài khoản mới nhận setup token để hoàn tất hồ sơ.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*GoogleLoginResult, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil || identity.Email == "" {
		return nil, fmt.Errorf("%w: invalid google token", models.ErrNotAuthorized)
	}

	user, err := s.users.FindByGoogleID(ctx, identity.Subject)
	if errors.Is(err, models.ErrUserNotFound) {
		user, err = s.users.FindByEmail(ctx, normalizeEmail(identity.Email))
		switch {
		case err == nil:
			// Liên kết tài khoản email sẵn có với Google
			user.GoogleID = &identity.Subject
			if err := s.users.Save(ctx, user); err != nil {
				return nil, err
			}
		case errors.Is(err, models.ErrUserNotFound):
			user = &models.User{
				Username: identity.Name,
				Email:    normalizeEmail(identity.Email),
				GoogleID: &identity.Subject,
				Role:     models.RoleUser,
			}
			if err := s.users.Create(ctx, user); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	if user.ProfileComplete && user.HasAPIKey() {
		token, err := s.accessToken(user)
		if err != nil {
			return nil, err
		}
		return &GoogleLoginResult{Token: token, ProfileComplete: true}, nil
	}
	setup, err := utils.GenerateToken(s.settings.SetupSecret, user.ID.String(), "", utils.PurposeSetup, s.settings.SetupTTL)
	if err != nil {
		return nil, err
	}
	return &GoogleLoginResult{SetupToken: setup, ProfileComplete: false}, nil
}

func (s *AuthService) CompleteProfile(ctx context.Context, userID uuid.UUID, username, apiKey string) (string, error) {
	username, apiKey = strings.TrimSpace(username), strings.TrimSpace(apiKey)
	if username == "" || apiKey == "" {
		return "", fmt.Errorf("%w: username and aiApiKey are required", models.ErrValidation)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	encKey, err := utils.EncryptSecret(s.settings.EncryptionKey, apiKey)
	if err != nil {
		return "", fmt.Errorf("encrypt api key: %w", err)
	}
	user.Username = username
	user.AIAPIKey = encKey
	user.ProfileComplete = true
	if err := s.users.Save(ctx, user); err != nil {
		return "", err
	}
	return s.accessToken(user)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// APIKeySource tạo accessor giải mã key của user; key chỉ được giải mã khi accessor được gọi.
func (s *AuthService) APIKeySource(u *models.User) APIKeySource {
	return func() (string, error) {
		if u == nil || !u.HasAPIKey() {
			if s.settings.FallbackKey != "" {
				return s.settings.FallbackKey, nil
			}
			return "", models.ErrGraderNotConfigured
		}
		key, err := utils.DecryptSecret(s.settings.EncryptionKey, u.AIAPIKey)
		if err != nil {
			return "", fmt.Errorf("decrypt api key of user %s: %w", u.ID, err)
		}
		return key, nil
	}
}

func (s *AuthService) VerifyAccess(token string) (*utils.Claims, error) {
	return utils.VerifyToken(s.settings.JWTSecret, token, utils.PurposeAccess)
}

func (s *AuthService) VerifySetup(token string) (*utils.Claims, error) {
	return utils.VerifyToken(s.settings.SetupSecret, token, utils.PurposeSetup)
}
