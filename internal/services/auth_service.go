package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"rentdesk/internal/common"
	"rentdesk/internal/models"
	"rentdesk/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	otpIssueWindow  = 60 * time.Second
	otpValidity     = 5 * time.Minute
	loginTokenTTL   = 7 * 24 * time.Hour
	defaultNickname = "Landlord"
)

// LoginResult is what a successful OTP verification hands back.
type LoginResult struct {
	Token    string           `json:"token"`
	UserInfo *models.UserInfo `json:"user_info"`
}

type AuthService interface {
	// IssueOtp generates and delivers a one-time login code. A phone may
	// receive at most one code per 60-second window. Nothing is persisted when
	// the SMS transport fails.
	IssueOtp(ctx context.Context, phone string) error
	// VerifyOtp consumes the code and logs the caller in, creating the user on
	// first login. A code verifies successfully exactly once.
	VerifyOtp(ctx context.Context, phone, code string) (*LoginResult, error)
	GetUserInfo(ctx context.Context, userID uuid.UUID) (*models.UserInfo, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, nickname, avatar *string) error
}

type authService struct {
	codes     repositories.OtpRepository
	users     repositories.UserRepository
	sms       SMSSender
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(codes repositories.OtpRepository, users repositories.UserRepository, sms SMSSender, jwtSecret string) AuthService {
	return &authService{
		codes:     codes,
		users:     users,
		sms:       sms,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *authService) IssueOtp(ctx context.Context, phone string) error {
	if err := common.ValidatePhone(phone); err != nil {
		return err
	}

	recent, err := s.codes.CountRecentByPhone(ctx, phone, s.now().Add(-otpIssueWindow))
	if err != nil {
		return err
	}
	if recent > 0 {
		return fmt.Errorf("%w: try again in a minute", common.ErrRateLimited)
	}

	code, err := randomCode()
	if err != nil {
		return err
	}

	// Send first: a code that never reached the phone must not be persisted.
	if err := s.sms.SendOtp(ctx, phone, code); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}

	return s.codes.Create(ctx, &models.OtpCode{
		ID:    uuid.New(),
		Phone: phone,
		Code:  code,
		Used:  false,
	})
}

func (s *authService) VerifyOtp(ctx context.Context, phone, code string) (*LoginResult, error) {
	if err := common.ValidatePhone(phone); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", common.ErrInvalid)
	}

	record, err := s.codes.LatestUnused(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, common.ErrCodeInvalid
	}
	// An expired match stays unused; it can never verify anyway.
	if s.now().Sub(record.CreatedAt) > otpValidity {
		return nil, common.ErrCodeExpired
	}

	if err := s.codes.MarkUsed(ctx, record.ID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			ID:        uuid.New(),
			Phone:     &phone,
			Buildings: []uuid.UUID{},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, UserInfo: formatUserInfo(user)}, nil
}

func (s *authService) GetUserInfo(ctx context.Context, userID uuid.UUID) (*models.UserInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", common.ErrNotFound)
	}
	return formatUserInfo(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, nickname, avatar *string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", common.ErrNotFound)
	}
	return s.users.UpdateProfile(ctx, userID, nickname, avatar)
}

func (s *authService) signToken(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    "rentdesk",
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(loginTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// randomCode draws a uniform 6-digit code, zero-padded.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func formatUserInfo(user *models.User) *models.UserInfo {
	nickname := user.Nickname
	if nickname == "" {
		nickname = defaultNickname
	}
	buildings := user.Buildings
	if buildings == nil {
		buildings = []uuid.UUID{}
	}
	return &models.UserInfo{
		ID:              user.ID,
		Phone:           common.MaskPhone(common.SafeString(user.Phone)),
		Nickname:        nickname,
		Avatar:          user.Avatar,
		Buildings:       buildings,
		CurrentBuilding: user.CurrentBuilding,
	}
}
