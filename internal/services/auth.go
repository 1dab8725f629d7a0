package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/normalization"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/requestdata"
	"github.com/yungbote/courseplanner-backend/internal/types"
	"github.com/yungbote/courseplanner-backend/internal/utils"
)

type JWTClaims struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AuthService interface {
	Register(ctx context.Context, tx *gorm.DB, teacher *types.Teacher) (*types.Teacher, *TokenPair, error)
	Login(ctx context.Context, tx *gorm.DB, email, password string) (*types.Teacher, *TokenPair, error)
	Refresh(ctx context.Context, tx *gorm.DB) (*TokenPair, error)
	Logout(ctx context.Context, tx *gorm.DB) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetTeacher(ctx context.Context, tx *gorm.DB) (*types.Teacher, error)
}

type authService struct {
	db               *gorm.DB
	log              *logger.Logger
	teacherRepo      repos.TeacherRepo
	teacherTokenRepo repos.TeacherTokenRepo
	jwtSecret        []byte
	accessTTL        time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	teacherRepo repos.TeacherRepo,
	teacherTokenRepo repos.TeacherTokenRepo,
) AuthService {
	svcLog := baseLog.With("service", "AuthService")
	secret := utils.GetEnv("JWT_SECRET", "", svcLog)
	if secret == "" {
		svcLog.Warn("JWT_SECRET is empty; issued tokens are not secure")
	}
	ttlMinutes := utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60, svcLog)
	return &authService{
		db:               db,
		log:              svcLog,
		teacherRepo:      teacherRepo,
		teacherTokenRepo: teacherTokenRepo,
		jwtSecret:        []byte(secret),
		accessTTL:        time.Duration(ttlMinutes) * time.Minute,
	}
}

func (s *authService) issueTokenPair(ctx context.Context, tx *gorm.DB, teacherID uuid.UUID) (*TokenPair, error) {
	expiresAt := time.Now().Add(s.accessTTL)
	claims := JWTClaims{
		TeacherID: teacherID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   teacherID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken := uuid.NewString()

	now := time.Now()
	record := &types.TeacherToken{
		ID:           uuid.New(),
		TeacherID:    teacherID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.teacherTokenRepo.Create(ctx, tx, []*types.TeacherToken{record}); err != nil {
		return nil, fmt.Errorf("store token pair: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *authService) Register(ctx context.Context, tx *gorm.DB, teacher *types.Teacher) (*types.Teacher, *TokenPair, error) {
	utils.NormalizeTeacherFields(teacher)
	if err := utils.ValidateRegistration(ctx, s.teacherRepo, teacher); err != nil {
		return nil, nil, err
	}
	if err := utils.HashPassword(teacher); err != nil {
		return nil, nil, err
	}

	teacher.ID = uuid.New()
	now := time.Now()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	var pair *TokenPair
	err := runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		if _, err := s.teacherRepo.Create(ctx, txx, []*types.Teacher{teacher}); err != nil {
			return fmt.Errorf("create teacher: %w", err)
		}
		var err error
		pair, err = s.issueTokenPair(ctx, txx, teacher.ID)
		return err
	})
	if err != nil {
		s.log.Error("Register failed", "error", err, "email", teacher.Email)
		return nil, nil, err
	}
	return teacher, pair, nil
}

func (s *authService) Login(ctx context.Context, tx *gorm.DB, email, password string) (*types.Teacher, *TokenPair, error) {
	email = normalization.ParseInputString(email)
	if err := utils.ValidateLogin(email, password); err != nil {
		return nil, nil, err
	}

	teachers, err := s.teacherRepo.GetByEmails(ctx, tx, []string{email})
	if err != nil {
		return nil, nil, fmt.Errorf("load teacher: %w", err)
	}
	if len(teachers) == 0 || teachers[0] == nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}
	teacher := teachers[0]

	if err := bcrypt.CompareHashAndPassword([]byte(teacher.Password), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("invalid email or password")
	}

	var pair *TokenPair
	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		var err error
		pair, err = s.issueTokenPair(ctx, txx, teacher.ID)
		return err
	})
	if err != nil {
		s.log.Error("Login failed", "error", err, "email", email)
		return nil, nil, err
	}
	return teacher, pair, nil
}

// Refresh rotates the token pair identified by the request's refresh token.
func (s *authService) Refresh(ctx context.Context, tx *gorm.DB) (*TokenPair, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return nil, fmt.Errorf("missing refresh token")
	}

	records, err := s.teacherTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if len(records) == 0 || records[0] == nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	record := records[0]

	var pair *TokenPair
	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		if err := s.teacherTokenRepo.FullDeleteByIDs(ctx, txx, []uuid.UUID{record.ID}); err != nil {
			return fmt.Errorf("revoke old token: %w", err)
		}
		var err error
		pair, err = s.issueTokenPair(ctx, txx, record.TeacherID)
		return err
	})
	if err != nil {
		s.log.Error("Refresh failed", "error", err, "teacher_id", record.TeacherID)
		return nil, err
	}
	return pair, nil
}

func (s *authService) Logout(ctx context.Context, tx *gorm.DB) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return fmt.Errorf("not authenticated")
	}

	records, err := s.teacherTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		return s.teacherTokenRepo.FullDeleteByIDs(ctx, txx, ids)
	})
}

// SetContextFromToken verifies the bearer token (signature, expiry, and a
// live teacher_token row) and stamps the teacher identity onto the context.
func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, fmt.Errorf("missing token")
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token")
	}

	records, err := s.teacherTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("load token: %w", err)
	}
	if len(records) == 0 || records[0] == nil {
		return ctx, fmt.Errorf("token revoked")
	}
	if time.Now().After(records[0].ExpiresAt) {
		return ctx, fmt.Errorf("token expired")
	}

	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		rd = &requestdata.RequestData{}
		ctx = requestdata.WithRequestData(ctx, rd)
	}
	rd.TokenString = tokenString
	rd.TeacherID = claims.TeacherID
	return ctx, nil
}

func (s *authService) GetTeacher(ctx context.Context, tx *gorm.DB) (*types.Teacher, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TeacherID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	teachers, err := s.teacherRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.TeacherID})
	if err != nil {
		return nil, fmt.Errorf("load teacher: %w", err)
	}
	if len(teachers) == 0 || teachers[0] == nil {
		return nil, fmt.Errorf("teacher not found")
	}
	return teachers[0], nil
}
