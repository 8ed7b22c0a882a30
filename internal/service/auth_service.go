package service

import (
	"context"
	"errors"
	"time"

	"tourdesk/internal/config"
	"tourdesk/internal/dto"
	"tourdesk/internal/model"
	"tourdesk/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*dto.StaffResponse, error)
	ListStaff(ctx context.Context) ([]dto.StaffResponse, error)
	UpdateStaff(ctx context.Context, id uuid.UUID, req dto.UpdateStaffRequest) (*dto.StaffResponse, error)
	DeactivateStaff(ctx context.Context, id uuid.UUID) error
	ReactivateStaff(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.StaffRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.StaffRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	staff, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil || !staff.Active {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	accessToken, err := s.generateToken(staff, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(staff, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Staff:        staffToResponse(staff),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("malformed token claims")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("malformed token claims")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("malformed token claims")
	}

	staff, err := s.repo.FindByID(ctx, uid)
	if err != nil || !staff.Active {
		return nil, errors.New("staff account not found or inactive")
	}

	accessToken, err := s.generateToken(staff, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.generateToken(staff, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		Staff:        staffToResponse(staff),
	}, nil
}

func (s *authService) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	staff := &model.Staff{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, err
	}
	resp := staffToResponse(staff)
	return &resp, nil
}

func (s *authService) ListStaff(ctx context.Context) ([]dto.StaffResponse, error) {
	staff, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StaffResponse, len(staff))
	for i := range staff {
		resp[i] = staffToResponse(&staff[i])
	}
	return resp, nil
}

func (s *authService) UpdateStaff(ctx context.Context, id uuid.UUID, req dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &NotFoundError{Entity: "staff", ID: id}
	}
	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Email != nil {
		staff.Email = req.Email
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 12)
		if err != nil {
			return nil, err
		}
		staff.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, err
	}
	resp := staffToResponse(staff)
	return &resp, nil
}

func (s *authService) DeactivateStaff(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *authService) ReactivateStaff(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, true)
}

func (s *authService) generateToken(staff *model.Staff, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  staff.ID.String(),
		"username": staff.Username,
		"role":     staff.Role,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func staffToResponse(s *model.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:       s.ID.String(),
		Username: s.Username,
		Name:     s.Name,
		Email:    s.Email,
		Role:     s.Role,
		Active:   s.Active,
	}
}
