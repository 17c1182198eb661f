package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"heartbeat-insights/internal/core/auth"
	"heartbeat-insights/internal/domain"
	"heartbeat-insights/pkg/utils"
)

// Tokens 签发/校验会话 token（*auth.JWTer 实现）
type Tokens interface {
	Issue(uid string) (string, error)
	Parse(token string) (*auth.Claims, error)
}

type AuthService struct {
	users      domain.UserRepository
	dashboards domain.DashboardRepository
	insights   domain.InsightRepository
	tokens     Tokens
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(users domain.UserRepository, dashboards domain.DashboardRepository,
	insights domain.InsightRepository, tokens Tokens, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		dashboards: dashboards,
		insights:   insights,
		tokens:     tokens,
		log:        log,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

type UserPatch struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	Password *string
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func validEmail(email string) bool {
	a, err := mail.ParseAddress(email)
	return err == nil && a.Address == email
}

func (s *AuthService) stamp() time.Time { return s.now().UTC().Truncate(time.Millisecond) }

// Register 注册并直接登录；邮箱冲突（预检查或唯一索引）统一返回 ErrEmailTaken
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}
	if !validEmail(email) {
		return nil, "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, "", fmt.Errorf("%w: role must be user or admin", domain.ErrInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	now := s.stamp()
	u := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, tok, nil
}

// Login 邮箱不存在、为空或密码错误都返回 ErrInvalidCredentials（不区分）
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, tok, nil
}

// VerifyToken 解析 token 后回库取用户当前状态（改角色/删号下一次请求即生效）
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := s.users.FindByID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, p UserPatch) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		u.Name = name
	}
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		if !validEmail(email) {
			return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
		}
		if email != u.Email {
			other, err := s.users.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != u.ID:
				return nil, domain.ErrEmailTaken
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				return nil, err
			}
		}
		u.Email = email
	}
	if p.Role != nil {
		if !p.Role.Valid() {
			return nil, fmt.Errorf("%w: role must be user or admin", domain.ErrInvalidInput)
		}
		u.Role = *p.Role
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := utils.HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = s.stamp()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser 删除他人账号；其名下仪表盘和洞察转给当前管理员，保证归属人始终存在
func (s *AuthService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil {
		return domain.ErrInvalidToken
	}
	if actor.ID == id {
		return domain.ErrSelfDelete
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	nd, err := s.dashboards.ReassignOwner(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	ni, err := s.insights.ReassignOwner(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted",
		zap.String("user_id", id),
		zap.String("by", actor.ID),
		zap.Int64("dashboards_reassigned", nd),
		zap.Int64("insights_reassigned", ni),
	)
	return nil
}

// EnsureAdmin 创建管理员，或把同邮箱账号提升为 admin；created 表示是否新建
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (u *domain.User, created bool, err error) {
	email = normalizeEmail(email)
	u, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if u.IsAdmin() {
			return u, false, nil
		}
		role := domain.RoleAdmin
		u, err = s.UpdateUser(ctx, u.ID, UserPatch{Role: &role})
		if err != nil {
			return nil, false, err
		}
		s.log.Info("user promoted to admin", zap.String("user_id", u.ID))
		return u, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}
	if name == "" {
		name = "Admin"
	}
	u, _, err = s.Register(ctx, RegisterInput{Name: name, Email: email, Password: password, Role: domain.RoleAdmin})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
