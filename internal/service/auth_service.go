package service

import (
	"context"
	"errors"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrUserExists   = errors.New("用户已存在")
	ErrUserNotFound = errors.New("用户不存在")
	ErrBadPassword  = errors.New("密码错误")
)

type AuthService struct {
	authDao *dao.AuthDao
	jwtUtil *utils.JWTUtil
}

func NewAuthService(authDao *dao.AuthDao, jwtSecret string, jwtExpireHours int) *AuthService {
	return &AuthService{
		authDao: authDao,
		jwtUtil: utils.NewJWTUtil(jwtSecret, jwtExpireHours),
	}
}

// Register 注册用户
func (s *AuthService) Register(ctx context.Context, username, password, email, phone string) (*model.User, error) {
	// 检查用户是否存在
	exists, err := s.authDao.UserExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	// 加密密码
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	newUser := &model.User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Phone:        phone,
		Role:         model.RoleCustomer,
	}
	if err := s.authDao.CreateUser(ctx, newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// Login 登录并签发带角色的token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	dbUser, err := s.authDao.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, err
	}

	if !utils.CheckPassword(password, dbUser.PasswordHash) {
		return "", nil, ErrBadPassword
	}

	token, err := s.jwtUtil.GenerateToken(dbUser.ID, dbUser.Username, dbUser.Role)
	if err != nil {
		return "", nil, err
	}
	return token, dbUser, nil
}
