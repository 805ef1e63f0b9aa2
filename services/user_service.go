package services

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"attendance-backend/models"
)

// UserService handles registration and credential checks. The attendance core
// never re-authenticates; it receives an AuthenticatedActor built from the
// session token this service's credentials produced.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

type RegisterInput struct {
	FullName   string `json:"full_name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	StudentID  string `json:"student_id"`
	Department string `json:"department"`
}

func (s *UserService) Register(in RegisterInput) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Password:   string(hash),
		StudentID:  strings.TrimSpace(in.StudentID),
		Department: in.Department,
		Role:       models.RoleStudent,
		Status:     models.UserActive,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return models.User{}, ErrEmailTaken
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) Authenticate(email, password string) (models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	if user.Status != models.UserActive {
		return models.User{}, ErrUserInactive
	}
	return user, nil
}

// SetRole promotes or demotes a user; admin only.
func (s *UserService) SetRole(actor AuthenticatedActor, userID uint, role models.UserRole) (models.User, error) {
	if actor.Role != models.RoleAdmin {
		return models.User{}, ErrForbidden
	}
	if role != models.RoleStudent && role != models.RoleModerator && role != models.RoleAdmin {
		return models.User{}, ErrInvalidDecision
	}
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	user.Role = role
	if err := s.DB.Save(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}
