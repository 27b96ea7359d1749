// Package accounts covers registration, login and profile management. Every
// porting operation runs on behalf of an authenticated account from here.
package accounts

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/waylog/core/internal/middleware"
	"github.com/waylog/core/internal/models"
	jwtpkg "github.com/waylog/core/internal/pkg/jwt"
	"github.com/waylog/core/internal/pkg/response"
)

const tokenTTL = 30 * 24 * time.Hour

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar"`
	Mail          string     `json:"mail"`
	IsPublic      bool       `json:"is_public"`
	LastLoginTime *time.Time `json:"last_login_time"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

func toResponse(u *models.UserModel) *userResponse {
	return &userResponse{
		ID: u.ID, Username: u.Username, Name: u.Name,
		Avatar: u.Avatar, Mail: u.Mail, IsPublic: u.IsPublic,
		LastLoginTime: u.LastLoginTime,
	}
}

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Register(dto RegisterDTO) (*models.UserModel, error) {
	var taken int64
	if err := s.db.Model(&models.UserModel{}).Where("username = ?", dto.Username).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.UserModel{
		Username: dto.Username,
		Name:     dto.Name,
		Password: string(hash),
	}
	if err := s.db.Create(u).Error; err != nil {
		if isDuplicateUsername(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(username, password string) (string, *models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.db.Model(&u).Update("last_login_time", now)
	u.LastLoginTime = &now

	token, err := jwtpkg.Sign(u.ID, tokenTTL)
	return token, &u, err
}

func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&u).Update("password", string(hash)).Error
}

func (s *Service) SetVisibility(userID string, public bool) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&u).Update("is_public", public).Error; err != nil {
		return nil, err
	}
	u.IsPublic = public
	return &u, nil
}

// isDuplicateUsername recognizes the unique-index violation on users.username.
// MySQL reports 1062; other drivers fall through to a lookup.
func isDuplicateUsername(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

type Handler struct {
	svc *Service
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{svc: NewService(db)}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	grp := rg.Group("/accounts")
	grp.POST("/register", h.register)
	grp.POST("/login", h.login)

	me := grp.Group("/me", authMW)
	me.GET("", h.me)
	me.PATCH("/password", h.changePassword)
	me.PATCH("/visibility", h.setVisibility)
}

// POST /accounts/register
func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Register(dto)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.Conflict(c, "username already taken")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, toResponse(u))
}

// POST /accounts/login
func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, u, err := h.svc.Login(dto.Username, dto.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, loginResponse{Token: token, User: toResponse(u)})
}

// GET /accounts/me
func (h *Handler) me(c *gin.Context) {
	var u models.UserModel
	if err := h.svc.db.First(&u, "id = ?", middleware.UserID(c)).Error; err != nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(&u))
}

// PATCH /accounts/me/password
func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(middleware.UserID(c), dto.OldPassword, dto.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Forbidden(c)
			return
		}
		response.InternalError(c)
		return
	}
	response.NoContent(c)
}

// PATCH /accounts/me/visibility
func (h *Handler) setVisibility(c *gin.Context) {
	var dto struct {
		IsPublic *bool `json:"is_public" binding:"required"`
	}
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.SetVisibility(middleware.UserID(c), *dto.IsPublic)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, toResponse(u))
}
