package admin

import (
	"errors"
	"strings"

	"backoffice-backend/internal/attainment"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

type UserResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: u.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// KULLANICI OLUŞTURMA
// POST /api/admin/users
// ----------------------------------------

func CreateUserHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		role := models.UserRole(strings.ToLower(strings.TrimSpace(body.Role)))

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim, email ve şifre zorunlu")
		}
		if !role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "Rol admin, manager, sales veya finance olmalı")
		}

		var exist models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Bu email zaten kayıtlı")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar sorgulanamadı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Şifre hashlenemedi")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
			IsActive:     true,
		}

		if err := db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// ----------------------------------------
// KULLANICILARI LİSTELE
// GET /api/admin/users?role=sales&active=true
// ----------------------------------------

func ListUsersHandler(db *gorm.DB) fiber.Handler {
	users := store.NewUserStore(db)

	return func(c *fiber.Ctx) error {
		var q attainment.UserQuery
		if raw := c.Query("role"); raw != "" {
			role := models.UserRole(strings.ToLower(raw))
			if !role.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "role geçersiz")
			}
			q.Roles = []models.UserRole{role}
		}
		q.ActiveOnly = c.QueryBool("active", false)

		list, err := users.ListUsers(c.UserContext(), q)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcılar listelenemedi")
		}

		res := make([]UserResponse, 0, len(list))
		for _, u := range list {
			res = append(res, toUserResponse(u))
		}
		return c.JSON(res)
	}
}

// ----------------------------------------
// KULLANICI GÜNCELLE (isim, rol, aktiflik)
// PUT /api/admin/users/:id
// ----------------------------------------

func UpdateUserHandler(db *gorm.DB) fiber.Handler {
	users := store.NewUserStore(db)

	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kullanıcı ID")
		}

		user, err := users.Get(c.UserContext(), uint(id))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kullanıcı bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı okunamadı")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri gönderildi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "İsim boş olamaz")
			}
			user.Name = name
		}
		if body.Role != nil {
			role := models.UserRole(strings.ToLower(strings.TrimSpace(*body.Role)))
			if !role.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "role geçersiz")
			}
			user.Role = role
		}
		if body.IsActive != nil {
			user.IsActive = *body.IsActive
		}

		if err := db.WithContext(c.UserContext()).Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı güncellenemedi")
		}

		return c.JSON(toUserResponse(user))
	}
}
