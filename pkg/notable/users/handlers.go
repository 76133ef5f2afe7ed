package users

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tomblanch/notable/pkg/notable/auth"
	"github.com/tomblanch/notable/pkg/notable/models"
	"github.com/tomblanch/notable/pkg/notable/validation"
	"gorm.io/gorm"
)

const minUsernameLength = 3

// Handler handles user registration requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new users handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateUserRequest represents the registration request body
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user in API responses.
// The password never appears here under any code path.
type UserResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Create handles user registration
// @Summary Register a new user
// @Description Create a new user account
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "Registration details"
// @Success 201 {object} UserResponse
// @Failure 400 {object} map[string]validation.Errors "Validation error"
// @Router /users [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errs, ok := validation.Map(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	// Whitespace around username and email is not significant
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	errs := validation.Errors{}
	if req.Username == "" {
		errs.Add("username", validation.CodeRequired, "This field is required")
	} else if len(req.Username) < minUsernameLength {
		errs.Add("username", validation.CodeMinLength, "Must be at least 3 characters")
	} else {
		var existing models.User
		if err := h.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
			errs.Add("username", validation.CodeUnique, "A user with that username already exists")
		}
	}
	if req.Email == "" {
		errs.Add("email", validation.CodeRequired, "This field is required")
	}
	if errs.HasErrors() {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, UserResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

// RegisterRoutes registers user routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.Create)
}
