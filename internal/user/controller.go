package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"account_service/internal/apperror"
)

type UserController struct {
	userService UserServiceInterface
}

func NewUserController(userService UserServiceInterface) *UserController {
	return &UserController{userService: userService}
}

// SetupRoutes registers the account endpoints on the engine.
func (u *UserController) SetupRoutes(r *gin.Engine) {
	r.POST("/signup", u.Signup)
	r.POST("/login", u.Login)
}

type signupRequest struct {
	ID       string `json:"id" binding:"required,uuid"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Username string `json:"username" binding:"required,min=1,max=64"`
	Password string `json:"password" binding:"required,min=1,max=256"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=1,max=256"`
}

type userResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// Signup handles POST /signup.
func (u *UserController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err)
		return
	}

	result, err := u.userService.Signup(c.Request.Context(), SignupCommand{
		ID:       uuid.MustParse(req.ID),
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, userResponse{
		ID:         result.ID,
		Email:      result.Email,
		Username:   result.Username,
		CreateTime: result.CreateTime,
		UpdateTime: result.UpdateTime,
	})
}

// Login handles POST /login.
func (u *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithValidationError(c, err)
		return
	}

	result, err := u.userService.Login(c.Request.Context(), LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:         result.ID,
		Email:      result.Email,
		Username:   result.Username,
		CreateTime: result.CreateTime,
		UpdateTime: result.UpdateTime,
	})
}

// abortWithValidationError converts a binding failure into a typed
// InvalidInput error with one detail entry per failing field.
func abortWithValidationError(c *gin.Context, err error) {
	var details []any

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details = append(details, gin.H{
				"location": fe.Field(),
				"message":  fe.Error(),
				"type":     fe.Tag(),
			})
		}
	} else {
		details = append(details, gin.H{"message": err.Error()})
	}

	_ = c.Error(apperror.NewWithDetails(apperror.InvalidInput, details...))
	c.Abort()
}
