package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-directory/internal/application"
	"github.com/oksasatya/user-directory/internal/domain/apperror"
	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/pkg/response"
	"github.com/oksasatya/user-directory/pkg/validation"
)

// UserService is the application surface the handlers drive.
type UserService interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, in userapp.UpdateUserInput) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	UploadAvatar(ctx context.Context, id string, up userapp.AvatarUpload) (*entity.User, error)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	validation.Init()
	return &UserHandler{Svc: svc, Logger: logger}
}

// userView is the public representation of a user. It never carries the password.
type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toView(u *entity.User) userView {
	v := userView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.AvatarURL != "" {
		a := u.AvatarURL
		v.Avatar = &a
	}
	return v
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func requestContext(c *gin.Context) context.Context {
	return userapp.WithRequestMeta(c.Request.Context(), userapp.RequestMeta{
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
}

// Request bodies carry no binding rules. The service trims and validates,
// so HTTP and direct callers see the same rules.
type createUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
}

type updateUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar"`
}

// bindJSON only decodes; malformed or mistyped bodies are reported as validation failures.
func (h *UserHandler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		details := validation.ToDetails(err)
		writeError(c, h.Logger, apperror.Validation(validation.Summary(details), details))
		return false
	}
	return true
}

// Create handles POST /users.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.CreateUser(requestContext(c), userapp.CreateUserInput(req))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Resource(c, http.StatusCreated, "user", toView(u))
}

// Update handles PUT /users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateUser(requestContext(c), c.Param("id"), userapp.UpdateUserInput(req))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Resource(c, http.StatusOK, "user", toView(u))
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Resource(c, http.StatusOK, "user", toView(u))
}

// UploadAvatar handles PUT /users/:id/avatar with a multipart "avatar" file.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		details := map[string]string{"avatar": "is required"}
		writeError(c, h.Logger, apperror.Validation(validation.Summary(details), details))
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer f.Close()

	u, err := h.Svc.UploadAvatar(requestContext(c), c.Param("id"), userapp.AvatarUpload{
		Body:        f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Resource(c, http.StatusOK, "user", toView(u))
}
