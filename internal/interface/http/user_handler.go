package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth-service/internal/application"
	"github.com/oksasatya/go-ddd-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth-service/pkg/response"
	"github.com/oksasatya/go-ddd-auth-service/pkg/validation"
)

const (
	MsgUserDeleted = "User Deleted Successfully"

	MaxAvatarBytes = 5 << 20
)

var avatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	validation.Init()
	return &UserHandler{Svc: svc, Logger: logger}
}

type listQuery struct {
	Page  int    `form:"page" binding:"omitempty,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Sort  string `form:"sort"`
	Order string `form:"order" binding:"omitempty,oneof=asc desc"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

type updateRequest struct {
	Name  *string `json:"name" binding:"omitnil,min=1,max=100"`
	Email *string `json:"email" binding:"omitnil,email"`
}

// List GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.List(c.Request.Context(), application.ListInput{
		Page:  q.Page,
		Limit: q.Limit,
		Sort:  q.Sort,
		Order: q.Order,
	})
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	response.OK(c, http.StatusOK, res.Users, "users", map[string]any{
		"page":        res.Page,
		"limit":       res.Limit,
		"total_items": res.TotalItems,
		"total_pages": res.TotalPages,
	})
}

// Me GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, middleware.MsgNotAuthenticated, nil)
		return
	}
	response.OK(c, http.StatusOK, u.Public(), "profile", nil)
}

// GetByID GET /api/v1/users/id/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	h.writeUser(c, u, err, "user")
}

// GetByEmail GET /api/v1/users/email/:email
func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.Svc.GetByEmail(c.Request.Context(), c.Param("email"))
	h.writeUser(c, u, err, "user")
}

// Search GET /api/v1/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		invalidPayload(c, err)
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	response.OK(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// Update PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, middleware.MsgNotAuthenticated, nil)
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if req.Name == nil && req.Email == nil {
		response.Fail(c, http.StatusUnprocessableEntity, "invalid payload", map[string]string{"payload": "name or email is required"})
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), actor, c.Param("id"), application.UpdateInput{Name: req.Name, Email: req.Email})
	h.writeUser(c, u, err, "user updated")
}

// Delete DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, middleware.MsgNotAuthenticated, nil)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	response.OK[any](c, http.StatusOK, nil, MsgUserDeleted, nil)
}

// UploadAvatar POST /api/v1/users/me/avatar (multipart field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	actor, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, middleware.MsgNotAuthenticated, nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAvatarBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		response.Fail(c, http.StatusUnprocessableEntity, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > MaxAvatarBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeError(c, err, http.StatusNotFound)
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !avatarTypes[contentType] {
		response.Fail(c, http.StatusUnsupportedMediaType, "unsupported image type", map[string]string{"file": contentType})
		return
	}

	u, err := h.Svc.UploadAvatar(c.Request.Context(), actor.ID, fh.Filename, contentType, io.MultiReader(bytes.NewReader(head), f))
	h.writeUser(c, u, err, "avatar updated")
}

func (h *UserHandler) writeUser(c *gin.Context, u *entity.User, err error, message string) {
	if err != nil {
		writeError(c, err, http.StatusNotFound)
		return
	}
	response.OK(c, http.StatusOK, u.Public(), message, nil)
}
