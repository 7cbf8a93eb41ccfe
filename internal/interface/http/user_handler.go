package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userapp "github.com/oksasatya/go-ddd-user-service/internal/application"
	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-service/pkg/response"
	"github.com/oksasatya/go-ddd-user-service/pkg/validation"
)

// UserHandler translates HTTP requests into user use cases.
// Failures are attached with c.Error and rendered by middleware.ErrorHandler.
type UserHandler struct {
	Svc *userapp.Service
}

func NewUserHandler(svc *userapp.Service) *UserHandler {
	return &UserHandler{Svc: svc}
}

type createUserRequest struct {
	Email string `json:"email" binding:"required,max=255,email"`
	Name  string `json:"name" binding:"required,max=100"`
}

type updateUserRequest struct {
	Email *string `json:"email" binding:"omitnil,max=255,email"`
	Name  *string `json:"name" binding:"omitnil,username"`
}

type listUsersRequest struct {
	Limit  *int    `form:"limit" binding:"omitnil,min=1,max=100"`
	Offset *int    `form:"offset" binding:"omitnil,min=0"`
	Status *string `form:"status" binding:"omitnil,userstatus"`
}

type searchUsersRequest struct {
	Q    string `form:"q"`
	Size *int   `form:"size" binding:"omitnil,min=1,max=50"`
}

type userURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.Wrap(err))
		return
	}
	res, err := h.Svc.CreateUser(c.Request.Context(), userapp.CreateUserInput{Email: req.Email, Name: req.Name})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *UserHandler) List(c *gin.Context) {
	var req listUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(validation.Wrap(err))
		return
	}
	q := userapp.ListUsersQuery{}
	if req.Limit != nil {
		q.Limit = *req.Limit
	}
	if req.Offset != nil {
		q.Offset = *req.Offset
	}
	if req.Status != nil {
		st, err := entity.ParseStatus(*req.Status)
		if err != nil {
			_ = c.Error(err)
			return
		}
		q.Status = &st
	}
	res, err := h.Svc.ListUsers(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Page(c, res.Data, res.Meta)
}

func (h *UserHandler) Search(c *gin.Context) {
	var req searchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(validation.Wrap(err))
		return
	}
	size := 0
	if req.Size != nil {
		size = *req.Size
	}
	res, err := h.Svc.SearchUsers(c.Request.Context(), req.Q, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	res, err := h.Svc.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.Wrap(err))
		return
	}
	res, err := h.Svc.UpdateUser(c.Request.Context(), id, userapp.UpdateUserInput{Email: req.Email, Name: req.Name})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	res, err := h.Svc.ActivateUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	res, err := h.Svc.DeactivateUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func bindID(c *gin.Context) (string, bool) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		_ = c.Error(validation.Wrap(err))
		return "", false
	}
	return uri.ID, true
}
