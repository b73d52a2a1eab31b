package handler

import (
	"relgraph/internal/model"
	"relgraph/internal/service"
	"relgraph/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatusHandler 关系类型管理（仅管理员）
type StatusHandler struct {
	registry *service.StatusRegistry
}

func NewStatusHandler(registry *service.StatusRegistry) *StatusHandler {
	return &StatusHandler{registry: registry}
}

type statusRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	Verb            string `json:"verb" binding:"max=100"`
	FromSlug        string `json:"from_slug" binding:"required,slug"`
	ToSlug          string `json:"to_slug" binding:"required,slug"`
	SymmetricalSlug string `json:"symmetrical_slug" binding:"omitempty,slug"`
	LoginRequired   bool   `json:"login_required"`
	Private         bool   `json:"private"`
}

func (r *statusRequest) toModel(id uint) *model.RelationshipStatus {
	st := &model.RelationshipStatus{
		ID:            id,
		Name:          r.Name,
		Verb:          r.Verb,
		FromSlug:      r.FromSlug,
		ToSlug:        r.ToSlug,
		LoginRequired: r.LoginRequired,
		Private:       r.Private,
	}
	if r.SymmetricalSlug != "" {
		sym := r.SymmetricalSlug
		st.SymmetricalSlug = &sym
	}
	return st
}

// List GET /admin/statuses
func (h *StatusHandler) List(c *gin.Context) {
	statuses, err := h.registry.ListStatuses(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, statuses)
}

// Create POST /admin/statuses
func (h *StatusHandler) Create(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	st := req.toModel(0)
	if err := h.registry.CreateStatus(c.Request.Context(), st); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "关系类型已创建", st)
}

// Update PUT /admin/statuses/:id
func (h *StatusHandler) Update(c *gin.Context) {
	id, ok := parseUint(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid id")
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	st := req.toModel(id)
	if err := h.registry.UpdateStatus(c.Request.Context(), st); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "关系类型已更新", st)
}

// Delete DELETE /admin/statuses/:id，同时删除该类型的所有关系
func (h *StatusHandler) Delete(c *gin.Context) {
	id, ok := parseUint(c.Param("id"))
	if !ok {
		response.BadRequest(c, "invalid id")
		return
	}
	if err := h.registry.DeleteStatus(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "关系类型已删除", nil)
}

// Reload POST /admin/statuses/reload，从存储重新加载slug索引
func (h *StatusHandler) Reload(c *gin.Context) {
	if err := h.registry.Reload(c.Request.Context()); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "关系类型已重新加载", nil)
}
