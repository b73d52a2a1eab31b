package handler

import (
	"context"

	"relgraph/internal/service"
	"relgraph/pkg/response"

	"github.com/gin-gonic/gin"
)

// RelationshipHandler 关系查询与变更接口
type RelationshipHandler struct {
	rels       *service.RelationshipService
	classifier *service.Classifier
}

func NewRelationshipHandler(rels *service.RelationshipService, classifier *service.Classifier) *RelationshipHandler {
	return &RelationshipHandler{rels: rels, classifier: classifier}
}

// ResolveStatus GET /statuses/:slug
func (h *RelationshipHandler) ResolveStatus(c *gin.Context) {
	res, err := h.rels.ResolveStatus(c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"status":    res.Status,
		"direction": res.Direction.String(),
	})
}

// List GET /relationships/:user_id[/:slug]
func (h *RelationshipHandler) List(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		response.BadRequest(c, "invalid user_id")
		return
	}
	slug := c.Param("slug")
	users, err := h.rels.ListRelationships(c.Request.Context(), viewerOf(c), userID, slug)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, &response.UserListResponse{
		UserID: userID,
		Status: slug,
		Users:  response.FilterUsers(users),
		Total:  len(users),
	})
}

// Subset GET /relationships/:user_id/:slug/subset/:start/:end
func (h *RelationshipHandler) Subset(c *gin.Context) {
	userID, ok := parseUint(c.Param("user_id"))
	if !ok {
		response.BadRequest(c, "invalid user_id")
		return
	}
	start, ok1 := parseInt(c.Param("start"))
	end, ok2 := parseInt(c.Param("end"))
	if !ok1 || !ok2 {
		response.BadRequest(c, "invalid range")
		return
	}
	slug := c.Param("slug")
	users, err := h.rels.SubsetBySlug(c.Request.Context(), viewerOf(c), userID, slug, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, &response.UserListResponse{
		UserID: userID,
		Status: slug,
		Users:  response.FilterUsers(users),
		Total:  len(users),
	})
}

// Exists GET /relationships/exists?from=&to=&status=
func (h *RelationshipHandler) Exists(c *gin.Context) {
	var q struct {
		From   uint   `form:"from" binding:"required"`
		To     uint   `form:"to" binding:"required"`
		Status string `form:"status" binding:"required,slug"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ok, err := h.rels.Exists(c.Request.Context(), q.From, q.To, q.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, &response.ExistsResponse{From: q.From, To: q.To, Status: q.Status, Exists: ok})
}

// Add POST /relationships/:user_id/:slug，当前用户对 user_id 建立关系
func (h *RelationshipHandler) Add(c *gin.Context) {
	h.mutate(c, h.rels.Add, "关系已建立")
}

// Remove DELETE /relationships/:user_id/:slug
func (h *RelationshipHandler) Remove(c *gin.Context) {
	h.mutate(c, h.rels.Remove, "关系已删除")
}

type mutation func(ctx context.Context, actorID, targetID uint, slug string) error

func (h *RelationshipHandler) mutate(c *gin.Context, fn mutation, message string) {
	targetID, ok := parseUint(c.Param("user_id"))
	if !ok {
		response.BadRequest(c, "invalid user_id")
		return
	}
	actorID := viewerOf(c).ID
	slug := c.Param("slug")
	if err := fn(c.Request.Context(), actorID, targetID, slug); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, message, gin.H{
		"actor_id":  actorID,
		"target_id": targetID,
		"status":    slug,
	})
}

// Classify GET /classify?a=&b=
func (h *RelationshipHandler) Classify(c *gin.Context) {
	var q struct {
		A uint `form:"a" binding:"required"`
		B uint `form:"b" binding:"required"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.classifier.Classify(c.Request.Context(), q.A, q.B)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, &response.ClassifyResponse{A: q.A, B: q.B, Result: result})
}

// InvalidateFriends DELETE /admin/social/:provider/:username/friends
func (h *RelationshipHandler) InvalidateFriends(c *gin.Context) {
	if err := h.classifier.InvalidateFriends(c.Request.Context(), c.Param("provider"), c.Param("username")); err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMessage(c, "好友列表缓存已清除", nil)
}
