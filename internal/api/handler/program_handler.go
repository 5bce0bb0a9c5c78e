package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/service"
	"course-hub/backend/pkg/response"
)

// ProgramHandler 培养项目模块 HTTP 处理器
type ProgramHandler struct {
	programSvc service.ProgramService
}

// NewProgramHandler 创建 ProgramHandler
func NewProgramHandler(programSvc service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programSvc: programSvc}
}

// ListPrograms 获取培养项目列表（按创建时间倒序）
// GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": programs})
}

// GetProgram 获取培养项目详情
// GET /api/v1/programs/:id
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	program, err := h.programSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, program)
}

// CreateProgram 创建培养项目
// POST /api/v1/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	program, err := h.programSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.Created(c, program)
}

// UpdateProgram 更新培养项目
// PUT /api/v1/programs/:id
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	program, err := h.programSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, program)
}

// PreviewProgram 更新前预览（不落库）
// POST /api/v1/programs/:id/preview
func (h *ProgramHandler) PreviewProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	result, err := h.programSvc.Preview(c.Request.Context(), id, &req)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteProgram 删除培养项目
// DELETE /api/v1/programs/:id
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.programSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleProgramError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleProgramError 统一处理培养项目模块业务错误
func (h *ProgramHandler) handleProgramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 13001, "培养项目不存在")
	case errors.Is(err, service.ErrProgramNameExists):
		response.Conflict(c, 13002, "项目名称已存在")
	case errors.Is(err, service.ErrProgramHasSemesters):
		response.Conflict(c, 13003, "项目下存在学期，无法删除")
	default:
		response.InternalError(c)
	}
}
