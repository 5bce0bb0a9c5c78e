package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/service"
	"course-hub/backend/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
// 学期挂在培养项目下，除平铺列表外的路由都要求携带 program_id 双键定位
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// ListAllSemesters 平铺学期列表（可选按项目过滤）
// GET /api/v1/semesters?program_id=xxx
func (h *SemesterHandler) ListAllSemesters(c *gin.Context) {
	var req dto.SemesterListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	semesters, err := h.semesterSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": semesters})
}

// ListProgramSemesters 获取某项目下的学期列表
// GET /api/v1/programs/:id/semesters
func (h *SemesterHandler) ListProgramSemesters(c *gin.Context) {
	programID := c.Param("id")
	if programID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	semesters, err := h.semesterSvc.ListByProgram(c.Request.Context(), programID)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, gin.H{"list": semesters})
}

// GetSemester 获取学期详情（携带所属项目）
// GET /api/v1/programs/:id/semesters/:semesterID
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	programID := c.Param("id")
	semesterID := c.Param("semesterID")
	if programID == "" || semesterID == "" {
		response.BadRequest(c, 10001, "项目ID和学期ID不能为空")
		return
	}

	semester, err := h.semesterSvc.GetByProgramAndID(c.Request.Context(), programID, semesterID)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// CreateSemester 在项目下创建学期
// POST /api/v1/programs/:id/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	programID := c.Param("id")
	if programID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), programID, &req, callerID)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, semester)
}

// UpdateSemester 更新学期
// PUT /api/v1/programs/:id/semesters/:semesterID
func (h *SemesterHandler) UpdateSemester(c *gin.Context) {
	programID := c.Param("id")
	semesterID := c.Param("semesterID")
	if programID == "" || semesterID == "" {
		response.BadRequest(c, 10001, "项目ID和学期ID不能为空")
		return
	}

	var req dto.UpdateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	semester, err := h.semesterSvc.Update(c.Request.Context(), programID, semesterID, &req, callerID)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// PreviewSemester 更新前预览（不落库）
// POST /api/v1/programs/:id/semesters/:semesterID/preview
func (h *SemesterHandler) PreviewSemester(c *gin.Context) {
	programID := c.Param("id")
	semesterID := c.Param("semesterID")
	if programID == "" || semesterID == "" {
		response.BadRequest(c, 10001, "项目ID和学期ID不能为空")
		return
	}

	var req dto.UpdateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	result, err := h.semesterSvc.Preview(c.Request.Context(), programID, semesterID, &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteSemester 删除学期
// DELETE /api/v1/programs/:id/semesters/:semesterID
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	programID := c.Param("id")
	semesterID := c.Param("semesterID")
	if programID == "" || semesterID == "" {
		response.BadRequest(c, 10001, "项目ID和学期ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.semesterSvc.Delete(c.Request.Context(), programID, semesterID, callerID); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSemesterError 统一处理学期模块业务错误
func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 13001, "培养项目不存在")
	case errors.Is(err, service.ErrSemesterDateInvalid):
		response.BadRequest(c, 14002, "学期结束日期必须晚于开始日期")
	case errors.Is(err, service.ErrSemesterInUse):
		response.Conflict(c, 14003, "学期存在关联安排，无法删除")
	default:
		response.InternalError(c)
	}
}
