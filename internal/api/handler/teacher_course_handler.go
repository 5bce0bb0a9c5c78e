package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/service"
	pkgerrors "course-hub/backend/pkg/errors"
	"course-hub/backend/pkg/response"
)

// TeacherCourseHandler 授课安排模块 HTTP 处理器
type TeacherCourseHandler struct {
	teacherCourseSvc service.TeacherCourseService
}

// NewTeacherCourseHandler 创建 TeacherCourseHandler
func NewTeacherCourseHandler(teacherCourseSvc service.TeacherCourseService) *TeacherCourseHandler {
	return &TeacherCourseHandler{teacherCourseSvc: teacherCourseSvc}
}

// ListTeacherCourses 获取授课安排列表（分页，支持按教师/课程/学期/角色过滤）
// GET /api/v1/teacher-courses
func (h *TeacherCourseHandler) ListTeacherCourses(c *gin.Context) {
	var req dto.TeacherCourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	assignments, total, err := h.teacherCourseSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, assignments, total, req.GetPage(), req.GetPageSize())
}

// GetTeacherCourse 获取授课安排详情
// GET /api/v1/teacher-courses/:id
func (h *TeacherCourseHandler) GetTeacherCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "授课安排ID不能为空")
		return
	}

	assignment, err := h.teacherCourseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTeacherCourseError(c, err)
		return
	}

	response.OK(c, assignment)
}

// CreateTeacherCourse 创建授课安排
// POST /api/v1/teacher-courses
func (h *TeacherCourseHandler) CreateTeacherCourse(c *gin.Context) {
	var req dto.CreateTeacherCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.teacherCourseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleTeacherCourseError(c, err)
		return
	}

	response.Created(c, assignment)
}

// UpdateTeacherCourse 更新授课安排
// PUT /api/v1/teacher-courses/:id
func (h *TeacherCourseHandler) UpdateTeacherCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "授课安排ID不能为空")
		return
	}

	var req dto.UpdateTeacherCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.teacherCourseSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleTeacherCourseError(c, err)
		return
	}

	response.OK(c, assignment)
}

// PreviewTeacherCourse 更新前预览（不落库）
// POST /api/v1/teacher-courses/:id/preview
func (h *TeacherCourseHandler) PreviewTeacherCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "授课安排ID不能为空")
		return
	}

	var req dto.UpdateTeacherCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	result, err := h.teacherCourseSvc.Preview(c.Request.Context(), id, &req)
	if err != nil {
		h.handleTeacherCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteTeacherCourse 删除授课安排
// DELETE /api/v1/teacher-courses/:id
func (h *TeacherCourseHandler) DeleteTeacherCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "授课安排ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.teacherCourseSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleTeacherCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTeacherCourseError 统一处理授课安排模块业务错误
// 关联实体不存在时沿用各自模块的错误码，便于前端统一提示
func (h *TeacherCourseHandler) handleTeacherCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeacherCourseNotFound):
		response.NotFound(c, 18001, "授课安排不存在")
	case errors.Is(err, service.ErrTeacherCourseExists):
		response.Conflict(c, 18002, "该教师在该学期已有此课程的授课安排")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 16001, "教师不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15001, "课程不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 40900, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
