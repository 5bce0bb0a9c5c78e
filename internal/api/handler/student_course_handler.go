package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/service"
	pkgerrors "course-hub/backend/pkg/errors"
	"course-hub/backend/pkg/response"
)

// StudentCourseHandler 选课记录模块 HTTP 处理器
type StudentCourseHandler struct {
	studentCourseSvc service.StudentCourseService
}

// NewStudentCourseHandler 创建 StudentCourseHandler
func NewStudentCourseHandler(studentCourseSvc service.StudentCourseService) *StudentCourseHandler {
	return &StudentCourseHandler{studentCourseSvc: studentCourseSvc}
}

// ListStudentCourses 获取选课记录列表（分页，支持按学生/课程/学期过滤）
// GET /api/v1/student-courses
func (h *StudentCourseHandler) ListStudentCourses(c *gin.Context) {
	var req dto.StudentCourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	enrollments, total, err := h.studentCourseSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, enrollments, total, req.GetPage(), req.GetPageSize())
}

// GetStudentCourse 获取选课记录详情
// GET /api/v1/student-courses/:id
func (h *StudentCourseHandler) GetStudentCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "选课记录ID不能为空")
		return
	}

	enrollment, err := h.studentCourseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleStudentCourseError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// CreateStudentCourse 创建选课记录
// POST /api/v1/student-courses
func (h *StudentCourseHandler) CreateStudentCourse(c *gin.Context) {
	var req dto.CreateStudentCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.studentCourseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudentCourseError(c, err)
		return
	}

	response.Created(c, enrollment)
}

// BatchCreateStudentCourses 批量选课（同一课程+学期，多名学生）
// POST /api/v1/student-courses/batch
//
// 任一学生校验失败则整体拒绝，不做部分写入
func (h *StudentCourseHandler) BatchCreateStudentCourses(c *gin.Context) {
	var req dto.BatchCreateStudentCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.studentCourseSvc.BatchCreate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudentCourseError(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateStudentCourse 更新选课记录
// PUT /api/v1/student-courses/:id
func (h *StudentCourseHandler) UpdateStudentCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "选课记录ID不能为空")
		return
	}

	var req dto.UpdateStudentCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	enrollment, err := h.studentCourseSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleStudentCourseError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// PreviewStudentCourse 更新前预览（不落库）
// POST /api/v1/student-courses/:id/preview
func (h *StudentCourseHandler) PreviewStudentCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "选课记录ID不能为空")
		return
	}

	var req dto.UpdateStudentCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	result, err := h.studentCourseSvc.Preview(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStudentCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteStudentCourse 删除选课记录（退课）
// DELETE /api/v1/student-courses/:id
func (h *StudentCourseHandler) DeleteStudentCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "选课记录ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.studentCourseSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleStudentCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleStudentCourseError 统一处理选课记录模块业务错误
// 关联实体不存在时沿用各自模块的错误码，便于前端统一提示
func (h *StudentCourseHandler) handleStudentCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentCourseNotFound):
		response.NotFound(c, 19001, "选课记录不存在")
	case errors.Is(err, service.ErrStudentCourseExists):
		response.Conflict(c, 19002, "该学生在该学期已选此课程")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
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
