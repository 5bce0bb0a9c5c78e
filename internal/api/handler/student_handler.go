package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/service"
	"course-hub/backend/pkg/response"
)

// StudentHandler 学生模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
	// importEnabled 受配置 feature.student_import_enabled 控制，
	// 关闭时导入接口直接返回 403
	importEnabled bool
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, importEnabled bool) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, importEnabled: importEnabled}
}

// ListStudents 获取学生列表（分页，支持按学号/姓名搜索与入学年份过滤）
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	students, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// GetStudent 获取学生详情
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent 创建学生
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent 更新学生
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, bindErrorFields(err))
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent 删除学生
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学生ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportStudents 从 Excel 批量导入学生
// POST /api/v1/students/import
//
// 文件上传: multipart/form-data, field="file"
// 表头要求包含 学号/姓名/入学年份 三列，解析后整体校验、全部通过才入库
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	if !h.importEnabled {
		response.Forbidden(c, 17007, "学生导入功能未开启")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件（字段名 file）")
		return
	}
	defer file.Close()

	rows, err := h.studentSvc.ParseImportFile(file)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	resp, err := h.studentSvc.ImportStudents(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, resp)
}

// handleStudentError 统一处理学生模块业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17001, "学生不存在")
	case errors.Is(err, service.ErrStudentNoExists):
		response.Conflict(c, 17002, "学生学号已存在")
	case errors.Is(err, service.ErrStudentHasEnrollment):
		response.Conflict(c, 17003, "学生存在选课记录，无法删除")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 17004, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 17005, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 17006, err.Error())
	default:
		response.InternalError(c)
	}
}
