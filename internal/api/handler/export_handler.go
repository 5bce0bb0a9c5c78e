package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"course-hub/backend/internal/service"
	"course-hub/backend/pkg/response"
)

const (
	xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsMIME  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTeachingAssignments 导出某学期的授课安排表
// GET /api/v1/export/teaching-assignments?semester_id=xxx
func (h *ExportHandler) ExportTeachingAssignments(c *gin.Context) {
	semesterID := c.Query("semester_id")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semester_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportTeachingAssignments(c.Request.Context(), semesterID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, xlsxMIME, filename, buf.Bytes())
}

// ExportCourseRoster 导出某课程在某学期的选课名单
// GET /api/v1/export/course-roster?course_id=xxx&semester_id=xxx
func (h *ExportHandler) ExportCourseRoster(c *gin.Context) {
	courseID := c.Query("course_id")
	semesterID := c.Query("semester_id")
	if courseID == "" || semesterID == "" {
		response.BadRequest(c, 10001, "course_id 和 semester_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportCourseRoster(c.Request.Context(), courseID, semesterID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, xlsxMIME, filename, buf.Bytes())
}

// ExportSemesterCalendar 导出某培养项目的学期日历（ICS 格式）
// GET /api/v1/export/semester-calendar?program_id=xxx
func (h *ExportHandler) ExportSemesterCalendar(c *gin.Context) {
	programID := c.Query("program_id")
	if programID == "" {
		response.BadRequest(c, 10001, "program_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportSemesterCalendar(c.Request.Context(), programID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, icsMIME, filename, buf.Bytes())
}

// writeDownload 设置下载响应头并输出文件内容
// filename 含中文，按 RFC 5987 编码写入 filename*
func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", contentType)
	c.Data(http.StatusOK, contentType, data)
}

// handleExportError 统一处理导出模块业务错误
// 数据源实体不存在时沿用各自模块的错误码
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 20001, "无可导出的数据")
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 13001, "培养项目不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 14001, "学期不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15001, "课程不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
