package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
type CreateSemesterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	StartDate string `json:"start_date" binding:"required"` // "2026-09-01"
	EndDate   string `json:"end_date"   binding:"required"` // "2027-01-15"
}

// UpdateSemesterRequest 更新学期请求
type UpdateSemesterRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// SemesterListRequest 学期列表查询参数（扁平入口）
type SemesterListRequest struct {
	ProgramID string `form:"program_id" binding:"omitempty,uuid"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID        string           `json:"id"`
	ProgramID string           `json:"program_id"`
	Name      string           `json:"name"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Program   *ProgramResponse `json:"program,omitempty"` // 按项目查询时携带
}
