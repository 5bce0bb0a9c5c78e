package dto

// ── 教师模块 DTO ──

// TeacherListRequest 教师列表查询参数
type TeacherListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateTeacherRequest 创建教师请求
type CreateTeacherRequest struct {
	TeacherNo string `json:"teacher_no" binding:"required,min=2,max=50"`
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	Title     string `json:"title"      binding:"omitempty,max=50"`
	Email     string `json:"email"      binding:"omitempty,email"`
}

// UpdateTeacherRequest 更新教师请求
type UpdateTeacherRequest struct {
	TeacherNo *string `json:"teacher_no" binding:"omitempty,min=2,max=50"`
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Title     *string `json:"title"      binding:"omitempty,max=50"`
	Email     *string `json:"email"      binding:"omitempty,email"`
}

// TeacherResponse 教师信息响应
type TeacherResponse struct {
	ID        string `json:"id"`
	TeacherNo string `json:"teacher_no"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
