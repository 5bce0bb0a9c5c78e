package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code        string `json:"code"        binding:"required,min=2,max=50"`
	Name        string `json:"name"        binding:"required,min=2,max=255"`
	Credits     int    `json:"credits"     binding:"required,min=1,max=20"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Code        *string `json:"code"        binding:"omitempty,min=2,max=50"`
	Name        *string `json:"name"        binding:"omitempty,min=2,max=255"`
	Credits     *int    `json:"credits"     binding:"omitempty,min=1,max=20"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
