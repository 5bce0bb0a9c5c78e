package dto

// ── 授课安排模块 DTO ──

// TeacherCourseListRequest 授课安排列表查询参数
type TeacherCourseListRequest struct {
	PaginationRequest
	TeacherID  string `form:"teacher_id"  binding:"omitempty,uuid"`
	CourseID   string `form:"course_id"   binding:"omitempty,uuid"`
	SemesterID string `form:"semester_id" binding:"omitempty,uuid"`
	Role       string `form:"role"        binding:"omitempty,oneof=lecturer assistant"`
}

// CreateTeacherCourseRequest 创建授课安排请求
type CreateTeacherCourseRequest struct {
	TeacherID  string `json:"teacher_id"  binding:"required,uuid"`
	CourseID   string `json:"course_id"   binding:"required,uuid"`
	SemesterID string `json:"semester_id" binding:"required,uuid"`
	Role       string `json:"role"        binding:"omitempty,oneof=lecturer assistant"`
}

// UpdateTeacherCourseRequest 更新授课安排请求
type UpdateTeacherCourseRequest struct {
	TeacherID  *string `json:"teacher_id"  binding:"omitempty,uuid"`
	CourseID   *string `json:"course_id"   binding:"omitempty,uuid"`
	SemesterID *string `json:"semester_id" binding:"omitempty,uuid"`
	Role       *string `json:"role"        binding:"omitempty,oneof=lecturer assistant"`
}

// TeacherCourseResponse 授课安排信息响应
type TeacherCourseResponse struct {
	ID         string `json:"id"`
	TeacherID  string `json:"teacher_id"`
	CourseID   string `json:"course_id"`
	SemesterID string `json:"semester_id"`
	Role       string `json:"role"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`

	// 关联摘要（列表/详情查询时携带）
	Teacher  *TeacherResponse  `json:"teacher,omitempty"`
	Course   *CourseResponse   `json:"course,omitempty"`
	Semester *SemesterResponse `json:"semester,omitempty"`
}
