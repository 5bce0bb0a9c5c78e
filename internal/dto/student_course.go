package dto

// ── 选课记录模块 DTO ──

// StudentCourseListRequest 选课记录列表查询参数
type StudentCourseListRequest struct {
	PaginationRequest
	StudentID  string `form:"student_id"  binding:"omitempty,uuid"`
	CourseID   string `form:"course_id"   binding:"omitempty,uuid"`
	SemesterID string `form:"semester_id" binding:"omitempty,uuid"`
}

// CreateStudentCourseRequest 创建选课记录请求
type CreateStudentCourseRequest struct {
	StudentID  string `json:"student_id"  binding:"required,uuid"`
	CourseID   string `json:"course_id"   binding:"required,uuid"`
	SemesterID string `json:"semester_id" binding:"required,uuid"`
}

// BatchCreateStudentCourseRequest 批量选课请求
// 同一课程+学期下一次性为多名学生建立选课记录，整体事务执行
type BatchCreateStudentCourseRequest struct {
	CourseID   string   `json:"course_id"   binding:"required,uuid"`
	SemesterID string   `json:"semester_id" binding:"required,uuid"`
	StudentIDs []string `json:"student_ids" binding:"required,min=1,max=500,dive,uuid"`
}

// BatchCreateStudentCourseResponse 批量选课响应
type BatchCreateStudentCourseResponse struct {
	Total   int `json:"total"`
	Created int `json:"created"`
}

// UpdateStudentCourseRequest 更新选课记录请求
type UpdateStudentCourseRequest struct {
	StudentID  *string `json:"student_id"  binding:"omitempty,uuid"`
	CourseID   *string `json:"course_id"   binding:"omitempty,uuid"`
	SemesterID *string `json:"semester_id" binding:"omitempty,uuid"`
}

// StudentCourseResponse 选课记录信息响应
type StudentCourseResponse struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	CourseID   string `json:"course_id"`
	SemesterID string `json:"semester_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`

	// 关联摘要（列表/详情查询时携带）
	Student  *StudentResponse  `json:"student,omitempty"`
	Course   *CourseResponse   `json:"course,omitempty"`
	Semester *SemesterResponse `json:"semester,omitempty"`
}
