package dto

// ── 学生模块 DTO ──

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Keyword    string `form:"keyword"     binding:"omitempty,max=50"`
	EnrollYear int    `form:"enroll_year" binding:"omitempty,min=2000,max=2100"`
}

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	StudentNo  string `json:"student_no"  binding:"required,min=2,max=50"`
	Name       string `json:"name"        binding:"required,min=2,max=100"`
	EnrollYear int    `json:"enroll_year" binding:"required,min=2000,max=2100"`
}

// UpdateStudentRequest 更新学生请求
type UpdateStudentRequest struct {
	StudentNo  *string `json:"student_no"  binding:"omitempty,min=2,max=50"`
	Name       *string `json:"name"        binding:"omitempty,min=2,max=100"`
	EnrollYear *int    `json:"enroll_year" binding:"omitempty,min=2000,max=2100"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID         string `json:"id"`
	StudentNo  string `json:"student_no"`
	Name       string `json:"name"`
	EnrollYear int    `json:"enroll_year"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// ── 学生批量导入 DTO ──

// ImportStudentResponse 批量导入学生响应
type ImportStudentResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Errors  []ImportStudentError `json:"errors,omitempty"`
}

// ImportStudentError 导入错误详情
type ImportStudentError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
