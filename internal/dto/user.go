package dto

// ── 账号模块 DTO ──

// UserListRequest 账号列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin staff"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 创建账号请求（仅管理员）
type CreateUserRequest struct {
	Username    string `json:"username"     binding:"required,min=3,max=50"`
	Password    string `json:"password"     binding:"required,min=8,max=20"`
	DisplayName string `json:"display_name" binding:"required,min=2,max=100"`
	Role        string `json:"role"         binding:"required,oneof=admin staff"`
}

// UpdateUserRequest 更新账号请求
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,min=2,max=100"`
	Role        *string `json:"role"         binding:"omitempty,oneof=admin staff"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
