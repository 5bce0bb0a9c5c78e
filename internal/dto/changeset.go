package dto

// ── 变更预检 DTO ──
// PATCH 前先通过 preview 接口查看本次修改会产生哪些字段变更、
// 是否能通过业务校验，不落库。

// FieldChange 单字段变更描述
type FieldChange struct {
	Field string      `json:"field"`
	From  interface{} `json:"from"`
	To    interface{} `json:"to"`
}

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ChangesetResponse 变更预检结果
type ChangesetResponse struct {
	Valid   bool          `json:"valid"`
	Changes []FieldChange `json:"changes"`
	Errors  []FieldError  `json:"errors"`
}
