package dto

// ── 员工注册码 DTO ──

// StaffCodeResponse 注册码响应
type StaffCodeResponse struct {
	Code      string `json:"code"`
	Used      bool   `json:"used"`
	CreatedBy string `json:"created_by"`
	UsedBy    string `json:"used_by,omitempty"`
	UsedAt    string `json:"used_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// StaffCodeValidateResponse 注册码校验响应
type StaffCodeValidateResponse struct {
	Valid bool `json:"valid"`
}
