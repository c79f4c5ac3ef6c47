package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CompanyRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Region   string `json:"region"`
}

type GenerateReportRequest struct {
	DocumentID string     `json:"document_id"`
	ReportType ReportType `json:"report_type"`
}
