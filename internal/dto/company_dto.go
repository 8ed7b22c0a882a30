package dto

// CompanyFilter is bound from the query string of GET /v1/companies.
type CompanyFilter struct {
	Name   string `form:"name"`
	City   string `form:"city"`
	Active string `form:"active,default=true"` // true | false | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateCompanyRequest struct {
	Name          string  `json:"name"           validate:"required"`
	LicenseNumber string  `json:"license_number" validate:"required"`
	City          string  `json:"city"           validate:"required"`
	ContactName   *string `json:"contact_name"`
	ContactEmail  *string `json:"contact_email"  validate:"omitempty,email"`
	ContactPhone  *string `json:"contact_phone"`
}

type UpdateCompanyRequest struct {
	Name         *string `json:"name"`
	City         *string `json:"city"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone"`
}

type CompanyResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	LicenseNumber string  `json:"license_number"`
	City          string  `json:"city"`
	ContactName   *string `json:"contact_name"`
	ContactEmail  *string `json:"contact_email"`
	ContactPhone  *string `json:"contact_phone"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
}

type CompanyListResponse struct {
	Data  []CompanyResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
