package dto

// CustomerSummary is the customer shape returned by the picker and
// onboarding endpoints.
type CustomerSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Job       string `json:"job"`
	Birthdate string `json:"birthdate"`
	Gender    string `json:"gender"`
	UserID    string `json:"user_id"`
}

// CustomerSearchResponse is one page of the customer picker.
type CustomerSearchResponse struct {
	Items      []CustomerSummary `json:"items"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}
