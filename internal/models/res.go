package models

type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

type Link struct {
	Href string `json:"href"`
}

// Links is the HAL-style "_links" block. Absent relations are omitted.
type Links struct {
	Self     *Link `json:"self,omitempty"`
	Previous *Link `json:"previous,omitempty"`
	Next     *Link `json:"next,omitempty"`
}

func NewLink(href string) *Link {
	return &Link{Href: href}
}
