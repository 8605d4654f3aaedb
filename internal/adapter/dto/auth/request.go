package auth

// TokenRequest represents the request to exchange an API key for a JWT
type TokenRequest struct {
	APIKey     string `json:"api_key" validate:"required"`
	ClientName string `json:"client_name" validate:"required,min=1,max=100"`
}
