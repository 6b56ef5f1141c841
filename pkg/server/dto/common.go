package dto

// Result represents a generic API result
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// NodeList is the payload of a node listing.
type NodeList struct {
	Kind  string      `json:"kind,omitempty"`
	Total int         `json:"total"`
	Nodes interface{} `json:"nodes"`
}
