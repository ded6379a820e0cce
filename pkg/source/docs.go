package source

// swagger:parameters saveSource
type _ struct {
	// in: body
	// required: true
	Body SaveSourceRequest
}

// swagger:parameters findSource
type _ struct {
	// in: path
	// required: true
	ID string `json:"id"`
}
