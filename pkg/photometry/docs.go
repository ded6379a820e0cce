package photometry

// swagger:parameters createPhotometry
type _ struct {
	// in: body
	// required: true
	Body CreatePhotometryRequest
}

// swagger:parameters findSourcePhotometry
type _ struct {
	// in: path
	// required: true
	ID string `json:"id"`
}
