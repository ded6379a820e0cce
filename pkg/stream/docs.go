package stream

// swagger:parameters createStream
type _ struct {
	// in: body
	// required: true
	Body CreateStreamRequest
}

// swagger:parameters addUserToStream removeUserFromStream
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	UserID uint `json:"userId"`
}
