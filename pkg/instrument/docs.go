package instrument

// swagger:parameters createInstrument
type _ struct {
	// in: body
	// required: true
	Body CreateInstrumentRequest
}

// swagger:parameters findInstrument
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`
}
