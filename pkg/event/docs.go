package event

// swagger:response Stream
type _ struct {
	// in: body
	_ string
}
