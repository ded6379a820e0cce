package group

// swagger:parameters groupCreate
type _ struct {
	// Create group request body parameter
	// in: body
	// required: true
	Body CreateGroupRequest
}

// swagger:parameters addUserToGroup addAdminUserToGroup removeUserFromGroup
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	UserID uint `json:"userId"`
}

// swagger:parameters findGroup
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`
}
