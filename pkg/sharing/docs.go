package sharing

// swagger:parameters createSharingService
type _ struct {
	// in: body
	// required: true
	Body CreateSharingServiceRequest
}

// swagger:parameters findAllSharingServices
type _ struct {
	// Only return the sharing services the group is part of
	// in: query
	GroupID uint `json:"groupID"`
}

// swagger:parameters findSharingService deleteSharingService
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`
}

// swagger:parameters updateSharingService
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: body
	// required: true
	Body UpdateSharingServiceRequest
}

// swagger:parameters addSharingServiceGroup
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: body
	// required: true
	Body AddGroupRequest
}

// swagger:parameters updateSharingServiceGroup
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	GroupID uint `json:"groupId"`

	// in: body
	// required: true
	Body UpdateGroupRequest
}

// swagger:parameters deleteSharingServiceGroup
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	GroupID uint `json:"groupId"`
}

// swagger:parameters addAutoPublishers
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	GroupID uint `json:"groupId"`

	// in: body
	// required: true
	Body AddAutoPublishersRequest
}

// swagger:parameters removeAutoPublisher
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	GroupID uint `json:"groupId"`

	// in: path
	// required: true
	UserID uint `json:"userId"`
}

// swagger:parameters addCoauthor removeCoauthor
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`

	// in: path
	// required: true
	UserID uint `json:"userId"`
}
