package user

import (
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/token"
)

// swagger:parameters createUser
type _ struct {
	// Create user request body parameter
	// in: body
	// required: true
	Body createUserRequest
}

// swagger:parameters findUserById deleteUser updateUser
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`
}

// swagger:parameters updateUser
type _ struct {
	// Update user request
	// in: body
	// required: true
	Body updateUserRequest
}

// swagger:response Tokens
type _ struct {
	//in: body
	_ token.Tokens
}

// swagger:response UsersResponse
type _ struct {
	// Users list response
	//in: body
	_ *[]model.User
}
