package submission

import "github.com/skyportal/skyportal/pkg/model"

// swagger:parameters submitObj listSubmissions
type _ struct {
	// in: path
	// required: true
	ID uint `json:"id"`
}

// swagger:parameters submitObj
type _ struct {
	// Submission request body parameter
	// in: body
	// required: true
	Body SubmitRequest
}

// swagger:parameters listSubmissions
type _ struct {
	// Only list submissions of this object
	// in: query
	ObjID string `json:"objID"`
	// Page number starting at 1
	// in: query
	PageNumber int `json:"pageNumber"`
	// Number of submissions per page
	// in: query
	NumPerPage int `json:"numPerPage"`
}

// swagger:parameters findSubmission
type _ struct {
	// in: path
	// required: true
	SubmissionID uint `json:"submissionId"`
}

// swagger:response Submission
type _ struct {
	// in: body
	_ model.SharingServiceSubmission
}

// swagger:response SubmissionPage
type _ struct {
	// in: body
	_ Page
}
