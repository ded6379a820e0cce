// Package docs holds swagger definitions shared by all resources.
package docs

// Error message describing why the request failed
// swagger:response
type Error struct {
	// The error message
	//in: body
	Message string
}
