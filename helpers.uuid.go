package main

import (
	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler is an interface for generating and validating unique ids.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id string) bool
}

// IDsHandler implements the UIDHandler interface.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random prefixed unique identifier. It is used
// for request ids only. Book ids come from the caller.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValid checks if a given string is a well-formed uuid. A failed
// parse is a normal outcome here, never a reason to abort.
func (idh *IDsHandler) IsValid(id string) bool {
	u, err := uuid.FromString(id)
	return err == nil && u != uuid.Nil
}
