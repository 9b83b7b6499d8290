// Package domain contains core concepts of the chat client.
// This file defines the participant Identity and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Identity is the participant announced by the Login handshake.
// ID is always generated so that two users sharing a display name stay distinct.
type Identity struct {
	ID   string `validate:"required,uuid4"`
	Name string `validate:"required,max=64"`
}

// NewIdentity creates an Identity with a fresh unique ID.
func NewIdentity(name string) (Identity, error) {
	identity := Identity{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := validate.Struct(identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

func (i Identity) String() string {
	return i.Name
}

// Validate checks an Identity built outside NewIdentity.
func (i Identity) Validate() error {
	return validate.Struct(i)
}
