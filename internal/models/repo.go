package models

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Validate checks request structs outside of gin (CLI import, services). It
// reads the same "binding" tags gin does.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	_ = v.RegisterValidation("austate", ValidateStateField)
	return v
}

// EventsRepo is the event store. Implementations must make WithTx an
// exclusive region: no other mutation may interleave between a read inside
// fn and the write that follows it. Calls made with the ctx passed to fn
// run inside that region.
type EventsRepo interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	Close(ctx context.Context) error
}
