package service

import "errors"

var (
	ErrNoPassengers   = errors.New("booking requires at least one passenger")
	ErrPastTravelDate = errors.New("travel date must not be in the past")
	ErrDuplicateSeat  = errors.New("duplicate seat id within booking")
	ErrInvalidFare    = errors.New("passenger fare must not be negative")
)
