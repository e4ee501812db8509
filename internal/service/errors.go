package service

import "errors"

// ErrInvalidCurrency indicates a currency code that is malformed or not supported.
var ErrInvalidCurrency = errors.New("invalid currency")

// ErrInvalidAmount indicates an amount that is not a decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInvalidRate indicates a rate that is not a positive decimal number.
var ErrInvalidRate = errors.New("invalid rate")

// ErrInvalidDate indicates a date not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidRounding indicates an unknown rounding policy name.
var ErrInvalidRounding = errors.New("invalid rounding policy")

// ErrUnknownRate indicates that no rate is known for the requested pair.
var ErrUnknownRate = errors.New("unknown rate")

// ErrReadOnlyStore indicates that the configured rate store cannot register rates.
var ErrReadOnlyStore = errors.New("rate store is read-only")

// ErrNoImporter indicates that no importer is configured.
var ErrNoImporter = errors.New("no rate importer configured")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue indicates an internal queue error.
var ErrInternalQueue = errors.New("internal queue error")
