package models

import "errors"

// Error constants for person and report operations
var (
	ErrPersonNotFound  = errors.New("pessoa not found")
	ErrInvalidPersonID = errors.New("invalid pessoa ID")
	ErrCEPNotFound     = errors.New("cep not found")
	ErrReportNotFound  = errors.New("report file not found")
)
