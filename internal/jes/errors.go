package jes

import "errors"

var (
	// ErrConnectionRefused is returned when the gateway answers the control
	// connection with a negative welcome reply.
	ErrConnectionRefused = errors.New("server refused connection")

	// ErrAuthenticationFailed is returned when USER/PASS is rejected.
	ErrAuthenticationFailed = errors.New("login failed")

	// ErrSiteRejected is returned when the gateway refuses the SITE options
	// that switch the session into JES mode.
	ErrSiteRejected = errors.New("server refused to change FileType and JESJobName")

	// ErrServerClosed is returned when the gateway closes the control
	// connection mid-operation.
	ErrServerClosed = errors.New("server closed connection")

	// ErrJobNotFound is returned when a job ID cannot be found in the spool.
	ErrJobNotFound = errors.New("job not found in spool")
)
