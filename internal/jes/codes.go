package jes

import "strings"

// Completion-code strings reported through Result.CompletionCode. Numeric RCs,
// upper-cased non-numeric statuses and ABEND_<code> values come straight from
// the spool listing; the rest classify connector-level outcomes.
const (
	CodeCouldNotConnect    = "COULD_NOT_CONNECT"
	CodeConnectionClosed   = "SERVER_CLOSED_CONNECTION"
	CodeIOError            = "IO_ERROR"
	CodeJobIDNotAssigned   = "JOB_ID_NOT_ASSIGNED"
	CodeLoginError         = "FETCH_LOG_ERROR_LOGIN"
	CodeFetchIOError       = "FETCH_LOG_IO_ERROR"
	CodeJobNotFound        = "JOB_NOT_FOUND_IN_JES"
	CodeJobVanished        = "JOB_VANISHED_FROM_SPOOL"
	CodeRetrieveNotReady   = "RETR_ERR_JOB_NOT_FINISHED_OR_NOT_FOUND"
	CodeWaitInterrupted    = "WAIT_INTERRUPTED"
	CodeWaitTimeout        = "JOB_DID_NOT_FINISH_IN_TIME"
	CodeNoRCLevel1         = "NO_RC - JESINTERFACELEVEL_IS_1"
	CodeCouldNotRetrieveRC = "COULD_NOT_RETRIEVE_JOB_RC"
	CodeJCLError           = "JCL_ERROR"
)

// AbendPrefix starts every completion code produced by an abnormally ended
// job, e.g. "ABEND_S0C7".
const AbendPrefix = "ABEND_"

// IsNumeric reports whether a completion code is a plain numeric RC.
func IsNumeric(code string) bool {
	if code == "" {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// NormalizeThreshold pads an acceptance threshold with leading zeros to the
// 4-character width the spool listing uses for RCs. Empty input means the
// default threshold "0000" (only a clean RC passes).
func NormalizeThreshold(threshold string) string {
	threshold = strings.TrimSpace(threshold)
	if threshold == "" {
		return "0000"
	}
	for len(threshold) < 4 {
		threshold = "0" + threshold
	}
	return threshold
}

// Accepted reports whether a completion code passes the acceptance threshold.
// Only numeric RCs can pass; abends, JCL errors and every connector-level
// code fail regardless of the threshold. The comparison is a plain string
// compare, which orders correctly only because both sides are equal-length
// zero-padded digit strings.
func Accepted(threshold, code string) bool {
	if !IsNumeric(code) {
		return false
	}
	return NormalizeThreshold(threshold) >= code
}
