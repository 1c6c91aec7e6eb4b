package jes

import (
	"regexp"
	"strings"
)

// All gateway reply and listing patterns live in this file. The phrasing is
// fixed by the FTP-to-JES gateway; a different gateway dialect only needs
// changes here, not in the submit/poll state machine.

// jobSubmittedPattern matches the submission acknowledgement line, e.g.
// "250-It is known to JES as JOB12345".
var jobSubmittedPattern = regexp.MustCompile(`^250-It is known to JES as (\S+)\s*$`)

// parseJobAck scans a multi-line STOR reply for the job ID assigned by JES.
// Returns "" when the gateway did not acknowledge the submission.
func parseJobAck(lines []string) string {
	for _, line := range lines {
		if m := jobSubmittedPattern.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			return m[1]
		}
	}
	return ""
}

// completionPatterns matches one job's spool listing entry against the four
// outcome dialects. JCL errors must be checked first: a JCL-error entry has
// no RC field at all. "RC <token>" (no equals sign) is the dialect where the
// gateway shows a non-numeric status instead of a return code.
type completionPatterns struct {
	jclError *regexp.Regexp
	abend    *regexp.Regexp
	badRC    *regexp.Regexp
	rc       *regexp.Regexp
}

func newCompletionPatterns(jobID string) completionPatterns {
	id := regexp.QuoteMeta(jobID)
	return completionPatterns{
		jclError: regexp.MustCompile(`^(\S+)\s+` + id + `.* \(JCL error\)\s+.*$`),
		abend:    regexp.MustCompile(`^(\S+)\s+` + id + `.* ABEND=(\S+)\s+.*$`),
		badRC:    regexp.MustCompile(`^(\S+)\s+` + id + `.* RC\s+(\S+)\s+.*$`),
		rc:       regexp.MustCompile(`^(\S+)\s+` + id + `.* RC=(\S+) .*$`),
	}
}

// spoolCompletion is the extracted outcome of a completed job: the job name
// from the listing and the rendered completion code.
type spoolCompletion struct {
	jobName string
	code    string
}

// scan walks the spool listing and classifies the first entry that matches
// one of the completion dialects.
func (p completionPatterns) scan(lines []string) (spoolCompletion, bool) {
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if m := p.jclError.FindStringSubmatch(line); m != nil {
			return spoolCompletion{jobName: m[1], code: CodeJCLError}, true
		}
		if m := p.abend.FindStringSubmatch(line); m != nil {
			return spoolCompletion{jobName: m[1], code: AbendPrefix + m[2]}, true
		}
		if m := p.badRC.FindStringSubmatch(line); m != nil {
			return spoolCompletion{jobName: m[1], code: strings.ToUpper(m[2])}, true
		}
		if m := p.rc.FindStringSubmatch(line); m != nil {
			return spoolCompletion{jobName: m[1], code: m[2]}, true
		}
	}
	return spoolCompletion{}, false
}

// JobStatus is one entry of the JES spool listing.
type JobStatus struct {
	JobID   string
	JobName string
	Owner   string
	Status  string // ACTIVE, OUTPUT, INPUT
	RetCode string // CC 0000, ABEND S806, etc.
	Class   string
}

func parseJobLine(line string) JobStatus {
	// Format: JOBNAME  JOBID    OWNER    STATUS CLASS
	// Example: MYJOB    JOB12345 FALZONE  OUTPUT A    RC=0000
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return JobStatus{}
	}

	job := JobStatus{
		JobName: fields[0],
		JobID:   fields[1],
		Owner:   fields[2],
		Status:  fields[3],
	}

	if len(fields) >= 5 {
		job.Class = fields[4]
	}

	for _, f := range fields {
		if strings.HasPrefix(f, "RC=") {
			job.RetCode = "CC " + strings.TrimPrefix(f, "RC=")
		} else if strings.HasPrefix(f, "ABEND=") {
			job.RetCode = "ABEND " + strings.TrimPrefix(f, "ABEND=")
		}
	}

	return job
}

func parseJobLines(lines []string) []JobStatus {
	jobs := make([]JobStatus, 0, len(lines))
	for _, line := range lines {
		if strings.Contains(line, "JOBNAME") && strings.Contains(line, "JOBID") {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		job := parseJobLine(line)
		if job.JobID != "" {
			jobs = append(jobs, job)
		}
	}
	return jobs
}
