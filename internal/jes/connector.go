// Package jes submits batch jobs to z/OS JES through the FTP gateway and
// tracks them until completion.
package jes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// submitName is the remote name given to the uploaded job text. The
	// gateway ignores it; JES assigns the real job ID.
	submitName = "job.sub"

	defaultPollInterval = 10 * time.Second
)

// Connector drives one gateway endpoint. It keeps a single control session
// and reconnects transparently when the session is lost. Not safe for
// concurrent use; run one Connector per goroutine.
type Connector struct {
	host     string
	port     int
	user     string
	password string

	level1       bool
	pollInterval time.Duration
	listener     Listener
	prefix       string

	session *session
}

// Option configures a Connector.
type Option func(*Connector)

// WithListener routes progress and error lines to l.
func WithListener(l Listener) Option {
	return func(c *Connector) { c.listener = l }
}

// WithLogPrefix prepends prefix to every listener line.
func WithLogPrefix(prefix string) Option {
	return func(c *Connector) { c.prefix = prefix }
}

// WithInterfaceLevel1 marks the gateway as JESINTERFACELEVEL=1. Such
// gateways cannot show job return codes, so completion is reported without
// one.
func WithInterfaceLevel1() Option {
	return func(c *Connector) { c.level1 = true }
}

// WithPollInterval overrides the delay between queue checks while waiting
// for a job to finish.
func WithPollInterval(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func New(host string, port int, user, password string, opts ...Option) *Connector {
	c := &Connector{
		host:         host,
		port:         port,
		user:         user,
		password:     password,
		pollInterval: defaultPollInterval,
		listener:     nopListener{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one job submission.
type Request struct {
	// JCL is the job text to submit.
	JCL io.Reader

	// Wait keeps the call running until the job leaves the queue and its
	// output has been captured.
	Wait bool

	// WaitLimit bounds the wait. Zero means wait forever.
	WaitLimit time.Duration

	// DeleteLog purges the job from the spool after a successful capture.
	DeleteLog bool

	// Log receives the job's spool output while waiting. May be nil.
	Log io.Writer
}

// Result is the outcome of a submission. CompletionCode is either the job's
// return code (e.g. "0000"), an ABEND_ or JCL_ERROR marker, or one of the
// Code constants describing why no return code was captured.
type Result struct {
	Success        bool
	JobID          string
	JobName        string
	CompletionCode string
}

// job is the mutable tracking state of one submission.
type job struct {
	id   string
	name string
	cc   string
}

func (j *job) result(ok bool) Result {
	return Result{
		Success:        ok,
		JobID:          j.id,
		JobName:        j.name,
		CompletionCode: j.cc,
	}
}

// Submit sends one job to JES. With req.Wait set it polls the job queue
// until the job completes, captures the spool output into req.Log and
// extracts the completion code. Without it the call returns as soon as JES
// acknowledges the submission.
func (c *Connector) Submit(ctx context.Context, req Request) Result {
	j := &job{}

	if err := c.ensureSession(); err != nil {
		c.errf("connect failed: %v", err)
		j.cc = CodeCouldNotConnect
		return j.result(false)
	}

	if !c.submitJob(j, req.JCL) {
		return j.result(false)
	}
	c.logf("job submitted, JES assigned ID %s", j.id)

	if !req.Wait {
		return j.result(true)
	}

	sink := req.Log
	if sink == nil {
		sink = io.Discard
	}
	ok := c.waitForCompletion(ctx, j, req.WaitLimit, sink)
	if ok && req.DeleteLog {
		c.deleteJobLog(j)
	}
	return j.result(ok)
}

// submitJob uploads the job text and records the job ID JES assigned. A
// submission whose acknowledgement carries no job ID is failed right away:
// without an ID the job can never be found in the queue again.
func (c *Connector) submitJob(j *job, jcl io.Reader) bool {
	r, err := c.session.storJob(submitName, jcl)
	if err != nil {
		c.dropSession()
		c.errf("submit failed: %v", err)
		if errors.Is(err, ErrServerClosed) {
			j.cc = CodeConnectionClosed
		} else {
			j.cc = CodeIOError
		}
		return false
	}
	if !r.positive() {
		c.errf("server refused the job: %s", r.text())
		j.cc = CodeIOError
		return false
	}

	j.id = parseJobAck(r.lines)
	if j.id == "" {
		c.errf("no job ID in submit reply: %s", r.text())
		j.cc = CodeJobIDNotAssigned
		return false
	}
	return true
}

// ensureSession connects and prepares the JES-mode control session if none
// is open.
func (c *Connector) ensureSession() error {
	if c.session != nil {
		return nil
	}
	s, err := dialSession(c.host, c.port)
	if err != nil {
		return err
	}
	if err := s.login(c.user, c.password); err != nil {
		s.quit()
		return err
	}
	if err := s.enterJESMode(); err != nil {
		s.quit()
		return err
	}
	c.session = s
	return nil
}

// dropSession discards a session whose state is no longer trusted. The next
// operation reconnects.
func (c *Connector) dropSession() {
	if c.session == nil {
		return
	}
	c.session.quit()
	c.session = nil
}

// Close releases the control connection. The Connector stays usable; the
// next operation reconnects.
func (c *Connector) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.quit()
	c.session = nil
	return err
}

// checkJobAvailability reports whether the job is present in the JES queue.
func (c *Connector) checkJobAvailability(j *job) (bool, error) {
	if err := c.ensureSession(); err != nil {
		return false, err
	}
	names, err := c.session.nameList("*")
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if strings.TrimSpace(name) == j.id {
			return true, nil
		}
	}
	return false, nil
}

type fetchOutcome int

const (
	fetchDone fetchOutcome = iota
	fetchNotReady
	fetchFailed
)

// fetchJobLog retrieves the job's spool output into sink and, on success,
// extracts the completion code. fetchNotReady means the server refused the
// retrieval, which it does while the job is still running.
func (c *Connector) fetchJobLog(j *job, sink io.Writer) fetchOutcome {
	if err := c.ensureSession(); err != nil {
		c.errf("reconnect for log fetch failed: %v", err)
		j.cc = CodeLoginError
		return fetchFailed
	}
	if err := c.session.typeASCII(); err != nil {
		c.dropSession()
		c.errf("log fetch failed: %v", err)
		j.cc = CodeFetchIOError
		return fetchFailed
	}
	ok, err := c.session.retrieve(j.id, sink)
	if err != nil {
		c.dropSession()
		c.errf("log fetch failed: %v", err)
		j.cc = CodeFetchIOError
		return fetchFailed
	}
	if !ok {
		j.cc = CodeRetrieveNotReady
		return fetchNotReady
	}
	if !c.obtainJobRC(j) {
		return fetchFailed
	}
	return fetchDone
}

// obtainJobRC extracts the job's completion code from the queue listing.
// Level-1 gateways never show return codes, so the code records that and no
// listing is attempted. A listing with no entry for the job fails the
// submission with CodeCouldNotRetrieveRC: the job's outcome was never
// determined.
func (c *Connector) obtainJobRC(j *job) bool {
	if c.level1 {
		j.cc = CodeNoRCLevel1
		return true
	}

	j.cc = CodeCouldNotRetrieveRC
	lines, err := c.session.list("*")
	if err != nil {
		c.dropSession()
		c.errf("listing for completion code failed: %v", err)
		return false
	}

	done, ok := newCompletionPatterns(j.id).scan(lines)
	if !ok {
		c.errf("no completion code for %s in the queue listing", j.id)
		return false
	}
	j.name = done.jobName
	j.cc = done.code
	return true
}

// deleteJobLog purges the job from the spool. Best effort: a refusal is
// logged and does not change the submission outcome.
func (c *Connector) deleteJobLog(j *job) {
	if err := c.ensureSession(); err != nil {
		c.errf("reconnect for purge failed: %v", err)
		return
	}
	if err := c.session.delete(j.id); err != nil {
		c.errf("purge of %s failed: %v", j.id, err)
		return
	}
	c.logf("purged %s from the spool", j.id)
}

// ListJobs returns the owner's JES queue.
func (c *Connector) ListJobs() ([]JobStatus, error) {
	if err := c.ensureSession(); err != nil {
		return nil, err
	}
	lines, err := c.session.list("*")
	if err != nil {
		c.dropSession()
		return nil, err
	}
	return parseJobLines(lines), nil
}

// GetJobStatus returns one job's queue entry.
func (c *Connector) GetJobStatus(jobID string) (*JobStatus, error) {
	jobs, err := c.ListJobs()
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].JobID == jobID {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
}

// FetchLog streams a finished job's spool output into w.
func (c *Connector) FetchLog(jobID string, w io.Writer) error {
	if err := c.ensureSession(); err != nil {
		return err
	}
	if err := c.session.typeASCII(); err != nil {
		c.dropSession()
		return err
	}
	ok, err := c.session.retrieve(jobID, w)
	if err != nil {
		c.dropSession()
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return nil
}

// PurgeJob removes a job and its output from the spool.
func (c *Connector) PurgeJob(jobID string) error {
	if err := c.ensureSession(); err != nil {
		return err
	}
	return c.session.delete(jobID)
}

func (c *Connector) logf(format string, args ...interface{}) {
	c.listener.Info(c.prefix + fmt.Sprintf(format, args...))
}

func (c *Connector) errf(format string, args ...interface{}) {
	c.listener.Error(c.prefix + fmt.Sprintf(format, args...))
}
