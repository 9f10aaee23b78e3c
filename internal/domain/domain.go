package domain

import (
	"net/http"
	"strings"
)

const (
	SummarySuffix      = "_summary.txt"
	SummaryContentType = "text/plain; charset=utf-8"
)

// ObjectRef identifies a storage object.
type ObjectRef struct {
	Bucket string
	Key    string
}

// SummaryRef returns the location of the summary artifact derived from r.
func (r ObjectRef) SummaryRef() ObjectRef {
	return ObjectRef{Bucket: r.Bucket, Key: SummaryKey(r.Key)}
}

func SummaryKey(key string) string {
	return key + SummarySuffix
}

func IsSummaryKey(key string) bool {
	return strings.HasSuffix(key, SummarySuffix)
}

type State string

const (
	StateStart     State = "start"
	StateDecoded   State = "decoded"
	StateSkipped   State = "skipped"
	StateFetched   State = "fetched"
	StatePrompted  State = "prompted"
	StateCompleted State = "completed"
	StatePersisted State = "persisted"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Outcome is the terminal result of one invocation.
type Outcome struct {
	State State
	// FailedAt is the last state reached before the failure.
	FailedAt   State
	Ref        ObjectRef
	SummaryRef ObjectRef
	Reason     string
	Err        error
	// Path lists the states reached, in order, ending with the terminal one.
	Path []State
}

func (o Outcome) Succeeded() bool {
	return o.State == StateSkipped || o.State == StateSucceeded
}

// Result is the invocation result understood by the hosting runtime.
type Result struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func (o Outcome) Result() Result {
	switch o.State {
	case StateSkipped:
		body := "Skipped summary file"
		if o.Reason != "" {
			body = "Skipped: " + o.Reason
		}

		return Result{StatusCode: http.StatusOK, Body: body}
	case StateSucceeded:
		return Result{StatusCode: http.StatusOK, Body: "Summary generated successfully"}
	default:
		body := "invocation failed"
		if o.Err != nil {
			body = o.Err.Error()
		}

		return Result{StatusCode: http.StatusInternalServerError, Body: body}
	}
}
