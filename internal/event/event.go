// Package event decodes storage-write notifications.
package event

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"docsummarizer/internal/domain"

	"github.com/minio/minio-go/v7/pkg/notification"
)

// Record is one entry of a notification batch.
type Record struct {
	notification.Event
}

// Notification is an S3-style notification payload.
type Notification struct {
	Records []Record `json:"Records"`
}

// Decode parses a raw notification payload. It fails only when the payload
// is not a JSON object; structural checks happen in First and Ref.
func Decode(raw []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: unmarshal payload: %w", domain.ErrMalformedEvent, err)
	}

	return n, nil
}

// FromInfo converts a batch received from a bucket-notification listener.
func FromInfo(info notification.Info) Notification {
	n := Notification{Records: make([]Record, 0, len(info.Records))}
	for _, ev := range info.Records {
		n.Records = append(n.Records, Record{Event: ev})
	}

	return n
}

func (n Notification) First() (Record, error) {
	if len(n.Records) == 0 {
		return Record{}, fmt.Errorf("%w: no records", domain.ErrMalformedEvent)
	}

	return n.Records[0], nil
}

// Split returns one single-record notification per record.
func (n Notification) Split() []Notification {
	out := make([]Notification, 0, len(n.Records))
	for _, r := range n.Records {
		out = append(out, Notification{Records: []Record{r}})
	}

	return out
}

// Ref returns the bucket and the decoded object key of the record.
// Keys arrive form-encoded: '+' stands for a space.
func (r Record) Ref() (domain.ObjectRef, error) {
	bucket := strings.TrimSpace(r.S3.Bucket.Name)
	if bucket == "" {
		return domain.ObjectRef{}, fmt.Errorf("%w: bucket name is missing", domain.ErrMalformedEvent)
	}

	rawKey := r.S3.Object.Key
	if rawKey == "" {
		return domain.ObjectRef{}, fmt.Errorf("%w: object key is missing", domain.ErrMalformedEvent)
	}

	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		return domain.ObjectRef{}, fmt.Errorf("%w: decode object key (key = %s): %w",
			domain.ErrMalformedEvent, rawKey, err)
	}

	return domain.ObjectRef{Bucket: bucket, Key: key}, nil
}

// IsObjectCreated reports whether the record describes a write. Records
// without an event name are treated as writes.
func (r Record) IsObjectCreated() bool {
	name := strings.TrimSpace(r.EventName)
	if name == "" {
		return true
	}

	name = strings.TrimPrefix(name, "s3:")

	return strings.HasPrefix(name, "ObjectCreated")
}
