package event_test

import (
	"errors"
	"testing"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/event"

	"github.com/minio/minio-go/v7/pkg/notification"
)

const awsPayload = `{
  "Records": [
    {
      "eventSource": "aws:s3",
      "eventName": "ObjectCreated:Put",
      "s3": {
        "bucket": {"name": "docs"},
        "object": {"key": "reports/Q1+%E5%A0%B1%E5%91%8A.txt", "size": 18}
      }
    },
    {
      "eventName": "ObjectCreated:Put",
      "s3": {"bucket": {"name": "docs"}, "object": {"key": "reports/q2.txt"}}
    }
  ]
}`

func TestDecodeFirstRecordRef(t *testing.T) {
	n, err := event.Decode([]byte(awsPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := n.First()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, err := record.Ref()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.ObjectRef{Bucket: "docs", Key: "reports/Q1 報告.txt"}
	if ref != want {
		t.Fatalf("unexpected ref: got %+v want %+v", ref, want)
	}

	if !record.IsObjectCreated() {
		t.Fatalf("expected object-created record")
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `not json`,
		"no records":     `{}`,
		"empty records":  `{"Records": []}`,
		"missing bucket": `{"Records": [{"s3": {"object": {"key": "a.txt"}}}]}`,
		"missing key":    `{"Records": [{"s3": {"bucket": {"name": "docs"}}}]}`,
		"bad escape":     `{"Records": [{"s3": {"bucket": {"name": "docs"}, "object": {"key": "a%zz.txt"}}}]}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			err := refErr(payload)
			if !errors.Is(err, domain.ErrMalformedEvent) {
				t.Fatalf("expected malformed event error, got %v", err)
			}
		})
	}
}

func refErr(payload string) error {
	n, err := event.Decode([]byte(payload))
	if err != nil {
		return err
	}

	record, err := n.First()
	if err != nil {
		return err
	}

	_, err = record.Ref()

	return err
}

func TestIsObjectCreated(t *testing.T) {
	cases := map[string]bool{
		"":                                      true,
		"ObjectCreated:Put":                     true,
		"s3:ObjectCreated:Copy":                 true,
		"ObjectRemoved:Delete":                  false,
		"s3:ObjectRemoved:Delete":               false,
		"s3:ObjectAccessed:Get":                 false,
		"ObjectCreated:CompleteMultipartUpload": true,
	}

	for name, want := range cases {
		var r event.Record
		r.EventName = name

		if got := r.IsObjectCreated(); got != want {
			t.Fatalf("unexpected result for %q: got %v want %v", name, got, want)
		}
	}
}

func TestSplit(t *testing.T) {
	n, err := event.Decode([]byte(awsPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := n.Split()
	if len(parts) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(parts))
	}

	for i, part := range parts {
		if len(part.Records) != 1 {
			t.Fatalf("expected single-record notification at %d", i)
		}
	}

	ref, err := parts[1].Records[0].Ref()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Key != "reports/q2.txt" {
		t.Fatalf("unexpected key: %q", ref.Key)
	}
}

func TestFromInfo(t *testing.T) {
	var ev notification.Event
	ev.EventName = "s3:ObjectCreated:Put"
	ev.S3.Bucket.Name = "docs"
	ev.S3.Object.Key = "notes%2Fa.txt"

	n := event.FromInfo(notification.Info{Records: []notification.Event{ev}})

	record, err := n.First()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, err := record.Ref()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Key != "notes/a.txt" {
		t.Fatalf("unexpected key: %q", ref.Key)
	}
}
