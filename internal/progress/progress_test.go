package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewGenerationID(t *testing.T) {
	a, b := NewGenerationID(), NewGenerationID()
	if a == b {
		t.Fatalf("ids should differ, both %q", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("id %q is not a uuid: %v", a, err)
	}
}

func TestMulti(t *testing.T) {
	var got []string
	m := Multi{
		Func(func(e Event) { got = append(got, "a:"+e.Message) }),
		nil,
		Func(func(e Event) { got = append(got, "b:"+e.Message) }),
	}

	m.Report(Event{Message: "hi"})

	if strings.Join(got, ",") != "a:hi,b:hi" {
		t.Errorf("got %v", got)
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	sink.Report(Event{GenerationID: "g1", Epoch: 3, State: "running", Message: "Generating part 2/5...", Segment: 2, Total: 5})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}

	if rec["msg"] != "Generating part 2/5..." {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["component"] != "progress" || rec["state"] != "running" {
		t.Errorf("record = %v", rec)
	}
	if rec["segment"] != float64(2) || rec["total"] != float64(5) || rec["epoch"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestLogSink_DefaultMessage(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	sink.Report(Event{State: "completed"})

	if !strings.Contains(buf.String(), `"msg":"generation completed"`) {
		t.Errorf("log = %s", buf.String())
	}
	if strings.Contains(buf.String(), `"segment"`) {
		t.Errorf("segment attrs should be omitted outside the loop: %s", buf.String())
	}
}

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestNATSSink_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink := newNATSSink(pub, "", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink.Report(Event{GenerationID: "g", Epoch: 7, State: "failed", Message: "oops", Time: when})

	if pub.subject != DefaultSubject {
		t.Errorf("subject = %q, want %q", pub.subject, DefaultSubject)
	}

	var got Event
	if err := json.Unmarshal(pub.data, &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got.Epoch != 7 || got.State != "failed" || got.Message != "oops" || !got.Time.Equal(when) {
		t.Errorf("payload = %+v", got)
	}
}

func TestNATSSink_PublishErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	sink := newNATSSink(pub, "custom.subject", slog.New(slog.NewTextHandler(&logs, nil)))

	sink.Report(Event{State: "running"})

	if pub.subject != "custom.subject" {
		t.Errorf("subject = %q", pub.subject)
	}
	if !strings.Contains(logs.String(), "connection closed") {
		t.Errorf("publish failure not logged: %s", logs.String())
	}
}

func TestConnectNATS_RequiresURL(t *testing.T) {
	if _, err := ConnectNATS(NATSConfig{}, nil); err == nil {
		t.Error("ConnectNATS without url = nil error")
	}
}

func TestNATSSink_CloseWithoutConnection(t *testing.T) {
	var s *NATSSink
	s.Close()

	newNATSSink(&fakePublisher{}, "", slog.Default()).Close()
}
