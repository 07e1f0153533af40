package event

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

type recordingProcessor struct {
	activities []types.Activity
	people     []types.Person
}

func (p *recordingProcessor) ProcessActivity(a types.Activity) {
	p.activities = append(p.activities, a)
}

func (p *recordingProcessor) ProcessActivities(activities []types.Activity) {
	p.activities = append(p.activities, activities...)
}

func (p *recordingProcessor) ProcessRosterEntry(person types.Person) {
	p.people = append(p.people, person)
}

func TestHandleActivitiesSingle(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReceiver(proc, zerolog.Nop())

	body := `{"id":"t1","agentRef":"a1","traffic":"Sales","soAmount":1500}`
	req := httptest.NewRequest(http.MethodPost, "/internal/activities", strings.NewReader(body))
	w := httptest.NewRecorder()

	r.HandleActivities(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
	if len(proc.activities) != 1 {
		t.Fatalf("expected 1 activity processed, got %d", len(proc.activities))
	}
	if proc.activities[0].ID != "t1" {
		t.Errorf("expected activity t1, got %s", proc.activities[0].ID)
	}
	if string(proc.activities[0].SOAmount) != "1500" {
		t.Errorf("expected numeric soAmount accepted as string, got %q", proc.activities[0].SOAmount)
	}
}

func TestHandleActivitiesBatch(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReceiver(proc, zerolog.Nop())

	body := `[{"id":"t1"},{"id":"t2"},{"id":"t3"}]`
	req := httptest.NewRequest(http.MethodPost, "/internal/activities", strings.NewReader(body))
	w := httptest.NewRecorder()

	r.HandleActivities(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
	if len(proc.activities) != 3 {
		t.Errorf("expected 3 activities processed, got %d", len(proc.activities))
	}
}

func TestHandleActivitiesInvalidJSON(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReceiver(proc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/internal/activities", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	r.HandleActivities(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if len(proc.activities) != 0 {
		t.Errorf("expected no activities processed, got %d", len(proc.activities))
	}
}

func TestHandleActivitiesMethodNotAllowed(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReceiver(proc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/internal/activities", nil)
	w := httptest.NewRecorder()

	r.HandleActivities(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestHandleRoster(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReceiver(proc, zerolog.Nop())

	body := `[{"referenceId":"a1","firstName":"Ana","lastName":"Lim","role":"agent"}]`
	req := httptest.NewRequest(http.MethodPost, "/internal/roster", strings.NewReader(body))
	w := httptest.NewRecorder()

	r.HandleRoster(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", w.Code)
	}
	if len(proc.people) != 1 {
		t.Fatalf("expected 1 roster entry, got %d", len(proc.people))
	}
	if proc.people[0].ReferenceID != "a1" {
		t.Errorf("expected reference a1, got %s", proc.people[0].ReferenceID)
	}
}

func TestGetStats(t *testing.T) {
	proc := &recordingProcessor{}
	r := NewReceiver(proc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/internal/activities", strings.NewReader(`{"id":"t1"}`))
	r.HandleActivities(httptest.NewRecorder(), req)

	statsReq := httptest.NewRequest(http.MethodGet, "/internal/activities/stats", nil)
	w := httptest.NewRecorder()
	r.GetStats(w, statsReq)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"activities_received":1`) {
		t.Errorf("expected activities_received 1 in stats, got %s", w.Body.String())
	}
}
