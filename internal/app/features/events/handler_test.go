package events_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/questionhub/internal/app/features/events"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureHandler struct {
	got []models.QuestionEvent
	err error
}

func (c *captureHandler) Handle(_ context.Context, ev models.QuestionEvent) error {
	c.got = append(c.got, ev)
	return c.err
}

func post(t *testing.T, h *events.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	events.Routes(h).ServeHTTP(rec, req)
	return rec
}

func TestServeEvent_Created(t *testing.T) {
	ch := &captureHandler{}
	h := events.NewHandler(ch, zap.NewNop())

	rec := post(t, h, `{"type":"created","after":{"id":"q1","questioner":"u1","content":"hi"}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Contains(t, rec.Body.String(), `"delivery_id"`)

	require.Len(t, ch.got, 1)
	require.Equal(t, models.EventCreated, ch.got[0].Kind)
	require.Equal(t, "q1", ch.got[0].After.ID)
	require.Equal(t, "u1", ch.got[0].After.Questioner)
	require.Nil(t, ch.got[0].Before)
}

func TestServeEvent_UpdatedCarriesBefore(t *testing.T) {
	ch := &captureHandler{}
	h := events.NewHandler(ch, zap.NewNop())

	body := `{"type":"updated",
		"before":{"id":"q1","assignee":"r1"},
		"after":{"id":"q1","declinedBy":["r1"]}}`
	rec := post(t, h, body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Len(t, ch.got, 1)
	require.NotNil(t, ch.got[0].Before)
	require.Equal(t, "r1", ch.got[0].Before.Assignee)
	require.Equal(t, []string{"r1"}, ch.got[0].After.DeclinedBy)
}

func TestServeEvent_Rejections(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{`, http.StatusBadRequest},
		{"unknown type", `{"type":"deleted","after":{"id":"q1"}}`, http.StatusBadRequest},
		{"missing id", `{"type":"created","after":{}}`, http.StatusBadRequest},
		{"mismatched ids", `{"type":"updated","before":{"id":"a"},"after":{"id":"b"}}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ch := &captureHandler{}
			h := events.NewHandler(ch, zap.NewNop())
			rec := post(t, h, tc.body)
			require.Equal(t, tc.want, rec.Code)
			require.Empty(t, ch.got)
		})
	}
}

func TestServeEvent_StoreUnavailableIs500(t *testing.T) {
	ch := &captureHandler{err: fmt.Errorf("update assignment: %w", models.ErrStoreUnavailable)}
	h := events.NewHandler(ch, zap.NewNop())

	rec := post(t, h, `{"type":"created","after":{"id":"q1"}}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
