package sharedsecret_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/questionhub/internal/app/system/sharedsecret"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func guarded(secret string, logger *zap.Logger, reached *int) http.Handler {
	return sharedsecret.Middleware(secret, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached++
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing secret", "", http.StatusUnauthorized},
		{"wrong secret", "nope", http.StatusUnauthorized},
		{"prefix of secret", "s3c", http.StatusUnauthorized},
		{"matching secret", "s3cret", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached := 0
			h := guarded("s3cret", zap.NewNop(), &reached)

			req := httptest.NewRequest(http.MethodPost, "/sweep", nil)
			if tc.header != "" {
				req.Header.Set(sharedsecret.Header, tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.want, rec.Code)
			require.Equal(t, tc.want == http.StatusNoContent, reached == 1)
			if tc.want == http.StatusUnauthorized {
				require.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestMiddleware_EmptySecretAllowsAll(t *testing.T) {
	reached := 0
	h := guarded("", zap.NewNop(), &reached)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, reached)
}

func TestMiddleware_LogsRejection(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reached := 0
	h := guarded("s3cret", zap.New(core), &reached)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sweep", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	entries := logs.FilterMessage("request rejected: bad secret").All()
	require.Len(t, entries, 1)
	require.Equal(t, "/sweep", entries[0].ContextMap()["path"])
}
