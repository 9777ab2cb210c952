package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	fcmScope       = "https://www.googleapis.com/auth/firebase.messaging"
	fcmEndpointFmt = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// FCMTransport delivers messages through the Firebase Cloud Messaging HTTP v1 API.
type FCMTransport struct {
	client   *http.Client
	endpoint string
	limiter  *rate.Limiter
}

var _ Transport = (*FCMTransport)(nil)

// NewFCMTransport builds a transport authenticated with a service-account key.
// projectID may be empty, in which case the key's project is used.
// perSecond <= 0 disables rate limiting.
func NewFCMTransport(ctx context.Context, credentialsJSON []byte, projectID string, perSecond float64, burst int) (*FCMTransport, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("fcm credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("fcm: project id not set and not present in credentials")
	}
	client := oauth2.NewClient(ctx, creds.TokenSource)
	return NewFCMTransportWithClient(client, fmt.Sprintf(fcmEndpointFmt, projectID), newLimiter(perSecond, burst)), nil
}

// NewFCMTransportWithClient builds a transport that posts to endpoint using
// client as-is. A nil limiter disables rate limiting.
func NewFCMTransportWithClient(client *http.Client, endpoint string, limiter *rate.Limiter) *FCMTransport {
	return &FCMTransport{client: client, endpoint: endpoint, limiter: limiter}
}

func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmError struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Deliver posts one message. Non-2xx responses are returned as errors that
// carry the FCM status (e.g. UNREGISTERED for a stale token).
func (t *FCMTransport) Deliver(ctx context.Context, msg Message) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("fcm rate limit: %w", err)
		}
	}

	data, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        msg.Token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	var fe fcmError
	if json.Unmarshal(raw, &fe) == nil && fe.Error.Status != "" {
		return fmt.Errorf("fcm status %d %s: %s", res.StatusCode, fe.Error.Status, fe.Error.Message)
	}
	return fmt.Errorf("fcm status %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
}
