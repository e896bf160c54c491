package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redmarwoest/cp-automation-script/internal/domain/job"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func queueServer(t *testing.T, status int, response string, calls *[]recorded) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if r.Method == http.MethodPost {
			data, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(data, &rec.body); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}
		*calls = append(*calls, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNextReturnsFirstItem(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusOK, `{"success":true,"items":[{"queueId":"q1","orderId":"o1"},{"queueId":"q2"}]}`, &calls)
	client := NewPosterClient(srv.URL+"/", 0, nil)

	item, err := client.Next(context.Background())
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if len(calls) != 1 || calls[0].method != http.MethodGet || calls[0].path != PosterPath {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if calls[0].query != "action=pending&limit=1" {
		t.Fatalf("query = %q", calls[0].query)
	}
	id, ok := job.PeekID(item)
	if !ok || id.String() != "q1" {
		t.Fatalf("expected q1, got %s (%v)", id, ok)
	}
}

func TestNextEmptyQueue(t *testing.T) {
	for _, body := range []string{
		`{"success":true,"items":[]}`,
		`{"success":true}`,
		`{"success":false,"error":"maintenance"}`,
		`{"success":true,"items":[null]}`,
	} {
		var calls []recorded
		srv := queueServer(t, http.StatusOK, body, &calls)
		item, err := NewMockupClient(srv.URL, 0, nil).Next(context.Background())
		if err != nil {
			t.Fatalf("%s: unexpected error %v", body, err)
		}
		if item != nil {
			t.Fatalf("%s: expected no item, got %s", body, item)
		}
		if calls[0].path != MockupPath || calls[0].query != "action=pending" {
			t.Fatalf("unexpected call: %+v", calls[0])
		}
	}
}

func TestNextAPIErrors(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusBadGateway, `upstream down`, &calls)
	_, err := NewPosterClient(srv.URL, 0, nil).Next(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Body != "upstream down" || apiErr.Transport() {
		t.Fatalf("unexpected error: %+v", apiErr)
	}

	srv = queueServer(t, http.StatusOK, `<html>oops</html>`, &calls)
	_, err = NewPosterClient(srv.URL, 0, nil).Next(context.Background())
	if !errors.As(err, &apiErr) || apiErr.Err == nil {
		t.Fatalf("expected decode APIError, got %v", err)
	}
}

func TestNextUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPosterClient(url, 0, nil).Next(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Transport() {
		t.Fatalf("expected transport APIError, got %v", err)
	}
}

func TestReportActions(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusOK, `{"success":true}`, &calls)
	client := NewPosterClient(srv.URL, 0, nil)
	ctx := context.Background()

	var numeric job.ID
	require.NoError(t, json.Unmarshal([]byte(`42`), &numeric))

	require.NoError(t, client.Start(ctx, numeric))
	require.NoError(t, client.Complete(ctx, job.NewID("q1"), job.PosterResult{
		PosterPath: "/exports/ORDER_1.pdf",
		FileName:   "ORDER_1.pdf",
		DriveFile:  &job.DriveFile{FileID: "f1", FileName: "ORDER_1.pdf"},
	}))
	require.NoError(t, client.Fail(ctx, job.NewID("q2"), "invalid color scheme: Tartan"))

	require.Len(t, calls, 3)
	for _, c := range calls {
		require.Equal(t, http.MethodPost, c.method)
		require.Equal(t, PosterPath, c.path)
	}
	require.Equal(t, map[string]any{"action": "start", "queueId": float64(42)}, calls[0].body)
	require.Equal(t, "complete", calls[1].body["action"])
	require.Equal(t, "q1", calls[1].body["queueId"])
	require.Equal(t, "/exports/ORDER_1.pdf", calls[1].body["posterPath"])
	require.Equal(t, map[string]any{"fileId": "f1", "fileName": "ORDER_1.pdf"}, calls[1].body["driveFile"])
	require.Equal(t, map[string]any{"action": "fail", "queueId": "q2", "error": "invalid color scheme: Tartan"}, calls[2].body)
}

func TestCompleteMockupCarriesLinks(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusOK, `{"success":true}`, &calls)
	err := NewMockupClient(srv.URL, 0, nil).Complete(context.Background(), job.NewID("m1"), job.MockupResult{
		DownloadLinks: job.DownloadLinks{Illustrator: []string{"a"}, Photoshop: []string{"b"}},
	})
	require.NoError(t, err)
	require.Equal(t, MockupPath, calls[0].path)
	require.Equal(t, map[string]any{"illustrator": []any{"a"}, "photoshop": []any{"b"}}, calls[0].body["downloadLinks"])
}

func TestReportRejected(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusNotFound, `{"success":false,"error":"unknown item"}`, &calls)
	err := NewPosterClient(srv.URL, 0, nil).Start(context.Background(), job.NewID("q1"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Contains(t, err.Error(), "responded with 404")
}

func TestReportRequiresID(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusOK, `{}`, &calls)
	if err := NewPosterClient(srv.URL, 0, nil).Fail(context.Background(), job.ID{}, "x"); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if len(calls) != 0 {
		t.Fatalf("no request expected, got %d", len(calls))
	}
}

func TestStats(t *testing.T) {
	var calls []recorded
	srv := queueServer(t, http.StatusOK, `{"success":true,"pending":3}`, &calls)
	stats, err := NewPosterClient(srv.URL, 0, nil).Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(3), stats["pending"])
	require.Equal(t, "action=stats", calls[0].query)
}
