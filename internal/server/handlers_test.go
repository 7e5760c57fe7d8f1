package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getoutvideo/getoutvideo-api/internal/ai"
	"github.com/getoutvideo/getoutvideo-api/internal/extract"
	"github.com/getoutvideo/getoutvideo-api/internal/job"
)

// mockExpander implements job.PlaylistExpander for testing.
type mockExpander struct {
	mock.Mock
}

func (m *mockExpander) FetchPlaylist(ctx context.Context, url string) ([]string, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockExtractor implements job.TranscriptExtractor for testing.
type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, url string) (extract.VideoTranscript, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(extract.VideoTranscript), args.Error(1)
}

// mockRefiner implements job.Refiner for testing.
type mockRefiner struct {
	mock.Mock
}

func (m *mockRefiner) ProcessTranscripts(ctx context.Context, transcripts []extract.VideoTranscript, styles []string, obs ai.Observer) ([]ai.Result, error) {
	args := m.Called(ctx, transcripts, styles, obs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ai.Result), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testDeps struct {
	expander *mockExpander
	ext      *mockExtractor
	refiner  *mockRefiner
	service  *job.ProcessURLService
	router   http.Handler
}

func setupTest(t *testing.T) *testDeps {
	t.Helper()

	deps := &testDeps{
		expander: &mockExpander{},
		ext:      &mockExtractor{},
		refiner:  &mockRefiner{},
	}

	provider := func(string, string, int) job.Refiner { return deps.refiner }
	deps.service = job.NewProcessURLService(
		job.NewMemoryRepository(), deps.expander, deps.ext, provider, nil, testLogger())

	handlers := NewHandlers(deps.service, testLogger())
	deps.router = NewRouter(handlers, testLogger(), DefaultConfig())
	return deps
}

func waitForStatus(t *testing.T, svc *job.ProcessURLService, id string, want job.Status) *job.Job {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		j, err := svc.GetJob(context.Background(), id)
		require.NoError(t, err)
		if j.Status == want {
			return j
		}
		select {
		case <-deadline:
			t.Fatalf("job never reached status %s (last: %s, error: %s)", want, j.Status, j.Error)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHealth(t *testing.T) {
	deps := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	deps.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCreateJob(t *testing.T) {
	t.Run("accepts valid request", func(t *testing.T) {
		deps := setupTest(t)

		videoURL := "https://www.youtube.com/watch?v=abc123"
		vt := extract.NewVideoTranscript("My Video", videoURL, "text", extract.SourceCaptions, 60)

		deps.expander.On("FetchPlaylist", mock.Anything, videoURL).Return([]string{videoURL}, nil)
		deps.ext.On("Extract", mock.Anything, videoURL).Return(vt, nil)
		deps.refiner.On("ProcessTranscripts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]ai.Result{{
				Transcript:     vt,
				StyleName:      "Summary",
				OutputFilePath: "/out/My Video [Summary].md",
				InputTokens:    100,
				OutputTokens:   50,
				Cost:           0.0001,
			}}, nil)

		body, _ := json.Marshal(CreateJobRequest{URL: videoURL, Styles: []string{"Summary"}})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		var resp CreateJobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, string(job.StatusPending), resp.Status)

		final := waitForStatus(t, deps.service, resp.ID, job.StatusCompleted)
		assert.Len(t, final.Results, 1)
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		deps := setupTest(t)

		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_JSON", resp.Code)
	})

	t.Run("rejects missing URL", func(t *testing.T) {
		deps := setupTest(t)

		body, _ := json.Marshal(CreateJobRequest{})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	})

	t.Run("rejects non-URL value", func(t *testing.T) {
		deps := setupTest(t)

		body, _ := json.Marshal(CreateJobRequest{URL: "not a url"})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown style before processing", func(t *testing.T) {
		deps := setupTest(t)

		body, _ := json.Marshal(CreateJobRequest{
			URL:    "https://www.youtube.com/watch?v=abc123",
			Styles: []string{"Interpretive Dance"},
		})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "UNKNOWN_STYLE", resp.Code)
		deps.expander.AssertNotCalled(t, "FetchPlaylist")
	})

	t.Run("rejects invalid index range", func(t *testing.T) {
		deps := setupTest(t)

		body, _ := json.Marshal(CreateJobRequest{
			URL:        "https://www.youtube.com/watch?v=abc123",
			StartIndex: 5,
			EndIndex:   2,
		})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetJob(t *testing.T) {
	t.Run("returns job with results", func(t *testing.T) {
		deps := setupTest(t)

		videoURL := "https://www.youtube.com/watch?v=abc123"
		vt := extract.NewVideoTranscript("My Video", videoURL, "text", extract.SourceCaptions, 60)

		deps.expander.On("FetchPlaylist", mock.Anything, videoURL).Return([]string{videoURL}, nil)
		deps.ext.On("Extract", mock.Anything, videoURL).Return(vt, nil)
		deps.refiner.On("ProcessTranscripts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return([]ai.Result{{
				Transcript:     vt,
				StyleName:      "Summary",
				OutputFilePath: "/out/My Video [Summary].md",
				Cost:           0.0001,
			}}, nil)

		created, err := deps.service.Submit(context.Background(), job.ProcessURLInput{URL: videoURL})
		require.NoError(t, err)
		waitForStatus(t, deps.service, created.ID, job.StatusCompleted)

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+created.ID, nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp JobResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, string(job.StatusCompleted), resp.Status)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "Summary", resp.Results[0].Style)
		assert.Equal(t, "/out/My Video [Summary].md", resp.Results[0].OutputFilePath)
	})

	t.Run("returns 404 for unknown job", func(t *testing.T) {
		deps := setupTest(t)

		req := httptest.NewRequest(http.MethodGet, "/jobs/nonexistent", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "JOB_NOT_FOUND", resp.Code)
	})
}

func TestCancelJob(t *testing.T) {
	t.Run("cancels a running job", func(t *testing.T) {
		deps := setupTest(t)

		videoURL := "https://www.youtube.com/watch?v=abc123"
		vt := extract.NewVideoTranscript("My Video", videoURL, "text", extract.SourceCaptions, 60)

		deps.expander.On("FetchPlaylist", mock.Anything, videoURL).Return([]string{videoURL}, nil)
		deps.ext.On("Extract", mock.Anything, videoURL).Return(vt, nil)
		deps.refiner.On("ProcessTranscripts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				ctx := args.Get(0).(context.Context)
				<-ctx.Done()
			}).
			Return(nil, context.Canceled)

		created, err := deps.service.Submit(context.Background(), job.ProcessURLInput{URL: videoURL})
		require.NoError(t, err)
		waitForStatus(t, deps.service, created.ID, job.StatusInProgress)

		req := httptest.NewRequest(http.MethodPost, "/jobs/"+created.ID+"/cancel", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		waitForStatus(t, deps.service, created.ID, job.StatusCancelled)
	})

	t.Run("returns 404 for unknown job", func(t *testing.T) {
		deps := setupTest(t)

		req := httptest.NewRequest(http.MethodPost, "/jobs/nonexistent/cancel", nil)
		rec := httptest.NewRecorder()
		deps.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
