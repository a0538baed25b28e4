package http

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slidiff/internal/adapters/secondary/report"
	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// MockComparisonService is a mock for ComparisonService
type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) CompareFiles(ctx context.Context, beforePath, afterPath string) (*entities.PresentationDiff, error) {
	args := m.Called(ctx, beforePath, afterPath)
	if d := args.Get(0); d != nil {
		return d.(*entities.PresentationDiff), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComparisonService) CompareSources(ctx context.Context, before, after []byte) (*entities.PresentationDiff, error) {
	args := m.Called(ctx, before, after)
	if d := args.Get(0); d != nil {
		return d.(*entities.PresentationDiff), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockComparisonService) LoadPresentation(ctx context.Context, path string) (*entities.Presentation, error) {
	args := m.Called(ctx, path)
	if p := args.Get(0); p != nil {
		return p.(*entities.Presentation), args.Error(1)
	}
	return nil, args.Error(1)
}

func intPtr(i int) *int {
	return &i
}

// testDiff returns a diff with one modified and one unchanged slide
func testDiff() *entities.PresentationDiff {
	intro := &entities.Slide{ID: "slide-1", Index: 0, Title: "Intro", Content: "# Intro"}
	before := &entities.Slide{ID: "slide-2", Index: 1, Title: "Plan", Content: "## Plan\n- draft"}
	after := &entities.Slide{ID: "slide-2", Index: 1, Title: "Plan", Content: "## Plan\n- final"}

	return &entities.PresentationDiff{
		Before: &entities.Presentation{Slides: []entities.Slide{*intro, *before}},
		After:  &entities.Presentation{Slides: []entities.Slide{*intro, *after}},
		SlideDiffs: []entities.SlideDiff{
			{Status: entities.StatusUnchanged, BeforeSlide: intro, AfterSlide: intro, BeforeIndex: intPtr(0), AfterIndex: intPtr(0), MatchedBy: entities.MatchByTitle},
			{
				Status: entities.StatusModified, BeforeSlide: before, AfterSlide: after,
				BeforeIndex: intPtr(1), AfterIndex: intPtr(1), MatchedBy: entities.MatchByTitle,
				ContentChanges: []entities.TextDiffEntry{
					{Type: entities.LineUnchanged, Value: "## Plan", LineNumber: 1},
					{Type: entities.LineRemove, Value: "- draft", LineNumber: 2},
					{Type: entities.LineAdd, Value: "- final", LineNumber: 3},
				},
			},
		},
		Summary: entities.DiffSummary{TotalSlidesBefore: 2, TotalSlidesAfter: 2, Modified: 1, Unchanged: 1},
	}
}

func getTestServerConfig() *entities.ServerConfig {
	return &entities.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5,
		WriteTimeout:    5,
		ShutdownTimeout: 2,
		Environment:     "development",
	}
}

func newTestServer(comparer ports.ComparisonService) *Server {
	if comparer == nil {
		comparer = new(MockComparisonService)
	}
	return NewServer(comparer, report.NewService(), getTestServerConfig(), nil)
}

func TestNewServer(t *testing.T) {
	t.Run("nil config panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewServer(new(MockComparisonService), report.NewService(), nil, nil)
		})
	})

	t.Run("defaults", func(t *testing.T) {
		server := newTestServer(nil)
		assert.False(t, server.IsRunning())
		assert.Nil(t, server.GetDiff())
		assert.Empty(t, server.Addr())
		assert.Equal(t, "dev", server.version)
	})
}

func TestServerLifecycle(t *testing.T) {
	server := newTestServer(nil)
	ctx := context.Background()

	t.Run("start server", func(t *testing.T) {
		err := server.Start(ctx, 0, "127.0.0.1")
		require.NoError(t, err)
		assert.True(t, server.IsRunning())
		assert.NotEmpty(t, server.Addr())
	})

	t.Run("server already running", func(t *testing.T) {
		err := server.Start(ctx, 0, "127.0.0.1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already running")
	})

	t.Run("serves requests", func(t *testing.T) {
		resp, err := http.Get("http://" + server.Addr() + "/api/config")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("stop server", func(t *testing.T) {
		err := server.Stop(ctx)
		require.NoError(t, err)
		assert.False(t, server.IsRunning())
		assert.Empty(t, server.Addr())
	})

	t.Run("server not running", func(t *testing.T) {
		err := server.Stop(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not running")
	})
}

func TestServerStartBindError(t *testing.T) {
	first := newTestServer(nil)
	ctx := context.Background()
	require.NoError(t, first.Start(ctx, 0, "127.0.0.1"))
	defer func() { _ = first.Stop(ctx) }()

	_, portStr, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	second := newTestServer(nil)
	err = second.Start(ctx, port, "127.0.0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
	assert.False(t, second.IsRunning())
}

func TestNotifyClients(t *testing.T) {
	server := newTestServer(nil)
	ctx := context.Background()

	t.Run("notify when server not running", func(t *testing.T) {
		event := ports.UpdateEvent{
			Type:      ports.EventTypeDiffUpdated,
			Timestamp: time.Now(),
		}
		err := server.NotifyClients(event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not running")
	})

	t.Run("notify when server running", func(t *testing.T) {
		require.NoError(t, server.Start(ctx, 0, "127.0.0.1"))
		defer func() { _ = server.Stop(ctx) }()

		event := ports.UpdateEvent{
			Type:      ports.EventTypeDiffUpdated,
			Timestamp: time.Now(),
			Data:      newSummaryResponse(testDiff()),
		}
		assert.NoError(t, server.NotifyClients(event))
	})
}

func TestPublishDiff(t *testing.T) {
	t.Run("stores diff while stopped", func(t *testing.T) {
		server := newTestServer(nil)
		diff := testDiff()

		require.NoError(t, server.PublishDiff(context.Background(), diff))
		assert.Same(t, diff, server.GetDiff())
	})

	t.Run("broadcasts while running", func(t *testing.T) {
		server := newTestServer(nil)
		ctx := context.Background()
		require.NoError(t, server.Start(ctx, 0, "127.0.0.1"))
		defer func() { _ = server.Stop(ctx) }()

		require.NoError(t, server.PublishDiff(ctx, testDiff()))
		assert.Equal(t, 1, server.GetDiff().Summary.Modified)
	})
}

func TestNewSummaryResponse(t *testing.T) {
	summary := newSummaryResponse(testDiff())
	assert.True(t, summary.HasChanges)
	assert.Equal(t, "1 modified", summary.Text)
	assert.Equal(t, 1, summary.Summary.Unchanged)

	empty := newSummaryResponse(nil)
	assert.False(t, empty.HasChanges)
	assert.Equal(t, "No changes", empty.Text)
}
