package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/audit"
	"registrar/internal/audit/store/memory"
	"registrar/internal/platform/metrics"
	"registrar/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherAndWorker(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := audit.NewPublisher(8)
	worker := audit.NewWorker(store, pub.Events(), discardLogger())

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	pub.Emit(ctx, audit.Event{Action: audit.ActionEnrollmentRegistered, StudentID: "s-1", CourseID: "CS101"})
	pub.Emit(ctx, audit.Event{Action: audit.ActionEnrollmentDropped, StudentID: "s-1", CourseID: "CS101"})
	pub.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain after close")
	}

	events, err := store.ListByKey(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionEnrollmentRegistered, events[0].Action)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())

	pub.Emit(ctx, audit.Event{Action: audit.ActionCourseCreated})
}

func TestPublisherDropsWhenFull(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	pub := audit.NewPublisher(1, audit.WithPublisherMetrics(m), audit.WithPublisherLogger(discardLogger()))

	pub.Emit(context.Background(), audit.Event{Action: audit.ActionCourseCreated, CourseID: "CS101"})
	pub.Emit(context.Background(), audit.Event{Action: audit.ActionCourseUpdated, CourseID: "CS101"})

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.AuditEventsDropped))
	assert.Len(t, pub.Events(), 1)
}

type failingStore struct{ calls int }

func (s *failingStore) Append(context.Context, audit.Event) error {
	s.calls++
	return errors.New("sink down")
}

func TestWorkerSurvivesStoreErrors(t *testing.T) {
	store := &failingStore{}
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: audit.ActionLoggedOut}
	inbox <- audit.Event{Action: audit.ActionLoggedOut}
	close(inbox)

	err := audit.NewWorker(store, inbox, discardLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := audit.NewWorker(memory.NewInMemoryStore(), make(chan audit.Event), discardLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
