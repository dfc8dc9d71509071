package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven/mocks"
)

type transmitterFixture struct {
	configStore *mocks.MockConfigStore
	auditStore  *mocks.MockAuditStore
	source      *mocks.MockDataSource
	builder     *mocks.MockChannelBuilder
	lock        *mocks.MockRunLock
	transmitter *Transmitter
}

func newTransmitterFixture() *transmitterFixture {
	configStore := mocks.NewMockConfigStore()
	auditStore := mocks.NewMockAuditStore()
	source := mocks.NewMockDataSource()
	lock := mocks.NewMockRunLock()

	builder := mocks.NewMockChannelBuilder(domain.ChannelCodeCanvas)
	factory := mocks.NewMockChannelFactory()
	factory.Register(builder)

	tokens := mocks.NewMockTokenProviderFactory(&domain.Credentials{
		ID:         "cred-1",
		AuthMethod: domain.AuthMethodAPIKey,
		APIKey:     "key",
	})

	exporter := NewExporter(NewPayloadBuilder(source, nil), auditStore, nil)
	transmitter := NewTransmitter(TransmitterConfig{
		ConfigStore: configStore,
		AuditStore:  auditStore,
		Exporter:    exporter,
		Channels:    factory,
		Tokens:      tokens,
		Lock:        lock,
	})

	return &transmitterFixture{
		configStore: configStore,
		auditStore:  auditStore,
		source:      source,
		builder:     builder,
		lock:        lock,
		transmitter: transmitter,
	}
}

func (f *transmitterFixture) saveConfig(maxChunkSize int) *domain.ChannelConfiguration {
	config := testConfig()
	config.MaxChunkSize = maxChunkSize
	_ = f.configStore.Save(context.Background(), config)
	return config
}

func (f *transmitterFixture) seedContent(courseIDs ...string) {
	for _, id := range courseIDs {
		f.source.Content = append(f.source.Content, &domain.ContentRecord{
			CourseID: id,
			Title:    "Course " + id,
		})
	}
}

func testRunContext() *domain.RunContext {
	return domain.NewRunContext("user-1", "customer-1", "api")
}

func TestTransmitter_Run_AllSucceed(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(10)
	f.seedContent("a", "b", "c")

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", []domain.UnitType{domain.UnitTypeContentMetadata})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != domain.RunStateDone {
		t.Errorf("expected state done, got %s", result.State)
	}
	if result.Attempted != 3 || result.Succeeded != 3 || result.Failed != 0 {
		t.Errorf("unexpected counts: attempted=%d succeeded=%d failed=%d", result.Attempted, result.Succeeded, result.Failed)
	}
	if f.auditStore.Count() != 3 {
		t.Errorf("expected 3 audit records, got %d", f.auditStore.Count())
	}
}

func TestTransmitter_Run_PartialFailure(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(1)
	f.seedContent("a", "b", "c")

	// Per-item chunks; only unit b is rejected by the channel.
	f.builder.Client.SendFn = func(unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
		outcome := domain.NewChunkOutcome()
		for _, key := range chunk.ItemKeys() {
			if key == "b" {
				outcome.Failed[key] = "channel rejected item"
			} else {
				outcome.Succeeded[key] = true
			}
		}
		return outcome, nil
	}

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", []domain.UnitType{domain.UnitTypeContentMetadata})
	if err != nil {
		t.Fatalf("a failed unit must not fail the run: %v", err)
	}
	if result.State != domain.RunStateDone {
		t.Errorf("expected state done, got %s", result.State)
	}
	if result.Attempted != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("unexpected counts: attempted=%d succeeded=%d failed=%d", result.Attempted, result.Succeeded, result.Failed)
	}
	if len(result.Failures) != 1 || result.Failures[0].ItemKey != "b" {
		t.Fatalf("expected failure detail for b, got %+v", result.Failures)
	}

	record, err := f.auditStore.Get(context.Background(), domain.AuditKey{
		ConfigurationID: "cfg-1", ItemKey: "b", UnitType: domain.UnitTypeContentMetadata,
	})
	if err != nil {
		t.Fatalf("expected audit record for b: %v", err)
	}
	if record.LastStatus != domain.AuditStatusFailed {
		t.Errorf("expected failed audit status, got %s", record.LastStatus)
	}

	// The rerun attempts only the failed unit; the two successes are
	// skipped because their hashes match.
	f.builder.Client.SendFn = nil
	rerun, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", []domain.UnitType{domain.UnitTypeContentMetadata})
	if err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}
	if rerun.Attempted != 1 || rerun.Succeeded != 1 {
		t.Errorf("rerun counts: attempted=%d succeeded=%d", rerun.Attempted, rerun.Succeeded)
	}
	if rerun.Skipped != 2 {
		t.Errorf("expected 2 skipped on rerun, got %d", rerun.Skipped)
	}
}

func TestTransmitter_Run_IdempotentWhenUnchanged(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(10)
	f.seedContent("a", "b")

	if _, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 0 {
		t.Errorf("expected nothing attempted on unchanged rerun, got %d", result.Attempted)
	}
	if result.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", result.Skipped)
	}
	if f.builder.Client.SentCount() != 1 {
		t.Errorf("expected exactly 1 chunk across both runs, got %d", f.builder.Client.SentCount())
	}
}

func TestTransmitter_Run_WholeChunkFailureIsolated(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(2)
	f.seedContent("a", "b", "c", "d")

	// The first chunk dies on a transport error; the second goes through.
	f.builder.Client.SendFn = func(unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
		if chunk.Index == 0 {
			return nil, errors.New("gateway timeout")
		}
		outcome := domain.NewChunkOutcome()
		outcome.SucceedAll(chunk)
		return outcome, nil
	}

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", []domain.UnitType{domain.UnitTypeContentMetadata})
	if err != nil {
		t.Fatalf("a failed chunk must not abort the run: %v", err)
	}
	if result.Attempted != 4 || result.Succeeded != 2 || result.Failed != 2 {
		t.Errorf("unexpected counts: attempted=%d succeeded=%d failed=%d", result.Attempted, result.Succeeded, result.Failed)
	}
}

func TestTransmitter_Run_LockContention(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(10)
	f.seedContent("a")
	f.lock.SetLockHeld("run:cfg-1", time.Minute)

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", nil)
	if !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if result.State != domain.RunStateFailed {
		t.Errorf("expected state failed, got %s", result.State)
	}
	if f.builder.Client.SentCount() != 0 {
		t.Errorf("nothing must be sent while another run holds the lock")
	}
}

func TestTransmitter_Run_ReleasesLock(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(10)
	f.seedContent("a")

	if _, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.lock.IsHeld("run:cfg-1") {
		t.Error("run lock must be released after the run")
	}
}

func TestTransmitter_Run_CancelledBetweenChunks(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(1)
	f.seedContent("a", "b", "c")

	ctx, cancel := context.WithCancel(context.Background())
	f.builder.Client.SendFn = func(unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
		// Cancel after the first chunk; the run must stop before the next.
		cancel()
		outcome := domain.NewChunkOutcome()
		outcome.SucceedAll(chunk)
		return outcome, nil
	}

	result, err := f.transmitter.Run(ctx, testRunContext(), "cfg-1", []domain.UnitType{domain.UnitTypeContentMetadata})
	if !errors.Is(err, domain.ErrRunCancelled) {
		t.Fatalf("expected ErrRunCancelled, got %v", err)
	}
	if result.State != domain.RunStateCancelled {
		t.Errorf("expected state cancelled, got %s", result.State)
	}
	if result.Attempted != 1 || result.Succeeded != 1 {
		t.Errorf("expected exactly the first chunk recorded: attempted=%d succeeded=%d", result.Attempted, result.Succeeded)
	}
	// Audit state reflects exactly the acknowledged chunk.
	if f.auditStore.Count() != 1 {
		t.Errorf("expected 1 audit record, got %d", f.auditStore.Count())
	}
}

func TestTransmitter_Run_UpstreamUnavailable(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(10)
	f.source.FetchContentFn = func(customerID string) ([]*domain.ContentRecord, error) {
		return nil, errors.New("connection refused")
	}

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", []domain.UnitType{domain.UnitTypeContentMetadata})
	if !errors.Is(err, domain.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if result.Attempted != 0 {
		t.Errorf("nothing must be attempted when the upstream is down, got %d", result.Attempted)
	}
}

func TestTransmitter_Run_InactiveConfiguration(t *testing.T) {
	f := newTransmitterFixture()
	config := f.saveConfig(10)
	config.Active = false

	_, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", nil)
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestTransmitter_Run_UnknownConfiguration(t *testing.T) {
	f := newTransmitterFixture()

	_, err := f.transmitter.Run(context.Background(), testRunContext(), "missing", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTransmitter_Run_SkipsUnsupportedUnitTypes(t *testing.T) {
	f := newTransmitterFixture()
	f.saveConfig(10)
	f.seedContent("a")
	f.source.Progress = []*domain.ProgressRecord{
		{LearnerID: "learner-1", LearnerEmail: "l@example.com", CourseID: "a", IsComplete: true},
	}

	// The channel accepts learner data only; content metadata is skipped
	// without failing the run.
	f.builder.BuildSerializerFn = func(unitType domain.UnitType) (driven.PayloadSerializer, error) {
		if unitType == domain.UnitTypeContentMetadata {
			return nil, domain.ErrUnsupportedOperation
		}
		return &mocks.MockSerializer{}, nil
	}

	result, err := f.transmitter.Run(context.Background(), testRunContext(), "cfg-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Attempted != 1 {
		t.Errorf("expected only the learner unit attempted, got %d", result.Attempted)
	}
}

func TestTransmitter_RunAll(t *testing.T) {
	f := newTransmitterFixture()
	f.seedContent("a")

	for _, id := range []string{"cfg-1", "cfg-2"} {
		config := testConfig()
		config.ID = id
		_ = f.configStore.Save(context.Background(), config)
	}
	inactive := testConfig()
	inactive.ID = "cfg-3"
	inactive.Active = false
	_ = f.configStore.Save(context.Background(), inactive)

	results, err := f.transmitter.RunAll(context.Background(), testRunContext(), "customer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for active configurations, got %d", len(results))
	}
	for _, result := range results {
		if result.State != domain.RunStateDone {
			t.Errorf("configuration %s: expected done, got %s", result.ConfigurationID, result.State)
		}
	}
}
