package daemon

import (
	"context"
	"net/http"
	"testing"
	"time"

	"scribe/internal/card"
	"scribe/internal/config"
	"scribe/internal/docblocks"
	"scribe/internal/journal"
	"scribe/internal/server"
	"scribe/internal/services/lark"
	"scribe/internal/workflow"
)

// stubPlatform satisfies workflow.Platform without doing anything; daemon
// tests only exercise the lifecycle, never a workflow.
type stubPlatform struct{}

func (stubPlatform) ListMeetingsByNumber(context.Context, string, string, string) ([]lark.MeetingBrief, error) {
	return nil, nil
}
func (stubPlatform) GetRecording(context.Context, string) (lark.Recording, error) {
	return lark.Recording{}, nil
}
func (stubPlatform) GetMeetingDetail(context.Context, string) (lark.MeetingDetail, error) {
	return lark.MeetingDetail{}, nil
}
func (stubPlatform) GetTranscript(context.Context, string, string) (string, error) { return "", nil }
func (stubPlatform) GetMinuteDetail(context.Context, string, string) (lark.MinuteDetail, error) {
	return lark.MinuteDetail{}, nil
}
func (stubPlatform) SubmitSummaryTask(context.Context, lark.SummaryTaskRequest, string) (string, error) {
	return "", nil
}
func (stubPlatform) GetSummaryTask(context.Context, string, string) (lark.SummaryResult, bool, error) {
	return lark.SummaryResult{}, false, nil
}
func (stubPlatform) CreateDocument(context.Context, string, string) (string, error) { return "", nil }
func (stubPlatform) InsertBlocks(context.Context, string, string, docblocks.Insert, string) ([]lark.InsertedBlock, error) {
	return nil, nil
}
func (stubPlatform) SendCard(context.Context, string, card.Content) (string, error) { return "", nil }
func (stubPlatform) UpdateCard(context.Context, string, card.Content) error         { return nil }
func (stubPlatform) BatchSendCard(context.Context, []string, card.Content) error    { return nil }

type stubExchanger struct{}

func (stubExchanger) ExchangeUserToken(context.Context, string) (lark.UserToken, error) {
	return lark.UserToken{AccessToken: "t", OpenID: "o"}, nil
}

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := config.Default()
	cfg.Journal.Dir = t.TempDir()
	cfg.Logging.Dir = ""
	cfg.Server.Bind = "127.0.0.1:0"

	store, err := journal.Open(&cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	manager := workflow.NewManager(&cfg, stubPlatform{}, store, nil)
	intake := server.New(&cfg, manager, stubExchanger{}, nil)
	d, err := New(&cfg, store, manager, intake, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestStartStopLifecycle(t *testing.T) {
	d := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}

	// The intake server should answer on its ephemeral port.
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + d.intake.Addr() + "/oauth/callback")
	if err != nil {
		t.Fatalf("intake request: %v", err)
	}
	resp.Body.Close()

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	first := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	if err := first.Start(ctx); err == nil {
		t.Fatal("second Start on a running daemon must fail")
	}
}
