package lark

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scribe/internal/card"
	"scribe/internal/docblocks"
	"scribe/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("app-id", "app-secret", server.URL)
}

func tokenHandler(t *testing.T, calls *int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode token request: %v", err)
		}
		if body["app_id"] != "app-id" || body["app_secret"] != "app-secret" {
			t.Fatalf("unexpected token credentials: %v", body)
		}
		io.WriteString(w, `{"code":0,"msg":"ok","tenant_access_token":"tenant-token","expire":7200}`)
	}
}

func TestTenantTokenCached(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/vc/v1/meetings/m-1/recording", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tenant-token" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		io.WriteString(w, `{"code":0,"data":{"recording":{"url":"https://example.com/minutes/tok"}}}`)
	})
	client := newTestClient(t, mux)

	for i := 0; i < 3; i++ {
		recording, err := client.GetRecording(context.Background(), "m-1")
		if err != nil {
			t.Fatalf("GetRecording: %v", err)
		}
		if recording.URL != "https://example.com/minutes/tok" {
			t.Fatalf("unexpected recording url %q", recording.URL)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("expected a single token fetch, got %d", tokenCalls)
	}
}

func TestAPIErrorCodeSurfacesAsRemoteCall(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/vc/v1/meetings/m-1/recording", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":99991663,"msg":"permission denied"}`)
	})
	client := newTestClient(t, mux)

	_, err := client.GetRecording(context.Background(), "m-1")
	if !errors.Is(err, services.ErrRemoteCall) {
		t.Fatalf("expected ErrRemoteCall, got %v", err)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("error should carry the api message, got %v", err)
	}
}

func TestHTTPFailureSurfacesAsRemoteCall(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})
	client := newTestClient(t, mux)

	_, err := client.GetRecording(context.Background(), "m-1")
	if !errors.Is(err, services.ErrRemoteCall) {
		t.Fatalf("expected ErrRemoteCall, got %v", err)
	}
}

func TestExchangeUserToken(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/authen/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["grant_type"] != "authorization_code" || body["code"] != "auth-code" {
			t.Fatalf("unexpected exchange payload: %v", body)
		}
		io.WriteString(w, `{"code":0,"data":{"access_token":"user-token","open_id":"ou_owner"}}`)
	})
	client := newTestClient(t, mux)

	token, err := client.ExchangeUserToken(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("ExchangeUserToken: %v", err)
	}
	if token.AccessToken != "user-token" || token.OpenID != "ou_owner" {
		t.Fatalf("unexpected token %+v", token)
	}
}

func TestListMeetingsByNumber(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/vc/v1/meetings/list_by_no", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("meeting_no") != "123456789" || query.Get("start_time") != "100" || query.Get("end_time") != "200" {
			t.Fatalf("unexpected query %v", query)
		}
		io.WriteString(w, `{"code":0,"data":{"meeting_briefs":[{"id":"m-1"},{"id":"m-2"}]}}`)
	})
	client := newTestClient(t, mux)

	briefs, err := client.ListMeetingsByNumber(context.Background(), "123456789", "100", "200")
	if err != nil {
		t.Fatalf("ListMeetingsByNumber: %v", err)
	}
	if len(briefs) != 2 || briefs[0].ID != "m-1" || briefs[1].ID != "m-2" {
		t.Fatalf("unexpected briefs %+v", briefs)
	}
}

func TestGetMeetingDetailParticipants(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/vc/v1/meetings/m-1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("with_participants") != "true" {
			t.Fatalf("expected with_participants=true, got %v", r.URL.Query())
		}
		io.WriteString(w, `{"code":0,"data":{"meeting":{"topic":"Weekly Sync","participants":[{"id":"ou_a"},{"id":"ou_b"}]}}}`)
	})
	client := newTestClient(t, mux)

	detail, err := client.GetMeetingDetail(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("GetMeetingDetail: %v", err)
	}
	if detail.Topic != "Weekly Sync" {
		t.Fatalf("unexpected topic %q", detail.Topic)
	}
	ids := detail.ParticipantIDs()
	if len(ids) != 2 || ids[0] != "ou_a" || ids[1] != "ou_b" {
		t.Fatalf("unexpected participant ids %v", ids)
	}
}

func TestSendCard(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/im/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("receive_id_type") != "open_id" {
			t.Fatalf("expected open_id receive type, got %v", r.URL.Query())
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["receive_id"] != "ou_owner" || body["msg_type"] != "interactive" {
			t.Fatalf("unexpected send payload: %v", body)
		}
		var content card.Content
		if err := json.Unmarshal([]byte(body["content"]), &content); err != nil {
			t.Fatalf("card content must be an encoded json string: %v", err)
		}
		if content.Header.Title.Content != "Weekly Sync"+card.TitleSuffix {
			t.Fatalf("unexpected card title %q", content.Header.Title.Content)
		}
		io.WriteString(w, `{"code":0,"data":{"message_id":"om_1"}}`)
	})
	client := newTestClient(t, mux)

	content := card.Card{Topic: "Weekly Sync", TimeRange: "range", RecordURL: "url"}.Render()
	messageID, err := client.SendCard(context.Background(), "ou_owner", content)
	if err != nil {
		t.Fatalf("SendCard: %v", err)
	}
	if messageID != "om_1" {
		t.Fatalf("unexpected message id %q", messageID)
	}
}

func TestUpdateCard(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/im/v1/messages/om_1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("expected PATCH, got %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["content"] == "" {
			t.Fatal("update payload missing content")
		}
		io.WriteString(w, `{"code":0}`)
	})
	client := newTestClient(t, mux)

	content := card.Card{Topic: "Weekly Sync", State: card.StateGenerating, RecordURL: "url"}.Render()
	if err := client.UpdateCard(context.Background(), "om_1", content); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
}

func TestBatchSendCard(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", tokenHandler(t, &tokenCalls))
	mux.HandleFunc("/open-apis/message/v4/batch_send/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OpenIDs []string     `json:"open_ids"`
			MsgType string       `json:"msg_type"`
			Card    card.Content `json:"card"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.OpenIDs) != 2 || body.MsgType != "interactive" {
			t.Fatalf("unexpected batch payload: %+v", body)
		}
		io.WriteString(w, `{"code":0}`)
	})
	client := newTestClient(t, mux)

	content := card.Card{Topic: "Weekly Sync"}.Render()
	if err := client.BatchSendCard(context.Background(), []string{"ou_a", "ou_b"}, content); err != nil {
		t.Fatalf("BatchSendCard: %v", err)
	}
}

func TestMinuteToken(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "with query", url: "https://example.com/minutes/obcn1234?from=meeting", want: "obcn1234"},
		{name: "bare", url: "https://example.com/minutes/obcn1234", want: "obcn1234"},
		{name: "no minutes path", url: "https://example.com/records/obcn1234", wantErr: true},
		{name: "empty token", url: "https://example.com/minutes/", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MinuteToken(tc.url)
			if tc.wantErr {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MinuteToken(%q): %v", tc.url, err)
			}
			if got != tc.want {
				t.Fatalf("MinuteToken(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestGetTranscriptUsesUserToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/minutes/v1/minutes/obcn1234/transcript", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		io.WriteString(w, "speaker: hello\nspeaker: world\n")
	})
	client := newTestClient(t, mux)

	transcript, err := client.GetTranscript(context.Background(), "obcn1234", "user-token")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if !strings.Contains(transcript, "hello") {
		t.Fatalf("unexpected transcript %q", transcript)
	}
}

func TestGetSummaryTask(t *testing.T) {
	responses := []string{
		`{"code":1061045,"msg":"task not finished"}`,
		`{"code":0,"data":{"paragraph":{"data":"line one\nline two"}}}`,
	}
	call := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/audio_video_ai/v1/meeting_assistance", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, responses[call])
		call++
	})
	client := newTestClient(t, mux)

	_, ready, err := client.GetSummaryTask(context.Background(), "task-1", "user-token")
	if err != nil {
		t.Fatalf("GetSummaryTask: %v", err)
	}
	if ready {
		t.Fatal("task should not be ready on the pending response")
	}

	result, ready, err := client.GetSummaryTask(context.Background(), "task-1", "user-token")
	if err != nil {
		t.Fatalf("GetSummaryTask: %v", err)
	}
	if !ready {
		t.Fatal("task should be ready on the completed response")
	}
	if result.ParagraphData != "line one\nline two" {
		t.Fatalf("unexpected summary %q", result.ParagraphData)
	}
}

func TestSubmitSummaryTask(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/audio_video_ai/v1/meeting_assistance", func(w http.ResponseWriter, r *http.Request) {
		var request SummaryTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(request.Transcripts) != 1 || len(request.Transcripts[0].Sentences) != 1 {
			t.Fatalf("unexpected transcript shape: %+v", request)
		}
		if request.Topic != "Weekly Sync" || request.OperatorID != "ou_owner" {
			t.Fatalf("unexpected metadata: %+v", request)
		}
		io.WriteString(w, `{"code":0,"data":{"task_id":"task-1"}}`)
	})
	client := newTestClient(t, mux)

	request := NewSummaryTaskRequest("hello world", MinuteDetail{
		Duration: 600000,
		Title:    "Weekly Sync",
		OwnerID:  "ou_owner",
	})
	taskID, err := client.SubmitSummaryTask(context.Background(), request, "user-token")
	if err != nil {
		t.Fatalf("SubmitSummaryTask: %v", err)
	}
	if taskID != "task-1" {
		t.Fatalf("unexpected task id %q", taskID)
	}
}

func TestCreateDocumentAndInsertBlocks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/docx/v1/documents", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":0,"data":{"document":{"document_id":"doc-1"}}}`)
	})
	mux.HandleFunc("/open-apis/docx/v1/documents/doc-1/blocks/doc-1/children", func(w http.ResponseWriter, r *http.Request) {
		var insert docblocks.Insert
		if err := json.NewDecoder(r.Body).Decode(&insert); err != nil {
			t.Fatalf("decode insert: %v", err)
		}
		if len(insert.Children) == 0 {
			t.Fatal("insert carries no children")
		}
		io.WriteString(w, `{"code":0,"data":{"children":[{"block_id":"blk-1"},{"block_id":"blk-2"}]}}`)
	})
	client := newTestClient(t, mux)

	documentID, err := client.CreateDocument(context.Background(), "Weekly Sync", "user-token")
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if documentID != "doc-1" {
		t.Fatalf("unexpected document id %q", documentID)
	}

	tree := docblocks.Build(docblocks.Meeting{Topic: "Weekly Sync", TimeRange: "range"}, "- **Point** detail")
	created, err := client.InsertBlocks(context.Background(), documentID, documentID, tree.Root, "user-token")
	if err != nil {
		t.Fatalf("InsertBlocks: %v", err)
	}
	if len(created) != 2 || created[0].BlockID != "blk-1" {
		t.Fatalf("unexpected created blocks %+v", created)
	}
}
