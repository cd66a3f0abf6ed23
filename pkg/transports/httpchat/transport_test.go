package httpchat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/arielhakim/voyago/pkg/agent"
	"github.com/arielhakim/voyago/pkg/llm"
	mockllm "github.com/arielhakim/voyago/pkg/providers/mock"
	"github.com/arielhakim/voyago/pkg/tools"
)

func testFactory(t *testing.T, script []llm.Response) SessionFactory {
	t.Helper()
	reg := tools.NewRegistry()
	err := reg.Register(tools.Descriptor{
		Name: "get_random_destination",
		Handler: func(map[string]any) (string, error) {
			return "Tokyo, Japan", nil
		},
	})
	if err != nil {
		t.Fatalf("register error: %v", err)
	}
	return func() *agent.Session {
		adapter := mockllm.NewLLMAdapter(mockllm.LLMConfig{Script: script})
		return agent.New(adapter, reg, agent.Config{Name: "travel"})
	}
}

func TestChatEndpoint(t *testing.T) {
	factory := testFactory(t, []llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "get_random_destination"}}},
		{Text: "A day in Tokyo it is."},
	})
	srv := httptest.NewServer(New(":0", factory).Handler())
	defer srv.Close()

	body, _ := json.Marshal(chatRequest{Prompt: "Plan me a day trip"})
	resp, err := http.Post(srv.URL+"/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if out.Text != "A day in Tokyo it is." || out.SessionID == "" {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestChatEndpointRejectsEmptyPrompt(t *testing.T) {
	srv := httptest.NewServer(New(":0", testFactory(t, nil)).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/chat", "application/json", strings.NewReader(`{"prompt":"  "}`))
	if err != nil {
		t.Fatalf("post error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(New(":0", testFactory(t, nil)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebsocketKeepsConversation(t *testing.T) {
	factory := testFactory(t, []llm.Response{
		{Text: "first answer"},
		{Text: "second answer"},
	})
	srv := httptest.NewServer(New(":0", factory).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	var first chatResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if first.Text != "first answer" {
		t.Fatalf("unexpected first reply: %+v", first)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("and then?")); err != nil {
		t.Fatalf("write error: %v", err)
	}
	var second chatResponse
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read error: %v", err)
	}
	if second.Text != "second answer" {
		t.Fatalf("unexpected second reply: %+v", second)
	}
	if first.SessionID != second.SessionID {
		t.Fatalf("expected one session per connection, got %s vs %s", first.SessionID, second.SessionID)
	}
}
