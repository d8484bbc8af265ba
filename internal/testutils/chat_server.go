package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// ChatRequest 记录一次聊天请求
type ChatRequest struct {
	Path          string
	Authorization string
	Model         string
	// Temperature 为 nil 表示请求中没有该字段
	Temperature   *float64
	System        string
	User          string
}

// ChatReply 是模拟服务器的一次回复，Status 为 0 时视为 200
type ChatReply struct {
	Status  int
	Content string
}

// ChatServer 模拟 OpenAI 兼容的 /chat/completions 接口（非流式）
type ChatServer struct {
	Server *httptest.Server
	URL    string

	mu             sync.Mutex
	queue          []ChatReply
	respond        func(ChatRequest) ChatReply
	defaultContent string
	requests       []ChatRequest
}

// NewChatServer 启动模拟服务器，测试结束时自动关闭
func NewChatServer(t *testing.T) *ChatServer {
	t.Helper()
	mock := &ChatServer{defaultContent: "这是翻译后的文本"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			writeChatError(w, http.StatusNotFound, "unknown route "+r.URL.Path)
			return
		}

		var body struct {
			Model       string   `json:"model"`
			Temperature *float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeChatError(w, http.StatusBadRequest, "无法解析请求体")
			return
		}

		req := ChatRequest{
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Model:         body.Model,
			Temperature:   body.Temperature,
		}
		for _, msg := range body.Messages {
			switch msg.Role {
			case "system":
				req.System = msg.Content
			case "user":
				req.User = msg.Content
			}
		}

		reply := mock.next(req)
		if reply.Status != 0 && reply.Status != http.StatusOK {
			writeChatError(w, reply.Status, fmt.Sprintf("模拟错误 %d", reply.Status))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-mock",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   body.Model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": reply.Content,
					},
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     100,
				"completion_tokens": 50,
				"total_tokens":      150,
			},
		})
	}))

	mock.Server = server
	mock.URL = server.URL
	t.Cleanup(server.Close)
	return mock
}

func (m *ChatServer) next(req ChatRequest) ChatReply {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.queue) > 0 {
		reply := m.queue[0]
		m.queue = m.queue[1:]
		return reply
	}
	if m.respond != nil {
		return m.respond(req)
	}
	return ChatReply{Content: m.defaultContent}
}

// Enqueue 追加按顺序消费的回复，队列为空后回到默认行为
func (m *ChatServer) Enqueue(replies ...ChatReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, replies...)
}

// RespondWith 设置按请求内容生成回复的函数
func (m *ChatServer) RespondWith(fn func(ChatRequest) ChatReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
}

// SetDefaultResponse 设置默认回复
func (m *ChatServer) SetDefaultResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultContent = content
}

// Requests 返回已收到的请求
func (m *ChatServer) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatRequest(nil), m.requests...)
}

// RequestCount 返回已收到的请求数
func (m *ChatServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// NumberedLines 取出 user 提示词中 "1. xxx" 形式的编号行
func NumberedLines(prompt string) []string {
	var out []string
	for _, line := range strings.Split(prompt, "\n") {
		dot := strings.Index(line, ". ")
		if dot <= 0 {
			continue
		}
		digits := true
		for _, c := range line[:dot] {
			if c < '0' || c > '9' {
				digits = false
				break
			}
		}
		if digits {
			out = append(out, line[dot+2:])
		}
	}
	return out
}

func writeChatError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "server_error",
		},
	})
}
