package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"hanna-ai/internal/apperr"
	"hanna-ai/internal/conf"
)

const (
	chatTemperature = 0.5
	chatModel       = "gpt-4o"
	probeTimeout    = 5 * time.Second
)

// Chatbase REST 实现
type Chatbase struct {
	api       *resty.Client
	probe     *resty.Client
	iframeURL string
}

func NewChatbase(cfg conf.ChatbaseConfig) *Chatbase {
	api := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	// 探测 iframe 不带 API key
	probe := resty.New().
		SetTimeout(probeTimeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; HannaAI/1.0)")

	return &Chatbase{api: api, probe: probe, iframeURL: cfg.IframeURL}
}

type addSourceReq struct {
	ChatbotID string `json:"chatbotId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Content   string `json:"content"`
}

type updateSourceReq struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type chatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type chatReq struct {
	Messages    []chatMessage `json:"messages"`
	ChatbotID   string        `json:"chatbotId"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	Model       string        `json:"model"`
}

type chatResp struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

func (c *Chatbase) AddSource(ctx context.Context, agentID, name, content string) (*Source, error) {
	var out Source
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(addSourceReq{ChatbotID: agentID, Name: name, Type: "text", Content: content}).
		SetResult(&out).
		Post("/sources")
	if err := check(resp, err, "add source"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Chatbase) UpdateSource(ctx context.Context, sourceID, name, content string) error {
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", sourceID).
		SetBody(updateSourceReq{Name: name, Content: content}).
		Put("/sources/{id}")
	return check(resp, err, "update source")
}

// ListSources 兼容直接返回数组，或 {"sources": [...]} / {"data": [...]} 两种包装
func (c *Chatbase) ListSources(ctx context.Context, agentID string) ([]Source, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetQueryParam("chatbotId", agentID).
		Get("/sources")
	if err := check(resp, err, "list sources"); err != nil {
		return nil, err
	}
	return decodeSources(resp.Body())
}

func (c *Chatbase) DeleteSource(ctx context.Context, sourceID string) error {
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", sourceID).
		Delete("/sources/{id}")
	return check(resp, err, "delete source")
}

func (c *Chatbase) Retrain(ctx context.Context, agentID string) error {
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", agentID).
		Post("/chatbots/{id}/retrain")
	return check(resp, err, "retrain")
}

func (c *Chatbase) Chat(ctx context.Context, agentID, message string) (string, error) {
	var out chatResp
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(chatReq{
			Messages:    []chatMessage{{Content: message, Role: "user"}},
			ChatbotID:   agentID,
			Stream:      false,
			Temperature: chatTemperature,
			Model:       chatModel,
		}).
		SetResult(&out).
		Post("/chat")
	if err := check(resp, err, "chat"); err != nil {
		return "", err
	}
	if out.Text != "" {
		return out.Text, nil
	}
	return out.Message, nil
}

// CheckAgent HEAD 请求智能体的 iframe 页面。网络错误返回 error，其余情况都给出结论
func (c *Chatbase) CheckAgent(ctx context.Context, agentID string) (AgentCheck, error) {
	resp, err := c.probe.R().
		SetContext(ctx).
		Head(c.iframeURL + url.PathEscape(agentID))
	if err != nil {
		return AgentCheck{}, apperr.Wrap(apperr.ErrExternalService, "network error checking agent ID", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return AgentCheck{Reason: "Agent ID not found (404)"}, nil
	case resp.IsError():
		return AgentCheck{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), http.StatusText(resp.StatusCode()))}, nil
	default:
		return AgentCheck{Valid: true}, nil
	}
}

func decodeSources(body []byte) ([]Source, error) {
	var list []Source
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Sources []Source `json:"sources"`
		Data    []Source `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, apperr.Wrap(apperr.ErrExternalService, "decode chatbase sources", err)
	}
	if wrapped.Sources != nil {
		return wrapped.Sources, nil
	}
	return wrapped.Data, nil
}

// check 网络错误和非 2xx 统一转成 EXTERNAL_SERVICE_ERROR，带上对方返回的 message
func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return apperr.Wrap(apperr.ErrExternalService, "chatbase "+op+" failed", err)
	}
	if resp.IsError() {
		return apperr.New(apperr.ErrExternalService, fmt.Sprintf("chatbase %s failed: %s", op, errorMessage(resp)))
	}
	return nil
}

func errorMessage(resp *resty.Response) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return resp.Status()
}
