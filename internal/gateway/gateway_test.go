package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"docuchat/internal/config"
	"docuchat/internal/models"
)

type stubModel struct {
	reply string
	err   error
	calls int
	got   []*schema.Message
}

func (s *stubModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.calls++
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	return &schema.Message{Role: schema.Assistant, Content: s.reply}, nil
}

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		Primary: config.ModelTier{
			Provider:       "openai",
			Model:          "gpt-4o",
			TimeoutSeconds: 5,
			HistoryLimit:   10,
			DocumentChars:  8000,
		},
		Fallback: config.ModelTier{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 5,
			HistoryLimit:   8,
			DocumentChars:  6000,
		},
	}
}

func TestAskUsesPrimary(t *testing.T) {
	primary := &stubModel{reply: "from primary"}
	fallback := &stubModel{reply: "from fallback"}
	g := newGateway(primary, fallback, testGatewayConfig())

	reply, err := g.Ask(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if reply != "from primary" {
		t.Errorf("reply = %q, want %q", reply, "from primary")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestAskFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &stubModel{err: errors.New("connection refused")}
	fallback := &stubModel{reply: "from fallback"}
	g := newGateway(primary, fallback, testGatewayConfig())

	reply, err := g.Ask(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if reply != "from fallback" {
		t.Errorf("reply = %q, want %q", reply, "from fallback")
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestAskFallsBackOnEmptyReply(t *testing.T) {
	primary := &stubModel{reply: "   \n"}
	fallback := &stubModel{reply: "substance"}
	g := newGateway(primary, fallback, testGatewayConfig())

	reply, err := g.Ask(context.Background(), "hello", nil, "")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if reply != "substance" {
		t.Errorf("reply = %q, want %q", reply, "substance")
	}
}

func TestAskBothTiersFailing(t *testing.T) {
	primary := &stubModel{err: errors.New("timeout dialing upstream")}
	fallback := &stubModel{err: errors.New("rate limited")}
	g := newGateway(primary, fallback, testGatewayConfig())

	_, err := g.Ask(context.Background(), "hello", nil, "")
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
	// Transport details must not leak to the caller.
	if strings.Contains(err.Error(), "upstream") || strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error leaks transport detail: %v", err)
	}
}

func TestBuildMessagesLayout(t *testing.T) {
	cfg := testGatewayConfig()
	history := []*models.Message{
		models.NewMessage(models.RoleUser, "first question"),
		models.NewMessage(models.RoleAssistant, "first answer"),
	}

	msgs := buildMessages(cfg.Primary, "next question", history, "the document body")

	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[0].Role != schema.System {
		t.Errorf("first message role = %v, want system", msgs[0].Role)
	}
	if msgs[1].Role != schema.User || msgs[1].Content != "first question" {
		t.Errorf("history user turn mangled: %+v", msgs[1])
	}
	if msgs[2].Role != schema.Assistant || msgs[2].Content != "first answer" {
		t.Errorf("history assistant turn mangled: %+v", msgs[2])
	}

	last := msgs[3]
	if last.Role != schema.User {
		t.Errorf("final role = %v, want user", last.Role)
	}
	want := "Document Context:\nthe document body\n\nUser Question:\nnext question"
	if last.Content != want {
		t.Errorf("final content = %q, want %q", last.Content, want)
	}
}

func TestBuildMessagesWithoutDocument(t *testing.T) {
	cfg := testGatewayConfig()
	msgs := buildMessages(cfg.Primary, "just chatting", nil, "")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[1].Content != "just chatting" {
		t.Errorf("content = %q, want bare question", msgs[1].Content)
	}
}

func TestBuildMessagesTrimsHistoryTail(t *testing.T) {
	cfg := testGatewayConfig()
	var history []*models.Message
	for i := 0; i < 14; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, models.NewMessage(role, fmt.Sprintf("turn %d", i)))
	}

	msgs := buildMessages(cfg.Primary, "latest", history, "")
	// System prompt + 10 most recent turns + the new user turn.
	if len(msgs) != 12 {
		t.Fatalf("got %d messages, want 12", len(msgs))
	}
	if msgs[1].Content != "turn 4" {
		t.Errorf("oldest kept turn = %q, want %q", msgs[1].Content, "turn 4")
	}
	if msgs[10].Content != "turn 13" {
		t.Errorf("newest history turn = %q, want %q", msgs[10].Content, "turn 13")
	}

	msgs = buildMessages(cfg.Fallback, "latest", history, "")
	if len(msgs) != 10 {
		t.Fatalf("fallback got %d messages, want 10", len(msgs))
	}
	if msgs[1].Content != "turn 6" {
		t.Errorf("fallback oldest kept turn = %q, want %q", msgs[1].Content, "turn 6")
	}
}

func TestBuildMessagesTruncatesDocument(t *testing.T) {
	cfg := testGatewayConfig()
	doc := strings.Repeat("x", 9000)

	msgs := buildMessages(cfg.Primary, "q", nil, doc)
	content := msgs[len(msgs)-1].Content
	if strings.Count(content, "x") != 8000 {
		t.Errorf("primary document chars = %d, want 8000", strings.Count(content, "x"))
	}

	msgs = buildMessages(cfg.Fallback, "q", nil, doc)
	content = msgs[len(msgs)-1].Content
	if strings.Count(content, "x") != 6000 {
		t.Errorf("fallback document chars = %d, want 6000", strings.Count(content, "x"))
	}
}

func TestTruncateRunesIsRuneAware(t *testing.T) {
	s := strings.Repeat("日", 5)
	got := truncateRunes(s, 3)
	if got != "日日日" {
		t.Errorf("truncateRunes = %q, want three whole runes", got)
	}
	if truncateRunes("short", 100) != "short" {
		t.Error("short input must pass through unchanged")
	}
}
