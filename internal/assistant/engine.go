package assistant

import (
	"context"
	"log/slog"
	"sync"
)

const (
	defaultMaxHistory = 20
	defaultMaxTokens  = 1024

	// fallbackReply is returned to the widget when every provider fails;
	// the visitor sees a polite notice instead of an error page.
	fallbackReply = "عذراً، لم أتمكن من معالجة طلبك حالياً. حاول مرة أخرى بعد قليل."
)

// Engine is the chat widget's conversation processor. It keeps short
// per-session histories in memory; sessions are ephemeral and vanish on
// restart, matching the widget's lifetime in the browser.
type Engine struct {
	router     *Router
	maxHistory int

	mu       sync.Mutex
	sessions map[string][]Message
}

// NewEngine creates an engine over the given provider router.
func NewEngine(router *Router) *Engine {
	return &Engine{
		router:     router,
		maxHistory: defaultMaxHistory,
		sessions:   make(map[string][]Message),
	}
}

// Chat handles one widget turn. Provider failure degrades to a canned
// apology rather than an error; the widget has no useful way to render one.
func (e *Engine) Chat(ctx context.Context, sessionID, text string) string {
	history := e.appendMessage(sessionID, Message{Role: "user", Content: text})

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	resp, err := e.router.Complete(ctx, CompletionRequest{
		Messages:    messages,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		slog.Error("assistant completion failed", "session", sessionID, "error", err)
		return fallbackReply
	}

	e.appendMessage(sessionID, Message{Role: "assistant", Content: resp.Content})
	return resp.Content
}

// appendMessage records a message and returns the session's history,
// trimmed to the most recent maxHistory entries.
func (e *Engine) appendMessage(sessionID string, msg Message) []Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	history := append(e.sessions[sessionID], msg)
	if len(history) > e.maxHistory {
		history = history[len(history)-e.maxHistory:]
	}
	e.sessions[sessionID] = history

	return append([]Message(nil), history...)
}

// EndSession drops a session's history.
func (e *Engine) EndSession(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
}

const systemPrompt = `أنت مساعد تعليمي ذكي لمدرسة WE-Zayed للتكنولوجيا التطبيقية.
أهم تخصصاتنا: البرمجة، الشبكات، والاتصالات.
عندما يسأل الطالب عن نتيجته، وجهه دائماً لاستخدام "الرقم القومي" المكون من 14 رقماً في صندوق البحث بالصفحة الرئيسية مع اختيار الصف الدراسي.
أجب بأسلوب ودود ومهني وبلهجة مصرية مهذبة أو لغة عربية فصحى بسيطة.
ساعد الطلاب في معرفة المواد الدراسية أو فرص التدريب في شركة WE.`
