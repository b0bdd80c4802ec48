//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"telegram-relay-bot/internal/domain"
	"telegram-relay-bot/internal/domain/model"
	"telegram-relay-bot/internal/infra/memory"
	"telegram-relay-bot/internal/usecase"
)

const adminID int64 = 999

type relayFixture struct {
	uc     usecase.RelayUseCase
	relay  *memory.RelayStore
	sender *MockSender
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	relay := memory.NewRelayStore(0, 0)
	sender := NewMockSender()
	uc := usecase.NewRelayUseCase(relay, sender, newTestTranslator(t), usecase.RelayOptions{
		AdminID:     adminID,
		SendTimeout: time.Second,
	}, newTestLogger())
	return &relayFixture{uc: uc, relay: relay, sender: sender}
}

func userMessage(id int64, name, text string) *model.InboundMessage {
	return &model.InboundMessage{SenderID: id, ChatID: id, SenderName: name, Text: text, MessageID: 1}
}

func adminReply(replyTo int, text string) *model.InboundMessage {
	return &model.InboundMessage{SenderID: adminID, ChatID: adminID, SenderName: "Admin", Text: text, ReplyToMessageID: replyTo, MessageID: 2}
}

func TestRelay_SubmissionAndReplyScenario(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture(t)

	// User Ali (111) sends "Salom"
	route, err := f.uc.Dispatch(ctx, userMessage(111, "Ali", "Salom"))
	if err != nil {
		t.Fatalf("Dispatch submission: %v", err)
	}
	if route != usecase.RouteSubmission {
		t.Fatalf("expected submission route, got %s", route)
	}

	toAdmin := f.sender.To(adminID)
	if len(toAdmin) != 1 {
		t.Fatalf("expected 1 forward to admin, got %d", len(toAdmin))
	}
	fwd := toAdmin[0]
	for _, want := range []string{"Ali", "111", "Salom"} {
		if !strings.Contains(fwd.Text, want) {
			t.Errorf("forwarded text %q is missing %q", fwd.Text, want)
		}
	}
	if f.relay.Len() != 1 {
		t.Fatalf("expected 1 relay entry, got %d", f.relay.Len())
	}
	if got, ok := f.relay.Lookup(fwd.ID); !ok || got != 111 {
		t.Fatalf("relay entry for %d: got %d ok=%v", fwd.ID, got, ok)
	}
	toUser := f.sender.To(111)
	if len(toUser) != 1 || toUser[0].Text != "Your request has been received. You will get an answer soon." {
		t.Fatalf("expected receipt confirmation, got %+v", toUser)
	}

	// Admin replies "Javob" to the forwarded copy
	route, err = f.uc.Dispatch(ctx, adminReply(fwd.ID, "Javob"))
	if err != nil {
		t.Fatalf("Dispatch admin reply: %v", err)
	}
	if route != usecase.RouteAdminReply {
		t.Fatalf("expected admin reply route, got %s", route)
	}
	toUser = f.sender.To(111)
	if len(toUser) != 2 || toUser[1].Text != "📬 Admin reply:\n\nJavob" {
		t.Fatalf("expected admin reply delivered to user, got %+v", toUser)
	}
	toAdmin = f.sender.To(adminID)
	if len(toAdmin) != 2 || toAdmin[1].Text != "Reply delivered to the user ✅" {
		t.Fatalf("expected success confirmation to admin, got %+v", toAdmin)
	}
}

func TestRelay_AdminReplyToUnknownMessage(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture(t)

	_, err := f.uc.Dispatch(ctx, adminReply(123456, "Javob"))
	if !errors.Is(err, domain.ErrRelayMiss) {
		t.Fatalf("expected ErrRelayMiss, got %v", err)
	}
	if f.sender.Count() != 1 {
		t.Fatalf("expected only the notice to admin, got %+v", f.sender.Sent)
	}
	notice := f.sender.To(adminID)
	if len(notice) != 1 || !strings.Contains(notice[0].Text, "Reply only to a request") {
		t.Fatalf("expected routing miss notice, got %+v", notice)
	}
	if f.relay.Len() != 0 {
		t.Fatalf("routing miss must not change the relay map")
	}
}

func TestRelay_StartCommand(t *testing.T) {
	ctx := context.Background()

	for _, text := range []string{"/start", "/start@clinic_bot", "/START payload"} {
		t.Run(text, func(t *testing.T) {
			f := newRelayFixture(t)
			route, err := f.uc.Dispatch(ctx, userMessage(111, "Ali", text))
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if route != usecase.RouteStart {
				t.Fatalf("expected start route, got %s", route)
			}
			if len(f.sender.To(adminID)) != 0 {
				t.Fatalf("start must not forward to admin")
			}
			if f.relay.Len() != 0 {
				t.Fatalf("start must not mutate the relay map")
			}
			welcome := f.sender.To(111)
			if len(welcome) != 1 || !strings.HasPrefix(welcome[0].Text, "Welcome") {
				t.Fatalf("expected welcome message, got %+v", welcome)
			}
		})
	}

	t.Run("admin start is also answered with welcome", func(t *testing.T) {
		f := newRelayFixture(t)
		route, _ := f.uc.Dispatch(ctx, adminReply(0, "/start"))
		if route != usecase.RouteStart {
			t.Fatalf("expected start route, got %s", route)
		}
	})
}

func TestRelay_EmptySubmission(t *testing.T) {
	ctx := context.Background()

	for _, text := range []string{"", "   \n"} {
		f := newRelayFixture(t)
		_, err := f.uc.Dispatch(ctx, userMessage(111, "Ali", text))
		if !errors.Is(err, domain.ErrEmptyText) {
			t.Fatalf("expected ErrEmptyText, got %v", err)
		}
		if len(f.sender.To(adminID)) != 0 {
			t.Fatalf("empty submission must not be forwarded")
		}
		got := f.sender.To(111)
		if len(got) != 1 || got[0].Text != "Please send your request as a text message." {
			t.Fatalf("expected instructional error only, got %+v", got)
		}
	}
}

func TestRelay_ForwardFailure(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture(t)
	f.sender.FailFor[adminID] = errors.New("Bad Request: chat not found")

	_, err := f.uc.Dispatch(ctx, userMessage(111, "Ali", "Salom"))
	if !errors.Is(err, domain.ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}
	if f.relay.Len() != 0 {
		t.Fatalf("failed forward must not be recorded")
	}
	got := f.sender.To(111)
	if len(got) != 1 || !strings.Contains(got[0].Text, "could not be delivered") {
		t.Fatalf("expected failure notice to user, got %+v", got)
	}
}

func TestRelay_ReplyDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture(t)
	f.relay.Record(5000, 111)
	f.sender.FailFor[111] = errors.New("Forbidden: bot was blocked by the user")

	_, err := f.uc.Dispatch(ctx, adminReply(5000, "Javob"))
	if !errors.Is(err, domain.ErrSendFailed) {
		t.Fatalf("expected ErrSendFailed, got %v", err)
	}
	notice := f.sender.To(adminID)
	if len(notice) != 1 || notice[0].Text != "An error occurred: Forbidden: bot was blocked by the user" {
		t.Fatalf("expected error notice to admin, got %+v", notice)
	}
}

func TestRelay_AdminDirectAddressing(t *testing.T) {
	ctx := context.Background()

	t.Run("user_id: text is delivered", func(t *testing.T) {
		f := newRelayFixture(t)
		route, err := f.uc.Dispatch(ctx, adminReply(0, "111: Javob matni"))
		if err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
		if route != usecase.RouteAdminDirect {
			t.Fatalf("expected admin direct route, got %s", route)
		}
		got := f.sender.To(111)
		if len(got) != 1 || got[0].Text != "📬 Admin reply:\n\nJavob matni" {
			t.Fatalf("expected reply to user 111, got %+v", got)
		}
	})

	cases := map[string]error{
		"just chatting": domain.ErrBadAddress,
		"abc: hello":    domain.ErrBadAddress,
		"111:   ":       domain.ErrEmptyText,
		"":              domain.ErrBadAddress,
	}
	for text, want := range cases {
		t.Run(fmt.Sprintf("%q is rejected", text), func(t *testing.T) {
			f := newRelayFixture(t)
			_, err := f.uc.Dispatch(ctx, adminReply(0, text))
			if !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
			if f.sender.Count() != 1 || len(f.sender.To(adminID)) != 1 {
				t.Fatalf("expected a single notice to admin, got %+v", f.sender.Sent)
			}
		})
	}
}

func TestRelay_AdminEmptyReply(t *testing.T) {
	f := newRelayFixture(t)
	f.relay.Record(5000, 111)

	_, err := f.uc.Dispatch(context.Background(), adminReply(5000, ""))
	if !errors.Is(err, domain.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if len(f.sender.To(111)) != 0 {
		t.Fatalf("nothing must be sent to the user")
	}
}

func TestRelay_SendTimeout(t *testing.T) {
	relay := memory.NewRelayStore(0, 0)
	sender := &MockSender{SendFunc: func(ctx context.Context, chatID int64, text string) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	uc := usecase.NewRelayUseCase(relay, sender, newTestTranslator(t), usecase.RelayOptions{
		AdminID:     adminID,
		SendTimeout: 20 * time.Millisecond,
	}, newTestLogger())

	done := make(chan error, 1)
	go func() {
		_, err := uc.Dispatch(context.Background(), userMessage(111, "Ali", "Salom"))
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, domain.ErrSendFailed) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected timed out send failure, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not honour the send timeout")
	}
	if relay.Len() != 0 {
		t.Fatalf("timed out forward must not be recorded")
	}
}

func TestRelay_ConcurrentSubmissions(t *testing.T) {
	ctx := context.Background()
	f := newRelayFixture(t)
	const users = 50

	var wg sync.WaitGroup
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := f.uc.Dispatch(ctx, userMessage(id, "User", "Salom")); err != nil {
				t.Errorf("Dispatch %d: %v", id, err)
			}
		}(int64(i))
	}
	wg.Wait()

	if f.relay.Len() != users {
		t.Fatalf("expected %d relay entries, got %d", users, f.relay.Len())
	}
	for _, fwd := range f.sender.To(adminID) {
		senderID, ok := f.relay.Lookup(fwd.ID)
		if !ok || !strings.Contains(fwd.Text, fmt.Sprintf("ID: %d\n", senderID)) {
			t.Fatalf("forward %d mapped to wrong sender %d", fwd.ID, senderID)
		}
	}
}

func TestRelay_NilMessage(t *testing.T) {
	f := newRelayFixture(t)
	if _, err := f.uc.Dispatch(context.Background(), nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
