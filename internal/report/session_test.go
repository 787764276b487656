package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modsentry/modsentry/internal/platform"
	"github.com/modsentry/modsentry/internal/report"
)

var ctx = context.Background()

func seededGateway() *platform.MemoryGateway {
	gw := platform.NewMemoryGateway()
	gw.AddGuild(&platform.Guild{ID: "100", Name: "test guild"})
	gw.AddChannel(&platform.Channel{ID: "200", GuildID: "100", Name: "general"})
	gw.AddMessage(&platform.Message{
		ID:         "300",
		ChannelID:  "200",
		AuthorID:   "u2",
		AuthorName: "al1ce",
		Content:    "dm me for a giveaway",
	})
	return gw
}

func newSession() *report.Session {
	return report.NewSession(seededGateway(), "u1", "alice")
}

// advance sends content and fails the test on error.
func advance(t *testing.T, s *report.Session, content string) report.Outcome {
	t.Helper()
	out, err := s.HandleMessage(ctx, content)
	if err != nil {
		t.Fatalf("HandleMessage(%q): %v", content, err)
	}
	return out
}

func TestFullImpersonationRoundTrip(t *testing.T) {
	s := newSession()

	out := advance(t, s, "report")
	if s.State() != report.StateAwaitingMessageLink {
		t.Fatalf("state = %s, want awaiting_message_link", s.State())
	}
	if len(out.Lines) == 0 || !strings.Contains(out.Lines[0], "link") {
		t.Fatalf("expected link prompt, got %v", out.Lines)
	}

	out = advance(t, s, "https://chat.example/channels/100/200/300")
	if s.State() != report.StateAwaitingReason {
		t.Fatalf("state = %s, want awaiting_reason", s.State())
	}
	if !strings.Contains(out.Lines[0], "al1ce: dm me for a giveaway") {
		t.Errorf("expected quoted message, got %q", out.Lines[0])
	}

	out = advance(t, s, "C") // impersonation
	if s.State() != report.StateAwaitingFakeAccountType {
		t.Fatalf("state = %s, want awaiting_fake_account_type", s.State())
	}

	out = advance(t, s, "A") // myself
	if s.State() != report.StateAwaitingMyselfBehavior {
		t.Fatalf("state = %s, want awaiting_myself_behavior", s.State())
	}

	out = advance(t, s, "AB")
	if s.State() != report.StateAwaitingBlockDecision {
		t.Fatalf("state = %s, want awaiting_block_decision", s.State())
	}

	out = advance(t, s, "Y")
	if !s.Done() {
		t.Fatal("session should be complete")
	}
	if out.Transfer == nil {
		t.Fatal("expected a transfer payload")
	}
	tr := out.Transfer
	if tr.Reporter != "alice" {
		t.Errorf("Reporter = %q, want alice", tr.Reporter)
	}
	if tr.Reportee != "al1ce" {
		t.Errorf("Reportee = %q, want al1ce", tr.Reportee)
	}
	if tr.Category != report.CategoryImpersonation {
		t.Errorf("Category = %q, want Impersonation", tr.Category)
	}
	if tr.FakeAccountType != "Myself" {
		t.Errorf("FakeAccountType = %q, want Myself", tr.FakeAccountType)
	}
	if tr.Resolution == "" {
		t.Error("Resolution must be non-empty")
	}
	if len(tr.Behaviors) != 2 {
		t.Errorf("Behaviors = %v, want 2 entries", tr.Behaviors)
	}
	if !tr.BlockRequested {
		t.Error("BlockRequested should be true after Y")
	}
}

func TestCancelFromEveryNonTerminalState(t *testing.T) {
	// Each script drives a fresh session into a distinct state.
	scripts := map[string][]string{
		"start":                 {},
		"awaiting_message_link": {"report"},
		"awaiting_reason":       {"report", "100/200/300"},
		"awaiting_fake_type":    {"report", "100/200/300", "C"},
		"awaiting_behavior":     {"report", "100/200/300", "C", "A"},
		"awaiting_third_party":  {"report", "100/200/300", "C", "B"},
		"awaiting_subtype":      {"report", "100/200/300", "B"},
		"awaiting_block":        {"report", "100/200/300", "C", "B", "someone"},
	}

	for name, script := range scripts {
		s := newSession()
		for _, msg := range script {
			advance(t, s, msg)
		}

		out := advance(t, s, "cancel")
		if !s.Done() {
			t.Errorf("%s: session not complete after cancel", name)
		}
		if len(out.Lines) != 1 || out.Lines[0] != "Report cancelled." {
			t.Errorf("%s: cancel output = %v, want [Report cancelled.]", name, out.Lines)
		}
		if out.Transfer != nil {
			t.Errorf("%s: cancel must not produce a transfer", name)
		}
	}
}

func TestUnderAgeAndOtherCloseWithoutTransfer(t *testing.T) {
	for _, key := range []string{"A", "D"} {
		s := newSession()
		advance(t, s, "report")
		advance(t, s, "100/200/300")
		out := advance(t, s, key)
		if !s.Done() {
			t.Errorf("reason %s: session should close", key)
		}
		if out.Transfer != nil {
			t.Errorf("reason %s: no transfer expected", key)
		}
		if !strings.Contains(out.Lines[0], "investigate") {
			t.Errorf("reason %s: got %q", key, out.Lines[0])
		}
	}
}

func TestInappropriateContentPathTransfers(t *testing.T) {
	s := newSession()
	advance(t, s, "report")
	advance(t, s, "100/200/300")
	advance(t, s, "b") // lowercase accepted
	if s.State() != report.StateAwaitingNonLikableSubtype {
		t.Fatalf("state = %s, want awaiting_non_likable_subtype", s.State())
	}
	advance(t, s, "spam everywhere") // subtype is not strictly validated
	out := advance(t, s, "n")
	if out.Transfer == nil {
		t.Fatal("expected transfer")
	}
	if out.Transfer.Category != report.CategoryInappropriateContent {
		t.Errorf("Category = %q, want Inappropriate Content", out.Transfer.Category)
	}
	if out.Transfer.Subtype != "spam everywhere" {
		t.Errorf("Subtype = %q", out.Transfer.Subtype)
	}
	if out.Transfer.BlockRequested {
		t.Error("BlockRequested should be false after N")
	}
}

func TestInvalidMenuInputRetriesInPlace(t *testing.T) {
	s := newSession()
	advance(t, s, "report")
	advance(t, s, "100/200/300")

	for _, bad := range []string{"Z", "AB", "", "yes please"} {
		out := advance(t, s, bad)
		if s.State() != report.StateAwaitingReason {
			t.Fatalf("input %q moved state to %s", bad, s.State())
		}
		if len(out.Lines) != 1 || !strings.Contains(out.Lines[0], "couldn't read the response") {
			t.Errorf("input %q: got %v, want retry prompt", bad, out.Lines)
		}
	}

	// A valid retry still works after failures.
	advance(t, s, "C")
	if s.State() != report.StateAwaitingFakeAccountType {
		t.Errorf("state = %s after valid retry", s.State())
	}
}

func TestUnresolvedLinkRepromptsWithoutTransition(t *testing.T) {
	s := newSession()
	advance(t, s, "report")

	cases := map[string]string{
		"no link here":  "couldn't read that link",
		"999/200/300":   "guilds that I'm not in",
		"100/999/300":   "channel was deleted or never existed",
		"100/200/999":   "message was deleted or never existed",
	}
	for input, want := range cases {
		out := advance(t, s, input)
		if s.State() != report.StateAwaitingMessageLink {
			t.Errorf("input %q moved state to %s", input, s.State())
		}
		if !strings.Contains(out.Lines[0], want) {
			t.Errorf("input %q: got %q, want substring %q", input, out.Lines[0], want)
		}
	}
}

func TestThirdPartyDefaultsToNone(t *testing.T) {
	s := newSession()
	advance(t, s, "report")
	advance(t, s, "100/200/300")
	advance(t, s, "C")
	advance(t, s, "C") // celebrity or public figure
	if s.State() != report.StateAwaitingThirdPartyName {
		t.Fatalf("state = %s, want awaiting_third_party_name", s.State())
	}
	advance(t, s, "")
	out := advance(t, s, "Y")
	if out.Transfer.Impersonated != "None" {
		t.Errorf("Impersonated = %q, want None", out.Transfer.Impersonated)
	}
	if out.Transfer.FakeAccountType != "A celebrity or public figure" {
		t.Errorf("FakeAccountType = %q", out.Transfer.FakeAccountType)
	}
}

func TestCompleteSessionRejectsFurtherMessages(t *testing.T) {
	s := newSession()
	advance(t, s, "report")
	advance(t, s, "cancel")

	_, err := s.HandleMessage(ctx, "hello?")
	if !errors.Is(err, report.ErrSessionComplete) {
		t.Errorf("err = %v, want ErrSessionComplete", err)
	}
}

func TestBehaviorLettersDeduplicated(t *testing.T) {
	s := newSession()
	advance(t, s, "report")
	advance(t, s, "100/200/300")
	advance(t, s, "C")
	advance(t, s, "A")
	advance(t, s, "aab")
	out := advance(t, s, "Y")
	if len(out.Transfer.Behaviors) != 2 {
		t.Errorf("Behaviors = %v, want 2 deduplicated entries", out.Transfer.Behaviors)
	}
}
