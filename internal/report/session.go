// Package report implements the multi-turn reporting conversation: a state
// machine that collects a message reference, a report reason and follow-up
// detail from a reporting user, and hands finished reports to the moderation
// pipeline as a structurally tagged transfer payload.
package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/modsentry/modsentry/internal/platform"
)

// State is a conversation state. The zero value is StateStart.
type State int

const (
	StateStart State = iota
	StateAwaitingMessageLink
	StateAwaitingReason
	StateAwaitingFakeAccountType
	StateAwaitingMyselfBehavior
	StateAwaitingThirdPartyName
	StateAwaitingNonLikableSubtype
	StateAwaitingBlockDecision
	StateComplete
)

var stateNames = map[State]string{
	StateStart:                     "start",
	StateAwaitingMessageLink:       "awaiting_message_link",
	StateAwaitingReason:            "awaiting_reason",
	StateAwaitingFakeAccountType:   "awaiting_fake_account_type",
	StateAwaitingMyselfBehavior:    "awaiting_myself_behavior",
	StateAwaitingThirdPartyName:    "awaiting_third_party_name",
	StateAwaitingNonLikableSubtype: "awaiting_non_likable_subtype",
	StateAwaitingBlockDecision:     "awaiting_block_decision",
	StateComplete:                  "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Conversation keywords. Start and help are handled by the router; cancel is
// honored by the session in every state.
const (
	StartKeyword  = "report"
	CancelKeyword = "cancel"
	HelpKeyword   = "help"
)

// ErrSessionComplete is returned when a message reaches a session that has
// already finished.
var ErrSessionComplete = errors.New("report session already complete")

// Transfer is the structured payload handed to the moderation pipeline when
// a report completes.
type Transfer struct {
	Reporter        string   `json:"reporter"`
	Reportee        string   `json:"reportee"`
	Category        string   `json:"category"`
	FakeAccountType string   `json:"fake_account_type,omitempty"`
	Resolution      string   `json:"resolution"`
	Behaviors       []string `json:"behaviors,omitempty"`
	Subtype         string   `json:"subtype,omitempty"`
	Impersonated    string   `json:"impersonated,omitempty"`
	BlockRequested  bool     `json:"block_requested"`
}

// Outcome is a session's response to one inbound message: zero or more chat
// lines, and — only on report completion — a Transfer. The two are
// distinguished structurally, never by inspecting string contents.
type Outcome struct {
	Lines    []string
	Transfer *Transfer
}

// Report categories.
const (
	CategoryUnderAge             = "Under Age"
	CategoryInappropriateContent = "Inappropriate Content"
	CategoryImpersonation        = "Impersonation"
	CategoryOther                = "Other"
)

var reasonCategories = map[byte]string{
	'A': CategoryUnderAge,
	'B': CategoryInappropriateContent,
	'C': CategoryImpersonation,
	'D': CategoryOther,
}

// messageLinkPattern extracts guild, channel and message ids from a copied
// message link.
var messageLinkPattern = regexp.MustCompile(`(\d+)/(\d+)/(\d+)`)

// Session is one reporting user's conversation state. A session is owned by
// the store and must only be advanced by one goroutine at a time; the router
// serializes access per user.
type Session struct {
	gw platform.Gateway

	state           State
	reporterID      string
	reporterName    string
	reporteeName    string
	category        string
	fakeAccountType string
	behaviors       []string
	subtype         string
	impersonated    string
	blockRequested  bool
}

// NewSession creates a session for the given reporting user.
func NewSession(gw platform.Gateway, reporterID, reporterName string) *Session {
	return &Session{gw: gw, reporterID: reporterID, reporterName: reporterName}
}

// State returns the current conversation state.
func (s *Session) State() State { return s.state }

// Done reports whether the session has completed or been cancelled.
func (s *Session) Done() bool { return s.state == StateComplete }

// ReporterName returns the reporting user's display name.
func (s *Session) ReporterName() string { return s.reporterName }

// HandleMessage advances the conversation with one inbound message.
// Unparseable input never fails the session: it re-prompts in place.
func (s *Session) HandleMessage(ctx context.Context, content string) (Outcome, error) {
	if s.Done() {
		return Outcome{}, ErrSessionComplete
	}

	input := strings.TrimSpace(content)
	if strings.EqualFold(input, CancelKeyword) {
		s.state = StateComplete
		return Outcome{Lines: []string{"Report cancelled."}}, nil
	}

	switch s.state {
	case StateStart:
		return s.handleStart()
	case StateAwaitingMessageLink:
		return s.handleMessageLink(ctx, input)
	case StateAwaitingReason:
		return s.handleReason(input)
	case StateAwaitingNonLikableSubtype:
		return s.handleSubtype(input)
	case StateAwaitingFakeAccountType:
		return s.handleFakeAccountType(input)
	case StateAwaitingMyselfBehavior:
		return s.handleMyselfBehavior(input)
	case StateAwaitingThirdPartyName:
		return s.handleThirdPartyName(input)
	case StateAwaitingBlockDecision:
		return s.handleBlockDecision(input)
	default:
		return Outcome{}, fmt.Errorf("unhandled state %s", s.state)
	}
}

func (s *Session) handleStart() (Outcome, error) {
	s.state = StateAwaitingMessageLink
	return Outcome{Lines: []string{
		"Thank you for starting the reporting process. " +
			"Say `help` at any time for more information.\n\n" +
			"Please copy paste the link to the message you want to report.\n" +
			"You can obtain this link by right-clicking the message and clicking `Copy Message Link`.",
	}}, nil
}

func (s *Session) handleMessageLink(ctx context.Context, input string) (Outcome, error) {
	m := messageLinkPattern.FindStringSubmatch(input)
	if m == nil {
		return reply("I'm sorry, I couldn't read that link. Please try again or say `cancel` to cancel."), nil
	}
	guildID, channelID, messageID := m[1], m[2], m[3]

	if _, err := s.gw.ResolveGuild(ctx, guildID); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return reply("I cannot accept reports of messages from guilds that I'm not in. " +
				"Please have the guild owner add me to the guild and try again."), nil
		}
		return Outcome{}, fmt.Errorf("resolve guild: %w", err)
	}
	if _, err := s.gw.ResolveChannel(ctx, guildID, channelID); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return reply("It seems this channel was deleted or never existed. Please try again or say `cancel` to cancel."), nil
		}
		return Outcome{}, fmt.Errorf("resolve channel: %w", err)
	}
	msg, err := s.gw.FetchMessage(ctx, channelID, messageID)
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			return reply("It seems this message was deleted or never existed. Please try again or say `cancel` to cancel."), nil
		}
		return Outcome{}, fmt.Errorf("fetch message: %w", err)
	}

	s.reporteeName = msg.AuthorName
	s.state = StateAwaitingReason
	return reply(
		"I found this message:```"+msg.AuthorName+": "+msg.Content+"```\n"+
			renderMenu("Why are you reporting this account?", reasonMenu),
	), nil
}

func (s *Session) handleReason(input string) (Outcome, error) {
	key, err := decodeChoice(input, "ABCD")
	if err != nil {
		return retryChoice(), nil
	}
	s.category = reasonCategories[key]

	switch key {
	case 'B':
		s.state = StateAwaitingNonLikableSubtype
		return reply(renderMenu("What kind of content is it?", subtypeMenu)), nil
	case 'C':
		s.state = StateAwaitingFakeAccountType
		return reply(renderMenu("We'd like to know more. Who is this account pretending to be?", fakeTypeMenu)), nil
	default: // under-age and other close out directly
		s.state = StateComplete
		return reply("A member of the team will investigate your case. Thanks for reporting."), nil
	}
}

func (s *Session) handleSubtype(input string) (Outcome, error) {
	// The subtype catalog is shown but not strictly validated; free text is
	// recorded as-is.
	s.subtype = input
	s.state = StateAwaitingBlockDecision
	return reply(thankYouBlockPrompt), nil
}

func (s *Session) handleFakeAccountType(input string) (Outcome, error) {
	key, err := decodeChoice(input, "ABCD")
	if err != nil {
		return retryChoice(), nil
	}
	s.fakeAccountType = menuLabel(fakeTypeMenu, key)

	if key == 'A' {
		s.state = StateAwaitingMyselfBehavior
		return reply(renderMenu("What is the suspicious behavior? Reply with one or more letters.", behaviorMenu)), nil
	}
	s.state = StateAwaitingThirdPartyName
	return Outcome{Lines: []string{
		"Whose account is this account pretending to be?",
		"Please respond with the username (default None).",
	}}, nil
}

func (s *Session) handleMyselfBehavior(input string) (Outcome, error) {
	keys, err := decodeMultiChoice(input, "ABC")
	if err != nil {
		return retryChoice(), nil
	}
	s.behaviors = s.behaviors[:0]
	for _, k := range keys {
		s.behaviors = append(s.behaviors, menuLabel(behaviorMenu, k))
	}
	s.state = StateAwaitingBlockDecision
	return reply(thankYouBlockPrompt), nil
}

func (s *Session) handleThirdPartyName(input string) (Outcome, error) {
	if input == "" {
		input = "None"
	}
	s.impersonated = input
	s.state = StateAwaitingBlockDecision
	return reply(thankYouBlockPrompt), nil
}

func (s *Session) handleBlockDecision(input string) (Outcome, error) {
	key, err := decodeChoice(input, "YN")
	if err != nil {
		return retryChoice(), nil
	}

	resolution := "Reported account not blocked."
	if key == 'Y' {
		s.blockRequested = true
		resolution = "Reported account blocked."
	}
	s.state = StateComplete

	return Outcome{
		Lines: []string{resolution},
		Transfer: &Transfer{
			Reporter:        s.reporterName,
			Reportee:        s.reporteeName,
			Category:        s.category,
			FakeAccountType: s.fakeAccountType,
			Resolution:      resolution,
			Behaviors:       append([]string(nil), s.behaviors...),
			Subtype:         s.subtype,
			Impersonated:    s.impersonated,
			BlockRequested:  s.blockRequested,
		},
	}, nil
}

const thankYouBlockPrompt = "Thank you for reporting. Our content moderation team will review your report. " +
	"This may result in the reported account's suspension, shadowblock, or removal.\n\n" +
	"Do you want us to block this account from any future interaction with you? Reply Y for yes, N for no."

func reply(lines ...string) Outcome {
	return Outcome{Lines: lines}
}
