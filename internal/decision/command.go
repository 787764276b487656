package decision

import (
	"fmt"
	"strings"
)

// Action is a moderator action on an account.
type Action string

const (
	ActionBan     Action = "BAN"
	ActionSuspend Action = "SUSPEND"
	ActionDefer   Action = "DEFER"
)

// CommandError indicates a malformed moderator command. It is surfaced back
// to the moderator, never silently ignored.
type CommandError struct {
	Input  string
	Reason string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("invalid moderator command %q: %s", e.Input, e.Reason)
}

// ParseCommand parses a moderator decision command of the form
// "accountId,ACTION" with ACTION one of BAN, SUSPEND, DEFER.
func ParseCommand(input string) (string, Action, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return "", "", &CommandError{Input: input, Reason: "expected accountId,ACTION"}
	}

	accountID := strings.TrimSpace(parts[0])
	if accountID == "" {
		return "", "", &CommandError{Input: input, Reason: "empty account id"}
	}

	action := Action(strings.ToUpper(strings.TrimSpace(parts[1])))
	switch action {
	case ActionBan, ActionSuspend, ActionDefer:
		return accountID, action, nil
	default:
		return "", "", &CommandError{Input: input, Reason: "action must be BAN, SUSPEND or DEFER"}
	}
}
