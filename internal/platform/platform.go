// Package platform defines the chat-platform collaborator: guild, channel
// and message lookup plus outbound message delivery. The moderation core
// only sees this interface; lookups miss with a typed not-found result, not
// an exception used for control flow.
package platform

import (
	"context"
	"errors"
)

// ErrNotFound is the typed miss for guild, channel and message lookups.
var ErrNotFound = errors.New("not found")

// Guild is a chat server.
type Guild struct {
	ID   string
	Name string
}

// Channel is a text channel within a guild.
type Channel struct {
	ID      string
	GuildID string
	Name    string
}

// Message is a chat message.
type Message struct {
	ID         string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Content    string
}

// Gateway is the chat-platform client the moderation core talks to.
type Gateway interface {
	ResolveGuild(ctx context.Context, guildID string) (*Guild, error)
	ResolveChannel(ctx context.Context, guildID, channelID string) (*Channel, error)
	FetchMessage(ctx context.Context, channelID, messageID string) (*Message, error)
	SendMessage(ctx context.Context, channelID, text string) error
}
