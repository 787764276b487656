package platform

import (
	"context"
	"sync"
)

// MemoryGateway is an in-memory Gateway for tests and local development.
// Outbound messages are recorded per channel instead of being delivered.
type MemoryGateway struct {
	mu       sync.RWMutex
	guilds   map[string]*Guild
	channels map[string]*Channel
	messages map[string]*Message // key: channelID/messageID
	outbound map[string][]string
}

// NewMemoryGateway creates an empty MemoryGateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		guilds:   make(map[string]*Guild),
		channels: make(map[string]*Channel),
		messages: make(map[string]*Message),
		outbound: make(map[string][]string),
	}
}

// AddGuild registers a guild.
func (g *MemoryGateway) AddGuild(guild *Guild) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.guilds[guild.ID] = guild
}

// AddChannel registers a channel.
func (g *MemoryGateway) AddChannel(ch *Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[ch.ID] = ch
}

// AddMessage registers a message.
func (g *MemoryGateway) AddMessage(m *Message) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages[m.ChannelID+"/"+m.ID] = m
}

// ResolveGuild implements Gateway.
func (g *MemoryGateway) ResolveGuild(_ context.Context, guildID string) (*Guild, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	guild, ok := g.guilds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return guild, nil
}

// ResolveChannel implements Gateway. The channel must belong to the guild.
func (g *MemoryGateway) ResolveChannel(_ context.Context, guildID, channelID string) (*Channel, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ch, ok := g.channels[channelID]
	if !ok || ch.GuildID != guildID {
		return nil, ErrNotFound
	}
	return ch, nil
}

// FetchMessage implements Gateway.
func (g *MemoryGateway) FetchMessage(_ context.Context, channelID, messageID string) (*Message, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.messages[channelID+"/"+messageID]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

// SendMessage implements Gateway.
func (g *MemoryGateway) SendMessage(_ context.Context, channelID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outbound[channelID] = append(g.outbound[channelID], text)
	return nil
}

// Sent returns a copy of the messages recorded for channelID.
func (g *MemoryGateway) Sent(channelID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.outbound[channelID]))
	copy(out, g.outbound[channelID])
	return out
}
