package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mwantia/goshare/internal/gateway"
	"github.com/mwantia/goshare/pkg/log"
)

// ChannelStatus is the per-channel slice of a gate report.
type ChannelStatus struct {
	ChannelID int64  `json:"channel_id"`
	Joined    bool   `json:"joined"`
	Title     string `json:"title"`
	Username  string `json:"username,omitempty"`
	JoinURL   string `json:"join_url"`
	Error     string `json:"error,omitempty"`
}

// Report is the result of evaluating the subscription gate for one user.
type Report struct {
	AllSatisfied bool            `json:"all_satisfied"`
	Channels     []ChannelStatus `json:"channels"`
}

// AccessGate decides whether a user has joined every configured prerequisite
// channel. Channels are evaluated independently in configuration order; any
// lookup failure degrades that channel to "not joined" rather than aborting
// the check.
type AccessGate struct {
	gw       gateway.Gateway
	channels []int64
	log      log.LoggerService

	// cache feeds informational displays only. The delivery path always
	// goes through Check so a user leaving a channel is never masked.
	cache *expirable.LRU[int64, *Report]
}

const gateCacheSize = 1024

// NewAccessGate creates a gate over the configured prerequisite channels.
func NewAccessGate(gw gateway.Gateway, channels []int64, cacheTTL time.Duration, logger log.LoggerService) *AccessGate {
	return &AccessGate{
		gw:       gw,
		channels: channels,
		log:      logger,
		cache:    expirable.NewLRU[int64, *Report](gateCacheSize, nil, cacheTTL),
	}
}

// Enabled reports whether any prerequisite channels are configured.
func (g *AccessGate) Enabled() bool {
	return len(g.channels) > 0
}

// Check evaluates the gate with fresh lookups. With no channels configured it
// short-circuits to satisfied with an empty channel list. The result is
// stored in the cache for informational reuse.
func (g *AccessGate) Check(ctx context.Context, userID int64) *Report {
	if len(g.channels) == 0 {
		return &Report{AllSatisfied: true, Channels: []ChannelStatus{}}
	}

	gateChecksTotal.Inc()

	report := &Report{AllSatisfied: true}
	for _, channelID := range g.channels {
		status := g.checkChannel(ctx, userID, channelID)
		report.Channels = append(report.Channels, status)
		if !status.Joined {
			report.AllSatisfied = false
		}
	}

	if !report.AllSatisfied {
		gateDeniedTotal.Inc()
	}

	g.cache.Add(userID, report)
	return report
}

// CheckCached returns a recent report when available, falling back to a
// fresh Check. Only display paths use this.
func (g *AccessGate) CheckCached(ctx context.Context, userID int64) *Report {
	if report, ok := g.cache.Get(userID); ok {
		return report
	}
	return g.Check(ctx, userID)
}

// Invalidate drops the cached report for a user.
func (g *AccessGate) Invalidate(userID int64) {
	g.cache.Remove(userID)
}

// checkChannel resolves one channel and the user's membership in it.
// Fail-closed: every error path leaves Joined false with the error preserved
// for display.
func (g *AccessGate) checkChannel(ctx context.Context, userID, channelID int64) ChannelStatus {
	status := ChannelStatus{
		ChannelID: channelID,
		Title:     "Unknown Channel",
		JoinURL:   synthesizeChannelURL(channelID),
	}

	chat, err := g.gw.GetChat(ctx, channelID)
	if err != nil {
		g.log.Warn("Failed to resolve channel %d: %v", channelID, err)
		status.Error = err.Error()
		return status
	}

	status.Title = chat.Title
	status.Username = chat.Username

	if chat.Username != "" {
		status.JoinURL = fmt.Sprintf("https://t.me/%s", chat.Username)
	} else if link, err := g.gw.ExportInviteLink(ctx, channelID); err == nil {
		status.JoinURL = link
	} else {
		// Synthesized fallback URL stays in place.
		g.log.Warn("Failed to export invite link for channel %d: %v", channelID, err)
	}

	member, err := g.gw.GetChatMember(ctx, channelID, userID)
	if err != nil {
		g.log.Warn("Failed to check membership of %d in channel %d: %v", userID, channelID, err)
		status.Error = err.Error()
		return status
	}

	status.Joined = !member.Gone()
	return status
}

// synthesizeChannelURL builds a t.me/c link for channels without a public
// handle or exportable invite.
func synthesizeChannelURL(channelID int64) string {
	id := strconv.FormatInt(channelID, 10)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return fmt.Sprintf("https://t.me/c/%s", id)
}
