package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwantia/goshare/internal/gateway"
)

func TestAccessGateNoChannelsSatisfied(t *testing.T) {
	gate := NewAccessGate(newFakeGateway(), nil, time.Minute, testLogger())

	report := gate.Check(context.Background(), 42)
	if !report.AllSatisfied {
		t.Error("empty channel list should satisfy the gate")
	}
	if len(report.Channels) != 0 {
		t.Errorf("channels = %d, want 0", len(report.Channels))
	}
	if gate.Enabled() {
		t.Error("gate should report disabled with no channels")
	}
}

func TestAccessGateAllJoined(t *testing.T) {
	gw := newFakeGateway()
	gw.chats[-1001] = &gateway.ChatInfo{ID: -1001, Title: "Updates", Username: "updates"}
	gw.chats[-1002] = &gateway.ChatInfo{ID: -1002, Title: "Backup"}
	gw.invites[-1002] = "https://t.me/+abcdef"
	gw.setMember(-1001, 42, gateway.StatusMember)
	gw.setMember(-1002, 42, gateway.StatusAdministrator)

	gate := NewAccessGate(gw, []int64{-1001, -1002}, time.Minute, testLogger())
	report := gate.Check(context.Background(), 42)

	if !report.AllSatisfied {
		t.Fatalf("report = %+v, want satisfied", report)
	}
	if report.Channels[0].JoinURL != "https://t.me/updates" {
		t.Errorf("public channel URL = %q, want username link", report.Channels[0].JoinURL)
	}
	if report.Channels[1].JoinURL != "https://t.me/+abcdef" {
		t.Errorf("private channel URL = %q, want exported invite", report.Channels[1].JoinURL)
	}
}

func TestAccessGateLeftChannelDenies(t *testing.T) {
	gw := newFakeGateway()
	gw.chats[-1001] = &gateway.ChatInfo{ID: -1001, Title: "Updates", Username: "updates"}
	gw.chats[-1002] = &gateway.ChatInfo{ID: -1002, Title: "Backup", Username: "backup"}
	gw.setMember(-1001, 42, gateway.StatusMember)
	gw.setMember(-1002, 42, gateway.StatusLeft)

	gate := NewAccessGate(gw, []int64{-1001, -1002}, time.Minute, testLogger())
	report := gate.Check(context.Background(), 42)

	if report.AllSatisfied {
		t.Fatal("user left one channel, gate should deny")
	}
	if !report.Channels[0].Joined || report.Channels[1].Joined {
		t.Errorf("joined flags = %v/%v, want true/false",
			report.Channels[0].Joined, report.Channels[1].Joined)
	}
}

func TestAccessGateRestrictedCountsAsJoined(t *testing.T) {
	gw := newFakeGateway()
	gw.chats[-1001] = &gateway.ChatInfo{ID: -1001, Title: "Updates", Username: "updates"}
	gw.setMember(-1001, 42, gateway.StatusRestricted)

	gate := NewAccessGate(gw, []int64{-1001}, time.Minute, testLogger())
	if report := gate.Check(context.Background(), 42); !report.AllSatisfied {
		t.Error("restricted members are still in the channel")
	}
}

func TestAccessGateFailsClosed(t *testing.T) {
	gw := newFakeGateway()
	gw.chats[-1001] = &gateway.ChatInfo{ID: -1001, Title: "Updates", Username: "updates"}
	gw.memberErr[-1001] = errors.New("member lookup timeout")
	gw.setMember(-1001, 42, gateway.StatusMember)

	gate := NewAccessGate(gw, []int64{-1001}, time.Minute, testLogger())
	report := gate.Check(context.Background(), 42)

	if report.AllSatisfied {
		t.Fatal("lookup failure must deny, never grant")
	}
	if report.Channels[0].Error == "" {
		t.Error("expected the lookup error to be preserved on the channel status")
	}
}

func TestAccessGateChatResolveFailureFallsBackToSynthesizedURL(t *testing.T) {
	gw := newFakeGateway()
	gw.chatErr[-1001234] = errors.New("chat not reachable")

	gate := NewAccessGate(gw, []int64{-1001234}, time.Minute, testLogger())
	report := gate.Check(context.Background(), 42)

	if report.AllSatisfied {
		t.Fatal("unresolvable channel must deny")
	}
	if got, want := report.Channels[0].JoinURL, "https://t.me/c/1234"; got != want {
		t.Errorf("synthesized URL = %q, want %q", got, want)
	}
}

func TestAccessGatePrivateChannelWithoutInviteSynthesizesURL(t *testing.T) {
	gw := newFakeGateway()
	gw.chats[-1005678] = &gateway.ChatInfo{ID: -1005678, Title: "Backup"}
	gw.inviteErr[-1005678] = errors.New("not enough rights")
	gw.setMember(-1005678, 42, gateway.StatusMember)

	gate := NewAccessGate(gw, []int64{-1005678}, time.Minute, testLogger())
	report := gate.Check(context.Background(), 42)

	if got, want := report.Channels[0].JoinURL, "https://t.me/c/5678"; got != want {
		t.Errorf("synthesized URL = %q, want %q", got, want)
	}
	if !report.AllSatisfied {
		t.Error("invite export failure alone should not deny a joined user")
	}
}

func TestAccessGateCachedAndInvalidate(t *testing.T) {
	gw := newFakeGateway()
	gw.chats[-1001] = &gateway.ChatInfo{ID: -1001, Title: "Updates", Username: "updates"}
	gw.setMember(-1001, 42, gateway.StatusLeft)

	gate := NewAccessGate(gw, []int64{-1001}, time.Minute, testLogger())
	ctx := context.Background()

	first := gate.CheckCached(ctx, 42)
	if first.AllSatisfied {
		t.Fatal("user has not joined yet")
	}

	// The user joins; the cached view stays stale until invalidated.
	gw.setMember(-1001, 42, gateway.StatusMember)
	if cached := gate.CheckCached(ctx, 42); cached.AllSatisfied {
		t.Error("cached report should still be the stale denial")
	}

	gate.Invalidate(42)
	if fresh := gate.CheckCached(ctx, 42); !fresh.AllSatisfied {
		t.Error("after invalidation the fresh membership should be visible")
	}
}
