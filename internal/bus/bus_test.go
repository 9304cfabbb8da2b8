package bus

import (
	"testing"

	"go.uber.org/zap"

	"github.com/studyhall/seatadmin/internal/model"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := New(zap.NewNop())
	var got []string
	b.Subscribe(func(ev SeatStatusChanged) { got = append(got, "first:"+ev.SeatID) })
	b.Subscribe(func(ev SeatStatusChanged) { got = append(got, "second:"+ev.SeatID) })

	b.Publish(SeatStatusChanged{SeatID: "S-1", Status: model.SeatOccupied})

	want := []string{"first:S-1", "second:S-1"}
	if len(got) != len(want) {
		t.Fatalf("deliveries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("deliveries = %v, want %v", got, want)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(zap.NewNop())
	count := 0
	sub := b.Subscribe(func(SeatStatusChanged) { count++ })

	b.Publish(SeatStatusChanged{SeatID: "S-1", Status: model.SeatAvailable})
	b.Unsubscribe(sub)
	b.Publish(SeatStatusChanged{SeatID: "S-1", Status: model.SeatAvailable})

	if count != 1 {
		t.Fatalf("handler invoked %d times, want 1", count)
	}
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	b := New(zap.NewNop())
	b.Publish(SeatStatusChanged{SeatID: "S-9", Status: model.SeatMaintenance})

	invoked := false
	b.Subscribe(func(SeatStatusChanged) { invoked = true })
	if invoked {
		t.Fatal("late subscriber received a past event")
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	b := New(zap.NewNop())
	reached := false
	b.Subscribe(func(SeatStatusChanged) { panic("view already torn down") })
	b.Subscribe(func(SeatStatusChanged) { reached = true })

	b.Publish(SeatStatusChanged{SeatID: "S-2", Status: model.SeatAvailable})

	if !reached {
		t.Fatal("second handler not reached after first panicked")
	}
}

func TestSubscribeDuringPublishIsSafe(t *testing.T) {
	b := New(zap.NewNop())
	lateInvoked := 0
	var sub Subscription
	b.Subscribe(func(SeatStatusChanged) {
		// mutate the subscriber list mid-delivery
		sub = b.Subscribe(func(SeatStatusChanged) { lateInvoked++ })
	})

	b.Publish(SeatStatusChanged{SeatID: "S-3", Status: model.SeatAvailable})
	if lateInvoked != 0 {
		t.Fatal("handler added during publish received the in-flight event")
	}

	b.Publish(SeatStatusChanged{SeatID: "S-3", Status: model.SeatAvailable})
	if lateInvoked != 1 {
		t.Fatalf("late handler invoked %d times after second publish, want 1", lateInvoked)
	}
	b.Unsubscribe(sub)
}

func TestUnsubscribeDuringPublishIsSafe(t *testing.T) {
	b := New(zap.NewNop())
	secondCount := 0
	var second Subscription
	b.Subscribe(func(SeatStatusChanged) { b.Unsubscribe(second) })
	second = b.Subscribe(func(SeatStatusChanged) { secondCount++ })

	// First publish: the snapshot still contains the second handler.
	b.Publish(SeatStatusChanged{SeatID: "S-4", Status: model.SeatAvailable})
	if secondCount != 1 {
		t.Fatalf("second handler invoked %d times on first publish, want 1", secondCount)
	}

	b.Publish(SeatStatusChanged{SeatID: "S-4", Status: model.SeatAvailable})
	if secondCount != 1 {
		t.Fatalf("second handler still receiving events after unsubscribe, count=%d", secondCount)
	}
}
