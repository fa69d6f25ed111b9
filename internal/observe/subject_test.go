package observe

import (
	"reflect"
	"testing"
)

func TestSubscribeReceivesCurrentValue(t *testing.T) {
	s := NewSubject(7)

	var got []int
	s.Subscribe(func(v int) { got = append(got, v) })

	if !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("late subscriber got %v, expected [7]", got)
	}
}

func TestPublishOrder(t *testing.T) {
	s := NewSubject(0)

	var first, second []int
	s.Subscribe(func(v int) { first = append(first, v) })
	s.Publish(1)
	s.Subscribe(func(v int) { second = append(second, v) })
	s.Publish(2)
	s.Publish(3)

	if !reflect.DeepEqual(first, []int{0, 1, 2, 3}) {
		t.Errorf("first subscriber got %v", first)
	}
	if !reflect.DeepEqual(second, []int{1, 2, 3}) {
		t.Errorf("second subscriber got %v", second)
	}
	if s.Value() != 3 {
		t.Errorf("Value() = %d, expected 3", s.Value())
	}
}

func TestSubscribersNotifiedInSubscriptionOrder(t *testing.T) {
	s := NewSubject("")

	var order []string
	s.Subscribe(func(string) { order = append(order, "a") })
	s.Subscribe(func(string) { order = append(order, "b") })
	order = nil

	s.Publish("x")
	if !reflect.DeepEqual(order, []string{"a", "b"}) {
		t.Errorf("notification order = %v, expected [a b]", order)
	}
}

func TestCancel(t *testing.T) {
	s := NewSubject(false)

	calls := 0
	cancel := s.Subscribe(func(bool) { calls++ })
	s.Publish(true)
	cancel()
	s.Publish(false)

	if calls != 2 {
		t.Errorf("subscriber called %d times, expected 2", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after cancel, expected 0", s.Len())
	}

	// Cancelling twice is harmless
	cancel()
}

func TestCancelDuringPublish(t *testing.T) {
	s := NewSubject(0)

	var cancel func()
	calls := 0
	cancel = s.Subscribe(func(v int) {
		calls++
		if v == 1 {
			cancel()
		}
	})
	other := 0
	s.Subscribe(func(int) { other++ })

	s.Publish(1)
	s.Publish(2)

	if calls != 2 {
		t.Errorf("self-cancelling subscriber called %d times, expected 2", calls)
	}
	if other != 3 {
		t.Errorf("other subscriber called %d times, expected 3", other)
	}
}
