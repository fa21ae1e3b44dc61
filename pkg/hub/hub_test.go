package hub

import (
	"testing"
)

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := New("test", nil)

	// No clients and no Run loop: broadcasts must never block.
	for i := 0; i < 200; i++ {
		h.BroadcastJSON(map[string]int{"i": i})
		h.BroadcastBinary([]byte{0xff, 0xd8})
	}

	if h.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", h.ClientCount())
	}
}

func TestHub_BroadcastJSONInvalid(t *testing.T) {
	h := New("test", nil)

	// Unencodable values are logged and dropped, not panicked on.
	h.BroadcastJSON(make(chan int))
}
