package memory_test

import (
	"testing"

	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/ports"
)

func TestMemorySessionStore_Contract(t *testing.T) {
	store := memory.NewSessionStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryHistoryStore_Contract(t *testing.T) {
	store := memory.NewHistoryStore()
	ports.RunHistoryStoreContract(t, store)
}
