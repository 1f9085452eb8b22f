package serialization

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test payload types
type TestCommand struct {
	OrderID    string  `json:"orderId"`
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
}

type TestEvent struct {
	EventType string            `json:"eventType"`
	Labels    map[string]string `json:"labels"`
}

func TestDefaultTypeRegistry(t *testing.T) {
	t.Run("creates new registry", func(t *testing.T) {
		registry := NewTypeRegistry()
		assert.NotNil(t, registry)
		assert.NotNil(t, registry.types)
		assert.NotNil(t, registry.names)
	})

	t.Run("registers type with name", func(t *testing.T) {
		registry := NewTypeRegistry()

		err := registry.Register("TestCommand", &TestCommand{})
		require.NoError(t, err)

		assert.True(t, registry.IsRegistered("TestCommand"))
	})

	t.Run("registers type automatically", func(t *testing.T) {
		registry := NewTypeRegistry()

		err := registry.RegisterType(&TestCommand{})
		require.NoError(t, err)

		types := registry.ListTypes()
		assert.Len(t, types, 1)
		assert.Contains(t, types[0], "serialization.TestCommand")
	})

	t.Run("rejects empty contract name", func(t *testing.T) {
		registry := NewTypeRegistry()

		err := registry.Register("", &TestCommand{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "contract name cannot be empty")
	})

	t.Run("rejects nil type", func(t *testing.T) {
		registry := NewTypeRegistry()

		err := registry.Register("Test", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "payload type cannot be nil")

		assert.Error(t, registry.RegisterType(nil))
	})

	t.Run("rejects non-struct types", func(t *testing.T) {
		registry := NewTypeRegistry()

		err := registry.Register("Test", "not a struct")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be a struct")
	})

	t.Run("handles duplicate registration of same type", func(t *testing.T) {
		registry := NewTypeRegistry()

		require.NoError(t, registry.Register("TestCommand", TestCommand{}))
		assert.NoError(t, registry.Register("TestCommand", TestCommand{}))

		err := registry.Register("TestCommand", &TestCommand{})
		assert.Error(t, err, "value and pointer forms are distinct registrations")
	})

	t.Run("keeps pointer registrations", func(t *testing.T) {
		registry := NewTypeRegistry()
		require.NoError(t, registry.Register("cmd", &TestCommand{}))

		typ, ok := registry.TypeForContractName("cmd")
		require.True(t, ok)
		assert.Equal(t, reflect.TypeOf(&TestCommand{}), typ)

		for _, sample := range []any{TestCommand{}, &TestCommand{}} {
			name, ok := registry.ContractNameForType(reflect.TypeOf(sample))
			assert.True(t, ok)
			assert.Equal(t, "cmd", name)
		}

		assert.Error(t, registry.Register("other", TestCommand{}))
	})

	t.Run("rejects pointer to pointer", func(t *testing.T) {
		cmd := &TestCommand{}
		assert.Error(t, NewTypeRegistry().Register("cmd", &cmd))
	})

	t.Run("rejects name bound to another type", func(t *testing.T) {
		registry := NewTypeRegistry()

		require.NoError(t, registry.Register("Test", TestCommand{}))
		err := registry.Register("Test", TestEvent{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("rejects type under a second name", func(t *testing.T) {
		registry := NewTypeRegistry()

		require.NoError(t, registry.Register("A", TestCommand{}))
		err := registry.Register("B", TestCommand{})
		assert.Error(t, err)
	})

	t.Run("resolves in both directions", func(t *testing.T) {
		registry := NewTypeRegistry()
		require.NoError(t, registry.Register("orders.command", TestCommand{}))

		name, ok := registry.ContractNameForType(reflect.TypeOf(&TestCommand{}))
		assert.True(t, ok)
		assert.Equal(t, "orders.command", name)

		typ, ok := registry.TypeForContractName("orders.command")
		assert.True(t, ok)
		assert.Equal(t, reflect.TypeOf(TestCommand{}), typ)

		_, ok = registry.ContractNameForType(reflect.TypeOf(TestEvent{}))
		assert.False(t, ok)
		_, ok = registry.ContractNameForType(nil)
		assert.False(t, ok)
		_, ok = registry.TypeForContractName("missing")
		assert.False(t, ok)
	})

	t.Run("lists sorted names", func(t *testing.T) {
		registry := NewTypeRegistry().MustRegister(map[string]any{
			"b": TestEvent{},
			"a": TestCommand{},
		})
		assert.Equal(t, []string{"a", "b"}, registry.ListTypes())
	})

	t.Run("must register panics on conflict", func(t *testing.T) {
		registry := NewTypeRegistry()
		require.NoError(t, registry.Register("a", TestCommand{}))
		assert.Panics(t, func() {
			registry.MustRegister(map[string]any{"a": TestEvent{}})
		})
	})

	t.Run("concurrent access", func(t *testing.T) {
		registry := NewTypeRegistry()
		require.NoError(t, registry.Register("cmd", TestCommand{}))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok := registry.TypeForContractName("cmd")
				assert.True(t, ok)
				_ = registry.RegisterType(TestEvent{})
			}()
		}
		wg.Wait()
		assert.Len(t, registry.ListTypes(), 2)
	})
}
