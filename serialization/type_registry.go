package serialization

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// TypeRegistry maps stable contract names to runtime payload types and back.
type TypeRegistry interface {
	// Register registers a payload type under a contract name
	Register(contractName string, sample any) error

	// RegisterType registers a payload type using its package-qualified struct name
	RegisterType(sample any) error

	// ContractNameForType returns the contract name registered for t
	ContractNameForType(t reflect.Type) (string, bool)

	// TypeForContractName returns the type registered under name
	TypeForContractName(name string) (reflect.Type, bool)

	// IsRegistered checks if a contract name is registered
	IsRegistered(contractName string) bool

	// ListTypes returns all registered contract names, sorted
	ListTypes() []string
}

// DefaultTypeRegistry is the default implementation of TypeRegistry.
// It is safe for concurrent use. A contract name decodes to exactly the type
// it was registered with, so registering &T{} yields *T payloads and T{}
// yields T values. Both T and *T map back to the contract name.
type DefaultTypeRegistry struct {
	types map[string]reflect.Type
	// names is keyed by the struct type with pointers removed
	names map[reflect.Type]string
	mu    sync.RWMutex
}

// NewTypeRegistry creates a new type registry
func NewTypeRegistry() *DefaultTypeRegistry {
	return &DefaultTypeRegistry{
		types: make(map[string]reflect.Type),
		names: make(map[reflect.Type]string),
	}
}

// Register registers a payload type under a contract name
func (r *DefaultTypeRegistry) Register(contractName string, sample any) error {
	if contractName == "" {
		return fmt.Errorf("contract name cannot be empty")
	}

	if sample == nil {
		return fmt.Errorf("payload type cannot be nil")
	}

	t := reflect.TypeOf(sample)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Ptr {
		return fmt.Errorf("payload type must be a struct or pointer to struct, got %v", t)
	}
	base := indirect(t)

	// Ensure it's a struct
	if base.Kind() != reflect.Struct {
		return fmt.Errorf("payload type must be a struct, got %v", base.Kind())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.types[contractName]; exists {
		if existing == t {
			return nil
		}
		return fmt.Errorf("contract name %s already registered to %v", contractName, existing)
	}
	if existing, exists := r.names[base]; exists {
		return fmt.Errorf("type %v already registered as %s", t, existing)
	}

	r.types[contractName] = t
	r.names[base] = contractName

	return nil
}

// RegisterType registers a payload type using its struct name
func (r *DefaultTypeRegistry) RegisterType(sample any) error {
	if sample == nil {
		return fmt.Errorf("payload type cannot be nil")
	}

	t := indirect(reflect.TypeOf(sample))

	contractName := t.Name()
	if contractName == "" {
		return fmt.Errorf("cannot determine contract name for %v", t)
	}

	// Include package path for uniqueness
	if t.PkgPath() != "" {
		contractName = t.PkgPath() + "." + contractName
	}

	return r.Register(contractName, sample)
}

// MustRegister registers each contract name/sample pair and panics on failure.
// Intended for package-level registration of known payload types.
func (r *DefaultTypeRegistry) MustRegister(pairs map[string]any) *DefaultTypeRegistry {
	for name, sample := range pairs {
		if err := r.Register(name, sample); err != nil {
			panic(err)
		}
	}
	return r
}

// ContractNameForType returns the contract name registered for t. Pointer
// types resolve to their element type.
func (r *DefaultTypeRegistry) ContractNameForType(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	t = indirect(t)

	r.mu.RLock()
	defer r.mu.RUnlock()

	name, exists := r.names[t]
	return name, exists
}

// TypeForContractName returns the type registered under name, pointer
// included.
func (r *DefaultTypeRegistry) TypeForContractName(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.types[name]
	return t, exists
}

// IsRegistered checks if a contract name is registered
func (r *DefaultTypeRegistry) IsRegistered(contractName string) bool {
	_, exists := r.TypeForContractName(contractName)
	return exists
}

// ListTypes returns all registered contract names
func (r *DefaultTypeRegistry) ListTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
