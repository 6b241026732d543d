// Package builtin implements the commands the shell runs in its own process.
package builtin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marcelocantos/minish/internal/proc"
)

// Builtin is a command executed without spawning a process.
type Builtin interface {
	// Name returns the verb the builtin is registered under.
	Name() string

	// Run executes the builtin. args[0] is the verb. The returned status
	// follows process conventions; a non-nil error is reserved for
	// *ExitError.
	Run(ctx context.Context, pc proc.Context, args []string, stdio proc.Stdio) (int, error)
}

// Terminal is implemented by builtins that end the shell. They run before
// any redirection is applied.
type Terminal interface {
	Builtin
	terminal()
}

// ExitError requests termination of the shell with Code. It travels up
// through the evaluator until it reaches the top-level caller or the
// enclosing concurrent branch.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// Registry maps verbs to builtins.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]Builtin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]Builtin)}
}

// Default returns a registry holding cd, pwd, exit and quit.
func Default() *Registry {
	r := NewRegistry()
	r.Register(&Cd{})
	r.Register(&Pwd{})
	r.Register(&Exit{Verb: "exit"})
	r.Register(&Exit{Verb: "quit"})
	return r
}

// Register adds b under its name, replacing any previous entry.
func (r *Registry) Register(b Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[b.Name()] = b
}

// Lookup returns the builtin registered for name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builtins[name]
	return b, ok
}

// All returns all registered builtins sorted by name.
func (r *Registry) All() []Builtin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Builtin, 0, len(r.builtins))
	for _, b := range r.builtins {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name() < all[j].Name()
	})
	return all
}
