package ids

import (
	"errors"
	"math/rand/v2"
	"sync"

	"voxeledit.ai/internal/sim/world/kernel/model"
)

const (
	TokenAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultTokenLength = 4
	DefaultMaxAttempts = 64
)

var ErrIdentifierExhausted = errors.New("ids: no free identifier token")

// Allocator hands every live owner a short token that no other live owner holds.
// Tokens are only checked against current assignments; a released token may be drawn again.
type Allocator struct {
	length      int
	maxAttempts int
	intn        func(n int) int

	mu     sync.Mutex
	tokens map[model.Owner]string
	held   map[string]model.Owner
}

type Option func(*Allocator)

func WithLength(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.length = n
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithIntn replaces the random source. intn must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(a *Allocator) {
		if intn != nil {
			a.intn = intn
		}
	}
}

func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		length:      DefaultTokenLength,
		maxAttempts: DefaultMaxAttempts,
		intn:        rand.IntN,
		tokens:      map[model.Owner]string{},
		held:        map[string]model.Owner{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TokenFor returns owner's token, drawing one on first use.
func (a *Allocator) TokenFor(owner model.Owner) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if tok, ok := a.tokens[owner]; ok {
		return tok, nil
	}
	for i := 0; i < a.maxAttempts; i++ {
		tok := a.draw()
		if holder, taken := a.held[tok]; taken && holder != owner {
			continue
		}
		a.tokens[owner] = tok
		a.held[tok] = owner
		return tok, nil
	}
	return "", ErrIdentifierExhausted
}

// Lookup returns owner's token without allocating.
func (a *Allocator) Lookup(owner model.Owner) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tok, ok := a.tokens[owner]
	return tok, ok
}

// Release drops owner's token so a different owner may draw it.
func (a *Allocator) Release(owner model.Owner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	tok, ok := a.tokens[owner]
	if !ok {
		return
	}
	delete(a.tokens, owner)
	if a.held[tok] == owner {
		delete(a.held, tok)
	}
}

// Live returns the number of owners currently holding a token.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.tokens)
}

func (a *Allocator) draw() string {
	b := make([]byte, a.length)
	for i := range b {
		b[i] = TokenAlphabet[a.intn(len(TokenAlphabet))]
	}
	return string(b)
}
