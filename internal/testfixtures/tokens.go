package testfixtures

import (
	"fmt"
	"sync"
)

// TokenGenerator produces predictable session tokens.
type TokenGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
	issued  []string
}

// NewTokenGenerator returns a generator yielding prefix-0001, prefix-0002 and
// so on. An empty prefix defaults to "token".
func NewTokenGenerator(prefix string) *TokenGenerator {
	if prefix == "" {
		prefix = "token"
	}
	return &TokenGenerator{prefix: prefix}
}

// Next returns the next token in the sequence.
func (g *TokenGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	token := fmt.Sprintf("%s-%04d", g.prefix, g.counter)
	g.issued = append(g.issued, token)
	return token
}

// NextFunc exposes Next for injection into the auth service.
func (g *TokenGenerator) NextFunc() func() string {
	if g == nil {
		return nil
	}
	return g.Next
}

// Issued returns the tokens handed out so far.
func (g *TokenGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
