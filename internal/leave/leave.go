package leave

import (
    "fmt"
    "sync"
)

// Book holds per-contributor leave days for the current session. It is owned
// by the process, never persisted, and passed explicitly into the efficiency
// calculation.
type Book struct {
    mu   sync.Mutex
    max  int
    days map[string]int
}

func NewBook(maxDays int) *Book {
    if maxDays <= 0 { maxDays = 5 }
    return &Book{max: maxDays, days: map[string]int{}}
}

func (b *Book) Set(contributor string, days int) error {
    if contributor == "" { return fmt.Errorf("leave: empty contributor") }
    if days < 0 || days > b.max { return fmt.Errorf("leave: days must be between 0 and %d", b.max) }
    b.mu.Lock()
    defer b.mu.Unlock()
    if days == 0 { delete(b.days, contributor) } else { b.days[contributor] = days }
    return nil
}

// Reset clears a contributor back to zero leave days.
func (b *Book) Reset(contributor string) {
    b.mu.Lock()
    defer b.mu.Unlock()
    delete(b.days, contributor)
}

func (b *Book) Get(contributor string) int {
    b.mu.Lock()
    defer b.mu.Unlock()
    return b.days[contributor]
}

// Days returns a copy safe to hand to a pipeline run.
func (b *Book) Days() map[string]int {
    b.mu.Lock()
    defer b.mu.Unlock()
    out := make(map[string]int, len(b.days))
    for k, v := range b.days { out[k] = v }
    return out
}
