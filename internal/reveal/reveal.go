// Package reveal implements the incremental disclosure of an assistant
// reply: a lazy, finite, cancelable sequence of prefixes of the full text.
// The animation is purely cosmetic; the committed message is appended to
// the log only once the sequence is exhausted.
package reveal

import (
	"sync"
	"time"
)

// DefaultInterval is the reference cadence: one character every 50ms.
const DefaultInterval = 50 * time.Millisecond

// Run is one reveal animation. Strict prefixes of the target text arrive on
// C in order, ending with the full text, after which C is closed. A Run is
// not restartable; start a fresh one for the next message.
type Run struct {
	C <-chan string

	stop chan struct{}
	once sync.Once
}

// Start begins revealing text one rune per interval. When enabled is false
// the run is a one-shot pass-through: the full text is emitted immediately
// and the channel closed.
func Start(text string, interval time.Duration, enabled bool) *Run {
	ch := make(chan string)
	r := &Run{C: ch, stop: make(chan struct{})}

	go func() {
		defer close(ch)

		if !enabled || text == "" {
			select {
			case ch <- text:
			case <-r.stop:
			}
			return
		}

		runes := []rune(text)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 1; i <= len(runes); i++ {
			select {
			case <-ticker.C:
			case <-r.stop:
				return
			}
			select {
			case ch <- string(runes[:i]):
			case <-r.stop:
				return
			}
		}
	}()

	return r
}

// Stop cancels the run; C is closed without further prefixes. Safe to call
// more than once.
func (r *Run) Stop() {
	r.once.Do(func() {
		close(r.stop)
	})
}
