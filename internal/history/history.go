// Package history persists the conversation log under a caller-supplied key.
package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	widgeterrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/store"
)

// DefaultKey is the persistence key used when the caller supplies none.
const DefaultKey = "chatgpt-widget-history"

// Load reads the conversation stored under key. An absent value yields an
// empty log. An unparsable value is discarded: the condition is logged and
// an empty log returned, never an error to the caller.
func Load(s *store.Store, key string) []models.Message {
	data, err := s.Get(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("failed to read chat history")
		}
		return []models.Message{}
	}

	var msgs []models.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		log.Warn().
			Err(fmt.Errorf("%w: %v", widgeterrors.ErrStorageCorrupt, err)).
			Str("key", key).
			Msg("discarding unparsable chat history")
		return []models.Message{}
	}
	return msgs
}

// Save serializes the full ordered log and writes it back in a single store
// write. It is invoked after every log mutation, so a crash loses at most
// the in-flight exchange.
func Save(s *store.Store, key string, msgs []models.Message) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal chat history: %w", err)
	}
	return s.Set(key, data)
}

// Clear removes the stored log.
func Clear(s *store.Store, key string) error {
	return s.Delete(key)
}
