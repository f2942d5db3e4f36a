package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/altustroy/snab/internal/imports/entity"
	"github.com/altustroy/snab/internal/imports/normalize"
)

// BridgeMessage is one event from a companion catalog window, relayed by
// the events endpoint or the websocket. Only material creation is acted
// on; other types pass through untouched.
type BridgeMessage struct {
	Type    string         `json:"type"`
	Payload *BridgePayload `json:"payload,omitempty"`
}

// BridgePayload is the created entity a companion window announces. Unit
// is the sender's unit spelling; it rides along for display but plays no
// part in matching.
type BridgePayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

const bridgeMaterialCreated = "materialCreated"

// creation placeholder a catalog window writes into a material cell
const createPrefix = "Создать \""

// targetName strips the creation placeholder so both the plain spelling
// and the placeholder form of a row match the created material.
func targetName(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if strings.HasPrefix(trimmed, createPrefix) && strings.HasSuffix(trimmed, "\"") {
		return trimmed[len(createPrefix) : len(trimmed)-1]
	}
	return trimmed
}

// ApplyBridgeMessage applies one bridge event to the first live session
// holding an unresolved row for the created material. Sessions in any
// state are eligible, committed and cancelled ones included, because the
// companion window may confirm a creation after the import finished.
// Returns true when some row was resolved.
func (s *ImportService) ApplyBridgeMessage(msg BridgeMessage) bool {
	if msg.Type != bridgeMaterialCreated || msg.Payload == nil || msg.Payload.Name == "" {
		return false
	}
	ref := entity.EntityRef{ID: msg.Payload.ID, Name: msg.Payload.Name}

	var updated *entity.ImportSession
	s.store.Each(func(sess *entity.ImportSession) bool {
		if !applyMaterialCreated(sess, &ref) {
			return false
		}
		updated = sess.Clone()
		s.logger.Info("bridge resolved material",
			zap.String("session_id", sess.ID),
			zap.String("material", ref.Name))
		return true
	})
	if updated == nil {
		return false
	}
	s.notify(updated)
	return true
}

// applyMaterialCreated binds the created material to every matching
// unresolved row of one session. Reports whether anything changed.
func applyMaterialCreated(sess *entity.ImportSession, material *entity.EntityRef) bool {
	want := normalize.Generic(material.Name)
	changed := false
	for i := range sess.Items {
		it := &sess.Items[i]
		if it.MaterialRef != nil {
			continue
		}
		if normalize.Generic(targetName(it.SupplierMaterialName)) != want {
			continue
		}
		ref := *material
		it.MaterialRef = &ref
		changed = true
	}
	if changed {
		sess.UpdatedAt = time.Now()
	}
	return changed
}
