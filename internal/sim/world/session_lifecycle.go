package world

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"voxeledit.ai/internal/protocol"
	"voxeledit.ai/internal/sim/world/feature/editcmd"
	"voxeledit.ai/internal/sim/world/feature/history"
	"voxeledit.ai/internal/sim/world/kernel/model"
)

const maxBuilderName = 32

func normalizeBuilderName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "builder"
	}
	if utf8.RuneCountInString(name) > maxBuilderName {
		name = string([]rune(name)[:maxBuilderName])
	}
	return name
}

func newSessionID(n uint64) string { return fmt.Sprintf("S%06d", n) }

// ownerFor derives a stable owner identity, so replaying a tick log yields the same owners.
func ownerFor(worldID, sessionID string) model.Owner {
	return model.Owner(uuid.NewSHA1(uuid.NameSpaceURL, []byte("voxeledit://"+worldID+"/"+sessionID)).String())
}

func (w *World) joinSession(name string, out chan []byte) JoinResponse {
	nowTick := w.tick.Load()
	name = normalizeBuilderName(name)
	id := newSessionID(w.nextSessionNum.Add(1))
	owner := ownerFor(w.cfg.ID, id)

	b := &editcmd.Builder{
		Owner:     owner,
		Dimension: model.RegionHandle(w.cfg.DefaultDimension),
		Pos:       w.cfg.Spawn,
		History: history.New(owner, w.snaps, history.Options{
			Limit:           w.cfg.HistoryLimit,
			IncludeEntities: w.cfg.IncludeEntities,
			Logger:          w.log,
		}),
	}
	s := &session{ID: id, Name: name, Out: out, Builder: b, JoinedTick: nowTick}
	w.sessions[id] = s
	w.owners[owner] = s
	w.log.Printf("session %s joined as %q (owner %s)", id, name, owner)

	return JoinResponse{Welcome: w.buildWelcome(s)}
}

func (w *World) buildWelcome(s *session) protocol.WelcomeMsg {
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       s.ID,
		Owner:           string(s.Builder.Owner),
		WorldID:         w.cfg.ID,
		Dimension:       string(s.Builder.Dimension),
		Position:        s.Builder.Pos.ToArray(),
		Dimensions:      w.manifest,
		Limits: protocol.Limits{
			CaptureLimit: w.snaps.Limit().ToArray(),
			HistoryLimit: w.cfg.HistoryLimit,
			LoadPolicy:   w.snaps.Policy().String(),
			MaxVolume:    w.cfg.MaxVolume,
		},
		BlockPalette: protocol.DigestRef{
			Digest: w.catalogs.Blocks.PaletteDigest,
			Count:  len(w.catalogs.Blocks.Palette),
		},
	}
}

// handleLeave ends a session and releases everything its owner held.
func (w *World) handleLeave(id string) bool {
	s := w.sessions[id]
	if s == nil {
		return false
	}
	if err := w.teardown(s.Builder); err != nil {
		w.log.Printf("session %s teardown: %v", id, err)
	}
	delete(w.sessions, id)
	delete(w.owners, s.Builder.Owner)
	w.log.Printf("session %s left after %d commands", id, s.Commands)
	return true
}

// teardown cancels an open recording, drops the history and sweeps every snapshot the
// owner still holds. The owner's token is released by the sweep.
func (w *World) teardown(b *editcmd.Builder) error {
	var errs []error
	if b.History.IsRecording() {
		if err := b.History.Cancel(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := b.History.Clear(); err != nil {
		errs = append(errs, err)
	}
	if err := w.snaps.DeleteAll(b.Owner); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
