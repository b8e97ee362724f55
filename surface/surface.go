package surface

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
	"github.com/pongsant/Assignment-4-Collaboration/session"
)

const (
	StatusConnecting   = "Connecting..."
	StatusWaiting      = "Connected. Waiting for another player..."
	StatusAlone        = "You are alone. Open another tab to test."
	StatusTwoPlayers   = "Two players connected. Start playing!"
	StatusDisconnected = "Disconnected from server."
)

// Sender is the outbound half of a session.
type Sender interface {
	Send(msg domain.Message) error
	IsOpen() bool
}

type Options struct {
	Keys     KeyMap
	Player   Player
	Flasher  *Flasher
	Log      *ActivityLog
	OnStatus func(string)
}

// Surface turns key presses into notes and renders notes coming back from
// the relay. All entry points are serialized, so input and inbound events
// never interleave.
type Surface struct {
	keys     KeyMap
	player   Player
	flasher  *Flasher
	log      *ActivityLog
	onStatus func(string)

	mu     sync.Mutex
	sender Sender
	status string
	routes map[string]func(domain.Message)
}

func New(opts Options) *Surface {
	s := &Surface{
		keys:     opts.Keys,
		player:   opts.Player,
		flasher:  opts.Flasher,
		log:      opts.Log,
		onStatus: opts.OnStatus,
		status:   StatusConnecting,
	}
	if s.keys == nil {
		s.keys = DefaultKeyMap()
	}
	if s.player == nil {
		s.player = NopPlayer{}
	}
	if s.flasher == nil {
		s.flasher = NewFlasher(nil, DefaultFlashDuration)
	}
	if s.log == nil {
		s.log = NewActivityLog(nil)
	}
	s.routes = map[string]func(domain.Message){
		domain.TypeNote:        s.onNote,
		domain.TypePlayerCount: s.onPlayerCount,
	}
	return s
}

// Attach wires the surface to a session: inbound events and state changes
// flow in, local notes flow out.
func (s *Surface) Attach(sess *session.Session) {
	s.mu.Lock()
	s.sender = sess
	s.mu.Unlock()
	sess.OnEvent(s.HandleEvent)
	sess.OnState(s.HandleConnectionStateChange)
}

// SetSender replaces the outbound channel. Mostly useful in tests.
func (s *Surface) SetSender(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

// Close releases pending flash timers.
func (s *Surface) Close() {
	s.flasher.Close()
}

func (s *Surface) Keys() KeyMap { return s.keys }

func (s *Surface) Log() *ActivityLog { return s.log }

func (s *Surface) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// PressKey handles a keyboard press. Unmapped keys do nothing.
func (s *Surface) PressKey(key string) {
	note, ok := s.keys.Lookup(key)
	if !ok {
		return
	}
	s.HandleLocalNote(note)
}

func (s *Surface) HandleLocalNote(note string) {
	if !s.keys.HasNote(note) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.play(note)
	s.flasher.Flash(note, Self)
	s.log.Append(Self, fmt.Sprintf("You played %s", note))

	if s.sender != nil && s.sender.IsOpen() {
		if err := s.sender.Send(domain.NewNote(note)); err != nil {
			slog.Warn("send note failed", "note", note, "error", err)
		}
	}
}

// HandleRemoteNote renders a peer's note. It never sends.
func (s *Surface) HandleRemoteNote(note string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.play(note)
	if s.keys.HasNote(note) {
		s.flasher.Flash(note, Partner)
	}
	s.log.Append(Partner, fmt.Sprintf("Partner played %s", note))
}

// HandleEvent dispatches an inbound message by type.
func (s *Surface) HandleEvent(msg domain.Message) {
	route, ok := s.routes[msg.Type]
	if !ok {
		slog.Debug("ignoring unknown message type", "type", msg.Type)
		return
	}
	route(msg)
}

func (s *Surface) HandleConnectionStateChange(state session.State) {
	switch state {
	case session.StateConnecting:
		s.setStatus(StatusConnecting)
	case session.StateOpen:
		s.setStatus(StatusWaiting)
	case session.StateClosed:
		s.setStatus(StatusDisconnected)
	default:
		slog.Debug("ignoring unknown connection state", "state", state)
	}
}

// HandlePlayerCount maps the relay's count to a status line. Counts above
// two get a generic line; counts below one leave the status alone.
func (s *Surface) HandlePlayerCount(n int) {
	switch {
	case n == 1:
		s.setStatus(StatusAlone)
	case n == 2:
		s.setStatus(StatusTwoPlayers)
	case n > 2:
		s.setStatus(fmt.Sprintf("%d players connected.", n))
	default:
		slog.Debug("ignoring player count", "count", n)
	}
}

func (s *Surface) onNote(msg domain.Message) {
	if err := msg.Validate(); err != nil {
		slog.Warn("invalid note from server", "error", err)
		return
	}
	s.HandleRemoteNote(msg.Note)
}

func (s *Surface) onPlayerCount(msg domain.Message) {
	n, ok := msg.PlayerCount()
	if !ok {
		slog.Warn("playerCount without count")
		return
	}
	s.HandlePlayerCount(n)
}

func (s *Surface) play(note string) {
	if err := s.player.Play(note); err != nil {
		slog.Debug("playback failed", "note", note, "error", err)
	}
}

func (s *Surface) setStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
	if s.onStatus != nil {
		s.onStatus(text)
	}
}
