package surface

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrBadNote = errors.New("note is not a plain sound name")

// Player plays a named sound. Callers treat it as best-effort.
type Player interface {
	Play(note string) error
}

type PlayerFunc func(note string) error

func (f PlayerFunc) Play(note string) error { return f(note) }

type NopPlayer struct{}

func (NopPlayer) Play(string) error { return nil }

// SoundPath resolves a note to <dir>/<note>.mp3. Notes that would escape
// dir are refused.
func SoundPath(dir, note string) (string, error) {
	if note == "" || strings.ContainsAny(note, `/\`) || strings.Contains(note, "..") {
		return "", fmt.Errorf("%q: %w", note, ErrBadNote)
	}
	return filepath.Join(dir, note+".mp3"), nil
}

// CommandPlayer hands the sound file to an external program, for example
// "mpg123 -q" or "afplay", and does not wait for it to finish.
type CommandPlayer struct {
	Program string
	Args    []string
	Dir     string
}

func NewCommandPlayer(command, dir string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty player command")
	}
	return &CommandPlayer{Program: fields[0], Args: fields[1:], Dir: dir}, nil
}

func (p *CommandPlayer) Play(note string) error {
	path, err := SoundPath(p.Dir, note)
	if err != nil {
		return err
	}
	args := append(append([]string(nil), p.Args...), path)
	cmd := exec.Command(p.Program, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("play %s: %w", note, err)
	}
	go cmd.Wait()
	return nil
}
