// Package flow holds the page's application state and the reducer that is the
// only way to change it.
package flow

import (
	"errors"
	"fmt"

	"github.com/youruser/galentine/internal/album"
	imagepkg "github.com/youruser/galentine/internal/image"
)

// Step is the furthest section of the page the visitor has reached.
type Step string

const (
	StepHero         Step = "hero"
	StepCollage      Step = "collage"
	StepReasons      Step = "reasons"
	StepFinal        Step = "final"
	StepPostProposal Step = "post-proposal-collage"
)

var (
	ErrUnknownStep       = errors.New("unknown step")
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrEmptyWorkingSet   = errors.New("no photos uploaded yet")
	ErrComposing         = errors.New("a collage is already being generated")
	ErrNotEditable       = errors.New("photos can only be edited once the collage section is open")
)

// next is the transition table; the flow is linear.
var next = map[Step]Step{
	StepHero:    StepCollage,
	StepCollage: StepReasons,
	StepReasons: StepFinal,
	StepFinal:   StepPostProposal,
}

func ParseStep(s string) (Step, error) {
	st := Step(s)
	if _, ok := next[st]; ok || st == StepPostProposal {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
}

// State is everything the page remembers for one visitor.
type State struct {
	Step             Step
	Album            album.Album
	Layout           imagepkg.Layout
	ShowPostProposal bool
	Confetti         bool
	Composing        bool
}

func Initial() State {
	return State{Step: StepHero, Layout: imagepkg.LayoutGrid}
}

// Action is an input to Reduce.
type Action interface {
	action()
}

type (
	AddImages    struct{ Uploads []album.Upload }
	RemoveImage  struct{ ID string }
	SetCaption   struct{ ID, Caption string }
	AddSticker   struct{ ID, Sticker string }
	SelectLayout struct{ Layout imagepkg.Layout }
	// Advance moves to the next section. Only the next step in the
	// table is accepted.
	Advance struct{ To Step }
	// Accept is "yes" on the proposal: advance to the keepsake collage
	// with confetti.
	Accept          struct{}
	ComposeStarted  struct{}
	ComposeFinished struct{}
)

func (AddImages) action()       {}
func (RemoveImage) action()     {}
func (SetCaption) action()      {}
func (AddSticker) action()      {}
func (SelectLayout) action()    {}
func (Advance) action()         {}
func (Accept) action()          {}
func (ComposeStarted) action()  {}
func (ComposeFinished) action() {}

// Reduce applies a to s. On error the returned state equals s.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case AddImages:
		return editAlbum(s, func(al album.Album) (album.Album, error) {
			al, _, err := al.Add(a.Uploads...)
			return al, err
		})
	case RemoveImage:
		return editAlbum(s, func(al album.Album) (album.Album, error) { return al.Remove(a.ID) })
	case SetCaption:
		return editAlbum(s, func(al album.Album) (album.Album, error) { return al.SetCaption(a.ID, a.Caption) })
	case AddSticker:
		return editAlbum(s, func(al album.Album) (album.Album, error) { return al.AddSticker(a.ID, a.Sticker) })
	case SelectLayout:
		if _, err := imagepkg.ParseLayout(string(a.Layout)); err != nil {
			return s, err
		}
		s.Layout = a.Layout
		return s, nil
	case Advance:
		if a.To == StepPostProposal {
			return s, fmt.Errorf("%w: %s is reached by accepting", ErrInvalidTransition, a.To)
		}
		return advance(s, a.To)
	case Accept:
		out, err := advance(s, StepPostProposal)
		if err != nil {
			return s, err
		}
		out.Confetti = true
		return out, nil
	case ComposeStarted:
		if s.Composing {
			return s, ErrComposing
		}
		if s.Album.Len() == 0 {
			return s, ErrEmptyWorkingSet
		}
		s.Composing = true
		return s, nil
	case ComposeFinished:
		s.Composing = false
		return s, nil
	}
	return s, fmt.Errorf("unhandled action %T", a)
}

func editAlbum(s State, fn func(album.Album) (album.Album, error)) (State, error) {
	if s.Step == StepHero {
		return s, ErrNotEditable
	}
	al, err := fn(s.Album)
	if err != nil {
		return s, err
	}
	s.Album = al
	return s, nil
}

func advance(s State, to Step) (State, error) {
	if want, ok := next[s.Step]; !ok || want != to {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Step, to)
	}
	switch to {
	case StepReasons:
		if s.Album.Len() == 0 {
			return s, ErrEmptyWorkingSet
		}
	case StepFinal:
		s.Confetti = false
	case StepPostProposal:
		s.Layout = imagepkg.LayoutPolaroid
		s.ShowPostProposal = true
	}
	s.Step = to
	return s, nil
}

// Controls reports which buttons can be used in s.
type Controls struct {
	Download bool `json:"download"`
	Continue bool `json:"continue"`
	Keepsake bool `json:"keepsake"`
}

func Enabled(s State) Controls {
	has := s.Album.Len() > 0
	return Controls{
		Download: has && !s.Composing && s.Step != StepHero,
		Continue: has && s.Step == StepCollage,
		Keepsake: has && !s.Composing && s.ShowPostProposal,
	}
}
