package album

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// MaxItems caps the working set.
const MaxItems = 6

// CapNotice is shown to the user when a batch is rejected.
const CapNotice = "You can upload a maximum of 6 photos."

var (
	ErrTooManyImages = errors.New("too many images")
	ErrItemNotFound  = errors.New("image not found")
	ErrEmptySticker  = errors.New("sticker is empty")
)

// Stickers are the tokens offered next to each caption.
var Stickers = []string{"💖", "✨", "🌟", "😊"}

// IsSticker reports whether s is one of the offered stickers.
func IsSticker(s string) bool {
	return slices.Contains(Stickers, s)
}

// Upload is a freshly selected file before it joins the album.
type Upload struct {
	Name string
	MIME string
	Data []byte
}

// Item is a photo in the working set.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MIME    string `json:"mime"`
	Caption string `json:"caption"`
	Data    []byte `json:"-"`
}

// Album is the ordered working set. Methods never modify the receiver's
// backing array, so older Album values stay valid after an update.
type Album struct {
	items []Item
}

func (a Album) Len() int { return len(a.items) }

// Items returns a copy in insertion order.
func (a Album) Items() []Item {
	return slices.Clone(a.items)
}

func (a Album) Get(id string) (Item, bool) {
	i := a.index(id)
	if i < 0 {
		return Item{}, false
	}
	return a.items[i], true
}

// Add appends the whole batch or nothing. A batch that would take the album
// past MaxItems is rejected with ErrTooManyImages.
func (a Album) Add(batch ...Upload) (Album, []Item, error) {
	if len(a.items)+len(batch) > MaxItems {
		return a, nil, fmt.Errorf("%w (have %d, adding %d)", ErrTooManyImages, len(a.items), len(batch))
	}
	added := make([]Item, len(batch))
	for i, u := range batch {
		added[i] = Item{ID: uuid.NewString(), Name: u.Name, MIME: u.MIME, Data: u.Data}
	}
	next := make([]Item, 0, len(a.items)+len(added))
	next = append(next, a.items...)
	next = append(next, added...)
	return Album{items: next}, added, nil
}

// Remove drops the item with id, keeping the others in order.
func (a Album) Remove(id string) (Album, error) {
	i := a.index(id)
	if i < 0 {
		return a, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return Album{items: slices.Delete(slices.Clone(a.items), i, i+1)}, nil
}

func (a Album) SetCaption(id, caption string) (Album, error) {
	return a.update(id, func(it *Item) { it.Caption = caption })
}

// AddSticker appends " "+token to the caption.
func (a Album) AddSticker(id, token string) (Album, error) {
	if token == "" {
		return a, ErrEmptySticker
	}
	return a.update(id, func(it *Item) { it.Caption += " " + token })
}

func (a Album) update(id string, fn func(*Item)) (Album, error) {
	i := a.index(id)
	if i < 0 {
		return a, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	next := slices.Clone(a.items)
	fn(&next[i])
	return Album{items: next}, nil
}

func (a Album) index(id string) int {
	return slices.IndexFunc(a.items, func(it Item) bool { return it.ID == id })
}
