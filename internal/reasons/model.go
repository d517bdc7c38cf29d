package reasons

// Card is one "reason I chose you" in the carousel.
type Card struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Emoji      string `json:"emoji"`
	Background string `json:"bg"`
}

// Defaults is the built-in deck.
var Defaults = []Card{
	{ID: "1", Text: "You always hype me up when I doubt myself. You're my biggest cheerleader!", Emoji: "✨", Background: "bg-pink-100"},
	{ID: "2", Text: "You make even the most ordinary days feel like a grand adventure.", Emoji: "🎢", Background: "bg-purple-100"},
	{ID: "3", Text: "You listen to my long voice notes and overthinking with so much patience.", Emoji: "🎧", Background: "bg-blue-100"},
	{ID: "4", Text: "You're the first person I want to call when anything happens, good or bad.", Emoji: "📞", Background: "bg-peach-100"},
	{ID: "5", Text: "You're my safe place. With you, I can be my 100% weirdest self.", Emoji: "🏡", Background: "bg-green-100"},
	{ID: "6", Text: "You know exactly how I take my coffee and exactly how to fix my mood.", Emoji: "☕", Background: "bg-yellow-100"},
	{ID: "7", Text: "Because life is just significantly better and brighter with you in it.", Emoji: "💖", Background: "bg-rose-100"},
}
