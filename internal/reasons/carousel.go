package reasons

// Carousel tracks which card is in front. Navigation wraps around.
type Carousel struct {
	Len    int
	Active int
}

// At returns a carousel over n cards with active wrapped into range.
func At(n, active int) Carousel {
	if n == 0 {
		return Carousel{}
	}
	return Carousel{Len: n, Active: ((active % n) + n) % n}
}

// Move applies a "next" or "prev" step; anything else leaves c unchanged.
func (c Carousel) Move(dir string) Carousel {
	switch dir {
	case "next":
		return c.Next()
	case "prev":
		return c.Prev()
	}
	return c
}

func (c Carousel) Next() Carousel {
	if c.Len == 0 {
		return c
	}
	c.Active = (c.Active + 1) % c.Len
	return c
}

func (c Carousel) Prev() Carousel {
	if c.Len == 0 {
		return c
	}
	c.Active = (c.Active - 1 + c.Len) % c.Len
	return c
}

// Neighbors returns the cards shown either side of the active one.
func (c Carousel) Neighbors() (prev, next int) {
	return c.Prev().Active, c.Next().Active
}
