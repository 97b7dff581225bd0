package card

import (
	"strconv"

	"proxydeck/internal/platform/mtgapi"
)

// Printing is one set-specific version of a named card.
type Printing struct {
	ID            string
	Name          string
	ManaCost      string
	CMC           float64
	Colors        []string
	ColorIdentity []string
	Type          string
	Supertypes    []string
	Types         []string
	Subtypes      []string
	Rarity        string
	Set           string
	SetName       string
	Text          string
	Flavor        string
	Artist        string
	Number        string
	Power         string
	Toughness     string
	Layout        string
	MultiverseID  int
	ImageURL      string
	Watermark     string
	Rulings       []mtgapi.Ruling
	Printings     []string
	OriginalText  string
	OriginalType  string
	Legalities    []mtgapi.Legality
}

// Key identifies the printing in storage. It is empty when the printing has
// no multiverse id.
func (p Printing) Key() string {
	if p.MultiverseID <= 0 {
		return ""
	}
	return strconv.Itoa(p.MultiverseID)
}

// HasImage reports whether the printing can be fetched as an image.
func (p Printing) HasImage() bool {
	return p.MultiverseID > 0 && p.ImageURL != ""
}

func fromAPI(c mtgapi.Card) Printing {
	return Printing{
		ID:            c.ID,
		Name:          c.Name,
		ManaCost:      c.ManaCost,
		CMC:           c.CMC,
		Colors:        c.Colors,
		ColorIdentity: c.ColorIdentity,
		Type:          c.Type,
		Supertypes:    c.Supertypes,
		Types:         c.Types,
		Subtypes:      c.Subtypes,
		Rarity:        c.Rarity,
		Set:           c.Set,
		SetName:       c.SetName,
		Text:          c.Text,
		Flavor:        c.Flavor,
		Artist:        c.Artist,
		Number:        c.Number,
		Power:         c.Power,
		Toughness:     c.Toughness,
		Layout:        c.Layout,
		MultiverseID:  int(c.MultiverseID),
		ImageURL:      c.ImageURL,
		Watermark:     c.Watermark,
		Rulings:       c.Rulings,
		Printings:     c.Printings,
		OriginalText:  c.OriginalText,
		OriginalType:  c.OriginalType,
		Legalities:    c.Legalities,
	}
}
