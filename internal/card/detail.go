package card

import (
	"fmt"
)

// CardDetail is the public view of a printing.
type CardDetail struct {
	Name          string   `json:"name"`
	ManaCost      string   `json:"mana_cost"`
	CMC           float64  `json:"cmc"`
	Colors        []string `json:"colors"`
	ColorIdentity []string `json:"color_identity"`
	Type          string   `json:"type"`
	Supertypes    []string `json:"supertypes"`
	Types         []string `json:"types"`
	Subtypes      []string `json:"subtypes"`
	Rarity        string   `json:"rarity"`
	Set           string   `json:"set"`
	SetName       string   `json:"set_name"`
	Text          string   `json:"text"`
	Flavor        string   `json:"flavor,omitempty"`
	Artist        string   `json:"artist"`
	Number        string   `json:"number"`
	Power         string   `json:"power,omitempty"`
	Toughness     string   `json:"toughness,omitempty"`
	Layout        string   `json:"layout"`
	MultiverseID  int      `json:"multiverse_id"`
	ImageURL      string   `json:"image_url"`
	Watermark     string   `json:"watermark,omitempty"`
	Rulings       []string `json:"rulings"`
	Printings     []string `json:"printings"`
	OriginalText  string   `json:"original_text,omitempty"`
	OriginalType  string   `json:"original_type,omitempty"`
	Legalities    []string `json:"legalities"`
	ID            string   `json:"id"`
}

func NewDetail(p Printing) CardDetail {
	rulings := make([]string, 0, len(p.Rulings))
	for _, r := range p.Rulings {
		rulings = append(rulings, fmt.Sprintf("Date:%s,Text:%s", r.Date, r.Text))
	}
	legalities := make([]string, 0, len(p.Legalities))
	for _, l := range p.Legalities {
		legalities = append(legalities, fmt.Sprintf("Format:%s,Legality:%s", l.Format, l.Legality))
	}

	return CardDetail{
		Name:          p.Name,
		ManaCost:      p.ManaCost,
		CMC:           p.CMC,
		Colors:        p.Colors,
		ColorIdentity: p.ColorIdentity,
		Type:          p.Type,
		Supertypes:    p.Supertypes,
		Types:         p.Types,
		Subtypes:      p.Subtypes,
		Rarity:        p.Rarity,
		Set:           p.Set,
		SetName:       p.SetName,
		Text:          p.Text,
		Flavor:        p.Flavor,
		Artist:        p.Artist,
		Number:        p.Number,
		Power:         p.Power,
		Toughness:     p.Toughness,
		Layout:        p.Layout,
		MultiverseID:  p.MultiverseID,
		ImageURL:      p.ImageURL,
		Watermark:     p.Watermark,
		Rulings:       rulings,
		Printings:     p.Printings,
		OriginalText:  p.OriginalText,
		OriginalType:  p.OriginalType,
		Legalities:    legalities,
		ID:            p.ID,
	}
}

func NewDetails(printings []Printing) []CardDetail {
	out := make([]CardDetail, 0, len(printings))
	for _, p := range printings {
		out = append(out, NewDetail(p))
	}
	return out
}
