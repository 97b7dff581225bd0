package mtgapi

// CardsResponse matches GET /cards?name=...
type CardsResponse struct {
	Cards []Card `json:"cards"`
}

// CardResponse matches GET /cards/{multiverseId}
type CardResponse struct {
	Card *Card `json:"card"`
}

type Ruling struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

type Legality struct {
	Format   string `json:"format"`
	Legality string `json:"legality"`
}

type ForeignName struct {
	Name         string       `json:"name"`
	Language     string       `json:"language"`
	MultiverseID MultiverseID `json:"multiverseid"`
}

type Card struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	ManaCost      string        `json:"manaCost"`
	CMC           float64       `json:"cmc"`
	Colors        []string      `json:"colors"`
	ColorIdentity []string      `json:"colorIdentity"`
	Type          string        `json:"type"`
	Supertypes    []string      `json:"supertypes"`
	Types         []string      `json:"types"`
	Subtypes      []string      `json:"subtypes"`
	Rarity        string        `json:"rarity"`
	Set           string        `json:"set"`
	SetName       string        `json:"setName"`
	Text          string        `json:"text"`
	Flavor        string        `json:"flavor"`
	Artist        string        `json:"artist"`
	Number        string        `json:"number"`
	Power         string        `json:"power"`
	Toughness     string        `json:"toughness"`
	Layout        string        `json:"layout"`
	MultiverseID  MultiverseID  `json:"multiverseid"`
	ImageURL      string        `json:"imageUrl"`
	Watermark     string        `json:"watermark"`
	Rulings       []Ruling      `json:"rulings"`
	ForeignNames  []ForeignName `json:"foreignNames"`
	Printings     []string      `json:"printings"`
	OriginalText  string        `json:"originalText"`
	OriginalType  string        `json:"originalType"`
	Legalities    []Legality    `json:"legalities"`
}
