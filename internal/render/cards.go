package render

import (
	"strings"

	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/usecase"
)

const (
	// CardDescriptionLimit is the number of characters of description shown on a card
	CardDescriptionLimit = 60

	ellipsis     = "………"
	detailLabel  = "詳細はこちら"
	labelColor   = "#aaaaaa"
	contentColor = "#666666"
)

// Carousel is a LINE Flex carousel holding one bubble per item
type Carousel struct {
	Type     string   `json:"type"`
	Contents []Bubble `json:"contents"`
}

// Bubble is a single LINE Flex card
type Bubble struct {
	Type   string     `json:"type"`
	Hero   *Component `json:"hero,omitempty"`
	Body   *Component `json:"body,omitempty"`
	Footer *Component `json:"footer,omitempty"`
}

// Component is any Flex box, text, image or button
type Component struct {
	Type        string      `json:"type"`
	Layout      string      `json:"layout,omitempty"`
	Text        string      `json:"text,omitempty"`
	URL         string      `json:"url,omitempty"`
	Size        string      `json:"size,omitempty"`
	AspectRatio string      `json:"aspectRatio,omitempty"`
	AspectMode  string      `json:"aspectMode,omitempty"`
	Weight      string      `json:"weight,omitempty"`
	Color       string      `json:"color,omitempty"`
	Wrap        bool        `json:"wrap,omitempty"`
	Flex        int         `json:"flex,omitempty"`
	Margin      string      `json:"margin,omitempty"`
	Spacing     string      `json:"spacing,omitempty"`
	Style       string      `json:"style,omitempty"`
	Height      string      `json:"height,omitempty"`
	Action      *Action     `json:"action,omitempty"`
	Contents    []Component `json:"contents,omitempty"`
}

// Action is the URI action of a button
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri"`
}

// Cards converts comparison items into a Flex carousel, keeping their order
func Cards(items []domain.ComparisonItem) Carousel {
	bubbles := make([]Bubble, 0, len(items))
	for _, item := range items {
		bubbles = append(bubbles, card(item))
	}
	return Carousel{Type: "carousel", Contents: bubbles}
}

func card(item domain.ComparisonItem) Bubble {
	price := item.Price
	description := item.Description
	if !item.HasError {
		price = usecase.FormatPrice(item.Price, item.NumInBox)
		description = usecase.NormalizeDescription(item.Description)
	}

	bubble := Bubble{
		Type: "bubble",
		Body: &Component{
			Type:   "box",
			Layout: "vertical",
			Contents: []Component{
				{Type: "text", Text: item.Name, Weight: "bold", Size: "xl", Wrap: true},
				{
					Type:    "box",
					Layout:  "vertical",
					Margin:  "lg",
					Spacing: "sm",
					Contents: []Component{
						field("価格", price),
						field("容量", item.Capacity),
						field("説明", trimString(description, CardDescriptionLimit)),
					},
				},
			},
		},
	}

	if item.Img != "" {
		bubble.Hero = &Component{
			Type:        "image",
			URL:         item.Img,
			Size:        "full",
			AspectRatio: "20:13",
			AspectMode:  "cover",
		}
	}

	if item.URL != "" {
		bubble.Footer = &Component{
			Type:    "box",
			Layout:  "vertical",
			Spacing: "sm",
			Contents: []Component{
				{
					Type:   "button",
					Style:  "link",
					Height: "sm",
					Action: &Action{Type: "uri", Label: detailLabel, URI: item.URL},
				},
			},
		}
	}

	return bubble
}

// field is a label/value row inside the card body
func field(label, value string) Component {
	if value == "" {
		value = "-"
	}
	return Component{
		Type:    "box",
		Layout:  "baseline",
		Spacing: "sm",
		Contents: []Component{
			{Type: "text", Text: label, Color: labelColor, Size: "sm", Flex: 1},
			{Type: "text", Text: value, Wrap: true, Color: contentColor, Size: "sm", Flex: 4},
		},
	}
}

// trimString cuts s to limit characters and appends an ellipsis when it was longer
func trimString(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRightFunc(string(runes[:limit]), isSpace) + ellipsis
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '　'
}
