package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer без WithUnsafe: сырой HTML в markdown экранируется
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Section struct {
	ID   string
	Name string
	Icon string
}

type City struct {
	ID          string
	Name        string
	Icon        string
	Color       string
	Description string
	Population  string
	Places      []string
	Lore        template.HTML
}

type Game struct {
	Name string
	Icon string
}

type CoinPack struct {
	Amount string
	Price  string
	Bonus  string
}

// Content — статические разделы лендинга и страницы путешествия
type Content struct {
	Intro    template.HTML
	Currency template.HTML
	Sections []Section
	Cities   []City
	Games    []Game
	Packs    []CoinPack
}

func loadContent() (*Content, error) {
	c := &Content{
		Sections: []Section{
			{ID: "cities", Name: "Города", Icon: "Building2"},
			{ID: "gotovs", Name: "Готовс", Icon: "Skull"},
			{ID: "emovsk", Name: "Эмовск", Icon: "Heart"},
			{ID: "map", Name: "Карта", Icon: "Map"},
			{ID: "games", Name: "Мини-игры", Icon: "Gamepad2"},
			{ID: "gifts", Name: "Подарки", Icon: "Gift"},
			{ID: "currency", Name: "Валюта", Icon: "Coins"},
			{ID: "shop", Name: "Магазин валюты", Icon: "ShoppingBag"},
		},
		Cities: []City{
			{
				ID:          "gotovs",
				Name:        "Готовс",
				Icon:        "Skull",
				Color:       "purple",
				Description: "Темный город готической субкультуры",
				Population:  "850K",
				Places:      []string{"Замок Теней", "Кладбище Грез", "Театр Ночи", "Библиотека Тьмы"},
			},
			{
				ID:          "emovsk",
				Name:        "Эмовск",
				Icon:        "Heart",
				Color:       "pink",
				Description: "Эмоциональный центр чувств и переживаний",
				Population:  "650K",
				Places:      []string{"Парк Чувств", "Арт-Квартал", "Музей Эмоций", "Кафе Слёз"},
			},
		},
		Games: []Game{
			{Name: "Граффити Битва", Icon: "Paintbrush"},
			{Name: "Субкультурный Квиз", Icon: "Brain"},
			{Name: "Музыкальный Баттл", Icon: "Music"},
		},
		Packs: []CoinPack{
			{Amount: "500", Price: "₽99"},
			{Amount: "1200", Price: "₽199", Bonus: "+200 бонус"},
			{Amount: "3000", Price: "₽499", Bonus: "+500 бонус"},
		},
	}

	var err error
	if c.Intro, err = renderMarkdown("content/intro.md"); err != nil {
		return nil, err
	}
	if c.Currency, err = renderMarkdown("content/currency.md"); err != nil {
		return nil, err
	}
	for i := range c.Cities {
		if c.Cities[i].Lore, err = renderMarkdown("content/" + c.Cities[i].ID + ".md"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func renderMarkdown(path string) (template.HTML, error) {
	src, err := assets.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	return template.HTML(buf.String()), nil
}
