package models

import (
	"time"
)

const (
	MinOpacity = 10
	MaxOpacity = 100
)

type DocumentKind int

const (
	KindPaged DocumentKind = iota
	KindRasterImage
)

func (k DocumentKind) String() string {
	switch k {
	case KindPaged:
		return "paged"
	case KindRasterImage:
		return "raster-image"
	default:
		return "unknown"
	}
}

// SourceHandle references the bytes a session was loaded from. The core never
// looks inside it; whoever closes the session revokes it.
type SourceHandle string

type PageDimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle in page space with its origin at the top-left.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

type ColorName string

const (
	ColorYellow ColorName = "yellow"
	ColorGreen  ColorName = "green"
	ColorBlue   ColorName = "blue"
	ColorPink   ColorName = "pink"
	ColorOrange ColorName = "orange"
	ColorPurple ColorName = "purple"
	ColorRed    ColorName = "red"
	ColorCyan   ColorName = "cyan"
	ColorCustom ColorName = "custom"
)

type ColorEntry struct {
	R   uint8  `json:"r"`
	G   uint8  `json:"g"`
	B   uint8  `json:"b"`
	Hex string `json:"hex"`
}

// Highlight coordinates are expressed at the owning session's current scale
// and rotation.
type Highlight struct {
	ID        int64     `json:"id"`
	Page      int       `json:"page"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	W         float64   `json:"w"`
	H         float64   `json:"h"`
	Color     ColorName `json:"color"`
	Opacity   int       `json:"opacity"`
	CreatedAt time.Time `json:"created_at"`
}

func (h Highlight) Rect() Rect {
	return Rect{X: h.X, Y: h.Y, W: h.W, H: h.H}
}

func (h Highlight) WithRect(r Rect) Highlight {
	h.X, h.Y, h.W, h.H = r.X, r.Y, r.W, r.H
	return h
}
