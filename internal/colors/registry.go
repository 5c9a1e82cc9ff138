package colors

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/kpauljoseph/pagemark/pkg/errors"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

var palette = map[models.ColorName]models.ColorEntry{
	models.ColorYellow: {R: 255, G: 235, B: 59, Hex: "#ffeb3b"},
	models.ColorGreen:  {R: 76, G: 175, B: 80, Hex: "#4caf50"},
	models.ColorBlue:   {R: 33, G: 150, B: 243, Hex: "#2196f3"},
	models.ColorPink:   {R: 233, G: 30, B: 99, Hex: "#e91e63"},
	models.ColorOrange: {R: 255, G: 152, B: 0, Hex: "#ff9800"},
	models.ColorPurple: {R: 156, G: 39, B: 176, Hex: "#9c27b0"},
	models.ColorRed:    {R: 244, G: 67, B: 54, Hex: "#f44336"},
	models.ColorCyan:   {R: 0, G: 188, B: 212, Hex: "#00bcd4"},
}

// Registry maps color names to RGB values. The fixed palette never changes;
// the custom slot is overwritten by SetCustom, last write wins.
type Registry struct {
	mu     sync.RWMutex
	custom models.ColorEntry
}

func NewRegistry() *Registry {
	return &Registry{custom: palette[models.ColorYellow]}
}

func (r *Registry) Resolve(name models.ColorName) (models.ColorEntry, error) {
	if name == models.ColorCustom {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.custom, nil
	}
	entry, ok := palette[name]
	if !ok {
		return models.ColorEntry{}, apperrors.NewUnknownColorError(string(name))
	}
	return entry, nil
}

// SetCustom overwrites the custom slot. An empty hex is derived from r, g, b.
func (r *Registry) SetCustom(red, green, blue uint8, hex string) {
	if hex == "" {
		hex = fmt.Sprintf("#%02x%02x%02x", red, green, blue)
	}
	r.mu.Lock()
	r.custom = models.ColorEntry{R: red, G: green, B: blue, Hex: strings.ToLower(hex)}
	r.mu.Unlock()
}

// Names lists every resolvable name, palette first in sorted order, custom last.
func (r *Registry) Names() []models.ColorName {
	names := make([]models.ColorName, 0, len(palette)+1)
	for name := range palette {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return append(names, models.ColorCustom)
}

// ParseHex reads "#rrggbb" or "rrggbb".
func ParseHex(hex string) (models.ColorEntry, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return models.ColorEntry{}, apperrors.NewValidationError("invalid hex color", nil, hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return models.ColorEntry{}, apperrors.NewValidationError("invalid hex color", err, hex)
	}
	return models.ColorEntry{
		R:   uint8(v >> 16),
		G:   uint8(v >> 8),
		B:   uint8(v),
		Hex: "#" + strings.ToLower(s),
	}, nil
}
