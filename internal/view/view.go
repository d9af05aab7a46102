// Package view renders client state as terminal text.
//
// Renderers are pure: they read snapshots handed to them and write to an
// io.Writer, so the same state always prints the same way.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/service"
)

// Heart markers shown on restaurant cards
const (
	HeartFavorite = "❤️"
	HeartEmpty    = "🤍"
)

// Palette holds the escape sequences of one color theme
type Palette struct {
	Name   string
	Title  string
	Text   string
	Muted  string
	Accent string
	Error  string
	Reset  string
}

var (
	// Dark is the default theme
	Dark = Palette{
		Name:   "dark",
		Title:  "\x1b[1;97m",
		Text:   "\x1b[37m",
		Muted:  "\x1b[90m",
		Accent: "\x1b[93m",
		Error:  "\x1b[91m",
		Reset:  "\x1b[0m",
	}

	Light = Palette{
		Name:   "light",
		Title:  "\x1b[1;30m",
		Text:   "\x1b[30m",
		Muted:  "\x1b[2;30m",
		Accent: "\x1b[34m",
		Error:  "\x1b[31m",
		Reset:  "\x1b[0m",
	}
)

// PaletteFor picks the theme palette. Without color only the name is kept.
func PaletteFor(dark, color bool) Palette {
	p := Light
	if dark {
		p = Dark
	}
	if !color {
		return Palette{Name: p.Name}
	}
	return p
}

// Renderer writes views to w
type Renderer struct {
	w io.Writer
	p Palette
}

// New creates a renderer
func New(w io.Writer, p Palette) *Renderer {
	return &Renderer{w: w, p: p}
}

func (r *Renderer) printf(style, format string, args ...interface{}) {
	fmt.Fprintf(r.w, style+format+r.p.Reset+"\n", args...)
}

// Rating formats "{stars} ★ ({review_count} reviews)"
func Rating(rest model.Restaurant) string {
	return strconv.FormatFloat(rest.Stars, 'f', -1, 64) + " ★ (" + strconv.Itoa(rest.ReviewCount) + " reviews)"
}

// Heart returns the marker for a favorite flag
func Heart(favorite bool) string {
	if favorite {
		return HeartFavorite
	}
	return HeartEmpty
}

// Card renders one restaurant. index > 0 prefixes the card with its number.
func (r *Renderer) Card(index int, rest model.Restaurant, favorite bool) {
	prefix := ""
	if index > 0 {
		prefix = strconv.Itoa(index) + ". "
	}
	r.printf(r.p.Title, "%s%s %s", prefix, rest.Name, Heart(favorite))
	indent := strings.Repeat(" ", len(prefix))
	r.printf(r.p.Accent, "%s%s", indent, Rating(rest))
	r.printf(r.p.Text, "%s%s", indent, rest.Location())
	if categories := rest.CategoryList(); len(categories) > 0 {
		r.printf(r.p.Muted, "%s%s", indent, strings.Join(categories, ", "))
	}
}

// Results renders a search state: its message, the numbered cards and the
// page footer.
func (r *Renderer) Results(state service.SearchState, isFavorite func(model.Restaurant) bool) {
	if state.Loading {
		r.printf(r.p.Muted, "Searching...")
	}
	if state.Message != "" {
		style := r.p.Text
		if state.Err != nil {
			style = r.p.Error
		}
		r.printf(style, "%s", state.Message)
	}
	for i, rest := range state.Results {
		r.Card(i+1, rest, isFavorite != nil && isFavorite(rest))
		fmt.Fprintln(r.w)
	}
	if state.Total > 0 {
		r.printf(r.p.Muted, "%s", PageLine(state))
	}
}

// PageLine formats "Page p of n (total results)"
func PageLine(state service.SearchState) string {
	return fmt.Sprintf("Page %d of %d (%d results)", state.Page, state.PageCount(), state.Total)
}

// Favorites renders the favorites list
func (r *Renderer) Favorites(favorites []model.Restaurant) {
	if len(favorites) == 0 {
		r.printf(r.p.Muted, "No favorites yet.")
		return
	}
	r.printf(r.p.Title, "Favorites (%d)", len(favorites))
	for i, rest := range favorites {
		r.Card(i+1, rest, true)
	}
}

// DonationTotal renders the thank-you line. Nothing is shown for a zero total.
func (r *Renderer) DonationTotal(total float64) {
	if total <= 0 {
		return
	}
	r.printf(r.p.Accent, "You've donated a total of $%.2f. Thank you!", total)
}

// DonationPresets renders the quick-pick amounts
func (r *Renderer) DonationPresets(presets []float64) {
	parts := make([]string, 0, len(presets))
	for _, p := range presets {
		parts = append(parts, fmt.Sprintf("$%.0f", p))
	}
	r.printf(r.p.Muted, "Quick amounts: %s", strings.Join(parts, "  "))
}

// Settings renders the account and theme line
func (r *Renderer) Settings(identity *model.Identity, dark bool) {
	who := "Not signed in"
	if identity != nil {
		who = "Signed in as " + identity.Email
	}
	theme := "light"
	if dark {
		theme = "dark"
	}
	r.printf(r.p.Text, "%s | Theme: %s", who, theme)
}

// Categories renders category suggestions
func (r *Renderer) Categories(categories []string) {
	if len(categories) == 0 {
		r.printf(r.p.Muted, "No categories available.")
		return
	}
	for _, c := range categories {
		r.printf(r.p.Text, "%s", c)
	}
}

// Message renders an informational line
func (r *Renderer) Message(msg string) {
	if msg == "" {
		return
	}
	r.printf(r.p.Text, "%s", msg)
}

// Error renders the user-facing message of err
func (r *Renderer) Error(err error) {
	if err == nil {
		return
	}
	r.printf(r.p.Error, "%s", service.UserMessage(err))
}
