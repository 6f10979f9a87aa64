package hearing

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Key identifies one hearing's storage location. All components are
// sanitized; construct via NewKey.
type Key struct {
	Year       string
	Committee  string
	Bill       string
	VideoTitle string
}

// NewKey sanitizes the raw submission fields into a storage key.
func NewKey(year, committee, bill, videoTitle string) Key {
	return Key{
		Year:       SanitizeComponent(year),
		Committee:  SanitizeComponent(committee),
		Bill:       SanitizeComponent(bill),
		VideoTitle: SanitizeComponent(videoTitle),
	}
}

// FolderPath returns the object-storage folder for this key:
// {year}/{committee}/{bill}/{video_title}.
func (k Key) FolderPath() string {
	return strings.Join([]string{k.Year, k.Committee, k.Bill, k.VideoTitle}, "/")
}

// HearingID returns the flat identifier stored inside the artifacts.
func (k Key) HearingID() string {
	return strings.Join([]string{k.Year, k.Committee, k.Bill, k.VideoTitle}, "_")
}

// SanitizeComponent folds one raw path component into a deterministic,
// traversal-safe token. Accented characters are decomposed and stripped to
// their base form so visually equivalent inputs land on the same key.
// Path separators and ".." sequences are removed outright; anything outside
// letters, digits, underscore, and hyphen becomes an underscore.
func SanitizeComponent(component string) string {
	component = strings.TrimSpace(component)
	if component == "" {
		return ""
	}

	component = norm.NFKD.String(component)

	var b strings.Builder
	b.Grow(len(component))
	for _, r := range component {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition
		case r == '/' || r == '\\' || r == '.':
			// path separators and dots cannot reach the folder path
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// Metadata is the metadata.json artifact written alongside a transcript.
type Metadata struct {
	HearingID  string   `json:"hearing_id"`
	Title      string   `json:"title"`
	Date       string   `json:"date"`
	Duration   float64  `json:"duration"`
	SourceURL  string   `json:"source_url"`
	Year       string   `json:"year"`
	Committee  string   `json:"committee"`
	BillName   string   `json:"bill_name"`
	BillIDs    []string `json:"bill_ids"`
	VideoTitle string   `json:"video_title"`
	Room       string   `json:"room"`
	AMPM       string   `json:"ampm"`
	FolderPath string   `json:"folder_path"`
	CreatedAt  string   `json:"created_at"`
}

// Now formats a timestamp the way artifact records store them.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
