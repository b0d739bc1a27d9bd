package forms

import (
	"slices"
	"strings"
)

// AlbumForm carries the fields used to create an album: band, title and logo.
type AlbumForm struct {
	Band  string
	Title string
	Logo  *File
}

// CleanAlbum is an AlbumForm that passed field validation.
type CleanAlbum struct {
	ArtistID      int64
	Title         string
	Logo          *File
	LogoExtension string
}

// Validate checks the band reference and title; the logo is optional but must
// look like an image when present.
func (f AlbumForm) Validate() (CleanAlbum, error) {
	errs := NewErrors()

	clean := CleanAlbum{
		ArtistID: cleanID(errs, "band", f.Band),
		Title:    cleanText(errs, "title", f.Title, MaxTitleLength),
		Logo:     cleanFile(errs, "logo", f.Logo, false),
	}
	if clean.Logo != nil {
		clean.LogoExtension = Extension(clean.Logo.Name)
		if !slices.Contains(ImageExtensions, clean.LogoExtension) {
			errs.Add("logo", MsgInvalidImage)
		}
	}

	if err := result(errs); err != nil {
		return CleanAlbum{}, err
	}
	return clean, nil
}

// ArtistForm carries the name of a new artist.
type ArtistForm struct {
	Name string
}

// Validate returns the trimmed artist name.
func (f ArtistForm) Validate() (string, error) {
	errs := NewErrors()
	name := cleanText(errs, "name", f.Name, MaxTitleLength)
	if err := result(errs); err != nil {
		return "", err
	}
	return name, nil
}

// FileTypeForm carries a new whitelisted audio extension.
type FileTypeForm struct {
	Name string
}

// Validate returns the lower-cased extension without a leading dot.
func (f FileTypeForm) Validate() (string, error) {
	errs := NewErrors()
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.Name), "."))
	name = cleanText(errs, "name", name, MaxExtensionLength)
	if !errs.Any() {
		for _, r := range name {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				errs.Add("name", MsgInvalidExt)
				break
			}
		}
	}
	if err := result(errs); err != nil {
		return "", err
	}
	return name, nil
}
