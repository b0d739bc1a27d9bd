package forms

// SongForm carries the fields submitted on the song creation page.
type SongForm struct {
	Title     string
	AudioFile *File
}

// CleanSong is a SongForm that passed field validation.
type CleanSong struct {
	Title     string
	AudioFile *File
	Extension string
}

// Validate checks that a title and a non-empty audio file were submitted.
func (f SongForm) Validate() (CleanSong, error) {
	errs := NewErrors()

	clean := CleanSong{
		Title:     cleanText(errs, "title", f.Title, MaxTitleLength),
		AudioFile: cleanFile(errs, "audio_file", f.AudioFile, true),
	}
	if clean.AudioFile != nil {
		clean.Extension = Extension(clean.AudioFile.Name)
	}

	if err := result(errs); err != nil {
		return CleanSong{}, err
	}
	return clean, nil
}
