// Package forms maps submitted user input onto validated field sets.
//
// Each form declares its fields explicitly and returns *Errors when any of
// them fails; handlers re-render the submitting page with those messages.
package forms

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// User-facing messages. The application speaks Russian.
const (
	MsgRequired       = "Обязательное поле."
	MsgEmptyFile      = "Отправленный файл пуст."
	MsgTooLong        = "Убедитесь, что это значение содержит не более %d символов."
	MsgInvalidNumber  = "Введите целое число."
	MsgInvalidChoice  = "Выберите корректный вариант."
	MsgInvalidImage   = "Загрузите правильное изображение."
	MsgInvalidExt     = "Допустимы только латинские буквы и цифры."
	MsgDuplicateSong  = "Вы уже добавляли эту песню"
	MsgInvalidAudio   = "Неверный формат аудио-файла"
	MsgFileTypeExists = "Такое расширение уже добавлено."
)

const (
	// MaxTitleLength bounds artist names and album/song titles.
	MaxTitleLength = 200
	// MaxExtensionLength bounds AudioFileType names.
	MaxExtensionLength = 10
)

// ImageExtensions are accepted for album logos.
var ImageExtensions = []string{"gif", "jpeg", "jpg", "png", "webp"}

// Errors collects per-field and form-wide validation messages.
type Errors struct {
	Fields   map[string][]string `json:"fields,omitempty"`
	NonField []string            `json:"errors,omitempty"`
}

// NewErrors returns an empty error set.
func NewErrors() *Errors {
	return &Errors{Fields: make(map[string][]string)}
}

// Add records a message against a field.
func (e *Errors) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// AddNonField records a message that is not tied to a single field.
func (e *Errors) AddNonField(msg string) {
	e.NonField = append(e.NonField, msg)
}

// Get returns the messages for one field.
func (e *Errors) Get(field string) []string {
	if e == nil {
		return nil
	}
	return e.Fields[field]
}

// Any reports whether at least one message was recorded.
func (e *Errors) Any() bool {
	return e != nil && (len(e.Fields) > 0 || len(e.NonField) > 0)
}

func (e *Errors) Error() string {
	var parts []string
	parts = append(parts, e.NonField...)

	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NonFieldError builds an error set holding a single form-wide message.
func NonFieldError(msg string) *Errors {
	e := NewErrors()
	e.AddNonField(msg)
	return e
}

// File is an uploaded file as received from the client.
type File struct {
	Name    string
	Size    int64
	Content io.Reader
}

// Extension derives the file type from a file name: the lower-cased text after
// the last dot of its base name, or "" when there is no dot.
func Extension(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

func cleanText(errs *Errors, field, value string, max int) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		errs.Add(field, MsgRequired)
	case utf8.RuneCountInString(value) > max:
		errs.Add(field, fmt.Sprintf(MsgTooLong, max))
	}
	return value
}

func cleanFile(errs *Errors, field string, f *File, required bool) *File {
	switch {
	case f == nil || f.Name == "":
		if required {
			errs.Add(field, MsgRequired)
		}
		return nil
	case f.Size == 0:
		errs.Add(field, MsgEmptyFile)
		return nil
	}
	return f
}

func cleanID(errs *Errors, field, value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		errs.Add(field, MsgRequired)
		return 0
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		errs.Add(field, MsgInvalidNumber)
		return 0
	}
	return id
}

func result(errs *Errors) error {
	if errs.Any() {
		return errs
	}
	return nil
}
