package models

import (
	"fmt"
	"html/template"
	"path"
	"strings"
	"time"
)

/*
 Application layer data models.
*/

// DocKind is the closed set of document presentations quire knows how to
// serve. The kind is decided once from the filename at the request boundary;
// anything outside the set is KindUnknown and gets rejected explicitly.
type DocKind int

const (
	KindUnknown DocKind = iota
	KindPlainText
	KindMarkdown
	KindJpeg
	KindPng
)

// KindOf maps a document filename to its kind via the file extension.
func KindOf(filename string) DocKind {
	switch strings.ToLower(path.Ext(filename)) {
	case ".txt":
		return KindPlainText
	case ".md":
		return KindMarkdown
	case ".jpg", ".jpeg":
		return KindJpeg
	case ".png":
		return KindPng
	default:
		return KindUnknown
	}
}

// Document models a single named file managed by quire.
type Document struct {
	Name string
}

func (d Document) Kind() DocKind {
	return KindOf(d.Name)
}

// BackupName derives the name of the dated snapshot taken right before an
// update overwrites the document, e.g. notes.txt -> notes(org_08_29_2026).txt.
// Updates landing on the same calendar date share one backup name, so the
// latest backup of that date wins.
func (d Document) BackupName(t time.Time) string {
	ext := path.Ext(d.Name)
	base := strings.TrimSuffix(d.Name, ext)
	return fmt.Sprintf("%s(org_%s)%s", base, t.Format("01_02_2006"), ext)
}

// DuplicateName derives the fixed name a duplicate copy is stored under,
// e.g. notes.txt -> notes(dup).txt. Repeated duplication overwrites the same
// copy instead of incrementing.
func (d Document) DuplicateName() string {
	ext := path.Ext(d.Name)
	base := strings.TrimSuffix(d.Name, ext)
	return fmt.Sprintf("%s(dup)%s", base, ext)
}

// User models an individual service user credential.
type User struct {
	Name string
	Hash string
}

// -------------- view models for web page rendering --------------

type IndexView struct {
	Message  string
	Username string
	Files    []string
}

// FormView feeds the new-document and edit-document forms.
type FormView struct {
	Message  string
	Filename string
	Content  string
}

// DocView feeds the page wrapping a rendered markdown document.
type DocView struct {
	Message string
	Name    string
	Body    template.HTML
}

// AuthView feeds the sign-in and sign-up forms.
type AuthView struct {
	Message  string
	Username string
}
