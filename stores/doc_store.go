package stores

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	qe "wuyrush.io/quire/errors"
)

// DocStore manages the documents under the storage root (note a document is
// just a named byte sequence)
type DocStore interface {
	// List returns the names of all documents directly inside the storage
	// root, sorted for deterministic output
	List() ([]string, *qe.Err)
	Read(filename string) ([]byte, *qe.Err)
	// Write creates or overwrites the named document
	Write(filename string, data []byte) *qe.Err
	// Copy copies the raw stored bytes of filename to newFilename
	Copy(filename, newFilename string) *qe.Err
	Delete(filename string) *qe.Err
	Exists(filename string) bool
}

// LocalDocStore implements DocStore backed by a directory on local file system
type LocalDocStore struct {
	Root string
}

// ValidName checks that filename addresses a direct child of the storage root.
// Anything that could escape the root - separators, traversal sequences, empty
// names - is rejected before it reaches the file system.
func ValidName(filename string) *qe.Err {
	if filename == "" {
		return qe.NewInvalid("document name must not be empty")
	}
	if strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		return qe.NewInvalid("invalid document name")
	}
	if filepath.Base(filepath.Clean(filename)) != filename {
		return qe.NewInvalid("invalid document name")
	}
	return nil
}

func (s *LocalDocStore) path(filename string) (string, *qe.Err) {
	if err := ValidName(filename); err != nil {
		return "", err
	}
	return filepath.Join(s.Root, filename), nil
}

func (s *LocalDocStore) List() ([]string, *qe.Err) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, qe.NewServiceFailure("error listing documents").WithCause(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// dotfiles are never documents; this also hides in-flight temp files
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalDocStore) Read(filename string) ([]byte, *qe.Err) {
	p, perr := s.path(filename)
	if perr != nil {
		return nil, perr
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, qe.NewNotFound("document not found").WithCause(err)
		}
		return nil, qe.NewServiceFailure("error reading document").WithCause(err)
	}
	return data, nil
}

// Write lands the document via a temp file and rename so that a partially
// written file is never observable under the document's name.
func (s *LocalDocStore) Write(filename string, data []byte) *qe.Err {
	p, perr := s.path(filename)
	if perr != nil {
		return perr
	}
	tmp, err := os.CreateTemp(s.Root, ".quire-*")
	if err != nil {
		return qe.NewServiceFailure("error allocating document storage space").WithCause(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return qe.NewServiceFailure("error writing document data").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return qe.NewServiceFailure("error writing document data").WithCause(err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return qe.NewServiceFailure("error writing document data").WithCause(err)
	}
	return nil
}

func (s *LocalDocStore) Copy(filename, newFilename string) *qe.Err {
	data, err := s.Read(filename)
	if err != nil {
		return err
	}
	return s.Write(newFilename, data)
}

func (s *LocalDocStore) Delete(filename string) *qe.Err {
	p, perr := s.path(filename)
	if perr != nil {
		return perr
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return qe.NewNotFound("document not found").WithCause(err)
		}
		return qe.NewServiceFailure("error removing document").WithCause(err)
	}
	return nil
}

func (s *LocalDocStore) Exists(filename string) bool {
	p, perr := s.path(filename)
	if perr != nil {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
