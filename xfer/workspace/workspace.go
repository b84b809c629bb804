// Package workspace confines every file an xfer session touches to one base
// directory: the input or output file, staging ciphertext and the optional
// debug secret dump.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

const (
	privatePerm = 0o600
	outputPerm  = 0o644
)

var (
	ErrPathEscapes = errors.New("workspace: path is not local to the workspace")
	ErrNotDir      = errors.New("workspace: base is not a directory")
)

// Dir is a base directory. Names passed to its methods are resolved
// relative to it and may not leave it.
type Dir struct {
	root string
}

// Open returns the workspace rooted at root. An empty root means the
// current working directory.
func Open(root string) (*Dir, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, abs)
	}
	return &Dir{root: abs}, nil
}

// Root is the absolute base directory.
func (d *Dir) Root() string { return d.root }

// Resolve joins name under the root. Absolute names, names containing ".."
// that climb out of the root, and empty names are rejected, as are names
// that pass through a symlink.
func (d *Dir) Resolve(name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapes, name)
	}
	lexical := filepath.Join(d.root, name)
	resolved, err := securejoin.SecureJoin(d.root, name)
	if err != nil {
		return "", err
	}
	if resolved != lexical {
		return "", fmt.Errorf("%w: %q crosses a symlink", ErrPathEscapes, name)
	}
	return lexical, nil
}

// OpenInput opens name read-only.
func (d *Dir) OpenInput(name string) (*os.File, error) {
	p, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Output is written under a temporary name next to its target and only
// replaces the target on Commit. Until then a previous file of the same name
// is left as it was.
type Output struct {
	*os.File
	target string
	done   bool
}

// CreateOutput starts writing name.
func (d *Dir) CreateOutput(name string) (*Output, error) {
	p, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+"-*")
	if err != nil {
		return nil, err
	}
	return &Output{File: f, target: p}, nil
}

// Commit closes the file and renames it over the target.
func (o *Output) Commit() error {
	if o.done {
		return os.ErrClosed
	}
	o.done = true
	err := o.Chmod(outputPerm)
	if cerr := o.File.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(o.Name(), o.target)
	}
	if err != nil {
		_ = os.Remove(o.Name())
	}
	return err
}

// Abort closes and removes the temporary file. It does nothing after Commit.
func (o *Output) Abort() error {
	if o.done {
		return nil
	}
	o.done = true
	err := o.File.Close()
	if rerr := os.Remove(o.Name()); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// Staging is a private scratch file holding ciphertext.
type Staging struct {
	*os.File
	keep bool
}

// CreateStaging creates a new private (os.CreateTemp, 0600) file named prefix-<random> in
// the root. Unless keep is set, Close removes it.
func (d *Dir) CreateStaging(prefix string, keep bool) (*Staging, error) {
	f, err := os.CreateTemp(d.root, prefix+"-*")
	if err != nil {
		return nil, err
	}
	return &Staging{File: f, keep: keep}, nil
}

// Rewind seeks back to the start of the file.
func (s *Staging) Rewind() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Size reports the current file size.
func (s *Staging) Size() (int64, error) {
	fi, err := s.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Close closes the file and removes it unless the staging file is kept.
func (s *Staging) Close() error {
	err := s.File.Close()
	if !s.keep {
		if rerr := os.Remove(s.Name()); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

// WriteSecret writes secret to name with owner-only permissions, replacing
// any previous content.
func (d *Dir) WriteSecret(name string, secret []byte) error {
	p, err := d.Resolve(name)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, privatePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(secret); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
