package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

type asset struct {
	data  []byte
	ctype string
}

// Assets serves a frontend tree minified once at startup.
type Assets struct {
	files   map[string]asset
	saved   int
	modTime time.Time
}

// NewMinifier returns a minifier for the monitor page's file types.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/json", json.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`^(application|text)/(x-)?(java|ecma)script$`), js.Minify)
	return m
}

// LoadAssets reads every file in fsys. Files whose type m knows are
// minified; the rest are served as is.
func LoadAssets(fsys fs.FS, m *minify.M) (*Assets, error) {
	a := &Assets{files: make(map[string]asset), modTime: time.Now()}
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		ctype := mime.TypeByExtension(path.Ext(name))
		if ctype == "" {
			ctype = http.DetectContentType(data)
		}
		mediatype, _, _ := strings.Cut(ctype, ";")
		out, err := m.Bytes(mediatype, data)
		switch {
		case errors.Is(err, minify.ErrNotExist):
			out = data
		case err != nil:
			return fmt.Errorf("minify %s: %w", name, err)
		}
		a.saved += len(data) - len(out)
		a.files[name] = asset{data: out, ctype: ctype}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Saved returns how many bytes minification removed.
func (a *Assets) Saved() int { return a.saved }

func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}
	f, ok := a.files[name]
	if !ok {
		f, ok = a.files[path.Join(name, "index.html")]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.ctype)
	http.ServeContent(w, r, name, a.modTime, bytes.NewReader(f.data))
}
