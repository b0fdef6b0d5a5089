package handlers

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
)

// filePartWatcher reads a copy of the multipart stream while
// ParseMultipartForm consumes the body, and counts parts per form name
// whose Content-Disposition carries a filename parameter (filename="" included).
// ParseMultipartForm files such parts under Value when the filename is
// empty, the same as plain text fields.
type filePartWatcher struct {
	pw    *io.PipeWriter
	done  chan struct{}
	names map[string]int
}

type teeBody struct {
	io.Reader
	io.Closer
}

func watchFileParts(r *http.Request) *filePartWatcher {
	w := &filePartWatcher{names: map[string]int{}}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" || r.Body == nil {
		return w
	}

	pr, pw := io.Pipe()
	w.pw = pw
	w.done = make(chan struct{})
	r.Body = teeBody{Reader: io.TeeReader(r.Body, pw), Closer: r.Body}

	go func() {
		defer close(w.done)
		mr := multipart.NewReader(pr, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err != nil {
				break
			}
			if hasFilenameParam(part) {
				w.names[part.FormName()]++
			}
		}
		// keep the writer side unblocked until the body is fully consumed
		_, _ = io.Copy(io.Discard, pr)
	}()
	return w
}

// wait stops watching and returns the per-name counts. Call it after the
// body has been parsed.
func (w *filePartWatcher) wait() map[string]int {
	if w.pw == nil {
		return w.names
	}
	_ = w.pw.Close()
	<-w.done
	return w.names
}

func hasFilenameParam(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

// dropTextFields removes plain text values sent under a file field name.
// Values left under those names come from file parts with an empty filename.
func dropTextFields(form *multipart.Form, fileParts map[string]int, names ...string) {
	for _, name := range names {
		if fileParts[name] == 0 {
			delete(form.Value, name)
		}
	}
}
