package validator

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"video_ingest/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	name     string
	filename string
	value    string
	asFile   bool
}

func buildForm(t *testing.T, parts ...part) *multipart.Form {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, p := range parts {
		if p.asFile {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="`+p.name+`"; filename="`+p.filename+`"`)
			h.Set("Content-Type", "application/octet-stream")
			pw, err := w.CreatePart(h)
			require.NoError(t, err)
			_, err = io.WriteString(pw, p.value)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, w.WriteField(p.name, p.value))
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func field(name, value string) part { return part{name: name, value: value} }

func file(name, filename, content string) part {
	return part{name: name, filename: filename, value: content, asFile: true}
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, 400, appErr.HTTPCode)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	return appErr.Message
}

func TestValidateUpload_Rejections(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		parts  []part
		reason string
	}{
		{
			name:   "missing title",
			parts:  []part{field("creator", "c"), file("cover", "c.png", "x"), file("video", "v.mp4", "y")},
			reason: ReasonTitleCreatorRequired,
		},
		{
			name:   "empty creator",
			parts:  []part{field("title", "t"), field("creator", ""), file("cover", "c.png", "x"), file("video", "v.mp4", "y")},
			reason: ReasonTitleCreatorRequired,
		},
		{
			name:   "title checked before files",
			parts:  nil,
			reason: ReasonTitleCreatorRequired,
		},
		{
			name:   "no cover part",
			parts:  []part{field("title", "t"), field("creator", "c"), file("video", "v.mp4", "y")},
			reason: ReasonNoCoverPart,
		},
		{
			name:   "cover without filename",
			parts:  []part{field("title", "t"), field("creator", "c"), file("cover", "", ""), file("video", "v.mp4", "y")},
			reason: ReasonNoCoverSelected,
		},
		{
			name:   "cover checked before video",
			parts:  []part{field("title", "t"), field("creator", "c")},
			reason: ReasonNoCoverPart,
		},
		{
			name:   "no video part",
			parts:  []part{field("title", "t"), field("creator", "c"), file("cover", "c.png", "x")},
			reason: ReasonNoVideoPart,
		},
		{
			name:   "video without filename",
			parts:  []part{field("title", "t"), field("creator", "c"), file("cover", "c.png", "x"), file("video", "", "")},
			reason: ReasonNoVideoSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := v.ValidateUpload(buildForm(t, tt.parts...))
			require.Error(t, err)
			assert.Nil(t, req)
			assert.Equal(t, tt.reason, reasonOf(t, err))
		})
	}
}

func TestValidateUpload_Accepts(t *testing.T) {
	v := New()
	form := buildForm(t,
		field("title", "My Video"),
		field("creator", "Alice"),
		file("cover", "My Cover.PNG", "cover-bytes"),
		file("video", "clip.mp4", "video-bytes"),
	)

	req, err := v.ValidateUpload(form)
	require.NoError(t, err)
	assert.Equal(t, "My Video", req.Title)
	assert.Equal(t, "Alice", req.Creator)
	assert.Nil(t, req.Description)
	assert.Equal(t, "My Cover.PNG", req.Cover.Filename)
	assert.Equal(t, "application/octet-stream", req.Cover.ContentType)
	assert.Equal(t, "clip.mp4", req.Video.Filename)

	rc, err := req.Video.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
}

func TestValidateUpload_DescriptionOptional(t *testing.T) {
	form := buildForm(t,
		field("title", "t"),
		field("creator", "c"),
		field("description", "about"),
		file("cover", "c.jpg", "x"),
		file("video", "v.mov", "y"),
	)

	req, err := New().ValidateUpload(form)
	require.NoError(t, err)
	require.NotNil(t, req.Description)
	assert.Equal(t, "about", *req.Description)
}

func TestValidate_FieldNames(t *testing.T) {
	type sample struct {
		Name string `form:"name" validate:"required"`
	}
	err := New().Validate(&sample{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "This field is required", vErr.Errors["name"])
}
