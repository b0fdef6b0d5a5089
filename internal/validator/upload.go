package validator

import (
	"errors"
	"mime/multipart"

	"video_ingest/internal/services/dto"
	"video_ingest/pkg/apperrors"
)

// Причины отказа, проверяются в этом порядке.
const (
	ReasonTitleCreatorRequired = "Title and creator are required"
	ReasonNoCoverPart          = "No cover part in the request"
	ReasonNoCoverSelected      = "No cover selected"
	ReasonNoVideoPart          = "No video part in the request"
	ReasonNoVideoSelected      = "No video selected"
)

const (
	FieldTitle       = "title"
	FieldCreator     = "creator"
	FieldDescription = "description"
	FieldCover       = "cover"
	FieldVideo       = "video"
)

// ValidateUpload превращает multipart-форму в UploadRequest.
// Возвращается первая проваленная проверка (400).
// Проверяется только наличие полей, содержимое и размер файлов не проверяются.
func (v *Validator) ValidateUpload(form *multipart.Form) (*dto.UploadRequest, error) {
	if form == nil {
		form = &multipart.Form{}
	}

	req := &dto.UploadRequest{
		Title:   firstValue(form, FieldTitle),
		Creator: firstValue(form, FieldCreator),
	}
	if desc, ok := form.Value[FieldDescription]; ok && len(desc) > 0 {
		d := desc[0]
		req.Description = &d
	}

	if err := v.Validate(req); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return nil, apperrors.ValidationFailed(ReasonTitleCreatorRequired).WithDetails(vErr.Errors)
		}
		return nil, apperrors.InternalError(err)
	}

	cover, err := filePart(form, FieldCover, ReasonNoCoverPart, ReasonNoCoverSelected)
	if err != nil {
		return nil, err
	}
	video, err := filePart(form, FieldVideo, ReasonNoVideoPart, ReasonNoVideoSelected)
	if err != nil {
		return nil, err
	}

	req.Cover = dto.FilePayloadFromHeader(cover)
	req.Video = dto.FilePayloadFromHeader(video)
	return req, nil
}

func firstValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// filePart finds the named file part. mime/multipart files a part sent with
// filename="" under Value, so a value under the name counts as present but
// not selected. Callers drop plain text fields of that name beforehand.
func filePart(form *multipart.Form, name, missingReason, emptyReason string) (*multipart.FileHeader, error) {
	files := form.File[name]
	if len(files) == 0 {
		if _, sentAsValue := form.Value[name]; sentAsValue {
			return nil, apperrors.ValidationFailed(emptyReason)
		}
		return nil, apperrors.ValidationFailed(missingReason)
	}
	if files[0].Filename == "" {
		return nil, apperrors.ValidationFailed(emptyReason)
	}
	return files[0], nil
}
