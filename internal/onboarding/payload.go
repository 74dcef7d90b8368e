package onboarding

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// BuildPayload encodes the answers as multipart/form-data: one text part per
// field in form order, and the CV as a file part under its original name.
func BuildPayload(a *Answers) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, r := range Rules {
		if r.Field == FieldCVFile {
			continue
		}
		if err := w.WriteField(string(r.Field), a.Get(r.Field)); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", r.Field, err)
		}
	}

	if cv := a.CV(); cv != nil {
		part, err := w.CreateFormFile(string(FieldCVFile), cv.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to attach cv: %w", err)
		}
		if _, err := part.Write(cv.Data); err != nil {
			return nil, "", fmt.Errorf("failed to attach cv: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}
