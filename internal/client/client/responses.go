package client

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrijs2005/storeit/internal/client/models"
)

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

// messageResponse accepts either {"message": "..."} or a bare JSON string;
// the trash endpoint answers with the latter.
type messageResponse struct {
	Message string
}

func (m *messageResponse) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &m.Message)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	m.Message = obj.Message
	return nil
}

type renameResponse struct {
	NewFileName string `json:"newFileName"`
	Message     string `json:"message"`
}

type accesserListResponse struct {
	// AccesserList is nil when the key is absent or null.
	AccesserList *[]models.AccessGrant `json:"accesserList"`
}

type editTargetResponse struct {
	SignedUploadURL models.UploadTarget `json:"signedUploadUrl"`
}

type fileListResponse[T any] struct {
	Files []T `json:"files"`
}

// searchResponse is a result array, or {"message": "..."} when nothing matched.
type searchResponse struct {
	Results []models.SearchResult
	Message string
}

func (s *searchResponse) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &s.Results)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	s.Message = obj.Message
	return nil
}
