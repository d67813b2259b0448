package client

import (
	"context"
	"io"
	"net/url"

	"github.com/dmitrijs2005/storeit/internal/client/gateway"
	"github.com/dmitrijs2005/storeit/internal/client/models"
	"github.com/google/uuid"
)

// Backend endpoints, relative to the configured server URL.
const (
	pathSignIn         = "auth/signin"
	pathSignUp         = "auth/signup"
	pathSignOut        = "auth/signout"
	pathDashboard      = "user/dashboard"
	pathFileList       = "user/file-list"
	pathFileListType   = "user/file-list-type"
	pathTrashList      = "user/trash-list"
	pathStorageUsage   = "user/storage-usage"
	pathUpload         = "user/file-upload"
	pathRename         = "user/file-rename"
	pathTrash          = "user/file-trash"
	pathRestore        = "user/file-restore"
	pathDelete         = "user/file-delete"
	pathAccesserList   = "user/accesser-list"
	pathAddAccesser    = "user/add-accesser"
	pathRemoveAccesser = "user/remove-accesser"
	pathEditFile       = "user/edit-file"
	pathUploadEdit     = "user/upload-edit"
	pathSearch         = "search"
)

// sharedCategory asks the type listing for files shared with the caller.
const sharedCategory = "shared"

type HTTPClient struct {
	gw *gateway.Gateway
}

func NewHTTPClient(gw *gateway.Gateway) *HTTPClient {
	return &HTTPClient{gw: gw}
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.gw.PostJSON(ctx, pathSignIn, body, false, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", gateway.ErrEmptyResponse
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) SignUp(ctx context.Context, fullName, email, password string) (string, error) {
	var resp tokenResponse
	body := map[string]string{"fullName": fullName, "email": email, "password": password}
	if err := c.gw.PostJSON(ctx, pathSignUp, body, false, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", gateway.ErrEmptyResponse
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	return c.gw.GetPublic(ctx, pathSignOut, nil)
}

func (c *HTTPClient) Dashboard(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.gw.Get(ctx, pathDashboard, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListFiles(ctx context.Context) ([]models.FileRecord, error) {
	var resp fileListResponse[models.FileRecord]
	if err := c.gw.Get(ctx, pathFileList, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *HTTPClient) ListFilesByType(ctx context.Context, category models.FileType, sort models.SortKey) ([]models.FileRecord, error) {
	var resp fileListResponse[models.FileRecord]
	fields := []gateway.Field{
		{Name: "sortBy", Value: string(sort)},
		{Name: "fileType", Value: string(category)},
	}
	if err := c.gw.PostForm(ctx, pathFileListType, fields, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *HTTPClient) ListShared(ctx context.Context, sort models.SortKey) ([]models.SharedFileRecord, error) {
	var resp fileListResponse[models.SharedFileRecord]
	fields := []gateway.Field{
		{Name: "sortBy", Value: string(sort)},
		{Name: "fileType", Value: sharedCategory},
	}
	if err := c.gw.PostForm(ctx, pathFileListType, fields, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *HTTPClient) ListTrash(ctx context.Context) ([]models.TrashedFileRecord, error) {
	var resp fileListResponse[models.TrashedFileRecord]
	if err := c.gw.Get(ctx, pathTrashList, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *HTTPClient) StorageUsage(ctx context.Context) ([]models.StorageUsage, error) {
	var usage []models.StorageUsage
	if err := c.gw.Get(ctx, pathStorageUsage, nil, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

func (c *HTTPClient) Upload(ctx context.Context, name string, fileType models.FileType, content io.Reader) (string, error) {
	var resp messageResponse
	fields := []gateway.Field{{Name: "fileType", Value: string(fileType)}}
	file := &gateway.FilePart{FieldName: "file", FileName: name, Content: content}
	if err := c.gw.PostMultipart(ctx, pathUpload, fields, file, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Rename(ctx context.Context, oldName, newName string) (RenameResult, error) {
	var resp renameResponse
	fields := []gateway.Field{
		{Name: "oldFileName", Value: oldName},
		{Name: "newFileName", Value: newName},
	}
	if err := c.gw.PostForm(ctx, pathRename, fields, &resp); err != nil {
		return RenameResult{}, err
	}
	if resp.NewFileName == "" {
		return RenameResult{}, gateway.ErrEmptyResponse
	}
	return RenameResult{NewName: resp.NewFileName, Message: resp.Message}, nil
}

func (c *HTTPClient) MoveToTrash(ctx context.Context, name string) (string, error) {
	return c.postMessage(ctx, pathTrash, []gateway.Field{{Name: "fileName", Value: name}})
}

func (c *HTTPClient) Restore(ctx context.Context, name string) (string, error) {
	return c.postMessage(ctx, pathRestore, []gateway.Field{{Name: "fileName", Value: name}})
}

func (c *HTTPClient) Delete(ctx context.Context, name string) (string, error) {
	return c.postMessage(ctx, pathDelete, []gateway.Field{{Name: "fileName", Value: name}})
}

func (c *HTTPClient) postMessage(ctx context.Context, path string, fields []gateway.Field) (string, error) {
	var resp messageResponse
	if err := c.gw.PostForm(ctx, path, fields, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) ListAccessers(ctx context.Context, fileID uuid.UUID) ([]models.AccessGrant, error) {
	return c.postGrants(ctx, pathAccesserList, []gateway.Field{{Name: "fileId", Value: fileID.String()}})
}

func (c *HTTPClient) AddAccesser(ctx context.Context, fileName, email string, perm models.Permission) ([]models.AccessGrant, error) {
	return c.postGrants(ctx, pathAddAccesser, []gateway.Field{
		{Name: "fileName", Value: fileName},
		{Name: "accesserEmail", Value: email},
		{Name: "permissionType", Value: string(perm)},
	})
}

func (c *HTTPClient) RemoveAccesser(ctx context.Context, fileName, email string) ([]models.AccessGrant, error) {
	return c.postGrants(ctx, pathRemoveAccesser, []gateway.Field{
		{Name: "fileName", Value: fileName},
		{Name: "accesserEmail", Value: email},
	})
}

func (c *HTTPClient) postGrants(ctx context.Context, path string, fields []gateway.Field) ([]models.AccessGrant, error) {
	var resp accesserListResponse
	if err := c.gw.PostForm(ctx, path, fields, &resp); err != nil {
		return nil, err
	}
	if resp.AccesserList == nil {
		return nil, gateway.ErrEmptyResponse
	}
	if *resp.AccesserList == nil {
		return []models.AccessGrant{}, nil
	}
	return *resp.AccesserList, nil
}

func (c *HTTPClient) RequestEditTarget(ctx context.Context, fileName string, ownerID uuid.UUID) (models.UploadTarget, error) {
	var resp editTargetResponse
	fields := []gateway.Field{
		{Name: "fileName", Value: fileName},
		{Name: "owner_id", Value: ownerID.String()},
	}
	if err := c.gw.PostForm(ctx, pathEditFile, fields, &resp); err != nil {
		return models.UploadTarget{}, err
	}
	if !resp.SignedUploadURL.Ready() {
		return models.UploadTarget{}, gateway.ErrEmptyResponse
	}
	return resp.SignedUploadURL, nil
}

func (c *HTTPClient) UploadEdit(ctx context.Context, target models.UploadTarget, name string, content io.Reader) (string, error) {
	var resp messageResponse
	fields := []gateway.Field{
		{Name: "path", Value: target.Path},
		{Name: "token", Value: target.Token},
	}
	file := &gateway.FilePart{FieldName: "file", FileName: name, Content: content}
	if err := c.gw.PostMultipart(ctx, pathUploadEdit, fields, file, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var resp searchResponse
	if err := c.gw.Get(ctx, pathSearch, url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []models.SearchResult{}, nil
	}
	return resp.Results, nil
}
