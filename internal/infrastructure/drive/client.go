package drive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/infrastructure/resilience"
)

// Client is an HTTP adapter for the remote drive where documents are
// filed. One client carries one credential class; it implements
// ports.StorageGateway.
type Client struct {
	baseURL    string
	driveID    string
	token      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, driveID, token string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		driveID:    driveID,
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

type folderPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

func (p folderPayload) handle() domain.FolderHandle {
	return domain.FolderHandle{ID: p.ID, Name: p.Name, ParentID: p.ParentID}
}

func (c *Client) Root(ctx context.Context) (domain.FolderHandle, error) {
	var response folderPayload
	path := fmt.Sprintf("/v1/drives/%s/root", url.PathEscape(c.driveID))
	err := c.execute(ctx, "drive.root", func(callCtx context.Context) error {
		return c.getJSON(callCtx, path, &response, "root")
	})
	if err != nil {
		return domain.FolderHandle{}, err
	}
	if response.ID == "" {
		return domain.FolderHandle{}, fmt.Errorf("drive root: response without folder id")
	}
	return response.handle(), nil
}

func (c *Client) ListChildren(ctx context.Context, parentID string) ([]domain.FolderHandle, error) {
	var response struct {
		Folders []folderPayload `json:"folders"`
	}
	path := fmt.Sprintf("/v1/folders/%s/children?kind=folder", url.PathEscape(parentID))
	err := c.execute(ctx, "drive.list_children", func(callCtx context.Context) error {
		return c.getJSON(callCtx, path, &response, "list children")
	})
	if err != nil {
		return nil, err
	}

	children := make([]domain.FolderHandle, 0, len(response.Folders))
	for _, f := range response.Folders {
		handle := f.handle()
		if handle.ParentID == "" {
			handle.ParentID = parentID
		}
		children = append(children, handle)
	}
	return children, nil
}

func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (domain.FolderHandle, error) {
	request := map[string]any{
		"parent_id": parentID,
		"name":      name,
	}

	var response folderPayload
	err := c.execute(ctx, "drive.create_folder", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/folders", request, &response, "create folder")
	})
	if err != nil {
		if statusCodeOf(err) == http.StatusConflict {
			return domain.FolderHandle{}, domain.WrapError(domain.ErrConflict, "drive.create_folder", err)
		}
		return domain.FolderHandle{}, err
	}
	if response.ID == "" {
		return domain.FolderHandle{}, fmt.Errorf("drive create folder: response without folder id")
	}
	if response.ParentID == "" {
		response.ParentID = parentID
	}
	return response.handle(), nil
}

func (c *Client) UploadFile(ctx context.Context, parentID, name string, data []byte) (string, error) {
	request := map[string]any{
		"name":    name,
		"content": data,
	}

	var response struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/v1/folders/%s/files", url.PathEscape(parentID))
	err := c.execute(ctx, "drive.upload_file", func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, request, &response, "upload file")
	})
	if err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", fmt.Errorf("drive upload file: response without file id")
	}
	return response.ID, nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return wrapTemporaryIfNeeded(operation, fn(ctx))
	}
	err := c.executor.Execute(ctx, operation, fn, classifyDriveError)
	return wrapTemporaryIfNeeded(operation, err)
}
