package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
	"github.com/kirillkom/fleetdocs/internal/core/ports"
)

// FolderResolver walks a logical destination path against the external
// storage hierarchy. The hierarchy is user-managed and can change between
// requests, so resolution re-runs on every ingestion; nothing is cached.
type FolderResolver struct {
	gateways ports.GatewaySelector
}

func NewFolderResolver(gateways ports.GatewaySelector) *FolderResolver {
	return &FolderResolver{gateways: gateways}
}

// Resolve descends from the gateway's well-known root one segment at a
// time, matching child names case-insensitively (first match wins within a
// listing). A missing segment is created when creation is allowed,
// otherwise the missing segment is reported verbatim.
func (r *FolderResolver) Resolve(
	ctx context.Context,
	category domain.DocumentCategory,
	segments []string,
	createMissing bool,
) (domain.FolderHandle, error) {
	gw := r.gateways.ForCategory(category)

	current, err := gw.Root(ctx)
	if err != nil {
		return domain.FolderHandle{}, fmt.Errorf("resolve storage root: %w", err)
	}

	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return domain.FolderHandle{}, domain.WrapError(domain.ErrInvalidInput, "resolve folder path",
				fmt.Errorf("empty segment in path %s", strings.Join(segments, "/")))
		}

		next, found, err := findChild(ctx, gw, current.ID, segment)
		if err != nil {
			return domain.FolderHandle{}, err
		}
		if !found {
			if !createMissing {
				return domain.FolderHandle{}, &domain.DestinationNotFoundError{Segment: segment, Path: segments}
			}
			next, err = createOrAdopt(ctx, gw, current.ID, segment)
			if err != nil {
				return domain.FolderHandle{}, err
			}
		}
		current = next
	}

	return current, nil
}

func findChild(ctx context.Context, gw ports.StorageGateway, parentID, name string) (domain.FolderHandle, bool, error) {
	children, err := gw.ListChildren(ctx, parentID)
	if err != nil {
		return domain.FolderHandle{}, false, fmt.Errorf("list children of %s: %w", parentID, err)
	}
	for _, child := range children {
		if strings.EqualFold(strings.TrimSpace(child.Name), name) {
			return child, true, nil
		}
	}
	return domain.FolderHandle{}, false, nil
}

// createOrAdopt makes folder creation idempotent under concurrent creators:
// when the create call loses the race, the child that now exists is adopted
// instead of surfacing the conflict.
func createOrAdopt(ctx context.Context, gw ports.StorageGateway, parentID, name string) (domain.FolderHandle, error) {
	created, err := gw.CreateFolder(ctx, parentID, name)
	if err == nil {
		return created, nil
	}

	existing, found, listErr := findChild(ctx, gw, parentID, name)
	if listErr == nil && found {
		return existing, nil
	}
	return domain.FolderHandle{}, fmt.Errorf("create folder %q under %s: %w", name, parentID, err)
}
