// Package azure provides container-scoped Azure Blob Storage access.
package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// Container wraps a container-scoped blob client authenticated by SAS.
// It implements pipeline.Storage.
type Container struct {
	client *container.Client
}

// ContainerURL assembles the SAS-authenticated container URL the SDK
// expects: <base>/<container>?<sas>.
func ContainerURL(baseURL, name, sas string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + name + "?" + sas
}

// NewContainer creates a client for a SAS container URL.
func NewContainer(containerURL string) (*Container, error) {
	client, err := container.NewClientWithNoCredential(containerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create container client: %w", err)
	}
	return &Container{client: client}, nil
}

// List returns the names of all blobs whose name starts with prefix.
func (c *Container) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pager := c.client.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs with prefix %q: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

// Upload writes data to the named blob, overwriting any existing blob.
func (c *Container) Upload(ctx context.Context, name string, data []byte) error {
	if _, err := c.client.NewBlockBlobClient(name).UploadBuffer(ctx, data, nil); err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}
	return nil
}
