// Package gcs stores uploaded media in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	mediastorage "github.com/mrlokans/soundwave/internal/storage"
)

const publicHost = "https://storage.googleapis.com"

type Client struct {
	storageClient *storage.Client
	bucketName    string
}

// NewClient connects with the service account key at credentialsFile, or
// with Application Default Credentials when it is empty.
func NewClient(ctx context.Context, bucketName, credentialsFile string) (*Client, error) {
	if bucketName == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", credentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &Client{storageClient: storageClient, bucketName: bucketName}, nil
}

// ObjectURL is the public URL of an object in the bucket.
func ObjectURL(bucketName, name string) string {
	return fmt.Sprintf("%s/%s/%s", publicHost, bucketName, name)
}

func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (string, error) {
	if err := mediastorage.ValidateName(name); err != nil {
		return "", err
	}

	writer := c.storageClient.Bucket(c.bucketName).Object(name).NewWriter(ctx)
	writer.ContentType = mediastorage.ContentType(name)
	writer.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(writer, content); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to copy content to GCS object %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", name, err)
	}

	log.Printf("Uploaded gs://%s/%s", c.bucketName, name)
	return ObjectURL(c.bucketName, name), nil
}

func (c *Client) Delete(ctx context.Context, name string) error {
	err := c.storageClient.Bucket(c.bucketName).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %s: %w", name, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.storageClient.Close()
}
