// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package upload

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// GCSOptions configures the Cloud Storage client used by OpenGCS.
type GCSOptions struct {
	// CredentialsFile is a service account or user credentials JSON
	// file. If empty, application default credentials are used.
	CredentialsFile string

	// Token is an OAuth2 access token used instead of credentials.
	Token string

	// Endpoint overrides the storage API endpoint, for example to
	// reach an emulator. Without credentials or a token, requests to
	// a custom endpoint are sent unauthenticated.
	Endpoint string
}

func (o GCSOptions) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case o.Token != "":
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.Token})))
	case o.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(o.CredentialsFile))
	case o.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
	}
	if o.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(o.Endpoint))
	}
	return opts
}

// A GCSBucket is a Bucket in Google Cloud Storage.
type GCSBucket struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// OpenGCS returns the Cloud Storage bucket with the given name. The
// caller must Close it.
func OpenGCS(ctx context.Context, name string, o GCSOptions) (*GCSBucket, error) {
	if name == "" {
		return nil, errors.New("no bucket name")
	}
	client, err := storage.NewClient(ctx, o.clientOptions()...)
	if err != nil {
		return nil, err
	}
	return &GCSBucket{client: client, bucket: client.Bucket(name)}, nil
}

// NewWriter implements Bucket.
func (b *GCSBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

// Close releases the underlying client.
func (b *GCSBucket) Close() error {
	return b.client.Close()
}
