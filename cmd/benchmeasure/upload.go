// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"golang.org/x/benchmeasure/upload"
)

type uploadCmd struct {
	Bucket      string   `required:"" help:"Cloud Storage bucket to upload to."`
	Prefix      string   `help:"Prefix for object names, such as a directory ending in /."`
	ID          string   `help:"Upload ID prepended to each file name. A random ID is generated by default."`
	Parallel    int      `default:"4" help:"Number of files to upload at once."`
	Credentials string   `help:"Service account credentials file. Application default credentials are used otherwise." placeholder:"FILE"`
	Token       string   `env:"BENCHMEASURE_UPLOAD_TOKEN" help:"OAuth2 access token to authenticate with." placeholder:"TOKEN"`
	Endpoint    string   `help:"Storage API endpoint, for example an emulator." placeholder:"URL"`
	Files       []string `arg:"" name:"measurement" help:"Files to upload."`
}

// openBucket is a hook for testing.
var openBucket = func(ctx context.Context, name string, o upload.GCSOptions) (upload.Bucket, io.Closer, error) {
	b, err := upload.OpenGCS(ctx, name, o)
	if err != nil {
		return nil, nil, err
	}
	return b, b, nil
}

func (c *uploadCmd) Run(e *env) (err error) {
	b, closer, err := openBucket(e.ctx, c.Bucket, upload.GCSOptions{
		CredentialsFile: c.Credentials,
		Token:           c.Token,
		Endpoint:        c.Endpoint,
	})
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(closer))

	u := &upload.Uploader{Bucket: b, Fs: e.fsys, Prefix: c.Prefix, ID: c.ID, Parallel: c.Parallel}
	objs, err := u.Upload(e.ctx, c.Files)
	if err != nil {
		return err
	}
	for _, o := range objs {
		fmt.Fprintf(e.stdout, "gs://%s/%s\n", c.Bucket, o.Name)
	}
	return nil
}
