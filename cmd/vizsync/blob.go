package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/vizsync/blobstore"
	"github.com/hupe1980/vizsync/blobstore/minio"
	"github.com/hupe1980/vizsync/blobstore/s3"
	"github.com/hupe1980/vizsync/internal/config"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// newBlobStore opens the upload backend selected by the config.
func newBlobStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	u := cfg.Upload
	switch u.Backend {
	case config.UploadLocal:
		return blobstore.NewLocalStore(u.Dir), nil
	case config.UploadS3:
		var optFns []func(*awsconfig.LoadOptions) error
		if u.Region != "" {
			optFns = append(optFns, awsconfig.WithRegion(u.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if u.Endpoint != "" {
				o.BaseEndpoint = aws.String(u.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3.NewStore(client, u.Bucket, u.Prefix), nil
	case config.UploadMinio:
		client, err := miniogo.New(u.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(os.Getenv(u.AccessKeyEnv), os.Getenv(u.SecretKeyEnv), ""),
			Secure: u.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create MinIO client: %w", err)
		}
		return minio.NewStore(client, u.Bucket, u.Prefix), nil
	default:
		return nil, fmt.Errorf("no upload backend configured")
	}
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	bs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	names, err := bs.List(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
