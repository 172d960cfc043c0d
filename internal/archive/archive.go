// Package archive implements the cold object store pruned, opted-in
// knowledge nodes are written to once they leave the live graph (SPEC_FULL
// §4.Q), grounded on the teacher's internal/objectstore/s3.go AWS SDK v2
// S3Store, narrowed to the single Put call agentcore.Handle.Maintain needs.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Node is the subset of a pruned knowledgegraph.Node worth preserving cold.
// Declared here (rather than imported) so this package never depends on
// internal/knowledgegraph, matching the narrow-interface pattern the rest
// of the domain stack uses.
type Node struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Content      string         `json:"content"`
	Relevance    float64        `json:"relevance"`
	Confidence   float64        `json:"confidence"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	PrunedAt     time.Time      `json:"pruned_at"`
	LastAccessed time.Time      `json:"last_accessed"`
}

// Store archives pruned nodes. Archive failures are ignored by the caller
// and never block pruning: prune_and_archive's contractual return shape
// (graph, pruned_count) is unaffected by archival outcomes.
type Store interface {
	Archive(ctx context.Context, agentID string, n Node) error
}

// S3Store writes archived nodes as one JSON object per node under
// <prefix>/<agent_id>/<node_id>.json.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config configures an S3Store, mirroring the Archive section of
// internal/config.Config.
type Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	Prefix       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: strings.TrimSuffix(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Store) key(agentID string, n Node) string {
	k := agentID + "/" + n.ID + ".json"
	if s.prefix == "" {
		return k
	}
	return s.prefix + "/" + k
}

func (s *S3Store) Archive(ctx context.Context, agentID string, n Node) error {
	if n.PrunedAt.IsZero() {
		n.PrunedAt = time.Now().UTC()
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(agentID, n)),
		Body:        strings.NewReader(string(data)),
		ContentType: aws.String("application/json"),
	})
	return err
}

// NullStore discards every archive request; used when archival is disabled.
type NullStore struct{}

func (NullStore) Archive(ctx context.Context, agentID string, n Node) error { return nil }
