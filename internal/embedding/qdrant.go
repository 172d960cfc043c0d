package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// payloadIDField stores the caller's original node/entry id in a point's
// payload, since Qdrant point ids must be UUIDs or positive integers.
const payloadIDField = "_original_id"

// Index is the vector index surface agentcore.Handle uses: AddFact and
// AcceptProposal upsert into it, and SemanticRecall searches it before
// falling back to knowledgegraph.SemanticSearch. Semantic search is an
// additive path beside substring recall, never a replacement for it;
// contextwindow.AddRetrieved does not use it.
type Index interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error
	SimilaritySearch(ctx context.Context, vector []float32, k int, filter map[string]string) ([]ScoredPoint, error)
	Close() error
}

// ScoredPoint is a single vector-search hit.
type ScoredPoint struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// QdrantIndex is an Index backed by github.com/qdrant/go-client, grounded
// on the teacher's internal/persistence/databases/qdrant_vector.go.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dimension  int
}

// NewQdrantIndex connects to host:port (gRPC, default port 6334) and
// ensures collection exists with the given vector dimension, cosine
// distance (the default spec §3's "optional embedding" assumes).
func NewQdrantIndex(ctx context.Context, host string, port int, apiKey, collection string, dimension int) (*QdrantIndex, error) {
	if collection == "" {
		return nil, fmt.Errorf("qdrant: collection name is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("qdrant: dimension must be > 0")
	}
	if port == 0 {
		port = 6334
	}
	cfg := &qdrant.Config{Host: host, Port: port}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("qdrant: create client: %w", err)
	}
	idx := &QdrantIndex{client: client, collection: collection, dimension: dimension}
	if err := idx.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *QdrantIndex) ensureCollection(ctx context.Context) error {
	exists, err := idx.client.CollectionExists(ctx, idx.collection)
	if err != nil {
		return fmt.Errorf("qdrant: check collection exists: %w", err)
	}
	if exists {
		return nil
	}
	return idx.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: idx.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(idx.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func pointIDFor(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func (idx *QdrantIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]string) error {
	uuidStr := pointIDFor(id)
	payload := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	if uuidStr != id {
		payload[payloadIDField] = id
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)
	_, err := idx.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: idx.collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(uuidStr),
			Vectors: qdrant.NewVectorsDense(vec),
			Payload: qdrant.NewValueMap(payload),
		}},
	})
	return err
}

func (idx *QdrantIndex) SimilaritySearch(ctx context.Context, vector []float32, k int, filter map[string]string) ([]ScoredPoint, error) {
	if k <= 0 {
		k = 10
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	var qf *qdrant.Filter
	if len(filter) > 0 {
		must := make([]*qdrant.Condition, 0, len(filter))
		for k, v := range filter {
			must = append(must, qdrant.NewMatch(k, v))
		}
		qf = &qdrant.Filter{Must: must}
	}

	limit := uint64(k)
	hits, err := idx.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: idx.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         qf,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]ScoredPoint, 0, len(hits))
	for _, hit := range hits {
		uuidStr := hit.Id.GetUuid()
		if uuidStr == "" {
			uuidStr = hit.Id.String()
		}
		metadata := make(map[string]string)
		originalID := ""
		if hit.Payload != nil {
			for k, v := range hit.Payload {
				if k == payloadIDField {
					originalID = v.GetStringValue()
					continue
				}
				metadata[k] = v.GetStringValue()
			}
		}
		id := originalID
		if id == "" {
			id = uuidStr
		}
		out = append(out, ScoredPoint{ID: id, Score: float64(hit.Score), Metadata: metadata})
	}
	return out, nil
}

func (idx *QdrantIndex) Close() error { return idx.client.Close() }

// strippedNamespace normalizes a namespace/key pair into a single qdrant
// point id, mirroring the (namespace,key) addressing spec §6 uses for
// embed_async.
func strippedNamespace(namespace, key string) string {
	return strings.TrimSpace(namespace) + ":" + strings.TrimSpace(key)
}
