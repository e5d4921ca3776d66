package ingest

import (
	"context"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/chunking"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Dimension of text-embedding-3-large vectors.
const milvusVectorDim = 3072

const contentMaxLength = 16384

// UpsertMilvusVectors ensures the collection and inserts chunk embeddings with
// their retrieval metadata. Returns the assigned IDs and the collection name.
func UpsertMilvusVectors(ctx context.Context, vectors [][]float32, docID int64, chunks []chunking.MergedChunk) ([]int64, string, error) {
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, "", err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if collection == "" {
		collection = "rfp_chunks"
	}
	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		if err := createChunksCollection(ctx, cli, collection); err != nil {
			return nil, "", err
		}
	}

	docIDs := make([]int64, len(chunks))
	chunkIdxs := make([]int32, len(chunks))
	pageNumbers := make([]int32, len(chunks))
	contents := make([]string, len(chunks))
	ids := make([]int64, len(chunks))
	for i, ch := range chunks {
		docIDs[i] = docID
		chunkIdxs[i] = int32(i)
		if ch.PageNumber != nil {
			pageNumbers[i] = int32(*ch.PageNumber)
		}
		content := ch.ContextText
		if content == "" {
			content = ch.Text
		}
		if len(content) > contentMaxLength {
			content = content[:contentMaxLength]
		}
		contents[i] = content
		// Deterministic primary keys from docID and chunk index keep re-ingest
		// idempotent without AutoID.
		ids[i] = (docID << 20) + int64(i)
	}

	colID := milvusentity.NewColumnInt64("id", ids)
	colDoc := milvusentity.NewColumnInt64("doc_id", docIDs)
	colChunk := milvusentity.NewColumnInt32("chunk_index", chunkIdxs)
	colPage := milvusentity.NewColumnInt32("page_number", pageNumbers)
	colContent := milvusentity.NewColumnVarChar("content", contents)
	colVec := milvusentity.NewColumnFloatVector("embedding", milvusVectorDim, vectors)

	if _, err := cli.Insert(ctx, collection, "", colID, colDoc, colChunk, colPage, colContent, colVec); err != nil {
		return nil, "", err
	}
	return ids, collection, nil
}

func createChunksCollection(ctx context.Context, cli milvusclient.Client, collection string) error {
	schema := milvusentity.NewSchema().WithName(collection).WithDescription("merged rfp chunks")
	schema.WithField(milvusentity.NewField().WithName("id").WithDataType(milvusentity.FieldTypeInt64).WithIsPrimaryKey(true))
	schema.WithField(milvusentity.NewField().WithName("doc_id").WithDataType(milvusentity.FieldTypeInt64))
	schema.WithField(milvusentity.NewField().WithName("chunk_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("page_number").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("content").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(contentMaxLength))
	schema.WithField(milvusentity.NewField().WithName("embedding").WithDataType(milvusentity.FieldTypeFloatVector).WithDim(milvusVectorDim))

	if err := cli.CreateCollection(ctx, schema, 2); err != nil {
		return err
	}

	hnswCfg := config.Cfg.Milvus.IndexHNSWConfig
	idx, err := milvusentity.NewIndexHNSW(
		milvusentity.MetricType(hnswCfg.MetricType),
		hnswCfg.M,
		hnswCfg.EfConstruction,
	)
	if err != nil {
		return err
	}
	return cli.CreateIndex(ctx, collection, "embedding", idx, false)
}
