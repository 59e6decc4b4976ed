package db

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/staffdex/model"
	"github.com/stretchr/testify/assert"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items map[string]map[string]*dynamodb.AttributeValue
}

func (f *fakeDynamo) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.items[*in.TableName+"/"+*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) BatchGetItemWithContext(ctx aws.Context, in *dynamodb.BatchGetItemInput, opts ...request.Option) (*dynamodb.BatchGetItemOutput, error) {
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]*dynamodb.AttributeValue{}}
	for table, ka := range in.RequestItems {
		for _, key := range ka.Keys {
			if item, ok := f.items[table+"/"+*key["PK"].S]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func TestPutAndGet(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]*dynamodb.AttributeValue{}}
	c := NewWithClient(fake, "staffdex-streams")
	ctx := context.Background()
	created := time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)

	assert := assert.New(t)
	assert.NoError(c.Put(ctx, model.StreamRecord{Id: "a", Uri: "s3://scores/a.mid", Size: 120, Created: created}))
	assert.NoError(c.Put(ctx, model.StreamRecord{Id: "b", Size: 64, Created: created}))

	res, err := c.Get(ctx, []string{"a", "b", "missing"})
	assert.NoError(err)
	assert.Len(res, 2)
	assert.Equal(model.StreamRecord{Id: "a", Uri: "s3://scores/a.mid", Size: 120, Created: created}, res["a"])
	assert.Equal("", res["b"].Uri)
	assert.Equal(64, res["b"].Size)
}

func TestGetLimits(t *testing.T) {
	c := NewWithClient(&fakeDynamo{}, "staffdex-streams")

	assert := assert.New(t)
	res, err := c.Get(context.Background(), nil)
	assert.NoError(err)
	assert.Empty(res)

	_, err = c.Get(context.Background(), make([]string, MaxBatch+1))
	assert.Error(err)
}

func TestNewWithoutTable(t *testing.T) {
	t.Setenv("STAFFDEX_TABLE", "")
	c, err := New()

	assert := assert.New(t)
	assert.NoError(err)
	assert.Nil(c)
}
