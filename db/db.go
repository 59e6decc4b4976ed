package db

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/model"
	"github.com/pkg/errors"
)

// BatchGetItem refuses more keys than this
const MaxBatch = 100

// Catalog records stream sources in a DynamoDB table keyed by PK.
type Catalog struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// New returns nil when no table is configured.
func New() (*Catalog, error) {
	table := constants.GetCatalogTable()
	if table == "" {
		return nil, nil
	}
	cfg := &aws.Config{
		Region: aws.String(constants.GetAwsRegion()),
	}
	if endpoint := constants.GetDynamoEndpoint(); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewWithClient(dynamodb.New(sess), table), nil
}

func NewWithClient(client dynamodbiface.DynamoDBAPI, table string) *Catalog {
	return &Catalog{client: client, table: table}
}

func (c *Catalog) Put(ctx context.Context, rec model.StreamRecord) error {
	item := map[string]*dynamodb.AttributeValue{
		"PK":      {S: aws.String(rec.Id)},
		"Size":    {N: aws.String(strconv.Itoa(rec.Size))},
		"Created": {S: aws.String(rec.Created.UTC().Format(time.RFC3339Nano))},
	}
	if rec.Uri != "" {
		item["Uri"] = &dynamodb.AttributeValue{S: aws.String(rec.Uri)}
	}
	_, err := c.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "could not record stream %v", rec.Id)
	}
	return nil
}

func (c *Catalog) Get(ctx context.Context, ids []string) (map[string]model.StreamRecord, error) {
	if len(ids) > MaxBatch {
		return nil, errors.Errorf("cannot fetch %d streams at once, max is %d", len(ids), MaxBatch)
	}

	res := make(map[string]model.StreamRecord)
	if len(ids) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		})
	}
	out, err := c.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			c.table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "error from DynamoDB")
	}

	for _, v := range out.Responses[c.table] {
		var rec model.StreamRecord
		rec.Id = aws.StringValue(v["PK"].S)
		if v["Uri"] != nil {
			rec.Uri = aws.StringValue(v["Uri"].S)
		}
		if v["Size"] != nil && v["Size"].N != nil {
			size, _ := strconv.Atoi(*v["Size"].N)
			rec.Size = size
		}
		if v["Created"] != nil && v["Created"].S != nil {
			rec.Created, _ = time.Parse(time.RFC3339Nano, *v["Created"].S)
		}
		res[rec.Id] = rec
	}
	return res, nil
}
