// Package dynamodb implements the DocumentStore port on a single
// DynamoDB table.
package dynamodb

import (
	"context"
	"errors"

	"braincore/application/ports"
	"braincore/domain/core/entities"
	"braincore/domain/core/valueobjects"
	pkgerrors "braincore/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	docPrefix     = "DOC#"
	contactPrefix = "CONTACT#"
	metadataSK    = "METADATA"
)

// DocumentStore persists the mixed node/edge collection in one table.
// Memories and edges key on their id; contacts key on their normalized
// email, which is what makes the dedup upsert a single conditional
// write.
type DocumentStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewDocumentStore creates a DynamoDB-backed document store
func NewDocumentStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// InsertOne persists a document. Edge endpoints are not checked
// against existing nodes.
func (s *DocumentStore) InsertOne(ctx context.Context, doc interface{}) error {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to marshal document", err)
	}

	pk, err := keyForItem(item)
	if err != nil {
		return err
	}
	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: metadataSK}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("document already exists")
		}
		return pkgerrors.NewDatabaseError("failed to insert document", err)
	}

	s.logger.Debug("Inserted document", zap.String("pk", pk))
	return nil
}

// FindOne decodes the first document matching the filter into out
func (s *DocumentStore) FindOne(ctx context.Context, filter ports.Filter, out interface{}) error {
	if key, ok := directKey(filter); ok {
		item, err := s.getItem(ctx, key)
		if err != nil {
			return err
		}
		if item != nil {
			return unmarshalStored(item, out)
		}
		// A bare id can still belong to a contact, which keys on its
		// email; fall through to the scan.
	}

	items, err := s.scan(ctx, filter, 1)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return pkgerrors.NewNotFoundError("document")
	}
	return unmarshalStored(items[0], out)
}

// UpdateOne applies the update to the first matching document
func (s *DocumentStore) UpdateOne(ctx context.Context, filter ports.Filter, update ports.Update) error {
	item, err := s.findRaw(ctx, filter)
	if err != nil {
		return err
	}

	builder := expression.UpdateBuilder{}
	for name, value := range update {
		builder = builder.Set(expression.Name(name), expression.Value(value))
	}
	expr, err := expression.NewBuilder().WithUpdate(builder).Build()
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to build update expression", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       storedKey(item),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("failed to update document", err)
	}
	return nil
}

// Find returns all documents matching the filter
func (s *DocumentStore) Find(ctx context.Context, filter ports.Filter) ([]map[string]interface{}, error) {
	items, err := s.scan(ctx, filter, 0)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		var doc map[string]interface{}
		if err := unmarshalStored(item, &doc); err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	return results, nil
}

// CountDocuments counts documents matching the filter
func (s *DocumentStore) CountDocuments(ctx context.Context, filter ports.Filter) (int, error) {
	items, err := s.scan(ctx, filter, 0)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// UpsertContact is a single conditional UpdateItem keyed by the
// normalized email: identity fields only land when absent, counters
// always move. ALL_OLD tells us whether the contact pre-existed and
// gives back its pre-increment state.
func (s *DocumentStore) UpsertContact(ctx context.Context, candidate *entities.Contact) (*entities.Contact, bool, error) {
	update := expression.UpdateBuilder{}.
		Set(expression.Name("id"), expression.IfNotExists(expression.Name("id"), expression.Value(candidate.ID))).
		Set(expression.Name("kind"), expression.IfNotExists(expression.Name("kind"), expression.Value(candidate.Kind))).
		Set(expression.Name("email"), expression.IfNotExists(expression.Name("email"), expression.Value(candidate.Email))).
		Set(expression.Name("firstName"), expression.IfNotExists(expression.Name("firstName"), expression.Value(candidate.FirstName))).
		Set(expression.Name("lastName"), expression.IfNotExists(expression.Name("lastName"), expression.Value(candidate.LastName))).
		Set(expression.Name("fullName"), expression.IfNotExists(expression.Name("fullName"), expression.Value(candidate.FullName))).
		Set(expression.Name("lastSeen"), expression.Value(candidate.LastSeen)).
		Set(expression.Name("updatedAt"), expression.Value(candidate.UpdatedAt)).
		Add(expression.Name("messageCount"), expression.Value(1))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return nil, false, pkgerrors.NewDatabaseError("failed to build upsert expression", err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: contactPrefix + candidate.Email},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, false, pkgerrors.NewDatabaseError("failed to upsert contact", err)
	}

	if len(out.Attributes) == 0 {
		created := *candidate
		s.logger.Info("Created contact",
			zap.String("contactID", candidate.ID),
			zap.String("email", candidate.Email),
		)
		return &created, true, nil
	}

	var prior entities.Contact
	if err := unmarshalStored(out.Attributes, &prior); err != nil {
		return nil, false, pkgerrors.NewDatabaseError("failed to unmarshal contact", err)
	}
	return &prior, false, nil
}

func (s *DocumentStore) getItem(ctx context.Context, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("failed to get document", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (s *DocumentStore) findRaw(ctx context.Context, filter ports.Filter) (map[string]types.AttributeValue, error) {
	if key, ok := directKey(filter); ok {
		item, err := s.getItem(ctx, key)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}

	items, err := s.scan(ctx, filter, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.NewNotFoundError("document")
	}
	return items[0], nil
}

func (s *DocumentStore) scan(ctx context.Context, filter ports.Filter, limit int32) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	}

	if len(filter) > 0 {
		var cond expression.ConditionBuilder
		first := true
		for name, value := range filter {
			c := expression.Name(name).Equal(expression.Value(value))
			if first {
				cond = c
				first = false
			} else {
				cond = cond.And(c)
			}
		}
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("failed to build scan expression", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("failed to scan documents", err)
		}
		items = append(items, page.Items...)
		if limit > 0 && int32(len(items)) >= limit {
			return items[:limit], nil
		}
	}
	return items, nil
}

// keyForItem derives the partition key from a marshalled document:
// contacts key on email, everything else on id
func keyForItem(item map[string]types.AttributeValue) (string, error) {
	kind := stringAttr(item, "kind")
	if kind == string(valueobjects.KindContact) {
		email := stringAttr(item, "email")
		if email == "" {
			return "", pkgerrors.NewValidationError("contact document must carry an email")
		}
		return contactPrefix + email, nil
	}

	id := stringAttr(item, "id")
	if id == "" {
		return "", pkgerrors.NewValidationError("document must carry an id")
	}
	return docPrefix + id, nil
}

// directKey resolves a filter to a table key without scanning when the
// filter pins either a memory id or a contact email
func directKey(filter ports.Filter) (map[string]types.AttributeValue, bool) {
	if email, ok := filter["email"].(string); ok && filter["kind"] == string(valueobjects.KindContact) {
		return map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: contactPrefix + email},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		}, true
	}
	if id, ok := filter["id"].(string); ok && len(filter) == 1 {
		return map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: docPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		}, true
	}
	return nil, false
}

func storedKey(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": item["PK"],
		"SK": item["SK"],
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if av, ok := item[name].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}

func unmarshalStored(item map[string]types.AttributeValue, out interface{}) error {
	stripped := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		if k == "PK" || k == "SK" {
			continue
		}
		stripped[k] = v
	}
	return attributevalue.UnmarshalMap(stripped, out)
}
