// Package repository loads catalog records from DynamoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"nft-gallery-agent/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by CatalogTable.
type dynamodbAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// CatalogTable reads catalog records stored one item per record, keyed by
// "id". A numeric "position" attribute sets the catalog order.
type CatalogTable struct {
	api       dynamodbAPI
	tableName string
	pageSize  int32
}

// New creates a CatalogTable over tableName.
func New(api dynamodbAPI, tableName string) (*CatalogTable, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &CatalogTable{api: api, tableName: tableName, pageSize: 100}, nil
}

type positioned struct {
	rec      domain.CatalogRecord
	position int
	hasPos   bool
}

// ListRecords scans the whole table following LastEvaluatedKey until the
// last page. Records are ordered by position ascending; records without a
// position follow, ordered by id.
func (t *CatalogTable) ListRecords(ctx context.Context) ([]domain.CatalogRecord, error) {
	var (
		items    []positioned
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := t.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(t.tableName),
			ExclusiveStartKey: startKey,
			Limit:             aws.Int32(t.pageSize),
		})
		if err != nil {
			return nil, fmt.Errorf("repository: ListRecords scan: %w", err)
		}
		for _, item := range out.Items {
			rec, err := itemToRecord(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListRecords unmarshal: %w", err)
			}
			p := positioned{rec: rec}
			if _, ok := item["position"]; ok {
				if p.position, err = intAttr(item, "position"); err != nil {
					return nil, fmt.Errorf("repository: ListRecords unmarshal: %w", err)
				}
				p.hasPos = true
			}
			items = append(items, p)
		}
		if len(out.LastEvaluatedKey) == 0 {
			return sortByPosition(items), nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// itemToRecord converts a DynamoDB attribute map to a CatalogRecord. Only
// id, name and price are required.
func itemToRecord(item map[string]types.AttributeValue) (domain.CatalogRecord, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.CatalogRecord{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.CatalogRecord{}, err
	}
	price, err := scalarAttr(item, "price")
	if err != nil {
		return domain.CatalogRecord{}, err
	}
	attrs, err := attributesAttr(item, "attributes")
	if err != nil {
		return domain.CatalogRecord{}, err
	}

	return domain.CatalogRecord{
		ID:              id,
		Name:            name,
		Description:     optStr(item, "description"),
		Image:           optStr(item, "image"),
		AnimationURI:    optStr(item, "animationUri"),
		ContractAddress: optStr(item, "contractAddress"),
		SplitAddress:    optStr(item, "splitAddress"),
		Price:           price,
		CurrencySymbol:  optStr(item, "currencySymbol"),
		MetadataURI:     optStr(item, "metadataUri"),
		Attributes:      attrs,
	}, nil
}

func attributesAttr(item map[string]types.AttributeValue, key string) ([]domain.Attribute, error) {
	v, ok := item[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("repository: attribute %q is not a list", key)
	}
	attrs := make([]domain.Attribute, 0, len(list.Value))
	for i, elem := range list.Value {
		m, ok := elem.(*types.AttributeValueMemberM)
		if !ok {
			return nil, fmt.Errorf("repository: %s[%d] is not a map", key, i)
		}
		trait, err := strAttr(m.Value, "trait_type")
		if err != nil {
			return nil, fmt.Errorf("repository: %s[%d]: %w", key, i, err)
		}
		value, err := traitValue(m.Value["value"])
		if err != nil {
			return nil, fmt.Errorf("repository: %s[%d]: %w", key, i, err)
		}
		attrs = append(attrs, domain.Attribute{TraitType: trait, Value: value})
	}
	return attrs, nil
}

// traitValue keeps numbers numeric so they render the same way as
// attributes decoded from JSON metadata.
func traitValue(v types.AttributeValue) (any, error) {
	switch tv := v.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value, nil
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(tv.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse trait value: %w", err)
		}
		return f, nil
	case *types.AttributeValueMemberBOOL:
		return tv.Value, nil
	case nil:
		return nil, errors.New("missing trait value")
	default:
		return nil, fmt.Errorf("unsupported trait value type %T", v)
	}
}

func sortByPosition(items []positioned) []domain.CatalogRecord {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.hasPos != b.hasPos {
			return a.hasPos
		}
		if a.hasPos && a.position != b.position {
			return a.position < b.position
		}
		return a.rec.ID < b.rec.ID
	})
	records := make([]domain.CatalogRecord, len(items))
	for i, p := range items {
		records[i] = p.rec
	}
	return records
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

// scalarAttr reads a string or number attribute as its literal text.
func scalarAttr(item map[string]types.AttributeValue, key string) (string, error) {
	switch v := item[key].(type) {
	case *types.AttributeValueMemberS:
		return v.Value, nil
	case *types.AttributeValueMemberN:
		return v.Value, nil
	case nil:
		return "", fmt.Errorf("repository: missing attribute %q", key)
	default:
		return "", fmt.Errorf("repository: attribute %q is not a scalar", key)
	}
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

func optStr(item map[string]types.AttributeValue, key string) string {
	s, _ := strAttr(item, key)
	return s
}
